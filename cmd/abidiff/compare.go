package main

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/go-git/go-billy/v5/osfs"
	progress "gopkg.in/cheggaaa/pb.v1"
	"github.com/spf13/cobra"

	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/pairing"
	"github.com/abigraph/abidiff/internal/pb"
	"github.com/abigraph/abidiff/internal/propagate"
	"github.com/abigraph/abidiff/internal/redundancy"
	"github.com/abigraph/abidiff/internal/reporter"
	"github.com/abigraph/abidiff/internal/suppress"
	"github.com/abigraph/abidiff/internal/visit"
)

var compareCmd = &cobra.Command{
	Use:   "compare <old.json> <new.json>",
	Short: "Compare two corpus snapshots and report surviving ABI changes.",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringArray("suppressions", nil,
		"Path to a suppression rule file; may be repeated.")
	compareCmd.Flags().String("format", "text",
		"Output format: text, yaml, html or proto.")
	compareCmd.Flags().StringP("output", "o", "",
		"Write the report to this file instead of stdout.")
	compareCmd.Flags().Bool("redundant", true,
		"Show changes marked redundant (repeated structurally-identical changes).")
	compareCmd.Flags().Bool("stat", false,
		"Print only the summary counts.")
	compareCmd.Flags().StringSlice("disallow-category", nil,
		"Category name to exclude from the report (repeatable); see internal/category.")
	compareCmd.Flags().Bool("progress", false,
		"Show a progress bar while the two corpora are compared.")
	compareCmd.Flags().Bool("dump-diff-tree", false,
		"Dump the internal diff-node tree to stderr before reporting, for debugging.")
}

func runCompare(cmd *cobra.Command, args []string) error {
	oldPath, err := homedir.Expand(args[0])
	if err != nil {
		return err
	}
	newPath, err := homedir.Expand(args[1])
	if err != nil {
		return err
	}

	env := &ir.Environment{Name: "abidiff-cli"}
	first, err := loadCorpus(env, oldPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", oldPath, err)
	}
	second, err := loadCorpus(env, newPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", newPath, err)
	}

	ctx := core.NewContext(first, second)

	suppressionPaths, _ := cmd.Flags().GetStringArray("suppressions")
	for _, p := range suppressionPaths {
		rules, loadErrs := loadSuppressions(p)
		for _, e := range loadErrs {
			fmt.Fprintln(os.Stderr, "suppression warning:", e)
		}
		ctx.Suppressions = append(ctx.Suppressions, rules...)
	}

	if showRedundant, _ := cmd.Flags().GetBool("redundant"); !showRedundant {
		ctx.Display.ShowRedundantChanges = false
	}
	if statOnly, _ := cmd.Flags().GetBool("stat"); statOnly {
		ctx.Display.ShowStatsOnly = true
	}
	disallowed, _ := cmd.Flags().GetStringSlice("disallow-category")
	for _, name := range disallowed {
		if bit, ok := category.ByName(name); ok {
			ctx.DisallowCategory(bit)
		}
	}

	showProgress, _ := cmd.Flags().GetBool("progress")
	var bar *progress.ProgressBar
	if showProgress {
		bar = progress.New(len(first.Functions) + len(first.Variables))
		bar.ShowSpeed = false
		bar.SetMaxWidth(80)
		bar.Start()
	}

	root := pairing.CompareCorpora(ctx, first, second)
	if bar != nil {
		bar.Set(len(first.Functions) + len(first.Variables))
		bar.Finish()
	}
	propagate.Run(ctx, root)
	if len(ctx.Suppressions) > 0 {
		suppress.Apply(ctx, root)
	}
	redundancy.Mark(ctx, root)

	if dumpTree, _ := cmd.Flags().GetBool("dump-diff-tree"); dumpTree {
		ctx.Display.DumpDiffTree = true
		visit.Dump(ctx, root, func(n diff.Node, depth int) {
			fmt.Fprintf(os.Stderr, "%s%s\n", indent(depth), nodeLabel(n))
		})
	}

	out := os.Stdout
	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		return reporter.Report(ctx, out, root)
	case "yaml":
		return reporter.WriteYAMLSummary(ctx, out, root)
	case "html":
		return reporter.WriteHTML(ctx, out, root)
	case "proto":
		visible := reporter.VTableOffsetChangedAndVisible(ctx, root)
		stats := pb.FromStats(root.Stats, root.HasNetChanges(), root.HasIncompatibleChanges(visible))
		return pb.Marshal(out, stats)
	default:
		return fmt.Errorf("unknown --format %q: want text, yaml, html or proto", format)
	}
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func nodeLabel(n diff.Node) string {
	subj := n.First()
	if subj == nil {
		subj = n.Second()
	}
	name := "<nil>"
	if subj != nil {
		name = subj.QualifiedName()
	}
	return fmt.Sprintf("%s %q category=%s", n.DiffKind(), name, n.LocalCategory())
}

func loadCorpus(env *ir.Environment, path string) (*ir.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ir.LoadCorpusJSON(env, f)
}

func loadSuppressions(path string) ([]core.SuppressionRule, []error) {
	dir, base := filepath.Dir(path), filepath.Base(path)
	fs := osfs.New(dir)
	return suppress.LoadFile(fs, base)
}
