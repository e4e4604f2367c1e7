package reporter

import (
	"io"

	"gopkg.in/yaml.v2"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
)

// summary is the YAML-serializable shape of a corpus diff (SPEC_FULL.md
// §6's machine-readable summary variant), mirroring diff.Stats plus the
// name-level listings a CI gate typically greps for.
type summary struct {
	SONameChanged    bool     `yaml:"soname_changed,omitempty"`
	ArchitectureChanged bool  `yaml:"architecture_changed,omitempty"`
	FunctionsRemoved []string `yaml:"functions_removed,omitempty"`
	FunctionsAdded   []string `yaml:"functions_added,omitempty"`
	FunctionsChanged []string `yaml:"functions_changed,omitempty"`
	VariablesRemoved []string `yaml:"variables_removed,omitempty"`
	VariablesAdded   []string `yaml:"variables_added,omitempty"`
	VariablesChanged []string `yaml:"variables_changed,omitempty"`
	Stats            yamlStats `yaml:"stats"`
}

type yamlStats struct {
	NetFunctionsRemoved int `yaml:"net_functions_removed"`
	NetFunctionsAdded   int `yaml:"net_functions_added"`
	NetFunctionsChanged int `yaml:"net_functions_changed"`
	NetVariablesRemoved int `yaml:"net_variables_removed"`
	NetVariablesAdded   int `yaml:"net_variables_added"`
	NetVariablesChanged int `yaml:"net_variables_changed"`
}

// WriteYAMLSummary renders root as a YAML document to w. The changed-
// function and changed-variable lists are filtered through the same
// to-be-reported predicate the text reporter uses; the added and removed
// lists are copied from root as they stand.
func WriteYAMLSummary(ctx *core.Context, w io.Writer, root *diff.CorpusDiff) error {
	s := summary{
		SONameChanged:       root.SONameChanged,
		ArchitectureChanged: root.ArchChanged,
		Stats: yamlStats{
			NetFunctionsRemoved: root.Stats.NetFuncRemoved(),
			NetFunctionsAdded:   root.Stats.NetFuncAdded(),
			NetFunctionsChanged: root.Stats.NetFuncChanged(),
			NetVariablesRemoved: root.Stats.NetVarRemoved(),
			NetVariablesAdded:   root.Stats.NetVarAdded(),
			NetVariablesChanged: root.Stats.NetVarChanged(),
		},
	}
	for _, f := range root.RemovedFunctions {
		s.FunctionsRemoved = append(s.FunctionsRemoved, f.QualifiedName())
	}
	for _, f := range root.AddedFunctions {
		s.FunctionsAdded = append(s.FunctionsAdded, f.QualifiedName())
	}
	for _, fd := range root.ChangedFunctions {
		if toBeReported(ctx, fd) {
			s.FunctionsChanged = append(s.FunctionsChanged, fd.First().QualifiedName())
		}
	}
	for _, v := range root.RemovedVariables {
		s.VariablesRemoved = append(s.VariablesRemoved, v.QualifiedName())
	}
	for _, v := range root.AddedVariables {
		s.VariablesAdded = append(s.VariablesAdded, v.QualifiedName())
	}
	for _, vd := range root.ChangedVariables {
		if toBeReported(ctx, vd) {
			s.VariablesChanged = append(s.VariablesChanged, vd.First().QualifiedName())
		}
	}

	buf, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
