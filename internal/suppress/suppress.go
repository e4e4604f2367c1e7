// Package suppress implements spec.md §4.5, the suppression engine: rule
// parsing, per-kind matching predicates, and the pre/post-order applicator
// passes that set category.Suppressed on matching nodes.
//
// LoadFile reads rule text through go-billy/v5's billy.Filesystem
// abstraction (the CLI passes an osfs; Load parses any io.Reader) —
// the same borrowed-filesystem posture the teacher takes toward git
// storage backends, generalized here to suppression-rule files instead of
// repository objects.
package suppress

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/camelcase"
	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
)

// ChangeKind is the applicable change kind a suppression rule may be
// scoped to (spec.md §3, "Suppression rule").
type ChangeKind int

const (
	AnyChange ChangeKind = iota
	SubTypeChange
	Added
	Removed
)

// ReachKind is how a suppressed type is reached from the diff root
// (spec.md §3: "direct / through-pointer / through-reference").
type ReachKind int

const (
	ReachAny ReachKind = iota
	ReachDirect
	ReachPointer
	ReachReference
)

// ParamSpec matches one function-parameter position by type name or regex
// (spec.md §4.5, "parameter specs").
type ParamSpec struct {
	Index       int
	TypeName    string
	TypeNameRE  *regexp.Regexp
}

func (p ParamSpec) matches(ftype *ir.FunctionType) bool {
	if p.Index < 0 || p.Index >= len(ftype.Parameters) {
		return false
	}
	name := ftype.Parameters[p.Index].Type.QualifiedName()
	if p.TypeNameRE != nil {
		return p.TypeNameRE.MatchString(name)
	}
	return p.TypeName == "" || p.TypeName == name
}

// MemberRange is one data-member insertion range of a type-suppression
// rule (spec.md §4.5): a begin/end pair of bit-offset boundaries.
type MemberRange struct {
	Begin, End int64
}

func (r MemberRange) contains(offset int64) bool {
	return offset >= r.Begin && offset <= r.End
}

// TypeRule implements `[suppress_type]` (spec.md §4.5).
//
// FileNameRE is parsed from file_name_regexp but never consulted by
// Matches: the IR carries no per-declaration source-file field (corpora
// here are symbol/type level, not DWARF-level), so there is nothing to
// compare it against. Kept on the struct so rule files that set it parse
// without error rather than to have any matching effect.
type TypeRule struct {
	FileNameRE   *regexp.Regexp
	SONameRE     *regexp.Regexp
	NameLiteral  string
	NameRE       *regexp.Regexp
	Kind         string // "class", "struct", "union", "enum", "array", "typedef", "basic"
	Reach        ReachKind
	InsertRanges []MemberRange
	Change       ChangeKind
}

func (r *TypeRule) Matches(ctx *core.Context, n diff.Node) bool {
	first := n.First()
	second := n.Second()
	subj := first
	if subj == nil {
		subj = second
	}
	if subj == nil {
		return false
	}
	if r.Change != AnyChange && r.Change != changeKindOf(first, second) {
		return false
	}
	if !nameMatches(r.NameLiteral, r.NameRE, subj.QualifiedName()) {
		return false
	}
	if r.Kind != "" && !kindMatches(r.Kind, subj) {
		return false
	}
	if r.SONameRE != nil && !r.SONameRE.MatchString(sonameFor(ctx, first)) {
		return false
	}
	if r.Reach != ReachAny && r.Reach != reachKindOf(n) {
		return false
	}
	if len(r.InsertRanges) > 0 {
		if !classMatchesInsertRanges(n, r.InsertRanges) {
			return false
		}
	}
	return true
}

// changeKindOf classifies a diff node's pair as an addition, a removal, or
// a change to an existing, paired subject (spec.md §4.5's change_kind).
func changeKindOf(first, second ir.Subject) ChangeKind {
	switch {
	case first == nil && second != nil:
		return Added
	case first != nil && second == nil:
		return Removed
	default:
		return SubTypeChange
	}
}

// sonameFor returns the soname of the corpus first (or, for a pure
// addition, second) was drawn from.
func sonameFor(ctx *core.Context, first ir.Subject) string {
	if first == nil {
		if ctx.Second != nil {
			return ctx.Second.SOName
		}
		return ""
	}
	if ctx.First != nil {
		return ctx.First.SOName
	}
	return ""
}

// reachKindOf reports how n's subject is reached from its parent in the
// diff tree: directly, or through an intervening pointer/reference
// (spec.md §4.5's reach_kind).
func reachKindOf(n diff.Node) ReachKind {
	switch n.Parent().(type) {
	case *diff.PointerDiff:
		return ReachPointer
	case *diff.ReferenceDiff:
		return ReachReference
	default:
		return ReachDirect
	}
}

func kindMatches(kind string, s ir.Subject) bool {
	switch kind {
	case "class":
		c, ok := s.(*ir.Class)
		return ok && !c.IsUnion
	case "union":
		c, ok := s.(*ir.Class)
		return ok && c.IsUnion
	case "struct":
		c, ok := s.(*ir.Class)
		return ok && !c.IsUnion
	case "enum":
		_, ok := s.(*ir.Enum)
		return ok
	case "array":
		_, ok := s.(*ir.ArrayType)
		return ok
	case "typedef":
		_, ok := s.(*ir.Typedef)
		return ok
	case "basic":
		_, ok := s.(*ir.BasicType)
		return ok
	default:
		return false
	}
}

// classMatchesInsertRanges checks whether any inserted data member of a
// class-or-union diff falls within one of the given bit-offset ranges
// (spec.md §4.5: "each range has a begin and end boundary").
func classMatchesInsertRanges(n diff.Node, ranges []MemberRange) bool {
	cd, ok := n.(*diff.ClassDiff)
	if !ok {
		return false
	}
	for _, m := range cd.InsertedDataMembers {
		for _, r := range ranges {
			if r.contains(m.Offset) {
				return true
			}
		}
	}
	return false
}

func nameMatches(literal string, re *regexp.Regexp, name string) bool {
	if re != nil {
		return re.MatchString(name)
	}
	return literal == "" || literal == name
}

// FunctionRule implements `[suppress_function]` (spec.md §4.5).
type FunctionRule struct {
	NameLiteral    string
	NameRE         *regexp.Regexp
	ReturnTypeName string
	ReturnTypeRE   *regexp.Regexp
	Params         []ParamSpec
	SymbolName     string
	SymbolVersion  string
	Change         ChangeKind
	AllowAliases   bool
}

func (r *FunctionRule) Matches(ctx *core.Context, n diff.Node) bool {
	fd, ok := n.(*diff.FunctionDeclDiff)
	if !ok {
		return false
	}
	if r.Change != AnyChange && r.Change != changeKindOf(fd.First(), fd.Second()) {
		return false
	}
	fn := fd.First()
	if fn == nil {
		fn = fd.Second()
	}
	f, ok := fn.(*ir.FunctionDecl)
	if !ok {
		return false
	}
	if !nameMatches(r.NameLiteral, r.NameRE, f.QualifiedName()) {
		return false
	}
	if r.ReturnTypeName != "" || r.ReturnTypeRE != nil {
		rtName := ""
		if f.Type != nil && f.Type.Return != nil {
			rtName = f.Type.Return.QualifiedName()
		}
		if !nameMatches(r.ReturnTypeName, r.ReturnTypeRE, rtName) {
			return false
		}
	}
	for _, p := range r.Params {
		if f.Type == nil || !p.matches(f.Type) {
			return false
		}
	}
	if r.SymbolName != "" && !symbolNameMatches(f.Symbol, r.SymbolName, r.AllowAliases) {
		return false
	}
	if r.SymbolVersion != "" && (f.Symbol == nil || f.Symbol.Version != r.SymbolVersion) {
		return false
	}
	return true
}

// symbolNameMatches checks sym's primary name against want, or, when
// allowAliases is set, also its alias list (spec.md §4.5's
// allow_symbol_alias: a rule naming one alias of a symbol set also
// suppresses the others).
func symbolNameMatches(sym *ir.Symbol, want string, allowAliases bool) bool {
	if sym == nil {
		return false
	}
	if sym.Name == want {
		return true
	}
	if !allowAliases {
		return false
	}
	for _, alias := range sym.Aliases {
		if alias == want {
			return true
		}
	}
	return false
}

// MatchesSymbol reports whether sym — a ref-counted ELF symbol with no
// surviving declaration, as found in the corpus diff's
// unreferenced-symbol buckets — is named by this rule's symbol_name /
// symbol_version properties. Unlike Matches, it never consults name,
// return-type or parameter properties: a bare symbol carries none of
// those.
func (r *FunctionRule) MatchesSymbol(sym *ir.Symbol) bool {
	if r.SymbolName == "" {
		return false
	}
	if !symbolNameMatches(sym, r.SymbolName, r.AllowAliases) {
		return false
	}
	if r.SymbolVersion != "" && (sym == nil || sym.Version != r.SymbolVersion) {
		return false
	}
	return true
}

// VariableRule implements `[suppress_variable]`, analogous to
// FunctionRule (spec.md §4.5: "Matching a variable-suppression is
// analogous to function-suppression").
type VariableRule struct {
	NameLiteral   string
	NameRE        *regexp.Regexp
	TypeName      string
	TypeNameRE    *regexp.Regexp
	SymbolName    string
	SymbolVersion string
	Change        ChangeKind
}

func (r *VariableRule) Matches(ctx *core.Context, n diff.Node) bool {
	vd, ok := n.(*diff.VariableDiff)
	if !ok {
		return false
	}
	if r.Change != AnyChange && r.Change != changeKindOf(vd.First(), vd.Second()) {
		return false
	}
	subj := vd.First()
	if subj == nil {
		subj = vd.Second()
	}
	v, ok := subj.(*ir.Variable)
	if !ok {
		return false
	}
	if !nameMatches(r.NameLiteral, r.NameRE, v.QualifiedName()) {
		return false
	}
	if r.TypeName != "" || r.TypeNameRE != nil {
		tn := ""
		if v.Type != nil {
			tn = v.Type.QualifiedName()
		}
		if !nameMatches(r.TypeName, r.TypeNameRE, tn) {
			return false
		}
	}
	if r.SymbolName != "" && (v.Symbol == nil || v.Symbol.Name != r.SymbolName) {
		return false
	}
	if r.SymbolVersion != "" && (v.Symbol == nil || v.Symbol.Version != r.SymbolVersion) {
		return false
	}
	return true
}

// MatchesSymbol is VariableRule's counterpart to FunctionRule.MatchesSymbol,
// for the corpus diff's unreferenced-variable-symbol buckets.
func (r *VariableRule) MatchesSymbol(sym *ir.Symbol) bool {
	if r.SymbolName == "" {
		return false
	}
	if sym == nil || sym.Name != r.SymbolName {
		return false
	}
	if r.SymbolVersion != "" && sym.Version != r.SymbolVersion {
		return false
	}
	return true
}

// IsHarmlessRename reports whether old and neu differ only by a casing /
// word-boundary-preserving rename — e.g. "numEntries" -> "num_entries" —
// using fatih/camelcase to split each into words and compare
// case-insensitively, word for word. No pass in this module calls it; the
// pairing engine sets HARMLESS-DECL-NAME from qualified-name inequality
// alone.
func IsHarmlessRename(old, neu string) bool {
	if old == neu {
		return false
	}
	oldWords := camelcase.Split(strings.ReplaceAll(old, "_", " "))
	newWords := camelcase.Split(strings.ReplaceAll(neu, "_", " "))
	oldWords = nonEmpty(oldWords)
	newWords = nonEmpty(newWords)
	if len(oldWords) != len(newWords) {
		return false
	}
	for i := range oldWords {
		if !strings.EqualFold(strings.TrimSpace(oldWords[i]), strings.TrimSpace(newWords[i])) {
			return false
		}
	}
	return true
}

func nonEmpty(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w) != "" {
			out = append(out, w)
		}
	}
	return out
}

// ParseError is one malformed line encountered while loading rules
// (spec.md §7, "suppression-parse-error"): reported to the caller, never
// fatal — Load continues with the remaining rules.
type ParseError struct {
	Line   int
	Source string
	Cause  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Cause)
}

// LoadFile reads suppression rules from path within fs (spec.md §6: "a
// list of suppression rules loaded from a caller-supplied text source").
// Malformed sections/lines are collected as ParseErrors rather than
// aborting the load; LoadFile returns every rule that did parse alongside
// the collected errors.
func LoadFile(fs billy.Filesystem, path string) ([]core.SuppressionRule, []error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, []error{errors.Wrapf(err, "opening suppression file %s", path)}
	}
	defer f.Close()
	return Load(f, path)
}

// Load parses suppression rules from r, sourced from the given name (used
// only in ParseError messages).
func Load(r io.Reader, source string) ([]core.SuppressionRule, []error) {
	scanner := bufio.NewScanner(r)
	var rules []core.SuppressionRule
	var errs []error

	var section string
	props := map[string]string{}
	lineNo := 0

	flush := func() {
		if section == "" {
			return
		}
		rule, err := buildRule(section, props)
		if err != nil {
			errs = append(errs, &ParseError{Line: lineNo, Source: source, Cause: err.Error()})
		} else {
			rules = append(rules, rule)
		}
		props = map[string]string{}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			errs = append(errs, &ParseError{Line: lineNo, Source: source, Cause: "expected key = value"})
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	flush()
	return rules, errs
}

func buildRule(section string, props map[string]string) (core.SuppressionRule, error) {
	switch section {
	case "suppress_type":
		return buildTypeRule(props)
	case "suppress_function":
		return buildFunctionRule(props)
	case "suppress_variable":
		return buildVariableRule(props)
	default:
		return nil, fmt.Errorf("unknown suppression section [%s]", section)
	}
}

func buildTypeRule(props map[string]string) (*TypeRule, error) {
	r := &TypeRule{Kind: props["type_kind"]}
	var err error
	if r.NameRE, err = compileOpt(props["name_regexp"]); err != nil {
		return nil, err
	}
	r.NameLiteral = props["name"]
	if r.FileNameRE, err = compileOpt(props["file_name_regexp"]); err != nil {
		return nil, err
	}
	if r.SONameRE, err = compileOpt(props["soname_regexp"]); err != nil {
		return nil, err
	}
	r.Reach = parseReach(props["reach_kind"])
	r.Change = parseChangeKind(props["change_kind"])
	if rangesStr, ok := props["has_data_member_inserted_between"]; ok {
		ranges, err := parseRanges(rangesStr)
		if err != nil {
			return nil, err
		}
		r.InsertRanges = ranges
	}
	return r, nil
}

func buildFunctionRule(props map[string]string) (*FunctionRule, error) {
	r := &FunctionRule{NameLiteral: props["name"]}
	var err error
	if r.NameRE, err = compileOpt(props["name_regexp"]); err != nil {
		return nil, err
	}
	r.ReturnTypeName = props["return_type_name"]
	if r.ReturnTypeRE, err = compileOpt(props["return_type_regexp"]); err != nil {
		return nil, err
	}
	r.SymbolName = props["symbol_name"]
	r.SymbolVersion = props["symbol_version"]
	r.Change = parseChangeKind(props["change_kind"])
	r.AllowAliases = props["allow_symbol_alias"] == "yes"
	for key, value := range props {
		if !strings.HasPrefix(key, "parameter_") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, "parameter_"))
		if err != nil {
			continue
		}
		r.Params = append(r.Params, ParamSpec{Index: idx, TypeName: value})
	}
	return r, nil
}

func buildVariableRule(props map[string]string) (*VariableRule, error) {
	r := &VariableRule{NameLiteral: props["name"]}
	var err error
	if r.NameRE, err = compileOpt(props["name_regexp"]); err != nil {
		return nil, err
	}
	r.TypeName = props["type_name"]
	if r.TypeNameRE, err = compileOpt(props["type_name_regexp"]); err != nil {
		return nil, err
	}
	r.SymbolName = props["symbol_name"]
	r.Change = parseChangeKind(props["change_kind"])
	return r, nil
}

func compileOpt(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

func parseReach(s string) ReachKind {
	switch s {
	case "pointer":
		return ReachPointer
	case "reference":
		return ReachReference
	case "direct":
		return ReachDirect
	default:
		return ReachAny
	}
}

func parseChangeKind(s string) ChangeKind {
	switch s {
	case "subtype-change":
		return SubTypeChange
	case "added-declaration":
		return Added
	case "deleted-declaration":
		return Removed
	default:
		return AnyChange
	}
}

func parseRanges(s string) ([]MemberRange, error) {
	var ranges []MemberRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("malformed range %q", part)
		}
		begin, err := strconv.ParseInt(strings.TrimSpace(bounds[0]), 10, 64)
		if err != nil {
			return nil, err
		}
		end, err := strconv.ParseInt(strings.TrimSpace(bounds[1]), 10, 64)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, MemberRange{Begin: begin, End: end})
	}
	return ranges, nil
}
