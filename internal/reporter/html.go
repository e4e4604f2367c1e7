package reporter

import (
	"bytes"
	"html/template"
	"io"

	"github.com/Masterminds/sprig"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
)

// htmlView is the data handed to htmlTemplate; it reuses the text
// reporter's to-be-reported filtering so the HTML and text renderings of
// the same graph never disagree about what counts as a real change.
type htmlView struct {
	Root             *diff.CorpusDiff
	ChangedFunctions []diff.Node
	ChangedVariables []diff.Node
}

const htmlTemplateSource = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>ABI diff report</title></head>
<body>
<h1>ABI diff report</h1>
{{if .Root.SONameChanged}}<p>SONAME changed from <code>{{.Root.OldSOName}}</code> to <code>{{.Root.NewSOName}}</code></p>{{end}}
{{if .Root.ArchChanged}}<p>architecture changed from <code>{{.Root.OldArch}}</code> to <code>{{.Root.NewArch}}</code></p>{{end}}
<ul>
<li>Functions: {{.Root.Stats.NetFuncRemoved}} removed, {{.Root.Stats.NetFuncChanged}} changed, {{.Root.Stats.NetFuncAdded}} added</li>
<li>Variables: {{.Root.Stats.NetVarRemoved}} removed, {{.Root.Stats.NetVarChanged}} changed, {{.Root.Stats.NetVarAdded}} added</li>
</ul>
{{if .Root.RemovedFunctions}}
<h2>Removed functions</h2>
<ul>{{range .Root.RemovedFunctions}}<li>{{.QualifiedName | trunc 200}}</li>{{end}}</ul>
{{end}}
{{if .Root.AddedFunctions}}
<h2>Added functions</h2>
<ul>{{range .Root.AddedFunctions}}<li>{{.QualifiedName | trunc 200}}</li>{{end}}</ul>
{{end}}
{{if .ChangedFunctions}}
<h2>Changed functions</h2>
<ul>{{range .ChangedFunctions}}<li>{{.First.QualifiedName | trunc 200}}</li>{{end}}</ul>
{{end}}
{{if .Root.RemovedVariables}}
<h2>Removed variables</h2>
<ul>{{range .Root.RemovedVariables}}<li>{{.QualifiedName | trunc 200}}</li>{{end}}</ul>
{{end}}
{{if .Root.AddedVariables}}
<h2>Added variables</h2>
<ul>{{range .Root.AddedVariables}}<li>{{.QualifiedName | trunc 200}}</li>{{end}}</ul>
{{end}}
{{if .ChangedVariables}}
<h2>Changed variables</h2>
<ul>{{range .ChangedVariables}}<li>{{.First.QualifiedName | trunc 200}}</li>{{end}}</ul>
{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(
	template.New("report").Funcs(sprig.FuncMap()).Parse(htmlTemplateSource),
)

// WriteHTML renders root as a self-contained HTML page to w. It borrows
// sprig's helper funcs (here just trunc, to keep long demangled names from
// blowing out the page width) rather than hand-rolling template funcs.
func WriteHTML(ctx *core.Context, w io.Writer, root *diff.CorpusDiff) error {
	view := htmlView{Root: root}
	for _, fd := range root.ChangedFunctions {
		if toBeReported(ctx, fd) {
			view.ChangedFunctions = append(view.ChangedFunctions, fd)
		}
	}
	for _, vd := range root.ChangedVariables {
		if toBeReported(ctx, vd) {
			view.ChangedVariables = append(view.ChangedVariables, vd)
		}
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
