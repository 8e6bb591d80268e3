package web

import (
	"bytes"
	"html/template"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"px": formatPx,
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Voronoi</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Voronoi</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events" sse-swap="board" hx-swap="innerHTML">{{.BoardHTML}}</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

// The SVG posts click coordinates through a hidden form so that placement
// stays a plain form POST.
const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="scoreboard">
    {{range .Scores}}<span style="color: {{.Color}}">{{.Label}}: {{.Percent}}%</span> {{end}}
    <span class="remaining">Seeds left: {{.Remaining}}</span>
    {{if .Turn}}<span class="turn">{{.Turn}} to move</span>{{end}}
  </div>
  {{if .Banner}}<div class="banner">{{.Banner}}</div>{{end}}
  <form id="place" hx-post="/game/{{.ID}}/place" hx-target="#board" hx-swap="outerHTML" method="post">
    <input type="hidden" name="x" value="">
    <input type="hidden" name="y" value="">
  </form>
  <svg id="canvas" width="{{px .Width}}" height="{{px .Height}}" viewBox="0 0 {{px .Width}} {{px .Height}}"
       onclick="var r=this.getBoundingClientRect(),f=document.getElementById('place');f.x.value=event.clientX-r.left;f.y.value=event.clientY-r.top;htmx.trigger(f,'submit')">
    <rect width="{{px .Width}}" height="{{px .Height}}" fill="#fafafa" stroke="#000"/>
    {{range .Cells}}<polygon points="{{.Points}}" fill="{{.Fill}}" stroke="#000"/>
    {{end}}
    {{range .Seeds}}<circle cx="{{px .X}}" cy="{{px .Y}}" r="5" fill="{{.Fill}}"/>
    {{end}}
  </svg>
  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">Reset</button>
  </form>
</div>
`
