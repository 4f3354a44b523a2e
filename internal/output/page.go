package output

import (
	"bytes"
	"fmt"
	"html/template"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
{{- if .ThemeJSON }}
<script type="application/json" id="mdview-theme">{{ .ThemeJSON }}</script>
{{- end }}
</head>
<body>
<article class="markdown-body">
{{ .Body }}
</article>
</body>
</html>
`))

// Page describes a standalone HTML document around a rendered fragment.
type Page struct {
	// Title goes into <title>. It is escaped.
	Title string

	// Body is the rendered HTML fragment. It is inserted verbatim.
	Body string

	// ThemeJSON is an optional theme definition embedded for client-side
	// styling.
	ThemeJSON string
}

// Bytes renders the page.
func (p Page) Bytes() ([]byte, error) {
	data := struct {
		Title     string
		Body      template.HTML
		ThemeJSON template.JS
	}{
		Title:     p.Title,
		Body:      template.HTML(p.Body),
		ThemeJSON: template.JS(p.ThemeJSON),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}

	return buf.Bytes(), nil
}
