package view

import (
	"html/template"
	"io"
	"strings"

	"github.com/sharedeck/sharedeck/internal/registry"
)

// Render writes the themed folder page: inline previews for images, videos,
// text and PDFs, a download link for everything else.
func Render(w io.Writer, folder *registry.Folder) error {
	return pageTmpl.Execute(w, folder)
}

var pageTmpl = template.Must(template.New("viewer").Funcs(template.FuncMap{
	"hasPrefix": strings.HasPrefix,
	"contains":  strings.Contains,
}).Parse(viewerHTML))

const viewerHTML = `<html>
  <head><title>{{.Title}}</title></head>
  <body style="font-family:sans-serif; background:#f9f9f9; text-align:center; padding:20px;">
    <h2>{{.Title}}</h2>
{{- range .Files}}
{{- if hasPrefix .ContentType "image/"}}
    <div style="margin:10px;"><img src="{{.URL}}" alt="{{.Title}}" style="max-width:100%; height:auto;"></div>
{{- else if hasPrefix .ContentType "video/"}}
    <div style="margin:10px;"><video controls style="max-width:100%; height:auto;">
      <source src="{{.URL}}" type="{{.ContentType}}">
    </video></div>
{{- else if or (hasPrefix .ContentType "text/") (contains .ContentType "json")}}
    <div style="margin:10px;"><pre style="background:#111;color:#0f0;padding:10px;border-radius:8px;overflow:auto;max-height:400px;">Loading...</pre>
    <script>
      fetch("{{.URL}}")
        .then(res => res.text())
        .then(txt => document.querySelectorAll("pre")[document.querySelectorAll("pre").length-1].textContent = txt)
        .catch(()=>{});
    </script></div>
{{- else if eq .ContentType "application/pdf"}}
    <div style="margin:10px;"><embed src="{{.URL}}" type="application/pdf" width="100%" height="600px" /></div>
{{- else}}
    <div style="margin:10px;"><a href="{{.URL}}" target="_blank">Download {{.Title}}</a></div>
{{- end}}
{{- end}}
  </body>
</html>
`
