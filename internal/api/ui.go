package api

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/dgallion1/docsections/internal/pipeline"
)

//go:embed usage.md
var usageMarkdown []byte

// renderUsage converts the embedded usage notes to sanitised HTML.
func renderUsage() (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(usageMarkdown, &buf); err != nil {
		return "", fmt.Errorf("render usage notes: %w", err)
	}
	return template.HTML(bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes())), nil
}

const layout = `{{define "head"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8">
<title>Document Section Extractor</title>
<style>
body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem}
pre{background:#f6f8fa;padding:1rem;overflow:auto;max-height:70vh}
.warn{background:#fff4e5;border-left:4px solid #f59e0b;padding:.5rem 1rem;margin:.5rem 0}
.err{background:#fdecea;border-left:4px solid #dc2626;padding:.5rem 1rem}
.ok{color:#15803d}
</style></head><body>
<h1>Document Section Extractor with LLM</h1>{{end}}
{{define "foot"}}</body></html>{{end}}`

var indexTemplate = template.Must(template.New("index").Parse(layout + `
{{template "head"}}
<form method="post" action="/parse" enctype="multipart/form-data">
  <p><label>Upload a PDF, DOCX, or TXT file
  <input type="file" name="file" accept=".pdf,.docx,.txt" required></label></p>
  <p><button type="submit">Parse document</button></p>
</form>
{{.Usage}}
{{template "foot"}}`))

var resultTemplate = template.Must(template.New("result").Parse(layout + `
{{template "head"}}
<p class="ok">Extracted text from {{.Doc.Pages}} page(s) of {{.Doc.Filename}}. Parsing complete!</p>
<p><small>SHA-256 of extracted text: <code>{{.Doc.ContentHash}}</code></small></p>
{{range .Doc.Warnings}}<div class="warn">{{.String}}</div>{{end}}
<h2>Parsed Document Structure</h2>
<ul>{{range $type, $n := .Summary}}<li>{{$type}}: {{$n}}</li>{{end}}</ul>
<p><a href="{{.DownloadURL}}" download>Download JSON</a> · <a href="/">Parse another file</a></p>
<pre>{{.JSON}}</pre>
{{template "foot"}}`))

var errorTemplate = template.Must(template.New("error").Parse(layout + `
{{template "head"}}
<div class="err"><strong>{{.Title}}:</strong> {{.Message}}</div>
<p><a href="/">Back</a></p>
{{template "foot"}}`))

type indexView struct {
	Usage template.HTML
}

type resultView struct {
	Doc         *pipeline.Document
	JSON        string
	Summary     map[string]int
	DownloadURL string
}

type errorView struct {
	Title   string
	Message string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, indexTemplate, indexView{Usage: s.usage})
}

func (s *Server) renderError(w http.ResponseWriter, status int, title string, err error) {
	s.render(w, status, errorTemplate, errorView{Title: title, Message: err.Error()})
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.log.Error("render template", "template", tmpl.Name(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
