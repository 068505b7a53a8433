package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData is the template model. The worker receives it as a map through
// EmailJob.Data, so keys match the field names.
type EmailData struct {
	Name        string
	AppName     string
	AppURL      string
	ActorName   string
	PostExcerpt string
	CommentText string
	PostURL     string
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	return map[string]any{
		"Name":        d.Name,
		"AppName":     d.AppName,
		"AppURL":      d.AppURL,
		"ActorName":   d.ActorName,
		"PostExcerpt": d.PostExcerpt,
		"CommentText": d.CommentText,
		"PostURL":     d.PostURL,
	}
}

// Excerpt shortens s to at most n runes, appending an ellipsis when cut.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

func defaultFn(fallback, value any) any {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
	}
	return value
}

var funcs = map[string]any{"default": defaultFn}

// Render executes the "subject", "text" and "html" blocks of name.tmpl.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	file := name + ".tmpl"
	tt, err := texttpl.New(file).Funcs(texttpl.FuncMap(funcs)).ParseFS(FS, file)
	if err != nil {
		return "", "", "", fmt.Errorf("parse %s: %w", file, err)
	}
	ht, err := htmpl.New(file).Funcs(htmpl.FuncMap(funcs)).ParseFS(FS, file)
	if err != nil {
		return "", "", "", fmt.Errorf("parse %s: %w", file, err)
	}

	var sb, tb, hb bytes.Buffer
	if err := tt.ExecuteTemplate(&sb, "subject", data); err != nil {
		return "", "", "", err
	}
	if err := tt.ExecuteTemplate(&tb, "text", data); err != nil {
		return "", "", "", err
	}
	if err := ht.ExecuteTemplate(&hb, "html", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(tb.String()), hb.String(), nil
}
