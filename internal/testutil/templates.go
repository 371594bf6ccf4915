package testutil

import (
	"bytes"
	"html/template"
	"io/fs"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dalemusser/classhub/internal/app/resources"
)

// RenderPage parses the shared layout together with every fs in pages,
// executes the template called name with data and returns the parsed
// document. It fails the test on any parse or execution error.
func RenderPage(t *testing.T, name string, data any, pages ...fs.FS) *goquery.Document {
	t.Helper()

	tmpl, err := template.ParseFS(resources.FS, "templates/*.gohtml")
	if err != nil {
		t.Fatalf("parse shared templates: %v", err)
	}
	for _, p := range pages {
		if tmpl, err = tmpl.ParseFS(p, "templates/*.gohtml"); err != nil {
			t.Fatalf("parse page templates: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		t.Fatalf("execute %s: %v", name, err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}
