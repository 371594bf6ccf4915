// internal/app/features/studentgroup/templates.go
package studentgroup

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "studentgroup",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
