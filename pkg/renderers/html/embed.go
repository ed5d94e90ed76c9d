package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	reportTemplate    = "report"
	dashboardTemplate = "dashboard"
)

// TemplatesFS exposes the embedded template bundle. Templates live at the
// root of the returned FS.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
