package template

import (
	"embed"
	"fmt"
)

// Apache is the driver name of the Apache directive templates.
const Apache = "apache"

//go:embed apache/*.tmpl
var apacheTemplates embed.FS

// getTemplateFS returns the embed.FS for the given driver
func getTemplateFS(driverName string) (embed.FS, error) {
	switch driverName {
	case Apache:
		return apacheTemplates, nil
	default:
		return embed.FS{}, fmt.Errorf("unknown driver: %s", driverName)
	}
}
