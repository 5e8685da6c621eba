package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"github.com/ksyq12/vhostfrag/internal/errors"
)

// funcMap holds the helpers available to every directive template.
var funcMap = template.FuncMap{
	"onoff": OnOff,
}

// OnOff renders a boolean as an Apache toggle.
func OnOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

// Render executes the named template of a driver with data.
// The result always ends in exactly one newline.
func Render(driverName, name string, data interface{}) (string, error) {
	tmplPath := fmt.Sprintf("%s/%s.tmpl", driverName, name)

	// Get template filesystem for the driver
	tfs, err := getTemplateFS(driverName)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, "failed to load templates", err)
	}

	content, err := tfs.ReadFile(tmplPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, fmt.Sprintf("template not found: %s/%s", driverName, name), err)
	}

	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, "failed to render template", err)
	}

	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// Available returns the template names shipped for a driver, sorted.
func Available(driverName string) ([]string, error) {
	tfs, err := getTemplateFS(driverName)
	if err != nil {
		return nil, err
	}

	matches, err := fs.Glob(tfs, driverName+"/*.tmpl")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(m, driverName+"/"), ".tmpl"))
	}
	sort.Strings(names)
	return names, nil
}
