package directive

import (
	"github.com/ksyq12/vhostfrag/internal/template"
)

// Frame holds the vhost-level values rendered around the declarations.
type Frame struct {
	VHost         string
	Addr          string
	Port          int
	ServerName    string
	ServerAdmin   string
	ServerAliases []string
	DocRoot       string
}

// Part is one rendered frame fragment.
type Part struct {
	Order int
	Label string
	Text  string
}

// HeaderLabel returns the source label of a vhost's header fragment.
func HeaderLabel(vhost string) string {
	return vhost + "-apache-header"
}

// Check rejects frame values that would not fit on one directive line.
func (f Frame) Check() error {
	fields := []struct {
		name   string
		values []string
	}{
		{"addr", []string{f.Addr}},
		{"servername", []string{f.ServerName}},
		{"serveradmin", []string{f.ServerAdmin}},
		{"serveraliases", f.ServerAliases},
		{"docroot", []string{f.DocRoot}},
	}
	for _, field := range fields {
		if err := checkLine(f.VHost, field.name, field.values...); err != nil {
			return err
		}
	}
	return nil
}

// Parts renders the header, the docroot when set, and the footer.
func (f Frame) Parts() ([]Part, error) {
	if err := f.Check(); err != nil {
		return nil, err
	}
	view := f
	if view.Addr == "" {
		view.Addr = "*"
	}
	if view.ServerName == "" {
		view.ServerName = f.VHost
	}

	header, err := template.Render(template.Apache, "header", view)
	if err != nil {
		return nil, err
	}
	parts := []Part{{Order: OrderHeader, Label: HeaderLabel(f.VHost), Text: header}}

	if f.DocRoot != "" {
		docroot, err := template.Render(template.Apache, "docroot", view)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Order: OrderDocRoot, Label: f.VHost + "-docroot", Text: docroot})
	}

	footer, err := template.Render(template.Apache, "footer", view)
	if err != nil {
		return nil, err
	}
	parts = append(parts, Part{Order: OrderFooter, Label: f.VHost + "-file_footer", Text: footer})

	return parts, nil
}
