package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ksyq12/vhostfrag/internal/errors"
)

func TestRunRender(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		args        []string
		wantErr     bool
		errContains string
		contains    []string
		excludes    []string
	}{
		{
			name: "all targets",
			doc:  healthyYAML,
			contains: []string{
				"==> 15-default-80.conf <==",
				"==> 25-example.com-443.conf <==",
				"ProxyPass / http://localhost:8080/",
				`Alias /static "/srv/static"`,
			},
		},
		{
			name:     "one target",
			doc:      healthyYAML,
			args:     []string{"15-default-80"},
			contains: []string{"<VirtualHost *:80>", "ProxyPass / http://localhost:8080/"},
			excludes: []string{"==>", "Alias /static"},
		},
		{
			name:        "unknown target",
			doc:         healthyYAML,
			args:        []string{"99-nowhere-80"},
			wantErr:     true,
			errContains: "target not found",
		},
		{
			name:        "invalid target",
			doc:         healthyYAML,
			args:        []string{"nowhere"},
			wantErr:     true,
			errContains: "{priority}-{vhost}-{port}",
		},
		{
			name:        "broken target still prints the healthy ones",
			doc:         brokenYAML,
			wantErr:     true,
			errContains: "1 target(s) failed to assemble",
			contains:    []string{"==> 15-default-80.conf <==", "==> 25-example.com-443.conf <=="},
			excludes:    []string{"25-broken-8080.conf"},
		},
		{
			name:     "failures of other targets are ignored",
			doc:      brokenYAML,
			args:     []string{"25-example.com-443"},
			contains: []string{"<VirtualHost *:443>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLI(t, tt.doc)

			var err error
			out := captureStdout(t, func() {
				err = runRender(nil, tt.args)
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestRunRenderJSON(t *testing.T) {
	setupCLI(t, brokenYAML)
	jsonOutput = true

	var err error
	out := captureStdout(t, func() {
		err = runRender(nil, nil)
	})
	if !errors.Is(err, errors.ErrMissingGroup) {
		t.Fatalf("expected MISSING_GROUP, got %v", err)
	}

	var rendered []RenderedTarget
	if jerr := json.Unmarshal([]byte(out), &rendered); jerr != nil {
		t.Fatalf("invalid JSON: %v\n%s", jerr, out)
	}
	if len(rendered) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(rendered))
	}

	first := rendered[0]
	if first.Target != "15-default-80" || first.File != "15-default-80.conf" {
		t.Errorf("first = %s/%s", first.Target, first.File)
	}
	var sources []string
	for _, f := range first.Fragments {
		sources = append(sources, f.Source)
	}
	want := "default-apache-header,default-myproxy-proxy,default-file_footer"
	if strings.Join(sources, ",") != want {
		t.Errorf("fragments = %v, want %s", sources, want)
	}
	if !strings.HasSuffix(first.Text, "</VirtualHost>\n") {
		t.Errorf("text = %q", first.Text)
	}
}
