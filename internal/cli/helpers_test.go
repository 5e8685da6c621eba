package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ksyq12/vhostfrag/internal/config"
)

// healthyYAML declares two targets that assemble cleanly.
const healthyYAML = `driver: apache
vhosts:
  - name: default
    port: 80
    priority: 15
    proxies:
      - name: myproxy
        proxy_pass:
          - path: /
            url: http://localhost:8080/
  - name: example.com
    port: 443
    docroot: /var/www/example
    aliases:
      - name: static
        aliases:
          - alias: /static
            path: /srv/static
`

// brokenYAML adds a third target whose only group is empty.
const brokenYAML = healthyYAML + `  - name: broken
    port: 8080
    proxies:
      - name: api
        proxy_pass: []
`

func mustParse(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc), false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cfg
}

// setupCLI installs mock dependencies serving doc and returns the helper.
func setupCLI(t *testing.T, doc string) *TestHelper {
	t.Helper()
	tempDir := t.TempDir()
	h := NewTestHelper(t, filepath.Join(tempDir, "sites-available"), filepath.Join(tempDir, "sites-enabled"))
	h.MockConfig.Cfg = mustParse(t, doc)
	return h
}

// captureStdout returns what f printed through fmt to os.Stdout.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe failed: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	f()
	_ = w.Close()
	os.Stdout = old
	return <-done
}
