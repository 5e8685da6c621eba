package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunList(t *testing.T) {
	h := setupCLI(t, healthyYAML)
	h.MockDriver.Files["15-default-80"] = "old"
	h.MockDriver.Files["50-legacy-80"] = "manual"
	h.MockDriver.Enabled["15-default-80"] = true
	jsonOutput = true

	var err error
	out := captureStdout(t, func() {
		err = runList(nil, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var items []targetListItem
	if jerr := json.Unmarshal([]byte(out), &items); jerr != nil {
		t.Fatalf("invalid JSON: %v\n%s", jerr, out)
	}
	want := []targetListItem{
		{Target: "15-default-80", VHost: "default", Port: 80, Declarations: 1, Declared: true, Written: true, Enabled: true},
		{Target: "25-example.com-443", VHost: "example.com", Port: 443, Declarations: 1, Declared: true},
		{Target: "50-legacy-80", Written: true},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if h.MockDriver.ListCalls != 1 {
		t.Errorf("expected 1 List call, got %d", h.MockDriver.ListCalls)
	}
	if len(h.MockDriver.IsEnabledCalls) != 3 {
		t.Errorf("expected 3 IsEnabled calls, got %d", len(h.MockDriver.IsEnabledCalls))
	}
}

func TestRunListEmpty(t *testing.T) {
	setupCLI(t, "driver: apache\n")
	jsonOutput = true

	out := captureStdout(t, func() {
		if err := runList(nil, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if out != "[]\n" {
		t.Errorf("expected empty JSON list, got %q", out)
	}
}

func TestRunListDriverError(t *testing.T) {
	h := setupCLI(t, healthyYAML)
	h.MockDriver.ListFunc = func() ([]string, error) {
		return nil, fmt.Errorf("permission denied")
	}

	out := captureStdout(t, func() {
		if err := runList(nil, nil); err != nil {
			t.Errorf("driver errors should only warn, got %v", err)
		}
	})
	if out == "" {
		t.Error("expected a table of declared targets")
	}
}
