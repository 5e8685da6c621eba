package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// capture routes the logger into a buffer at level for the duration of the test.
func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(LevelWarn)
	})
	return &buf
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	for _, tt := range []struct {
		verbose bool
		want    Level
	}{
		{false, LevelWarn},
		{true, LevelDebug},
	} {
		Init(tt.verbose)
		if GetLevel() != tt.want {
			t.Errorf("Init(%v) level = %v, want %v", tt.verbose, GetLevel(), tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	names := map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		Level(99):  "UNKNOWN",
	}
	for level, want := range names {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", int(level), got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestThreshold(t *testing.T) {
	logAt := map[Level]func(string, ...interface{}){
		LevelDebug: Debug,
		LevelInfo:  Info,
		LevelWarn:  Warn,
		LevelError: Error,
	}

	for _, threshold := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		for level, logf := range logAt {
			buf := capture(t, threshold)
			logf("message")
			if shown := buf.Len() > 0; shown != (level >= threshold) {
				t.Errorf("%v at threshold %v: shown = %v", level, threshold, shown)
			}
		}
	}
}

func TestLineFormat(t *testing.T) {
	buf := capture(t, LevelDebug)

	Debug("assembled %d target(s) in %s", 2, "run-1")
	line := strings.TrimSpace(buf.String())

	if !strings.HasPrefix(line, "[DEBUG] ") {
		t.Errorf("missing level prefix: %q", line)
	}
	if !strings.HasSuffix(line, "assembled 2 target(s) in run-1") {
		t.Errorf("message must end the line: %q", line)
	}
}

func TestDebugFields(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{"no fields", nil, "target written"},
		{"one field", Fields{"target": "15-default-80"}, "target written target=15-default-80"},
		{"sorted keys", Fields{"source": "x", "order": 170, "target": "t"}, "target written order=170 source=x target=t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, LevelDebug)
			DebugFields("target written", tt.fields)
			if line := strings.TrimSpace(buf.String()); !strings.HasSuffix(line, tt.want) {
				t.Errorf("line = %q, want suffix %q", line, tt.want)
			}
		})
	}
}

func TestEntryBindsFields(t *testing.T) {
	buf := capture(t, LevelDebug)

	run := With(Fields{"run": "abc"})
	run.Debug("fragment registered", Fields{"order": 170})
	run.Info("assembly finished", nil)
	run.Warn("target failed", Fields{"run": "override"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	wants := []struct{ prefix, suffix string }{
		{"[DEBUG]", "fragment registered order=170 run=abc"},
		{"[INFO]", "assembly finished run=abc"},
		{"[WARN]", "target failed run=override"},
	}
	for i, w := range wants {
		if !strings.HasPrefix(lines[i], w.prefix) || !strings.HasSuffix(lines[i], w.suffix) {
			t.Errorf("line %d = %q, want %s ... %s", i, lines[i], w.prefix, w.suffix)
		}
	}
}

func TestEntryWithDoesNotMutateParent(t *testing.T) {
	parent := With(Fields{"run": "abc"})
	child := parent.With(Fields{"target": "15-default-80"})

	if _, ok := parent.Fields()["target"]; ok {
		t.Error("With must not add fields to the parent entry")
	}
	if got := child.Fields(); got["run"] != "abc" || got["target"] != "15-default-80" {
		t.Errorf("child fields = %v", got)
	}

	// The returned map is a copy.
	child.Fields()["run"] = "changed"
	if child.Fields()["run"] != "abc" {
		t.Error("Fields must return a copy")
	}
}

func TestConcurrentEntries(t *testing.T) {
	buf := capture(t, LevelDebug)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			e := With(Fields{"worker": n})
			e.Debug("fragment registered", nil)
			Info("worker %d done", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Fatalf("expected 100 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "[DEBUG]") && !strings.HasPrefix(line, "[INFO]") {
			t.Errorf("line %d interleaved: %q", i, line)
		}
	}
}

func TestNilOutputFallsBackToStderr(t *testing.T) {
	SetOutput(nil)
	SetLevel(LevelError)
	t.Cleanup(func() { SetLevel(LevelWarn) })

	Debug("filtered")
}
