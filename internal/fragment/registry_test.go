package fragment

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/target"
)

var (
	defaultTarget = target.Target{VHost: "default", Port: 80, Priority: 15}
	siteTarget    = target.Target{VHost: "example.com", Port: 443, Priority: 25}
)

func TestIntakeAndFlush(t *testing.T) {
	reg := NewRegistry()

	mustIntake(t, reg, defaultTarget, 999, "default-file_footer", "</VirtualHost>")
	mustIntake(t, reg, defaultTarget, 170, "default-myproxy-proxy", "  ## Proxy rules\n")
	mustIntake(t, reg, defaultTarget, 0, "default-apache-header", "<VirtualHost *:80>\n\n\n")

	outputs, err := reg.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}

	want := "<VirtualHost *:80>\n" +
		"\n" +
		"  ## Proxy rules\n" +
		"\n" +
		"</VirtualHost>\n"
	if diff := cmp.Diff(want, outputs[0].Text); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if outputs[0].Target.ID() != "15-default-80" {
		t.Errorf("target = %s", outputs[0].Target.ID())
	}
}

func TestIntakeTieBreakBySubmission(t *testing.T) {
	reg := NewRegistry()
	mustIntake(t, reg, defaultTarget, 100, "b", "second-label-first")
	mustIntake(t, reg, defaultTarget, 100, "a", "first-label-second")

	outputs, err := reg.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if outputs[0].Text != "second-label-first\n\nfirst-label-second\n" {
		t.Errorf("equal keys must keep submission order, got %q", outputs[0].Text)
	}
}

func TestDuplicateFragment(t *testing.T) {
	reg := NewRegistry()
	mustIntake(t, reg, defaultTarget, 170, "x", "one")

	err := reg.Intake(defaultTarget, 170, "x", "two")
	if !errors.Is(err, errors.ErrDuplicateFragment) {
		t.Fatalf("expected DUPLICATE_FRAGMENT, got %v", err)
	}

	if !reg.Failed(defaultTarget) {
		t.Error("duplicate must fail its target")
	}
	if reg.Failed(siteTarget) {
		t.Error("other target must not be failed")
	}
}

func TestDuplicateFailsOnlyItsTarget(t *testing.T) {
	reg := NewRegistry()
	mustIntake(t, reg, defaultTarget, 170, "x", "one")
	mustIntake(t, reg, siteTarget, 170, "x", "site")
	_ = reg.Intake(defaultTarget, 170, "x", "two")

	// Later fragments for the failed target are dropped silently.
	if err := reg.Intake(defaultTarget, 999, "footer", "</VirtualHost>"); err != nil {
		t.Errorf("intake for failed target returned %v", err)
	}

	outputs, err := reg.Flush()
	if !errors.Is(err, errors.ErrDuplicateFragment) {
		t.Fatalf("expected DUPLICATE_FRAGMENT from Flush, got %v", err)
	}
	if len(outputs) != 1 || outputs[0].Target.ID() != siteTarget.ID() {
		t.Fatalf("expected only %s, got %+v", siteTarget.ID(), outputs)
	}
	if outputs[0].Text != "site\n" {
		t.Errorf("site output = %q", outputs[0].Text)
	}
}

func TestSameLabelDifferentOrder(t *testing.T) {
	reg := NewRegistry()
	mustIntake(t, reg, defaultTarget, 170, "x", "one")
	mustIntake(t, reg, defaultTarget, 171, "x", "two")

	if _, err := reg.Flush(); err != nil {
		t.Errorf("distinct slots should not conflict: %v", err)
	}
}

func TestFail(t *testing.T) {
	reg := NewRegistry()
	mustIntake(t, reg, defaultTarget, 0, "header", "h")
	reg.Fail(defaultTarget, errors.MissingGroup("myproxy", []string{"proxy_pass"}))
	reg.Fail(defaultTarget, errors.Validation("second failure is ignored"))

	outputs, err := reg.Flush()
	if len(outputs) != 0 {
		t.Errorf("failed target produced output: %+v", outputs)
	}
	if !errors.Is(err, errors.ErrMissingGroup) {
		t.Errorf("expected first failure, got %v", err)
	}
}

func TestFlushOnce(t *testing.T) {
	reg := NewRegistry()
	mustIntake(t, reg, defaultTarget, 0, "header", "h")
	if _, err := reg.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if _, err := reg.Flush(); !errors.Is(err, errors.ErrRegistryFlushed) {
		t.Errorf("second Flush: expected INTERNAL, got %v", err)
	}
	if err := reg.Intake(defaultTarget, 1, "late", "x"); !errors.Is(err, errors.ErrRegistryFlushed) {
		t.Errorf("Intake after Flush: expected INTERNAL, got %v", err)
	}
	reg.Fail(defaultTarget, errors.Validation("no panic after flush"))
}

func TestFlushInvariantUnderCrossTargetReordering(t *testing.T) {
	type call struct {
		tgt    target.Target
		order  int
		source string
		text   string
	}
	defaultCalls := []call{
		{defaultTarget, 0, "default-apache-header", "<VirtualHost *:80>"},
		{defaultTarget, 170, "default-myproxy-proxy", "proxy"},
		{defaultTarget, 999, "default-file_footer", "</VirtualHost>"},
	}
	siteCalls := []call{
		{siteTarget, 0, "site-apache-header", "<VirtualHost *:443>"},
		{siteTarget, 20, "site-static-alias", "alias"},
		{siteTarget, 999, "site-file_footer", "</VirtualHost>"},
	}

	run := func(interleave []int) map[string]Output {
		reg := NewRegistry()
		di, si := 0, 0
		for _, pick := range interleave {
			var c call
			if pick == 0 {
				c = defaultCalls[di]
				di++
			} else {
				c = siteCalls[si]
				si++
			}
			mustIntake(t, reg, c.tgt, c.order, c.source, c.text)
		}
		outputs, err := reg.Flush()
		if err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		return ByID(outputs)
	}

	first := run([]int{0, 0, 0, 1, 1, 1})
	for _, interleave := range [][]int{
		{1, 1, 1, 0, 0, 0},
		{0, 1, 0, 1, 0, 1},
		{1, 0, 0, 1, 1, 0},
	} {
		got := run(interleave)
		for id, out := range first {
			if got[id].Text != out.Text {
				t.Errorf("interleave %v changed %s:\n%s\nvs\n%s", interleave, id, got[id].Text, out.Text)
			}
		}
	}
}

func TestFlushInvariantUnderPermutationWithCarriedSeq(t *testing.T) {
	frags := []Fragment{
		{Target: defaultTarget, Order: 0, Seq: 0, Source: "header", Text: "header"},
		{Target: defaultTarget, Order: 170, Seq: 1, Source: "proxy-a", Text: "proxy a"},
		{Target: defaultTarget, Order: 170, Seq: 2, Source: "proxy-b", Text: "proxy b"},
		{Target: defaultTarget, Order: 20, Seq: 3, Source: "alias", Text: "alias"},
		{Target: defaultTarget, Order: 999, Seq: 4, Source: "footer", Text: "footer"},
	}

	flush := func(in []Fragment) string {
		reg := NewRegistry()
		for _, f := range in {
			if err := reg.Add(f); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}
		outputs, err := reg.Flush()
		if err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		return outputs[0].Text
	}

	want := "header\n\nalias\n\nproxy a\n\nproxy b\n\nfooter\n"
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		perm := append([]Fragment(nil), frags...)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		if got := flush(perm); got != want {
			t.Fatalf("permutation %d produced:\n%s", i, got)
		}
	}
}

func TestAddAdvancesSequence(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add(Fragment{Target: defaultTarget, Order: 5, Seq: 10, Source: "replayed", Text: "r"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	mustIntake(t, reg, defaultTarget, 5, "fresh", "f")

	outputs, _ := reg.Flush()
	if outputs[0].Fragments[1].Seq != 11 {
		t.Errorf("Intake after Add should continue at 11, got %d", outputs[0].Fragments[1].Seq)
	}
}

func TestFragmentName(t *testing.T) {
	f := Fragment{Order: 170, Source: "default-myproxy-proxy"}
	if f.Name() != "0170_default-myproxy-proxy" {
		t.Errorf("Name() = %q", f.Name())
	}
}

func TestRunIDIsolation(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("registries must carry distinct run IDs: %q %q", a.RunID(), b.RunID())
	}
}

func TestLoggerCarriesRunID(t *testing.T) {
	reg := NewRegistry()
	if got := reg.Logger().Fields()["run"]; got != reg.RunID() {
		t.Errorf("logger run field = %v, want %s", got, reg.RunID())
	}
}

func mustIntake(t *testing.T, reg *Registry, tgt target.Target, order int, source, text string) {
	t.Helper()
	if err := reg.Intake(tgt, order, source, text); err != nil {
		t.Fatalf("Intake(%s, %d, %s) failed: %v", tgt.ID(), order, source, err)
	}
}
