package fragment

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/logger"
	"github.com/ksyq12/vhostfrag/internal/target"
)

type slot struct {
	order  int
	source string
}

type bucket struct {
	target    target.Target
	fragments []Fragment
	slots     map[slot]bool
	err       error
}

// Registry is the run-scoped fragment aggregator.
type Registry struct {
	runID   string
	log     *logger.Entry
	next    int
	buckets map[string]*bucket
	flushed bool
}

// NewRegistry creates an empty registry with a fresh run ID.
func NewRegistry() *Registry {
	runID := uuid.NewString()
	return &Registry{
		runID:   runID,
		log:     logger.With(logger.Fields{"run": runID}),
		buckets: make(map[string]*bucket),
	}
}

// RunID returns the identifier of the run, used to correlate log lines.
func (r *Registry) RunID() string {
	return r.runID
}

// Logger returns a log entry bound to the run ID.
func (r *Registry) Logger() *logger.Entry {
	return r.log
}

// Intake registers rendered text under the next submission sequence number.
func (r *Registry) Intake(t target.Target, order int, source, text string) error {
	if r.flushed {
		return errors.ErrRegistryFlushed
	}
	f := Fragment{Target: t, Order: order, Seq: r.next, Source: source, Text: text}
	r.next++
	return r.Add(f)
}

// Add registers a fragment carrying its own sequence number.
// A duplicate (Order, Source) pair fails the fragment's target with
// DUPLICATE_FRAGMENT; fragments for an already failed target are dropped.
func (r *Registry) Add(f Fragment) error {
	if r.flushed {
		return errors.ErrRegistryFlushed
	}
	if f.Seq >= r.next {
		r.next = f.Seq + 1
	}

	b := r.bucket(f.Target)
	if b.err != nil {
		r.log.Debug("fragment dropped for failed target", logger.Fields{
			"target": f.Target.ID(),
			"source": f.Source,
		})
		return nil
	}

	key := slot{order: f.Order, source: f.Source}
	if b.slots[key] {
		err := errors.DuplicateFragment(f.Target.ID(), f.Order, f.Source)
		b.err = err
		return err
	}

	f.Text = normalize(f.Text)
	b.slots[key] = true
	b.fragments = append(b.fragments, f)

	r.log.Debug("fragment registered", logger.Fields{
		"target": f.Target.ID(),
		"order":  f.Order,
		"seq":    f.Seq,
		"source": f.Source,
	})
	return nil
}

// Fail marks a target failed. No output is produced for it; the first
// failure is kept.
func (r *Registry) Fail(t target.Target, err error) {
	if r.flushed {
		return
	}
	b := r.bucket(t)
	if b.err == nil {
		b.err = err
	}
}

// Failed reports whether the target has failed.
func (r *Registry) Failed(t target.Target) bool {
	b, ok := r.buckets[t.ID()]
	return ok && b.err != nil
}

// Targets returns every target seen so far, in target order.
func (r *Registry) Targets() []target.Target {
	targets := make([]target.Target, 0, len(r.buckets))
	for _, b := range r.buckets {
		targets = append(targets, b.target)
	}
	target.Sort(targets)
	return targets
}

// Flush assembles one Output per healthy target, sorted by target order.
// The returned error joins the failures of the other targets. A registry can
// be flushed once.
func (r *Registry) Flush() ([]Output, error) {
	if r.flushed {
		return nil, errors.ErrRegistryFlushed
	}
	r.flushed = true

	var (
		outputs []Output
		errs    []error
	)
	for _, t := range r.Targets() {
		b := r.buckets[t.ID()]
		if b.err != nil {
			errs = append(errs, b.err)
			continue
		}
		if len(b.fragments) == 0 {
			continue
		}

		frags := append([]Fragment(nil), b.fragments...)
		sort.SliceStable(frags, func(i, j int) bool {
			return less(frags[i], frags[j])
		})
		outputs = append(outputs, Output{Target: t, Fragments: frags, Text: concat(frags)})
	}

	r.log.Debug("registry flushed", logger.Fields{
		"outputs": len(outputs),
		"failed":  len(errs),
	})

	r.buckets = nil
	return outputs, errors.Join(errs...)
}

func (r *Registry) bucket(t target.Target) *bucket {
	b, ok := r.buckets[t.ID()]
	if !ok {
		b = &bucket{target: t, slots: make(map[slot]bool)}
		r.buckets[t.ID()] = b
	}
	return b
}
