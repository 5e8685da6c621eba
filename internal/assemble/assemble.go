// Package assemble runs declarations through the full pipeline: target
// resolution, group and entry checks, rendering, fragment intake and flush.
//
// Run feeds every vhost into one registry. RunParallel gives each vhost its
// own registry and runs them concurrently; both return the same outputs for
// the same input.
//
// Failures are isolated per target. An invalid vhost or a failing declaration
// drops that target's output, the other targets are still returned, and the
// returned error joins every failure.
package assemble

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/directive"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/fragment"
	"github.com/ksyq12/vhostfrag/internal/logger"
	"github.com/ksyq12/vhostfrag/internal/target"
)

// VHost is one vhost and its declarations.
type VHost struct {
	Name         string
	Port         int
	Priority     int
	Frame        directive.Frame
	Declarations []directive.Declaration
}

// Options configures an Assembler.
type Options struct {
	// Policy decides how several provided groups in a declaration are treated.
	Policy constraint.Policy

	// Jobs bounds the number of concurrent runs in RunParallel.
	// Zero uses the number of CPUs.
	Jobs int
}

// Assembler turns vhosts into assembled target files.
type Assembler struct {
	opts Options
}

// New creates an Assembler.
func New(opts Options) *Assembler {
	if opts.Policy == "" {
		opts.Policy = constraint.PolicyCombine
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Assembler{opts: opts}
}

// Run assembles all vhosts in one registry.
func (a *Assembler) Run(vhosts []VHost) ([]fragment.Output, error) {
	reg := fragment.NewRegistry()
	reg.Logger().Debug("assembly started", logger.Fields{
		"vhosts": len(vhosts),
		"policy": a.opts.Policy,
	})

	var errs []error
	for _, v := range vhosts {
		if err := a.feed(reg, v); err != nil {
			errs = append(errs, err)
		}
	}

	outputs, err := reg.Flush()
	if err != nil {
		errs = append(errs, err)
	}
	return outputs, errors.Join(errs...)
}

// RunParallel assembles each vhost in its own registry, at most Jobs at a
// time. Vhosts resolving to the same target fail with DUPLICATE_FRAGMENT.
func (a *Assembler) RunParallel(ctx context.Context, vhosts []VHost) ([]fragment.Output, error) {
	type result struct {
		outputs []fragment.Output
		err     error
	}

	var errs []error

	// Isolated registries never see each other, so same-target vhosts are
	// caught here.
	owners := make(map[string][]int)
	for i, v := range vhosts {
		if t, err := target.Resolve(v.Name, v.Port, v.Priority); err == nil {
			owners[t.ID()] = append(owners[t.ID()], i)
		}
	}
	skip := make(map[int]bool)
	ids := make([]string, 0, len(owners))
	for id := range owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		idx := owners[id]
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			skip[i] = true
		}
		name := vhosts[idx[0]].Name
		errs = append(errs, errors.DuplicateFragment(id, directive.OrderHeader, directive.HeaderLabel(name)))
	}

	results := make([]result, len(vhosts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Jobs)
	for i, v := range vhosts {
		if skip[i] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs, err := a.Run([]VHost{v})
			results[i] = result{outputs: outputs, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var outputs []fragment.Output
	for _, r := range results {
		outputs = append(outputs, r.outputs...)
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	sort.SliceStable(outputs, func(i, j int) bool {
		return outputs[i].Target.Less(outputs[j].Target)
	})
	return outputs, errors.Join(errs...)
}

// feed intakes the fragments of one vhost. Only errors raised before the
// target exists are returned; later failures are recorded in the registry.
func (a *Assembler) feed(reg *fragment.Registry, v VHost) error {
	t, err := target.Resolve(v.Name, v.Port, v.Priority)
	if err != nil {
		reg.Logger().Debug("vhost skipped", logger.Fields{
			"vhost": v.Name,
			"error": err,
		})
		return err
	}

	frame := v.Frame
	frame.VHost = v.Name
	frame.Port = v.Port
	parts, err := frame.Parts()
	if err != nil {
		a.fail(reg, t, err)
		return nil
	}

	// Header and docroot first, the footer after every declaration.
	last := len(parts) - 1
	for _, p := range parts[:last] {
		if err := reg.Intake(t, p.Order, p.Label, p.Text); err != nil {
			return nil
		}
	}

	for _, d := range v.Declarations {
		text, err := Render(d, a.opts.Policy)
		if err != nil {
			a.fail(reg, t, err)
			return nil
		}
		if err := reg.Intake(t, d.Order(), directive.Label(v.Name, d), text); err != nil {
			return nil
		}
	}

	footer := parts[last]
	_ = reg.Intake(t, footer.Order, footer.Label, footer.Text)
	return nil
}

func (a *Assembler) fail(reg *fragment.Registry, t target.Target, err error) {
	reg.Logger().Debug("target failed", logger.Fields{
		"target": t.ID(),
		"error":  err,
	})
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	reg.Fail(t, errors.WrapTarget(code, t.ID(), err))
}

// Render checks a declaration's groups under policy, then its entries, and
// returns the rendered text.
func Render(d directive.Declaration, policy constraint.Policy) (string, error) {
	if err := constraint.Check(d.Name(), d.Groups(), policy); err != nil {
		return "", err
	}
	if err := d.Check(); err != nil {
		return "", err
	}
	return d.Render()
}
