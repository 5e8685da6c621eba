package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/executor"
	"github.com/ksyq12/vhostfrag/internal/fragment"
	"github.com/ksyq12/vhostfrag/internal/logger"
	"github.com/ksyq12/vhostfrag/internal/systemd"
)

// targetFile matches "{priority}-{vhost}-{port}.conf".
var targetFile = regexp.MustCompile(`^-?\d+-\S+-\d+\.conf$`)

// ApacheOptions configures an ApacheDriver. Zero values select Debian defaults.
type ApacheOptions struct {
	Paths    Paths
	Mode     string
	Ctl      string
	Unit     string
	Executor executor.CommandExecutor
	Reloader systemd.Reloader
}

// ApacheDriver implements the Driver interface for Apache2
type ApacheDriver struct {
	paths    Paths
	mode     string
	ctl      string
	unit     string
	exec     executor.CommandExecutor
	reloader systemd.Reloader
}

// NewApache creates a new Apache driver
func NewApache(opts ApacheOptions) *ApacheDriver {
	if opts.Paths.Available == "" {
		opts.Paths.Available = "/etc/apache2/sites-available"
	}
	if opts.Paths.Enabled == "" {
		opts.Paths.Enabled = "/etc/apache2/sites-enabled"
	}
	if opts.Mode == "" {
		opts.Mode = ModeFile
	}
	if opts.Ctl == "" {
		opts.Ctl = "apache2ctl"
	}
	if opts.Executor == nil {
		opts.Executor = executor.NewSystemExecutor()
	}
	return &ApacheDriver{
		paths:    opts.Paths,
		mode:     opts.Mode,
		ctl:      opts.Ctl,
		unit:     opts.Unit,
		exec:     opts.Executor,
		reloader: opts.Reloader,
	}
}

// NewApacheWithPaths creates a new Apache driver with custom paths
func NewApacheWithPaths(available, enabled string) *ApacheDriver {
	return NewApache(ApacheOptions{Paths: Paths{Available: available, Enabled: enabled}})
}

// NewApacheWithExecutor creates a new Apache driver with a custom executor
func NewApacheWithExecutor(available, enabled string, exec executor.CommandExecutor) *ApacheDriver {
	return NewApache(ApacheOptions{Paths: Paths{Available: available, Enabled: enabled}, Executor: exec})
}

// Name returns the driver name
func (a *ApacheDriver) Name() string {
	return "apache"
}

// Paths returns the config paths
func (a *ApacheDriver) Paths() Paths {
	return a.paths
}

// Mode returns the output mode
func (a *ApacheDriver) Mode() string {
	return a.mode
}

func (a *ApacheDriver) configPath(id string) string {
	return filepath.Join(a.paths.Available, id+".conf")
}

func (a *ApacheDriver) fragmentDir(id string) string {
	return filepath.Join(a.paths.Available, id+".conf.d")
}

func (a *ApacheDriver) enabledPath(id string) string {
	return filepath.Join(a.paths.Enabled, id+".conf")
}

func (a *ApacheDriver) sharedDir() bool {
	return filepath.Clean(a.paths.Available) == filepath.Clean(a.paths.Enabled)
}

// Write writes the assembled target file. In fragment mode the fragments are
// written first and stale fragment files are removed.
func (a *ApacheDriver) Write(out fragment.Output) error {
	id := out.Target.ID()

	// Create sites-available directory if it doesn't exist
	if err := os.MkdirAll(a.paths.Available, 0755); err != nil {
		return fmt.Errorf("failed to create sites-available directory: %w", err)
	}

	if a.mode == ModeFragments {
		if err := a.writeFragments(id, out.Fragments); err != nil {
			return err
		}
	}

	if err := os.WriteFile(a.configPath(id), []byte(out.Text), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logger.DebugFields("target written", logger.Fields{
		"target":    id,
		"mode":      a.mode,
		"fragments": len(out.Fragments),
	})
	return nil
}

func (a *ApacheDriver) writeFragments(id string, frags []fragment.Fragment) error {
	keep := make(map[string]bool, len(frags))
	for _, f := range frags {
		if f.Order < 0 {
			return errors.WrapTarget(errors.ErrCodeValidation, id,
				fmt.Errorf("fragment %s has negative order %d", f.Source, f.Order))
		}
		name := f.Name() + ".conf"
		if filepath.Base(name) != name {
			return errors.WrapTarget(errors.ErrCodeValidation, id,
				fmt.Errorf("fragment %s does not name a file in the fragment directory", f.Source))
		}
		keep[name] = true
	}

	dir := a.fragmentDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create fragment directory: %w", err)
	}

	for _, f := range frags {
		if err := os.WriteFile(filepath.Join(dir, f.Name()+".conf"), []byte(f.Text), 0644); err != nil {
			return fmt.Errorf("failed to write fragment: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read fragment directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || keep[entry.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove stale fragment: %w", err)
		}
		logger.Debug("removed stale fragment %s/%s", id, entry.Name())
	}
	return nil
}

// Read returns the current target file
func (a *ApacheDriver) Read(id string) (string, error) {
	data, err := os.ReadFile(a.configPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound(id)
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return string(data), nil
}

// Snapshot captures the target file and its fragment directory
func (a *ApacheDriver) Snapshot(id string) (*Snapshot, error) {
	s := &Snapshot{ID: id}

	data, err := os.ReadFile(a.configPath(id))
	switch {
	case err == nil:
		s.File = data
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	entries, err := os.ReadDir(a.fragmentDir(id))
	switch {
	case err == nil:
		s.Fragments = make(map[string][]byte, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(a.fragmentDir(id), entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read fragment: %w", err)
			}
			s.Fragments[entry.Name()] = data
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read fragment directory: %w", err)
	}

	return s, nil
}

// Restore puts the captured files back, deleting files that did not exist
func (a *ApacheDriver) Restore(s *Snapshot) error {
	if s.File == nil {
		if err := os.Remove(a.configPath(s.ID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove config file: %w", err)
		}
	} else if err := os.WriteFile(a.configPath(s.ID), s.File, 0644); err != nil {
		return fmt.Errorf("failed to restore config file: %w", err)
	}

	dir := a.fragmentDir(s.ID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear fragment directory: %w", err)
	}
	if s.Fragments == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create fragment directory: %w", err)
	}
	for name, data := range s.Fragments {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to restore fragment: %w", err)
		}
	}
	return nil
}

// Remove deletes a target's file and fragment directory
func (a *ApacheDriver) Remove(id string) error {
	// First disable the site
	if enabled, _ := a.IsEnabled(id); enabled && !a.sharedDir() {
		if err := a.Disable(id); err != nil {
			return err
		}
	}

	fileErr := os.Remove(a.configPath(id))
	if fileErr != nil && !os.IsNotExist(fileErr) {
		return fmt.Errorf("failed to remove config file: %w", fileErr)
	}

	_, dirErr := os.Stat(a.fragmentDir(id))
	if dirErr == nil {
		if err := os.RemoveAll(a.fragmentDir(id)); err != nil {
			return fmt.Errorf("failed to remove fragment directory: %w", err)
		}
	}

	if os.IsNotExist(fileErr) && os.IsNotExist(dirErr) {
		return errors.NotFound(id)
	}
	return nil
}

// Enable activates a target by creating a symlink
func (a *ApacheDriver) Enable(id string) error {
	source := a.configPath(id)

	// Check if source exists
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return fmt.Errorf("target %s not found in %s", id, a.paths.Available)
	}

	// Files in a shared directory are always active
	if a.sharedDir() {
		return nil
	}

	if err := os.MkdirAll(a.paths.Enabled, 0755); err != nil {
		return fmt.Errorf("failed to create sites-enabled directory: %w", err)
	}

	target := a.enabledPath(id)

	// Check if already enabled
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("target %s is already enabled", id)
	}

	// Create symlink
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("failed to enable target: %w", err)
	}

	return nil
}

// Disable deactivates a target by removing the symlink
func (a *ApacheDriver) Disable(id string) error {
	if a.sharedDir() {
		return fmt.Errorf("cannot disable %s: %s is both available and enabled directory", id, a.paths.Enabled)
	}

	target := a.enabledPath(id)

	// Check if symlink exists
	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return fmt.Errorf("target %s is not enabled", id)
	}
	if err != nil {
		return fmt.Errorf("failed to check target status: %w", err)
	}

	// Verify it's a symlink
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("target %s is not a symlink, refusing to remove", id)
	}

	// Remove symlink
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to disable target: %w", err)
	}

	return nil
}

// List returns all target identities from sites-available
func (a *ApacheDriver) List() ([]string, error) {
	entries, err := os.ReadDir(a.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read sites-available: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		// Only target files; other .conf files may share the directory
		if !entry.IsDir() && targetFile.MatchString(name) {
			ids = append(ids, strings.TrimSuffix(name, ".conf"))
		}
	}
	sort.Strings(ids)

	return ids, nil
}

// IsEnabled checks if a target is enabled
func (a *ApacheDriver) IsEnabled(id string) (bool, error) {
	path := a.enabledPath(id)
	if a.sharedDir() {
		path = a.configPath(id)
	}
	_, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check target status: %w", err)
	}
	return true, nil
}

// Test validates the apache config syntax
func (a *ApacheDriver) Test(ctx context.Context) error {
	if _, err := a.exec.LookPath(a.ctl); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", a.ctl, err)
	}
	output, err := a.exec.Execute(ctx, a.ctl, "configtest")
	if err != nil {
		return fmt.Errorf("apache config test failed: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// Reload reloads apache through systemd D-Bus, then systemctl, then a
// graceful restart
func (a *ApacheDriver) Reload(ctx context.Context) error {
	if a.unit != "" {
		if a.reloader != nil {
			err := a.reloader.Reload(ctx, a.unit)
			if err == nil {
				return nil
			}
			logger.Warn("D-Bus reload of %s failed, falling back to systemctl: %v", a.unit, err)
		}

		if _, err := a.exec.Execute(ctx, "systemctl", "reload", a.unit); err == nil {
			return nil
		}
	}

	// Try apache2ctl graceful as fallback
	output, err := a.exec.Execute(ctx, a.ctl, "graceful")
	if err != nil {
		return fmt.Errorf("failed to reload apache: %s", strings.TrimSpace(string(output)))
	}
	return nil
}
