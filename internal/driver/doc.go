// Package driver writes assembled vhost targets into a web server's
// configuration directories and drives the server around them.
//
// Only Apache is supported. The driver follows the Debian
// sites-available/sites-enabled pattern: every target is written to
// {available}/{id}.conf and activated with a symlink in the enabled
// directory. On layouts where both are one directory (RHEL conf.d,
// Homebrew vhosts) every written file is active.
//
// # Output Modes
//
//   - file: one {id}.conf per target
//   - fragments: additionally keeps each fragment as
//     {id}.conf.d/{order:04d}_{label}.conf; stale fragment files are removed
//     and negative ordering keys are rejected
//
// # Basic Usage
//
//	drv := driver.NewApache(driver.ApacheOptions{
//	    Paths: driver.Paths{
//	        Available: "/etc/apache2/sites-available",
//	        Enabled:   "/etc/apache2/sites-enabled",
//	    },
//	    Mode:     driver.ModeFragments,
//	    Unit:     "apache2.service",
//	    Reloader: systemd.NewDBusReloader(),
//	})
//
//	snap, _ := drv.Snapshot(out.Target.ID())
//	if err := drv.Write(out); err != nil {
//	    return err
//	}
//	if err := drv.Test(ctx); err != nil {
//	    _ = drv.Restore(snap)
//	}
//
// # Reloading
//
// Reload asks systemd over D-Bus to reload the unit, falls back to
// "systemctl reload", and finally to "apache2ctl graceful".
//
// # Testing
//
// NewApacheWithExecutor accepts a mock executor.CommandExecutor for testing
// without actual system calls:
//
//	mockExec := &executor.MockExecutor{}
//	drv := driver.NewApacheWithExecutor(availablePath, enabledPath, mockExec)
//
// MockDriver keeps written targets in memory for CLI tests.
//
// # Error Handling
//
// All driver methods return descriptive errors that include context about
// the operation that failed. Errors are wrapped using fmt.Errorf with %w
// to maintain the error chain.
package driver
