// Package config loads the vhost declaration file: global settings plus every
// vhost and the proxy, alias and rewrite declarations it carries.
//
// The file lives at ~/.config/vhostfrag/config.yaml unless a path is given.
// Files ending in .toml are read and written as TOML, everything else as YAML.
//
// # Configuration Structure
//
// The main Config struct contains:
//   - Driver selection (apache)
//   - Group policy for declarations providing several groups (combine, exclusive)
//   - Output mode (file, fragments)
//   - Log level and the number of parallel assembly jobs
//   - Custom path overrides for sites-available and sites-enabled
//   - The systemd unit to reload
//   - The list of vhosts
//
// Example config.yaml:
//
//	driver: apache
//	group_policy: combine
//	mode: file
//	paths:
//	  available: /etc/apache2/sites-available
//	  enabled: /etc/apache2/sites-enabled
//	vhosts:
//	  - name: default
//	    port: 80
//	    priority: 15
//	    proxies:
//	      - name: myproxy
//	        proxy_pass:
//	          - path: /
//	            url: http://localhost:8080/
//
// # Parameter Groups
//
// Declaration groups (proxy_pass, aliases, rewrite_rules, ...) decode into
// pointer-to-slice fields. A group that is absent stays nil and is unset; a
// group written as [] is declared but empty. Neither counts as provided, so
// a declaration with only empty groups fails with MISSING_GROUP.
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	outputs, err := assemble.New(assemble.Options{Policy: policy}).Run(cfg.Assembly())
//
// # Thread Safety
//
// Config operations are NOT thread-safe. Callers must implement their own
// synchronization if accessing Config from multiple goroutines.
package config
