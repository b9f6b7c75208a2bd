// Package config loads the panelview TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/panelview/config.toml
//  3. If the file does not exist, fall back to Default()
//  4. Empty or missing fields keep their defaults
//
// The PANELVIEW_TOKEN environment variable always wins over the token key, so
// the token can stay out of the file.
//
// # TOML Format
//
//	api_url = "https://server.example.com:2083"
//	api_kind = "uapi"            # or "whm" (port 2087)
//	username = "alice"
//	token = "..."
//	insecure_skip_verify = false
//
//	log_level = "info"
//	log_file = "~/.local/share/panelview/panelview.log"
//
//	default_listing = "email"
//	page_size = 25               # -1 shows every row
//	poll_seconds = 30
//	filter_mode = "substring"    # substring | regex | jq
//	jq_filter = ""               # jq program, $filter holds the typed text
//
//	source_file = ""             # JSON/YAML rows instead of the panel API
//	hit_log = ""                 # Apache access log
//	hit_log_max_lines = 2000
//	listen = "127.0.0.1:8765"    # serve command
//
//	[[listing]]
//	name = "parked"
//	module = "Park"
//	function = "list_parked_domains"
//	identity = "domain"
//	columns = ["domain", "dir"]
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and invalid values. ErrInvalidAPIKind and
// ErrInvalidFilterMode can be matched with errors.Is.
package config
