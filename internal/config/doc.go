// Package config loads the shopfront client settings from a TOML file.
//
// Load reads ~/.config/shopfront/config.toml unless a path is given. A
// missing file is not an error; Default is used instead. Every key is
// optional, values are trimmed, and empty values fall back to the defaults:
//
//	api_url        = "http://127.0.0.1:7490"
//	base_path      = ""
//	storage_driver = "file"            # file, sqlite or memory
//	storage_path   = "~/.local/share/shopfront/storage.toml"
//	log_file       = "~/.local/share/shopfront/shopfront.log"
//	log_level      = "info"
//	page_limit     = 20                # clamped to 100
//	theme          = ""                # empty restores the last theme used
//	mock_bind      = "127.0.0.1:7490"
//	embedded_api   = true
//
// The storage path defaults to storage.db for the sqlite driver and is unused
// by the memory driver. Paths starting with ~ are expanded to the home
// directory and made absolute.
package config
