// Package config loads runtime configuration for the moviekeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the document server (grpc mode)
//	-m string   remote mode: grpc, s3 or memory
//	-d string   local database path
//	-k string   key source: device or passphrase
//	-f string   key file path
//	-t string   access token for the document server
//	-i int      online status check interval (seconds)
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "1s" or
// integer nanoseconds:
//
//	remote_mode: s3
//	logout_debounce: 1s
//	s3:
//	  bucket: moviekeeper
//	  base_endpoint: http://127.0.0.1:9000
//	  use_path_style: true
package config
