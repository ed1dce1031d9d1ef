// Package config handles configuration loading for switchboard.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SWITCHBOARD_CONFIG environment variable
//  2. ~/.config/switchboard/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	ai:
//	  api_key: "${OPENAI_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	ai:
//	  echo_delay: "4s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  listen_addr: "0.0.0.0:8000"  # HTTP API and WebSocket endpoints
//
// Database:
//
//	database:
//	  path: "/var/lib/switchboard/switchboard.db"
//
// Assistant provider:
//
//	ai:
//	  api_key: "${OPENAI_API_KEY}"         # Both values required for AI replies
//	  assistant_id: "${OPENAI_ASSISTANT}"  # Otherwise the echo responder is used
//	  echo_delay: "4s"                     # Echo responder reply delay
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Server listen address presence
//   - Database path presence
//   - Duration format validity
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/switchboard/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
