// Package configs embeds the configuration template written by
// "envcheck config init" to ~/.config/envcheck/config.yaml.
//
// Configuration hierarchy (see internal/config Load):
//  1. Defaults (internal/config NewConfig)
//  2. User config (~/.config/envcheck/config.yaml)
//  3. Project config (.envcheck.yaml)
//  4. ENVCHECK_* environment variables
package configs

import _ "embed"

// UserConfigTemplate is the commented user config template.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
