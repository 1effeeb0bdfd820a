// Package config loads and merges gitguard configuration from multiple
// sources with viper.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GITGUARD_PROVIDER, GITGUARD_MAX_DIFF_BYTES,
//     GITGUARD_SECRETS_RULES_FILE, etc.)
//  3. Config file ($XDG_CONFIG_HOME/gitguard/config.json, or GITGUARD_CONFIG)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Init] to write a default config
// file, and [Set] to update a single key in the config file.
package config
