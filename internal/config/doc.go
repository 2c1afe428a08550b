// Package config loads autobuilder settings and persists login credentials.
//
// Settings are resolved by viper with the usual precedence: command-line
// flags, then AUTOBUILDER_* environment variables, then the config file,
// then built-in defaults. The API base URL therefore resolves as
//
//	--api-url  >  AUTOBUILDER_API_URL  >  api_url in config.yaml  >  default
//
// # File Locations
//
// Both files live in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/autobuilder or $HOME/.config/autobuilder
//   - macOS: $HOME/.config/autobuilder
//   - Windows: %LOCALAPPDATA%\autobuilder
//
// config.yaml holds settings and is never written by the tool.
// credentials.yaml holds the access token from login and is written
// atomically with 0600 permissions.
package config
