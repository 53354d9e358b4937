// Package config loads and saves the trafficled configuration file.
//
// The file is YAML by default. A path ending in .toml is read and written as
// TOML instead. Both encodings use the same field names.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/trafficled/config.yaml or $HOME/.config/trafficled/config.yaml
//   - macOS: $HOME/.config/trafficled/config.yaml
//   - Windows: %LOCALAPPDATA%\trafficled\config.yaml
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Data.Server = "http://traffic.local:8080"
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// Saves go through a temporary file and a rename so a crash never leaves a
// half-written config behind.
package config
