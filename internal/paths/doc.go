// Package paths resolves the locations appcfg reads and writes.
//
// The configuration file lives next to the installed binary unless the
// CONFIG_FILE environment variable points elsewhere:
//
//	paths.InstallRoot() // $APPCFG_ROOT, dir of executable, or ~/.config/appcfg
//	paths.ConfigFile()  // $CONFIG_FILE or <InstallRoot>/config.toml
//	paths.ExampleFile() // <InstallRoot>/config.example.toml
//
// Environment variables are read with github.com/caarlos0/env on every call
// so tests can use t.Setenv. The XDG fallback wraps github.com/adrg/xdg.
package paths
