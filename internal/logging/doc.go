// Package logging provides the console logger for appcfg, built on
// [log/slog].
//
// # Console Format
//
// [Handler] writes one line per record:
//
//	2026-10-19 14:03:11 | INFO | "./internal/config/load.go:97": config.LoadOrCreate - creating config from example file path=/opt/app/config.toml
//
// The source path is relative to the module source root. Time, level,
// function and message are colorized on terminals; NO_COLOR disables color
// and CLICOLOR_FORCE enables it. Attribute values whose key looks secret
// (api_key, token, ...) are masked.
//
// # Bootstrap
//
// [EnsureInitialized] installs the console sink as the slog default exactly
// once per process:
//
//	logger, err := logging.EnsureInitialized(doc.LogLevel)
//	if err != nil {
//		return err
//	}
//
// Level names follow the log_level setting: TRACE, DEBUG, INFO, SUCCESS,
// WARNING, ERROR, CRITICAL.
//
// # Testing
//
// Use [ForTest] to route log output through the testing framework:
//
//	logger := logging.ForTest(t)
package logging
