// Package config loads, repairs and saves the application's TOML
// configuration file.
//
// # Configuration File
//
// The file lives at $CONFIG_FILE or <install root>/config.toml. When it is
// missing, config.example.toml from the install root is copied into place.
// The document has six opaque tables and two scalars:
//
//	log_level = "INFO"
//	project_version = "1.2.6"
//
//	[app]
//	[whisper]
//	[proxy]
//	[azure]
//	[siliconflow]
//
//	[ui]
//	hide_log = false
//	language = "en-US"
//
// Missing keys are filled with the defaults shown above and never reported
// as errors. Loading never fails: unreadable or malformed files are logged
// and degrade to defaults, with details available from [Store.Warnings].
//
// # Process-wide Store
//
// Call [Init] once at startup (the startup package does this) and use
// [Current] afterwards:
//
//	store := config.Init(config.Options{})
//	doc := store.Document()
//	doc.UI["language"] = "de-DE"
//	if !store.SaveConfig() {
//	    // already logged
//	}
//
// Changes are written only when Save or SaveConfig is called. Writes go to a
// temp file in the config directory that is then renamed over the target.
//
// # Dotted Keys
//
// [Lookup] and [Set] address nested values with dotted keys
// ("whisper.model"). Lookups go through a viper instance and are
// case-insensitive.
package config
