package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
)

// AppName is the directory name used under XDG locations.
const AppName = "appcfg"

// File names looked up in the install root.
const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "config.toml"

	// ExampleFileName is the bundled template copied when no config exists.
	ExampleFileName = "config.example.toml"
)

// Permissions for created configuration directories and files. They are
// intentionally permissive so that a config written by one user account can
// be edited by the service account running the application.
const (
	DirPerm  os.FileMode = 0o777
	FilePerm os.FileMode = 0o777
)

// environment holds the variables that override path resolution.
type environment struct {
	ConfigFile string `env:"CONFIG_FILE"`
	Root       string `env:"APPCFG_ROOT"`
}

func readEnv() environment {
	var e environment
	// Only plain string fields without "required"; Parse cannot fail here.
	_ = env.Parse(&e)
	return e
}

// executable is swapped in tests.
var executable = os.Executable

// InstallRoot returns the directory the application is installed in.
//
// Resolution order:
//  1. $APPCFG_ROOT
//  2. the directory holding the running executable (symlinks resolved)
//  3. <ConfigHome>/appcfg
func InstallRoot() string {
	if root := readEnv().Root; root != "" {
		return filepath.Clean(root)
	}

	if exe, err := executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}

	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the configuration file path: $CONFIG_FILE when set,
// otherwise <InstallRoot>/config.toml.
func ConfigFile() string {
	if p := readEnv().ConfigFile; p != "" {
		return p
	}
	return filepath.Join(InstallRoot(), ConfigFileName)
}

// ExampleFile returns the path of the bundled configuration template.
func ExampleFile() string {
	return filepath.Join(InstallRoot(), ExampleFileName)
}

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DirPerm is used. It returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DirPerm
	}
	return os.MkdirAll(path, perm)
}

// Exists reports whether path exists. Stat errors other than "not exist"
// are treated as existing so callers do not overwrite files they cannot see.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}
