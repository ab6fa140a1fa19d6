package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	configFileName = "todolist.toml"
	configDirName  = "todolist"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{configFileName, "." + configFileName}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// $TODOLIST_CONFIG wins when set. Otherwise ~/.todolist/todolist.toml is
// checked first, then the OS-specific config directory.
func findUserConfigFile() string {
	if explicit := os.Getenv("TODOLIST_CONFIG"); explicit != "" {
		explicit = expandPath(explicit)
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, "."+configDirName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, configDirName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// UserConfigPath returns where a user config file is read from, whether or
// not it exists.
func UserConfigPath() string {
	if found := findUserConfigFile(); found != "" {
		return found
	}
	if explicit := os.Getenv("TODOLIST_CONFIG"); explicit != "" {
		return expandPath(explicit)
	}
	return expandPath(filepath.Join("~", "."+configDirName, configFileName))
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// GetConfigFile returns the highest precedence config file that was read,
// or an empty string when none was.
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws == nil || cws.Config == nil || len(cws.Config.Files) == 0 {
		return ""
	}
	return cws.Config.Files[len(cws.Config.Files)-1]
}
