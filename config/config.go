package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type BackendConfig struct {
	BaseURL  string `toml:"base_url"`
	UserID   string `toml:"user_id"`
	TaskID   string `toml:"task_id"`
	TaskType string `toml:"task_type"`
}

type AudioConfig struct {
	SourceRate int `toml:"source_rate"`
	TargetRate int `toml:"target_rate"`
}

type UserConfig struct {
	Backend  BackendConfig `toml:"backend"`
	Audio    AudioConfig   `toml:"audio"`
	Offline  bool          `toml:"offline"`
	TaskFile string        `toml:"task_file,omitempty"`
}

type Config struct {
	DataDirectory   string
	BackendURL      string
	UserID          string
	TaskID          string
	TaskType        string
	AudioSourceRate int
	AudioTargetRate int
	Offline         bool
	TaskFile        string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("QTUI_BACKEND_URL"); url != "" {
		c.BackendURL = url
	}
	if userID := os.Getenv("QTUI_USER_ID"); userID != "" {
		c.UserID = userID
	}
	if taskID := os.Getenv("QTUI_TASK_ID"); taskID != "" {
		c.TaskID = taskID
	}
	if dataDir := os.Getenv("QTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if offline := os.Getenv("QTUI_OFFLINE"); offline == "1" || offline == "true" {
		c.Offline = true
	}
	if taskFile := os.Getenv("QTUI_TASK_FILE"); taskFile != "" {
		c.TaskFile = taskFile
	}
}

func CheckDebug() bool {
	debug := os.Getenv("QTUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain answer content)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (QTUI_DEBUG=%s) ===", os.Getenv("QTUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// The env-var launch path needs all three identity values; a partial set is a
// misconfiguration the user should fix before launch.
func HasAllEnvVars() bool {
	return os.Getenv("QTUI_BACKEND_URL") != "" &&
		os.Getenv("QTUI_USER_ID") != "" &&
		os.Getenv("QTUI_TASK_ID") != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv("QTUI_BACKEND_URL") != "" ||
		os.Getenv("QTUI_USER_ID") != "" ||
		os.Getenv("QTUI_TASK_ID") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("QTUI_BACKEND_URL") == "" {
		return "QTUI_BACKEND_URL"
	}
	if os.Getenv("QTUI_USER_ID") == "" {
		return "QTUI_USER_ID"
	}
	if os.Getenv("QTUI_TASK_ID") == "" {
		return "QTUI_TASK_ID"
	}
	return ""
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   "~/.local/share/qtui",
		BackendURL:      "http://localhost:8000",
		TaskType:        "quiz",
		AudioSourceRate: 44100,
		AudioTargetRate: 16000,
	}

	settingsPath := GetSettingsFilePath()
	settingsExist := FileExists(settingsPath)

	if !settingsExist && HasAllEnvVars() {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		dataDir := cfg.DataDir()
		userCfg, err := LoadUserConfig(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.BackendURL = userCfg.Backend.BaseURL
		cfg.UserID = userCfg.Backend.UserID
		cfg.TaskID = userCfg.Backend.TaskID
		if userCfg.Backend.TaskType != "" {
			cfg.TaskType = userCfg.Backend.TaskType
		}
		if userCfg.Audio.SourceRate > 0 {
			cfg.AudioSourceRate = userCfg.Audio.SourceRate
		}
		if userCfg.Audio.TargetRate > 0 {
			cfg.AudioTargetRate = userCfg.Audio.TargetRate
		}
		cfg.Offline = userCfg.Offline
		cfg.TaskFile = userCfg.TaskFile

		// Env vars still win over file values when both are present
		cfg.applyEnvOverrides()
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
