package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/qtui",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: BackendConfig{
			BaseURL:  "http://localhost:8000",
			TaskType: "quiz",
		},
		Audio: AudioConfig{
			SourceRate: 44100,
			TargetRate: 16000,
		},
		Offline: false,
	}
}

func GenerateSystemConfigTemplate() string {
	return `# QTUI System Configuration
# Location: ~/.config/qtui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where local history, drafts and user config are stored
data_directory = "~/.local/share/qtui"
`
}

func GenerateUserConfigTemplate() string {
	return `# QTUI User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Offline mode: no network calls, history and drafts stay local
offline = false

# Path to a local task JSON file (used in offline mode)
task_file = ""

[backend]
# Course platform API base URL
base_url = "http://localhost:8000"

# Learner and task identity
user_id = ""
task_id = ""

# Task type: "quiz" (practice, retries allowed) or "exam" (single final submission)
task_type = "quiz"

[audio]
# Sample rate of recorded PCM input files
source_rate = 44100

# Sample rate answers are resampled to before WAV encoding
target_rate = 16000
`
}
