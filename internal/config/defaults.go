package config

// Default values for converter configuration.
const (
	defaultLogDir   = "~/.local/share/avconverter/logs"
	defaultStateDir = "~/.local/share/avconverter/state"
	defaultAPIBind  = "127.0.0.1:7933"

	defaultEngine  = "native"
	defaultFormat  = "mp3"
	defaultWorkers = 1

	defaultCloudWaitStrategy   = "fixed_delay"
	defaultCloudWaitDelay      = 5
	defaultCloudPollInterval   = 3
	defaultCloudWaitBudget     = 300
	defaultCloudRequestTimeout = 60

	defaultHistoryPath  = "~/.local/share/avconverter/history.json"
	defaultHistoryLimit = 20

	defaultNotifyRequestTimeout = 10

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// defaultToolSearchPaths lists the well-known install directories checked
// before consulting PATH when resolving external binaries.
var defaultToolSearchPaths = []string{
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/opt/local/bin",
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: "",
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
			APIBind:   defaultAPIBind,
		},
		Conversion: Conversion{
			Engine:  defaultEngine,
			Format:  defaultFormat,
			Workers: defaultWorkers,
		},
		Tools: Tools{
			FFmpeg:      "ffmpeg",
			FFprobe:     "ffprobe",
			Afconvert:   "afconvert",
			SearchPaths: append([]string(nil), defaultToolSearchPaths...),
		},
		Cloud: Cloud{
			WaitStrategy:   defaultCloudWaitStrategy,
			WaitDelay:      defaultCloudWaitDelay,
			PollInterval:   defaultCloudPollInterval,
			WaitBudget:     defaultCloudWaitBudget,
			RequestTimeout: defaultCloudRequestTimeout,
		},
		History: History{
			Path:  defaultHistoryPath,
			Limit: defaultHistoryLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
