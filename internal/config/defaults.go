package config

const (
	defaultDataDir          = "~/.local/share/hopper"
	defaultLogDirName       = "logs"
	defaultSocketName       = "hopper.sock"
	defaultReadLocalLogs    = true
	defaultLogLines         = 15
	defaultPollIntervalMS   = 250
	defaultStatusCheckTicks = 2
	defaultStartWaitMS      = 1000
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultRetentionDays    = 14
)

// Default returns a Config populated with repository defaults. Paths derived
// from the data directory are filled in during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Client: Client{
			ReadLocalLogs:   defaultReadLocalLogs,
			DefaultLogLines: defaultLogLines,
		},
		Follow: Follow{
			PollIntervalMS:   defaultPollIntervalMS,
			StatusCheckTicks: defaultStatusCheckTicks,
			StartWaitMS:      defaultStartWaitMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
