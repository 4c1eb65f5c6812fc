package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/switchboard",
			LogDir:  "~/.local/share/switchboard/logs",
		},
		Workflow: Workflow{
			QueuePollInterval:   2,
			ErrorRetryInterval:  5,
			HeartbeatInterval:   10,
			HeartbeatTimeout:    60,
			MaxAttempts:         5,
			RetryBackoffSeconds: 5,
		},
		Redaction: Redaction{
			PHIIndustries: []string{
				"medical",
				"dental",
				"healthcare",
				"medspa",
				"therapy",
				"veterinary",
			},
		},
		Notifications: Notifications{
			NtfyTopic:      "",
			RequestTimeout: 10,
			Calls:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
