package config

// DefaultBlockTimeSeconds is the network's target block time, used
// whenever a config file carries none.
const DefaultBlockTimeSeconds = 120

// DefaultBuiltinNodes are the built-in remote node endpoints. They are
// immutable at runtime; users add at most one custom node alongside them.
//
//nolint:gochecknoglobals // Configuration default constants
var DefaultBuiltinNodes = []NodeConfig{
	{ID: "lantern-eu", Label: "Lantern EU", URI: "https://node-eu.lantern.cash:18081"},
	{ID: "lantern-us", Label: "Lantern US", URI: "https://node-us.lantern.cash:18081"},
	{ID: "lantern-ap", Label: "Lantern AP", URI: "https://node-ap.lantern.cash:18081"},
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    DefaultHome(),
		Network: "mainnet",
		Chain: ChainConfig{
			BlockTimeSeconds:   DefaultBlockTimeSeconds,
			ReferenceHeight:    3_000_000,
			ReferenceTimestamp: 1_700_000_000,
			LookbackDays:       7,
			ClampDays:          90,
		},
		Nodes: NodesConfig{
			Builtin:           DefaultBuiltinNodes,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Sync: SyncConfig{
			IntervalSeconds: 60,
		},
		Security: SecurityConfig{
			PinMinDigits:   4,
			PinMaxDigits:   32,
			UnlockAttempts: 5,
			MemoryLock:     true,
		},
		Relay: RelayConfig{
			IdentityFile: "~/.lantern/identity.json",
			ShareAddress: false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.lantern/lantern.log",
		},
	}
}
