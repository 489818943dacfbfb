package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before CLI flags override them.
type Defaults struct {
	Network NetworkDefaults
	Storage StorageDefaults
	Logging LoggingDefaults
}

// NetworkDefaults selects the network to bootstrap when no flag is given.
type NetworkDefaults struct {
	ChainName string // network preset name (main, test, dev, local)
}

// StorageDefaults configures database/cache behaviour.
type StorageDefaults struct {
	CacheMB int // megabytes reserved for leveldb caches
	Handles int // file handles available to the database
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    // 0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace
	Format    string // text or json
	Color     bool   // ANSI colors in text output
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Network: NetworkDefaults{
			ChainName: "local",
		},
		Storage: StorageDefaults{
			CacheMB: 256,
			Handles: 512,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
	}
}
