// Package config carica la configurazione dell'editor.
package config

// Config è la configurazione completa del backend
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Analysis AnalysisConfig `yaml:"analysis" toml:"analysis"`
	Watcher  WatcherConfig  `yaml:"watcher" toml:"watcher"`
	Runner   RunnerConfig   `yaml:"runner" toml:"runner"`
}

// ServerConfig configurazione del server HTTP
type ServerConfig struct {
	Port        int      `yaml:"port" toml:"port"`
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
	Debug       bool     `yaml:"debug" toml:"debug"`
}

// AnalysisConfig configurazione dell'analizzatore
type AnalysisConfig struct {
	Format         string `yaml:"format" toml:"format"`
	MaxDiagnostics int    `yaml:"max_diagnostics" toml:"max_diagnostics"`
	CacheEntries   int64  `yaml:"cache_entries" toml:"cache_entries"`
}

// WatcherConfig configurazione del file watcher
type WatcherConfig struct {
	Enabled    bool     `yaml:"enabled" toml:"enabled"`
	Paths      []string `yaml:"paths" toml:"paths"`
	DebounceMS int      `yaml:"debounce_ms" toml:"debounce_ms"`
}

// RunnerConfig configurazione del controllo batch
type RunnerConfig struct {
	OutputDir   string `yaml:"output_dir" toml:"output_dir"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
}

// Defaults restituisce la configurazione di partenza
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Analysis: AnalysisConfig{
			Format:         "branchscript",
			MaxDiagnostics: 200,
			CacheEntries:   256,
		},
		Watcher: WatcherConfig{
			DebounceMS: 500,
		},
		Runner: RunnerConfig{
			OutputDir:   "test_reports",
			Concurrency: 4,
		},
	}
}
