// Package config defines the server's on-disk YAML configuration and its
// cobra/pflag command-line overlay, grouped in the numbered-section style
// hawkingrei-badger/options.go uses for its Options struct.
package config

import (
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds every server-tunable setting (spec §5, §6).
type Config struct {
	// 1. Network
	// ----------
	// Address the SQL listener binds to, "host:port".
	ListenAddr string `yaml:"listen_addr"`
	// Address the admin HTTP surface (health/metrics) binds to.
	AdminAddr string `yaml:"admin_addr"`

	// 2. Storage
	// ----------
	// Directory holding the quarry.db log file and its .lock and optional
	// .compact siblings.
	DataDir string `yaml:"data_dir"`
	// Advisory only: logged at startup, never compared against the log
	// size and never triggers a compaction. Compaction is always an
	// explicit operator action (POST /compact), never automatic.
	CompactThreshold datasize.ByteSize `yaml:"compact_threshold"`
	// Compress row values with snappy during compaction.
	CompressOnCompact bool `yaml:"compress_on_compact"`
	// Engine selects the backing storage: "disk" or "memory". Memory is
	// for tests and ephemeral instances; it discards all data on exit.
	Engine string `yaml:"engine"`
	// Number of decoded values held in the read-through LRU cache in
	// front of the log file's random-read path. Zero disables the cache.
	CacheSize int `yaml:"cache_size"`

	// 3. Logging
	// ----------
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the configuration used when no file or flags override
// it.
func Default() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8080",
		AdminAddr:         "127.0.0.1:8081",
		DataDir:           "/tmp/quarry",
		CompactThreshold:  64 * datasize.MB,
		CompressOnCompact: false,
		Engine:            "disk",
		CacheSize:         4096,
		LogLevel:          "info",
	}
}

// Load reads a YAML config file, if path is non-empty, layered onto the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BindFlags registers command-line overrides on fs, applied after Load so
// flags win over the config file.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "listen-addr", c.ListenAddr, "SQL listener address")
	fs.StringVar(&c.AdminAddr, "admin-addr", c.AdminAddr, "admin HTTP address")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "storage directory")
	fs.StringVar(&c.Engine, "engine", c.Engine, `backing storage: "disk" or "memory"`)
	fs.IntVar(&c.CacheSize, "cache-size", c.CacheSize, "number of values held in the read-through LRU cache")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "zap log level")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file path (empty logs to stderr)")
	fs.Var((*byteSizeFlag)(&c.CompactThreshold), "compact-threshold", "advisory compaction threshold, only logged at startup")
}

// byteSizeFlag adapts datasize.ByteSize to pflag.Value; ByteSize itself
// only implements encoding.TextUnmarshaler/fmt.Stringer.
type byteSizeFlag datasize.ByteSize

func (f *byteSizeFlag) String() string   { return datasize.ByteSize(*f).String() }
func (f *byteSizeFlag) Type() string     { return "byteSize" }
func (f *byteSizeFlag) Set(s string) error {
	return (*datasize.ByteSize)(f).UnmarshalText([]byte(s))
}
