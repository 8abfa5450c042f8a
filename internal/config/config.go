package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common"
	spoolconfig "github.com/gaze-network/spool-explorer/modules/spool/config"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	"github.com/gaze-network/spool-explorer/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	isInit bool
	mu     sync.Mutex
	config = defaultConfig()
)

type Config struct {
	Logger      logger.Config      `mapstructure:"logger"`
	Network     common.Network     `mapstructure:"network"`
	HTTPServer  HTTPServerConfig   `mapstructure:"http_server"`
	BitcoinNode BitcoinNodeClient  `mapstructure:"bitcoin_node"`
	Esplora     EsploraConfig      `mapstructure:"esplora"`
	Spool       spoolconfig.Config `mapstructure:"spool"`
}

type BitcoinNodeClient struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

type EsploraConfig struct {
	URL       string        `mapstructure:"url"`        // Base URL of the Esplora API e.g. `https://blockstream.info/api`
	RateLimit float64       `mapstructure:"rate_limit"` // Requests per second, 0 disables the limit.
	Timeout   time.Duration `mapstructure:"timeout"`
	Debug     bool          `mapstructure:"debug"`
}

type HTTPServerConfig struct {
	Port   int                  `mapstructure:"port"`
	Logger requestlogger.Config `mapstructure:"logger"`
}

func defaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
		BitcoinNode: BitcoinNodeClient{
			User: "user",
			Pass: "pass",
		},
		Esplora: EsploraConfig{
			URL:     "https://blockstream.info/api",
			Timeout: 30 * time.Second,
		},
		Spool: spoolconfig.Config{
			Datasource:      "esplora",
			MaxTransactions: 10000,
			Concurrency:     8,
			CacheSize:       4096,
		},
	}
}

// Parse reads the configuration from the given file (or `./config.yaml` if empty) and
// the environment. Environment keys use `_` in place of `.`, e.g. `SPOOL_DATASOURCE`.
func Parse(configFile string) Config {
	mu.Lock()
	defer mu.Unlock()
	return parse(configFile)
}

func parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath("./")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var errNotfound viper.ConfigFileNotFoundError
		if errors.As(err, &errNotfound) {
			logger.WarnContext(ctx, "Config file not found, use default config value", slogx.Error(err))
		} else {
			logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		logger.PanicContext(ctx, "Something went wrong, failed to unmarshal config", slogx.Error(err))
	}

	isInit = true
	return *config
}

// Load returns the configuration, parsing the default sources on first use.
func Load() Config {
	mu.Lock()
	defer mu.Unlock()
	if !isInit {
		return parse("")
	}
	return *config
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slogx.Error(err))
	}
}
