package config

import "time"

type Config struct {
	Datasource       string      `mapstructure:"datasource"`         // Datasource to fetch transactions from e.g. `esplora` | `bitcoin-node`
	MaxTransactions  int         `mapstructure:"max_transactions"`   // Maximum number of transactions fetched per piece.
	Concurrency      int         `mapstructure:"concurrency"`        // Number of transactions fetched in parallel.
	FailOnTruncation bool        `mapstructure:"fail_on_truncation"` // Fail instead of warning when MaxTransactions is reached.
	CacheSize        int         `mapstructure:"cache_size"`         // Number of transactions kept in memory, 0 disables the cache.
	Retry            RetryConfig `mapstructure:"retry"`
	APIHandlers      []string    `mapstructure:"api_handlers"` // List of API handlers to enable. (e.g. `http`)
}

type RetryConfig struct {
	MaxRetries      uint64        `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}
