package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/internal/config"
	"github.com/gaze-network/spool-explorer/modules/spool"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	"github.com/samber/do/v2"
)

// Modules are resolved lazily, only the ones a command invokes are created.
var Modules = do.Package(
	do.Lazy(spool.New),
)

func newInjector(ctx context.Context, conf config.Config) *do.RootScope {
	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)

	// Bitcoin RPC client, only used by the `bitcoin-node` datasource
	do.Provide(injector, func(i do.Injector) (*rpcclient.Client, error) {
		conf := do.MustInvoke[config.Config](i)

		client, err := rpcclient.New(&rpcclient.ConnConfig{
			Host:         conf.BitcoinNode.Host,
			User:         conf.BitcoinNode.User,
			Pass:         conf.BitcoinNode.Pass,
			DisableTLS:   conf.BitcoinNode.DisableTLS,
			HTTPPostMode: true,
		}, nil)
		if err != nil {
			return nil, errors.Wrap(err, "invalid Bitcoin node configuration")
		}

		start := time.Now()
		logger.InfoContext(ctx, "Connecting to Bitcoin node RPC Server...", slogx.String("host", conf.BitcoinNode.Host))
		if err := client.Ping(); err != nil {
			return nil, errors.Wrapf(err, "can't connect to Bitcoin node RPC Server %q", conf.BitcoinNode.Host)
		}
		logger.InfoContext(ctx, "Connected to Bitcoin node RPC Server", slog.Duration("latency", time.Since(start)))

		return client, nil
	})

	return injector
}
