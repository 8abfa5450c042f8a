package spool

import (
	"context"
	"strings"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/internal/config"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	"github.com/gaze-network/spool-explorer/modules/spool/datasources/btcnode"
	"github.com/gaze-network/spool-explorer/modules/spool/datasources/cache"
	"github.com/gaze-network/spool-explorer/modules/spool/datasources/esplora"
	"github.com/gaze-network/spool-explorer/modules/spool/datasources/retry"
	"github.com/gaze-network/spool-explorer/pkg/httpclient"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/samber/do/v2"
)

// New creates the explorer from the injected configuration.
func New(injector do.Injector) (*Explorer, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	if !conf.Network.IsSupported() {
		return nil, errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network)
	}

	var source datagateway.TransactionSource
	switch strings.ToLower(conf.Spool.Datasource) {
	case "esplora":
		esploraSource, err := esplora.New(conf.Esplora.URL, httpclient.Config{
			Debug:     conf.Esplora.Debug,
			Timeout:   conf.Esplora.Timeout,
			RateLimit: conf.Esplora.RateLimit,
		})
		if err != nil {
			return nil, errors.Wrap(err, "invalid Esplora configuration")
		}
		source = esploraSource
	case "bitcoin-node":
		client, err := do.Invoke[*rpcclient.Client](injector)
		if err != nil {
			return nil, errors.Wrap(err, "can't connect to Bitcoin node")
		}
		source = btcnode.New(client, conf.Network.ChainParams())
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q datasource is not supported", conf.Spool.Datasource)
	}

	source = retry.New(source, retry.Config{
		MaxRetries:      conf.Spool.Retry.MaxRetries,
		InitialInterval: conf.Spool.Retry.InitialInterval,
		MaxInterval:     conf.Spool.Retry.MaxInterval,
	})
	if conf.Spool.CacheSize > 0 {
		cached, err := cache.New(source, conf.Spool.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "invalid cache configuration")
		}
		source = cached
	}

	explorer := NewExplorer(source, spoolverb.NewCodec(spoolverb.DefaultVersion), conf.Network,
		WithMaxTransactions(conf.Spool.MaxTransactions),
		WithConcurrency(conf.Spool.Concurrency),
		WithFailOnTruncation(conf.Spool.FailOnTruncation),
	)

	logger.InfoContext(ctx, "Created SPOOL explorer",
		slogx.String("datasource", conf.Spool.Datasource),
		slogx.Stringer("network", conf.Network),
		slogx.Int("cache_size", conf.Spool.CacheSize),
	)
	return explorer, nil
}
