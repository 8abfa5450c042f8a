package retry

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
)

const (
	DefaultMaxRetries      = 5
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var _ datagateway.TransactionSource = (*Source)(nil)

// Source retries the calls of another source that fail with errs.Transport.
// Any other error is returned as is.
type Source struct {
	source datagateway.TransactionSource
	config Config
}

func New(source datagateway.TransactionSource, config Config) *Source {
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = DefaultInitialInterval
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = DefaultMaxInterval
	}
	return &Source{
		source: source,
		config: config,
	}
}

func (s *Source) GetByReference(ctx context.Context, reference string, maxResults int) ([]chainhash.Hash, error) {
	return withRetry(ctx, s.config, "GetByReference", func() ([]chainhash.Hash, error) {
		return s.source.GetByReference(ctx, reference, maxResults)
	})
}

func (s *Source) GetByID(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	return withRetry(ctx, s.config, "GetByID", func() (*types.Transaction, error) {
		return s.source.GetByID(ctx, txHash)
	})
}

func withRetry[T any](ctx context.Context, config Config, method string, f func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(config.InitialInterval),
		backoff.WithMaxInterval(config.MaxInterval),
		backoff.WithMaxElapsedTime(0),
	)

	operation := func() (T, error) {
		result, err := f()
		if err != nil && !errors.Is(err, errs.Transport) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	var attempt int
	notify := func(err error, next time.Duration) {
		attempt++
		logger.WarnContext(ctx, "Transaction source failed, retrying",
			slogx.String("method", method),
			slogx.Int("attempt", attempt),
			slogx.Duration("next_retry_in", next),
			slogx.Error(err),
		)
	}

	result, err := backoff.RetryNotifyWithData(operation, backoff.WithContext(backoff.WithMaxRetries(b, config.MaxRetries), ctx), notify)
	if err != nil {
		if attempt == 0 {
			return result, errors.WithStack(err)
		}
		return result, errors.Wrapf(err, "%s failed after %d retries", method, attempt)
	}
	return result, nil
}
