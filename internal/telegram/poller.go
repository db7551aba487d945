package telegram

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	defaultPollTimeout = 30 * time.Second
	minBackoff         = time.Second
	maxBackoff         = 30 * time.Second
)

// UpdateSource is the part of Client the poller needs.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	Source      UpdateSource
	Handler     Handler
	PollTimeout time.Duration
	Logger      *logrus.Logger
}

// Poller long-polls getUpdates and routes every update to the handler.
type Poller struct {
	source      UpdateSource
	handler     Handler
	pollTimeout time.Duration
	logger      *logrus.Logger
	offset      int64
}

// NewPoller validates opts and builds a Poller.
func NewPoller(opts PollerOptions) (*Poller, error) {
	if opts.Source == nil {
		return nil, eris.New("update source is required")
	}
	if opts.Handler == nil {
		return nil, eris.New("update handler is required")
	}

	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	return &Poller{
		source:      opts.Source,
		handler:     opts.Handler,
		pollTimeout: timeout,
		logger:      opts.Logger,
	}, nil
}

// Run polls until ctx is cancelled. Failed polls are retried with exponential
// backoff.
func (p *Poller) Run(ctx context.Context) error {
	backoff := minBackoff

	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.source.GetUpdates(ctx, p.offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logError(err, backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = minBackoff

		for _, update := range updates {
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
			Route(ctx, update, p.handler)
		}
	}
}

func (p *Poller) logError(err error, backoff time.Duration) {
	if p.logger == nil {
		return
	}
	p.logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"offset":     p.offset,
		"backoff_ms": backoff.Milliseconds(),
	}).Error("polling telegram updates failed")
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
