package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrInvalidConfig = errors.New("invalid outbox configuration")

type Relay struct {
	store      Store
	dispatcher Dispatcher
	opts       RelayOptions
	m          *metrics
}

func NewRelay(store Store, dispatcher Dispatcher, opts RelayOptions) (*Relay, error) {
	if store == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("store is required"))
	}
	if dispatcher == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("dispatcher is required"))
	}

	opts.setDefaults()

	return &Relay{
		store:      store,
		dispatcher: dispatcher,
		opts:       opts,
		m:          getMetrics(),
	}, nil
}

// Run polls the store until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	r.opts.Logger.Info("outbox: relay started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := r.ProcessOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.opts.Logger.WithError(err).Warn("outbox: process tick failed")
		}
	}
}

// ProcessOnce claims one batch and dispatches it. It returns the number of
// messages delivered.
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	now := r.opts.Now()

	claimed, err := r.store.Claim(ctx, now, now.Add(-r.opts.LockTTL), r.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, msg := range claimed {
		if r.deliver(ctx, msg) {
			delivered++
		}
	}

	if pending, err := r.store.Pending(ctx); err == nil {
		r.m.pending.Set(float64(pending))
	}

	return delivered, nil
}

func (r *Relay) deliver(ctx context.Context, msg Message) bool {
	log := r.opts.Logger.WithFields(logrus.Fields{
		"notification_id":   msg.Id.String(),
		"notification_type": msg.Type,
		"attempts":          msg.Attempts,
	})

	dispatchCtx, cancel := context.WithTimeout(ctx, r.opts.DispatchTimeout)
	start := time.Now()
	err := r.dispatcher.Dispatch(dispatchCtx, msg)
	cancel()
	latency := time.Since(start)

	if err == nil {
		r.record(msg.Type, "success", latency)
		if ackErr := r.store.Ack(ctx, msg.Id, r.opts.Now()); ackErr != nil {
			log.WithError(ackErr).Warn("outbox: ack failed")
		}
		return true
	}

	r.record(msg.Type, "error", latency)
	attempts := msg.Attempts + 1
	lastErr := truncateError(err, r.opts.LastErrorMaxLen)

	if attempts >= r.opts.MaxAttempts {
		r.m.deadTotal.WithLabelValues(msg.Type).Inc()
		log.WithError(err).Error("outbox: notification dropped after last attempt")
		if buryErr := r.store.Bury(ctx, msg.Id, attempts, lastErr); buryErr != nil {
			log.WithError(buryErr).Warn("outbox: bury failed")
		}
		return false
	}

	next := r.opts.Now().Add(backoff(attempts, r.opts.MaxBackoff) + jitter(r.opts.Rand, r.opts.JitterMax))
	log.WithError(err).WithField("next_attempt_at", next).Warn("outbox: dispatch failed, will retry")
	if retryErr := r.store.Retry(ctx, msg.Id, attempts, next, lastErr); retryErr != nil {
		log.WithError(retryErr).Warn("outbox: reschedule failed")
	}

	return false
}

func (r *Relay) record(msgType, result string, latency time.Duration) {
	r.m.dispatchTotal.WithLabelValues(msgType, result).Inc()
	r.m.dispatchLatency.WithLabelValues(msgType, result).Observe(latency.Seconds())
}
