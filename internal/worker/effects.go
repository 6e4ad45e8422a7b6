package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/config"
	"github.com/spec-kit/ticket-coordinator/internal/gateway"
)

// PermissionEffect is one channel permission overwrite awaiting application.
type PermissionEffect struct {
	ChannelID string
	ActorID   string
	View      bool
	Send      bool
	attempt   int
}

// EffectsWorker applies permission overwrites asynchronously. The in-memory
// roster is already updated by the time an effect is enqueued; the worker
// retries the gateway call until it succeeds or the attempt budget runs out,
// then abandons it with a warning.
type EffectsWorker struct {
	gateway     gateway.ChatGateway
	logger      *zap.Logger
	queue       chan PermissionEffect
	maxAttempts int
	backoff     time.Duration
	callTimeout time.Duration
}

// NewEffectsWorker constructs the worker; Start must be called before
// enqueued effects are applied.
func NewEffectsWorker(gw gateway.ChatGateway, cfg config.EffectsConfig, callTimeout time.Duration, logger *zap.Logger) *EffectsWorker {
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &EffectsWorker{
		gateway:     gw,
		logger:      logger,
		queue:       make(chan PermissionEffect, queueSize),
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff(),
		callTimeout: callTimeout,
	}
}

// EnqueuePermission queues a permission overwrite for async application. A
// full queue drops the effect with a warning rather than blocking callers.
func (w *EffectsWorker) EnqueuePermission(channelID, actorID string, view, send bool) {
	effect := PermissionEffect{ChannelID: channelID, ActorID: actorID, View: view, Send: send}
	select {
	case w.queue <- effect:
	default:
		w.logger.Warn("effects queue full; dropping permission overwrite",
			zap.String("channel_id", channelID),
			zap.String("actor_id", actorID),
		)
	}
}

// Start runs the apply loop until ctx is cancelled.
func (w *EffectsWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *EffectsWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case effect := <-w.queue:
			w.apply(ctx, effect)
		}
	}
}

func (w *EffectsWorker) apply(ctx context.Context, effect PermissionEffect) {
	for effect.attempt = 1; effect.attempt <= w.maxAttempts; effect.attempt++ {
		callCtx := ctx
		cancel := func() {}
		if w.callTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, w.callTimeout)
		}
		err := w.gateway.SetPermission(callCtx, effect.ChannelID, effect.ActorID, effect.View, effect.Send)
		cancel()
		if err == nil {
			return
		}

		w.logger.Warn("permission overwrite failed",
			zap.String("channel_id", effect.ChannelID),
			zap.String("actor_id", effect.ActorID),
			zap.Int("attempt", effect.attempt),
			zap.Error(err),
		)

		if effect.attempt == w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff * time.Duration(effect.attempt)):
		}
	}

	w.logger.Warn("abandoning permission overwrite",
		zap.String("channel_id", effect.ChannelID),
		zap.String("actor_id", effect.ActorID),
		zap.Int("attempts", w.maxAttempts),
	)
}
