package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler feeds subscription messages to a Processor.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	processor        *Processor
	jobTimeout       time.Duration
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Processor        *Processor
	JobTimeout       time.Duration
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		processor:        cfg.Processor,
		jobTimeout:       cfg.JobTimeout,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if h.handle(ctx, msg.ID, msg.PublishTime, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handle runs one message and reports whether it should be acked.
func (h *PubSubHandler) handle(ctx context.Context, id string, published time.Time, data []byte) bool {
	return HandleMessage(ctx, h.processor, h.jobTimeout, h.logger.With().
		Str("message_id", id).
		Str("publish_time", published.Format(time.RFC3339)).
		Logger(), data)
}

// HandleMessage runs data through p and decides the acknowledgement:
// successes, unknown job types and permanent failures are acked, anything
// else is nacked for redelivery.
func HandleMessage(ctx context.Context, p *Processor, timeout time.Duration, logger zerolog.Logger, data []byte) bool {
	start := time.Now()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug().Msg("received pubsub message")

	jobType, err := p.Process(ctx, data)
	switch {
	case err == nil:
		logger.Info().
			Str("job_type", jobType).
			Dur("duration", time.Since(start)).
			Msg("job completed successfully")
		return true
	case errors.Is(err, ErrUnknownJob):
		logger.Warn().Str("job_type", jobType).Msg("unknown job type")
		return true
	case errors.Is(err, ErrPermanent):
		logger.Error().Err(err).Str("job_type", jobType).Msg("job rejected")
		return true
	default:
		logger.Error().Err(err).Str("job_type", jobType).Msg("job failed")
		return false
	}
}
