package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/transfermarket"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const (
	triggerStream  = "WORLD_TRIGGERS"
	triggerSubject = "world.triggers.>"
	consumerName   = "sim-engine"

	natsMaxReconnects = 10
	natsReconnectWait = 2 * time.Second

	consumerMaxDeliver    = 5
	consumerAckWait       = 5 * time.Minute
	consumerMaxAckPending = 1
)

// Trigger subjects. The suffix selects the operation; the payload names the
// world.
const (
	SubjectAdvanceMatchday = "world.triggers.advance_matchday"
	SubjectCloseWindow     = "world.triggers.close_window"
	SubjectRolloverSeason  = "world.triggers.rollover_season"
)

// TriggerEvent is the payload of every trigger message.
type TriggerEvent struct {
	WorldID string `json:"world_id"`
	Window  string `json:"window,omitempty"` // close_window only: SUMMER or WINTER
}

// TriggerConsumer consumes world triggers from JetStream and drives the sim
// engine. One message is in flight at a time per consumer: the operations
// mutate shared world state and must not interleave.
type TriggerConsumer struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	engine   *Engine
}

// NewTriggerConsumer connects to NATS and ensures the trigger stream and
// durable consumer exist.
func NewTriggerConsumer(ctx context.Context, natsURL string, engine *Engine) (*TriggerConsumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	c := &TriggerConsumer{nc: nc, js: js, engine: engine}
	if err := c.ensureConsumer(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

func (c *TriggerConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := c.js.Stream(ctx, triggerStream)
	if err != nil {
		stream, err = c.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      triggerStream,
			Subjects:  []string{triggerSubject},
			Retention: jetstream.WorkQueuePolicy,
		})
		if err != nil {
			return fmt.Errorf("create trigger stream: %w", err)
		}
		log.Info().Str("stream", triggerStream).Msg("created trigger stream")
	}

	cfg := jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		Description:   "world trigger consumer for the simulation core",
		FilterSubject: triggerSubject,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    consumerMaxDeliver,
		AckWait:       consumerAckWait,
		MaxAckPending: consumerMaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Msg("created JetStream consumer for sim engine")
	} else {
		log.Info().Msg("using existing JetStream consumer for sim engine")
	}

	c.consumer = consumer
	return nil
}

// Run consumes triggers until the context is canceled. Each handler runs to
// completion; a failed message is redelivered up to MaxDeliver times.
func (c *TriggerConsumer) Run(ctx context.Context) error {
	cc, err := c.consumer.Consume(func(msg jetstream.Msg) {
		if err := c.processTrigger(ctx, msg); err != nil {
			log.Error().
				Err(err).
				Str("subject", msg.Subject()).
				Msg("trigger processing failed")
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error().Err(nakErr).Msg("failed to nak message")
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ack message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consuming triggers: %w", err)
	}
	defer cc.Stop()

	<-ctx.Done()
	log.Info().Msg("trigger consumer shutting down")
	return nil
}

func (c *TriggerConsumer) processTrigger(ctx context.Context, msg jetstream.Msg) error {
	var event TriggerEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("unmarshal trigger: %w", err)
	}

	worldID, err := uuid.Parse(event.WorldID)
	if err != nil {
		return fmt.Errorf("parse world ID: %w", err)
	}

	log.Info().
		Str("subject", msg.Subject()).
		Str("world_id", event.WorldID).
		Msg("processing world trigger")

	switch msg.Subject() {
	case SubjectAdvanceMatchday:
		return c.engine.AdvanceMatchday(ctx, worldID)

	case SubjectCloseWindow:
		window := transfermarket.Window(strings.ToUpper(event.Window))
		if window != transfermarket.WindowSummer && window != transfermarket.WindowWinter {
			return fmt.Errorf("unknown transfer window %q", event.Window)
		}
		return c.engine.CloseTransferWindow(ctx, worldID, window)

	case SubjectRolloverSeason:
		_, err := c.engine.RolloverSeason(ctx, worldID)
		return err

	default:
		log.Warn().Str("subject", msg.Subject()).Msg("unknown trigger subject, ignoring")
		return nil
	}
}

// Close shuts down the NATS connection.
func (c *TriggerConsumer) Close() error {
	if c.nc != nil {
		c.nc.Close()
	}
	return nil
}
