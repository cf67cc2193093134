package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConfig configures the news stream.
type JetStreamConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	MaxAge        time.Duration
}

// DefaultJetStreamConfig returns the default news stream settings.
func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:           nats.DefaultURL,
		StreamName:    "WORLD_NEWS",
		SubjectPrefix: "world.news",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		MaxAge:        30 * 24 * time.Hour,
	}
}

// JetStreamPublisher publishes news summaries to NATS JetStream.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

// NewJetStreamPublisher connects to NATS and ensures the news stream exists.
func NewJetStreamPublisher(cfg JetStreamConfig) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{nc: nc, js: js, config: cfg}
	if err := p.ensureStream(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return p, nil
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:      p.config.StreamName,
		Subjects:  []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    p.config.MaxAge,
		Storage:   jetstream.FileStorage,
	}

	if _, err := p.js.Stream(ctx, p.config.StreamName); err != nil {
		if _, err = p.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", p.config.StreamName).Msg("created JetStream news stream")
	}
	return nil
}

// Publish sends one news item. Failures are logged and swallowed; the
// simulation never blocks on the notification sink.
func (p *JetStreamPublisher) Publish(ctx context.Context, news News) {
	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, news.Type)

	data, err := json.Marshal(news)
	if err != nil {
		log.Error().Err(err).Str("type", string(news.Type)).Msg("failed to marshal news")
		return
	}

	_, err = p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"News-Type": []string{string(news.Type)},
			"World-ID":  []string{news.WorldID.String()},
		},
	}, jetstream.WithMsgID(news.ID.String()))
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to publish news")
	}
}

// Close closes the underlying NATS connection.
func (p *JetStreamPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NopPublisher discards every news item. Used in tests.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, News) {}
