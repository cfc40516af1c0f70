package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	DefaultStream  = "BROCHURE_JOBS"
	DefaultSubject = "jobs.generate"
	DefaultDurable = "generation-worker"
)

type JetStreamConfig struct {
	URL           string
	Stream        string
	Subject       string
	Durable       string
	MaxDeliver    int
	MaxAckPending int
	AckWait       time.Duration
	// Storage defaults to file storage.
	Storage jetstream.StorageType
}

func (c *JetStreamConfig) applyDefaults() {
	if c.Stream == "" {
		c.Stream = DefaultStream
	}
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Durable == "" {
		c.Durable = DefaultDurable
	}
	if c.MaxDeliver == 0 {
		c.MaxDeliver = 1
	}
	if c.MaxAckPending == 0 {
		c.MaxAckPending = 1
	}
	if c.AckWait == 0 {
		c.AckWait = 5 * time.Minute
	}
}

// JetStreamQueue is a durable work queue on a NATS JetStream stream. Each task is
// consumed by exactly one worker; the job id is the publish de-duplication key.
type JetStreamQueue struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	cfg    JetStreamConfig
	logger *zap.Logger
}

func NewJetStreamQueue(ctx context.Context, cfg JetStreamConfig, logger *zap.Logger) (*JetStreamQueue, error) {
	cfg.applyDefaults()

	nc, err := nats.Connect(cfg.URL,
		nats.Name("brochure-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.Stream,
		Subjects:   []string{cfg.Subject},
		Retention:  jetstream.WorkQueuePolicy,
		Storage:    cfg.Storage,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream %s: %w", cfg.Stream, err)
	}

	return &JetStreamQueue{nc: nc, js: js, stream: stream, cfg: cfg, logger: logger}, nil
}

func (q *JetStreamQueue) Enqueue(ctx context.Context, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if _, err := q.js.Publish(ctx, q.cfg.Subject, data, jetstream.WithMsgID(task.JobID.String())); err != nil {
		return fmt.Errorf("publish job %s: %w", task.JobID, err)
	}
	return nil
}

// Deliveries binds the durable consumer and streams its messages until ctx is done.
// Fail naks the message, so it is redelivered only while MaxDeliver allows.
func (q *JetStreamQueue) Deliveries(ctx context.Context) (<-chan Delivery, error) {
	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       q.cfg.Durable,
		FilterSubject: q.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       q.cfg.AckWait,
		MaxDeliver:    q.cfg.MaxDeliver,
		MaxAckPending: q.cfg.MaxAckPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer %s: %w", q.cfg.Durable, err)
	}

	out := make(chan Delivery)
	consCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		var task Task
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			q.logger.Error("dropping malformed task", zap.Error(err))
			_ = msg.Term()
			return
		}

		d := NewDelivery(task, msg.Ack, func(error) error { return msg.Nak() })
		select {
		case out <- d:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("start consumer %s: %w", q.cfg.Durable, err)
	}

	go func() {
		<-ctx.Done()
		consCtx.Stop()
	}()

	return out, nil
}

func (q *JetStreamQueue) Close() error {
	return q.nc.Drain()
}
