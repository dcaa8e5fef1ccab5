package eventbus

import (
	"context"
	"log/slog"
	"time"

	"erp/internal/event"
	"erp/internal/infra/metrics"

	"github.com/segmentio/kafka-go"
)

// Handlerはファクト1件を処理する。エラーを返すと再試行される。
type Handler func(ctx context.Context, ev event.Event) error

// Consumerはトピックを購読してハンドラへ流す。
// 再試行上限を超えたメッセージは <topic>.dlq へ退避してから先へ進む。
type Consumer struct {
	reader   *kafka.Reader
	dlq      Publisher
	handler  Handler
	name     string
	topic    string
	maxRetry int
	logger   *slog.Logger
}

type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	Name     string
	MaxRetry int
}

func NewConsumer(cfg ConsumerConfig, dlq Publisher, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID + "-" + cfg.Name,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return &Consumer{
		reader:   r,
		dlq:      dlq,
		handler:  handler,
		name:     cfg.Name,
		topic:    cfg.Topic,
		maxRetry: cfg.MaxRetry,
		logger:   logger,
	}
}

// Runはctxが閉じるまでメッセージを処理し続ける。
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", "consumer", c.name, "error", err)
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("commit failed", "consumer", c.name, "error", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ev, err := event.Unmarshal(msg.Value)
	if err != nil {
		// 封筒が壊れているメッセージは再試行しても直らない
		c.logger.Error("malformed event", "consumer", c.name, "topic", c.topic, "error", err)
		c.deadLetter(ctx, msg)
		return
	}

	for attempt := 1; attempt <= c.maxRetry; attempt++ {
		err = c.handler(ctx, ev)
		if err == nil {
			metrics.EventsConsumed.WithLabelValues(c.name, ev.EventType).Inc()
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("handle failed",
			"consumer", c.name, "event_id", ev.EventID, "event_type", ev.EventType,
			"attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	c.logger.Error("retries exhausted, dead-lettering",
		"consumer", c.name, "event_id", ev.EventID, "event_type", ev.EventType)
	c.deadLetter(ctx, msg)
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message) {
	if err := c.dlq.Publish(ctx, c.topic+".dlq", string(msg.Key), msg.Value); err != nil {
		c.logger.Error("dlq publish failed", "consumer", c.name, "error", err)
		return
	}
	metrics.EventsDeadLettered.WithLabelValues(c.name, c.topic).Inc()
}
