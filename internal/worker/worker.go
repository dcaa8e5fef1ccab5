package worker

import (
	"context"
	"log/slog"
	"time"

	"erp/internal/config"
	"erp/internal/event"
	"erp/internal/infra/eventbus"
	"erp/internal/usecase"
)

// Workersはファクトのコンシューマ群とロック失効スイーパーをまとめる。
type Workers struct {
	consumers []*eventbus.Consumer
	stocks    *usecase.StockUsecase
	cfg       config.Config
	logger    *slog.Logger
}

func New(cfg config.Config, dlq eventbus.Publisher,
	stocks *usecase.StockUsecase, costs *usecase.CostUsecase, members *usecase.MemberUsecase,
	logger *slog.Logger) *Workers {

	base := eventbus.ConsumerConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		MaxRetry: cfg.ConsumerMaxRetry,
	}

	newConsumer := func(topic, name string, h eventbus.Handler) *eventbus.Consumer {
		c := base
		c.Topic = topic
		c.Name = name
		return eventbus.NewConsumer(c, dlq, h, logger)
	}

	return &Workers{
		consumers: []*eventbus.Consumer{
			// 支払済みになった受注のロック消化
			newConsumer(event.TopicOrderEvents, "stock-ledger", func(ctx context.Context, ev event.Event) error {
				if ev.EventType != event.TypeOrderPaid {
					return nil
				}
				p, err := event.DecodePayload[event.OrderPaidPayload](ev)
				if err != nil {
					return err
				}
				// ConsumeLockedはACTIVEロックが無ければ何もしない。再配信はそこで吸収される。
				return stocks.ConsumeLocked(ctx, p.OrderNo, ev.Operator)
			}),
			// 会員ポイント付与
			newConsumer(event.TopicOrderEvents, "member-points", func(ctx context.Context, ev event.Event) error {
				if ev.EventType != event.TypeOrderPaid {
					return nil
				}
				return members.AccruePoints(ctx, ev)
			}),
			// 仕入入庫での移動平均の再計算
			newConsumer(event.TopicStockEvents, "cost-recalculator", func(ctx context.Context, ev event.Event) error {
				if ev.EventType != event.TypeStockChanged {
					return nil
				}
				return costs.ApplyStockChanged(ctx, ev)
			}),
			// 製造完了での標準原価の計算
			newConsumer(event.TopicMoEvents, "cost-recalculator", func(ctx context.Context, ev event.Event) error {
				if ev.EventType != event.TypeMoCompleted {
					return nil
				}
				return costs.ApplyMoCompleted(ctx, ev)
			}),
		},
		stocks: stocks,
		cfg:    cfg,
		logger: logger,
	}
}

// Runは全コンシューマとスイーパーを起動し、ctxが閉じるまで面倒を見る。
func (w *Workers) Run(ctx context.Context) {
	for _, c := range w.consumers {
		go c.Run(ctx)
	}
	go w.sweepExpiredLocks(ctx)
}

// 未払いのままのロックを定期的に解放する
func (w *Workers) sweepExpiredLocks(ctx context.Context) {
	expiry := time.Duration(w.cfg.LockExpiryMinutes) * time.Minute
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.stocks.ExpireLocks(ctx, expiry, 100)
			if err != nil {
				w.logger.Error("lock expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				w.logger.Info("expired stale stock locks", "count", n)
			}
		}
	}
}
