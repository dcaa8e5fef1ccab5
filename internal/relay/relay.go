package relay

import (
	"context"
	"log/slog"
	"time"

	"erp/internal/infra/eventbus"
	"erp/internal/infra/metrics"
	repo "erp/internal/repository"
)

// Relayはoutboxの未送出行をブローカーへ押し出す。
// 送出成功の後にSENTへ更新するので、クラッシュ時は重複配信になり得る。
// 受け側はprocessed_eventsで重複を吸収する前提。
type Relay struct {
	tx        repo.TransactionManager
	publisher eventbus.Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func New(tx repo.TransactionManager, publisher eventbus.Publisher, logger *slog.Logger) *Relay {
	return &Relay{
		tx:        tx,
		publisher: publisher,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
}

// Runはctxが閉じるまでポーリングを続ける。
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.relayOnce(ctx); err != nil {
				r.logger.Error("outbox relay failed", "error", err)
			}
		}
	}
}

func (r *Relay) relayOnce(ctx context.Context) error {
	return r.tx.WithinTx(ctx, func(tr repo.TxRepos) error {
		msgs, err := tr.Outbox().ListPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := r.publisher.Publish(ctx, msg.Topic, msg.Key, []byte(msg.Payload)); err != nil {
				// 送れない分は次回へ持ち越す。順序はid昇順で守られる。
				return err
			}
			if err := tr.Outbox().MarkSent(ctx, msg.ID); err != nil {
				return err
			}
			metrics.EventsPublished.WithLabelValues(msg.Topic).Inc()
		}
		return nil
	})
}
