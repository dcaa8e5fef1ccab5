package usecase

import (
	"context"
	"strings"
	"time"

	"erp/internal/domain/model"
	"erp/internal/event"
	repo "erp/internal/repository"

	"github.com/google/uuid"
)

// 伝票番号: PREFIX + yyyymmdd + UUID先頭8桁
func newRefNo(prefix string) string {
	return prefix + time.Now().UTC().Format("20060102") + strings.ToUpper(uuid.NewString()[:8])
}

// ファクトを状態変更と同一Txでoutboxへ積む
func appendFact(ctx context.Context, r repo.TxRepos, topic string, ev event.Event) error {
	raw, err := ev.Marshal()
	if err != nil {
		return err
	}
	return r.Outbox().Create(ctx, model.OutboxMessage{
		EventID: ev.EventID,
		Topic:   topic,
		Key:     ev.AggregateID,
		Payload: string(raw),
		Status:  model.OutboxStatusPending,
	})
}
