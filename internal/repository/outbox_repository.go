package repository

import (
	"context"

	"erp/internal/domain/model"
)

// OutboxRepositoryはファクトの持ち出し行。状態変更と同一Txで書くこと。
type OutboxRepository interface {
	Create(ctx context.Context, msg model.OutboxMessage) error
	ListPending(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	MarkSent(ctx context.Context, id int64) error
}

// ProcessedEventRepositoryはコンシューマの冪等ガード。
type ProcessedEventRepository interface {
	// MarkProcessedは初回ならtrue。既に処理済み（重複配信）ならfalse。
	MarkProcessed(ctx context.Context, eventID, consumer string) (bool, error)
}
