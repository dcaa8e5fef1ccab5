package model

import "time"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
)

// OutboxMessageは状態変更と同一トランザクションで書くファクトの持ち出し行。
// リレーがPENDINGを拾ってブローカーへ流し、SENTに更新する。
type OutboxMessage struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string       `gorm:"type:varchar(64);not null;uniqueIndex" json:"event_id"`
	Topic     string       `gorm:"type:varchar(100);not null" json:"topic"`
	Key       string       `gorm:"type:varchar(100);not null" json:"key"`
	Payload   string       `gorm:"type:text;not null" json:"payload"`
	Status    OutboxStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime;index" json:"created_at"`
	SentAt    *time.Time   `json:"sent_at"`
}

// ProcessedEventはコンシューマの冪等ガード。event_id+consumerで一意。
type ProcessedEvent struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_event_consumer,priority:1" json:"event_id"`
	Consumer    string    `gorm:"type:varchar(100);not null;uniqueIndex:uk_event_consumer,priority:2" json:"consumer"`
	ProcessedAt time.Time `gorm:"not null;autoCreateTime" json:"processed_at"`
}
