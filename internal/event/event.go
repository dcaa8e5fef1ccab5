package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ファクト種別。起きたことの記録であり、コマンドではない。
const (
	TypeItemCreated        = "ItemCreated"
	TypeItemUpdated        = "ItemUpdated"
	TypePoApproved         = "PoApproved"
	TypePoInStock          = "PoInStock"
	TypeMoStarted          = "MoStarted"
	TypeMoCompleted        = "MoCompleted"
	TypeJobReported        = "JobReported"
	TypeStockIn            = "StockIn"
	TypeStockOut           = "StockOut"
	TypeStockChanged       = "StockChanged"
	TypeCostCalculated     = "CostCalculated"
	TypeOrderPaid          = "OrderPaid"
	TypeOrderShipped       = "OrderShipped"
	TypeMemberPointChanged = "MemberPointChanged"
	TypePromoApplied       = "PromoApplied"
)

// トピックは集約ファミリー単位。メッセージキー=集約IDで参照単位の順序を保つ。
const (
	TopicItemEvents   = "item-events"
	TopicStockEvents  = "stock-events"
	TopicOrderEvents  = "order-events"
	TopicPoEvents     = "po-events"
	TopicMoEvents     = "mo-events"
	TopicJobEvents    = "job-events"
	TopicCostEvents   = "cost-events"
	TopicMemberEvents = "member-events"
	TopicPromoEvents  = "promo-events"
)

// Eventはファクトの封筒。payloadは消費側が同期呼び出しなしで
// 処理できるだけの業務文脈を必ず含む。
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Operator      string          `json:"operator,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Newはpayloadをその場でJSON化して封筒を作る。
func New(eventType, aggregateType, aggregateID, operator string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		OccurredAt:    time.Now().UTC(),
		Operator:      operator,
		Payload:       raw,
	}, nil
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// DecodePayloadはpayloadを型付きで取り出す。
func DecodePayload[T any](e Event) (T, error) {
	var p T
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}
