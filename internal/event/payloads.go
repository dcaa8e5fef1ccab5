package event

import "github.com/shopspring/decimal"

// StockChangedPayloadは在庫変動の全文脈。消費側はこれだけで再計算できる。
type StockChangedPayload struct {
	SkuID       string          `json:"sku_id"`
	WarehouseID int64           `json:"warehouse_id"`
	MoveType    string          `json:"move_type"`
	Qty         decimal.Decimal `json:"qty"`
	BeforeQty   decimal.Decimal `json:"before_qty"`
	AfterQty    decimal.Decimal `json:"after_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	SourceType  string          `json:"source_type"`
	SourceNo    string          `json:"source_no"`
}

type OrderPaidPayload struct {
	OrderNo     string          `json:"order_no"`
	MemberID    *int64          `json:"member_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Method      string          `json:"method"`
}

type OrderShippedPayload struct {
	OrderNo    string `json:"order_no"`
	ShipmentNo string `json:"shipment_no"`
	Carrier    string `json:"carrier"`
	TrackingNo string `json:"tracking_no"`
}

type PoApprovedPayload struct {
	PoNo        string          `json:"po_no"`
	SupplierID  int64           `json:"supplier_id"`
	WarehouseID int64           `json:"warehouse_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type PoInStockPayload struct {
	PoNo        string       `json:"po_no"`
	WarehouseID int64        `json:"warehouse_id"`
	Lines       []PoLineView `json:"lines"`
}

type PoLineView struct {
	SkuID    string          `json:"sku_id"`
	Qty      decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type MoStartedPayload struct {
	MoNo       string          `json:"mo_no"`
	SkuID      string          `json:"sku_id"`
	PlannedQty decimal.Decimal `json:"planned_qty"`
}

// MoCompletedPayloadは原価ロールアップに必要な全て（BOM消費と工数）を運ぶ。
type MoCompletedPayload struct {
	MoNo         string           `json:"mo_no"`
	SkuID        string           `json:"sku_id"`
	WarehouseID  int64            `json:"warehouse_id"`
	CompletedQty decimal.Decimal  `json:"completed_qty"`
	Components   []ComponentUsage `json:"components"`
	WorkHours    decimal.Decimal  `json:"work_hours"`
	LaborRate    decimal.Decimal  `json:"labor_rate"`
	Period       string           `json:"period"`
}

type ComponentUsage struct {
	SkuID    string          `json:"sku_id"`
	Qty      decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type JobReportedPayload struct {
	JobNo     string          `json:"job_no"`
	MoNo      string          `json:"mo_no"`
	QtyGood   decimal.Decimal `json:"qty_good"`
	QtyScrap  decimal.Decimal `json:"qty_scrap"`
	WorkHours decimal.Decimal `json:"work_hours"`
}

type CostCalculatedPayload struct {
	SkuID     string          `json:"sku_id"`
	Period    string          `json:"period"`
	CostType  string          `json:"cost_type"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type ItemPayload struct {
	SkuID  string `json:"sku_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type MemberPointChangedPayload struct {
	MemberNo     string          `json:"member_no"`
	ChangePoints decimal.Decimal `json:"change_points"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	SourceNo     string          `json:"source_no"`
}

type PromoAppliedPayload struct {
	PromoID        int64           `json:"promo_id"`
	PromoCode      string          `json:"promo_code"`
	OrderNo        string          `json:"order_no"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}
