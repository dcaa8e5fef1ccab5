package usecase

import (
	"context"
	"errors"
	"time"

	"erp/internal/apperr"
	"erp/internal/domain/model"
	"erp/internal/event"
	"erp/internal/infra/metrics"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
)

// 許可される状態遷移。これ以外は409 INVALID_ORDER_STATE。
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPendingPayment: {model.OrderStatusPaid, model.OrderStatusCancelled},
	model.OrderStatusPaid:           {model.OrderStatusShipped, model.OrderStatusRefundPending},
	model.OrderStatusShipped:        {model.OrderStatusCompleted},
	model.OrderStatusRefundPending:  {model.OrderStatusRefunded},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, t := range orderTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type OrderUsecase struct {
	tx     repo.TransactionManager
	stocks *StockUsecase
	promos *PromoUsecase
}

func NewOrderUsecase(tx repo.TransactionManager, stocks *StockUsecase, promos *PromoUsecase) *OrderUsecase {
	return &OrderUsecase{tx: tx, stocks: stocks, promos: promos}
}

type OrderLineInput struct {
	SkuID       string          `json:"sku_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Qty         decimal.Decimal `json:"qty"`
}

type CreateOrderInput struct {
	MemberID *int64           `json:"member_id"`
	Lines    []OrderLineInput `json:"lines"`
	Remark   string           `json:"remark"`
	Operator string
}

type OrderOutput struct {
	OrderNo        string            `json:"order_no"`
	Status         string            `json:"status"`
	SubtotalAmount decimal.Decimal   `json:"subtotal_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	PromoID        *int64            `json:"promo_id"`
	Items          []OrderItemOutput `json:"items"`
	CreatedAt      time.Time         `json:"created_at"`
}

type OrderItemOutput struct {
	SkuID          string          `json:"sku_id"`
	SkuName        string          `json:"sku_name"`
	WarehouseID    int64           `json:"warehouse_id"`
	Qty            decimal.Decimal `json:"qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Amount         decimal.Decimal `json:"amount"`
}

// Createは注文作成サガ。促販計算→在庫ロック→注文行の永続化。
// 在庫不足はロックの時点で全体を中止し、注文行は作らない。
func (u *OrderUsecase) Create(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	if len(in.Lines) == 0 {
		return OrderOutput{}, apperr.Validation("lines are required")
	}

	// 明細のスナップショットを商品マスタから取る
	type pricedLine struct {
		OrderLineInput
		Name      string
		UnitPrice decimal.Decimal
	}
	priced := make([]pricedLine, 0, len(in.Lines))
	draft := make([]DraftLine, 0, len(in.Lines))

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, l := range in.Lines {
			if l.SkuID == "" || l.WarehouseID <= 0 || !l.Qty.IsPositive() {
				return apperr.Validation("each line needs sku_id, warehouse_id and positive qty")
			}
			it, err := r.Items().FindBySkuID(ctx, l.SkuID)
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("item " + l.SkuID)
			}
			if err != nil {
				return err
			}
			if it.Status != model.ItemStatusEnabled {
				return apperr.Validation("item disabled: " + l.SkuID)
			}
			priced = append(priced, pricedLine{OrderLineInput: l, Name: it.Name, UnitPrice: it.Price})
			draft = append(draft, DraftLine{SkuID: l.SkuID, Qty: l.Qty, UnitPrice: it.Price})
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	// 促販計算（同期・純関数）
	promoResult, err := u.promos.Calculate(ctx, draft)
	if err != nil {
		return OrderOutput{}, err
	}

	orderNo := newRefNo("SO")

	// 在庫ロック（同期）。不足ならここで中止、注文行なし。
	lockLines := make([]LockLine, 0, len(priced))
	for _, l := range priced {
		lockLines = append(lockLines, LockLine{SkuID: l.SkuID, WarehouseID: l.WarehouseID, Qty: l.Qty})
	}
	if err := u.stocks.Lock(ctx, LockInput{
		OrderRef:  orderNo,
		OrderType: model.SourceTypeSale,
		Lines:     lockLines,
		Operator:  in.Operator,
	}); err != nil {
		return OrderOutput{}, err
	}

	// 注文の永続化。ここで失敗したらロックを補償解放する。
	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		subtotal := decimal.Zero
		for _, l := range priced {
			subtotal = subtotal.Add(l.UnitPrice.Mul(l.Qty))
		}
		discount := promoResult.DiscountAmount
		total := subtotal.Sub(discount)

		orderID, err := r.Orders().Create(ctx, model.SalesOrder{
			OrderNo:        orderNo,
			MemberID:       in.MemberID,
			Status:         model.OrderStatusPendingPayment,
			SubtotalAmount: subtotal,
			DiscountAmount: discount,
			TotalAmount:    total,
			PaidAmount:     decimal.Zero,
			PromoID:        promoResult.PromoID,
			Remark:         in.Remark,
			CreatedBy:      in.Operator,
		})
		if err != nil {
			return err
		}

		items := make([]model.SalesOrderItem, 0, len(priced))
		outItems := make([]OrderItemOutput, 0, len(priced))
		for i, l := range priced {
			// 明細割引は小計比で按分
			lineAmount := l.UnitPrice.Mul(l.Qty)
			lineDiscount := decimal.Zero
			if discount.IsPositive() && subtotal.IsPositive() {
				lineDiscount = discount.Mul(lineAmount).DivRound(subtotal, 4)
			}
			items = append(items, model.SalesOrderItem{
				SkuID:          l.SkuID,
				SkuName:        l.Name,
				WarehouseID:    l.WarehouseID,
				Qty:            l.Qty,
				UnitPrice:      l.UnitPrice,
				DiscountAmount: lineDiscount,
				Amount:         lineAmount.Sub(lineDiscount),
				LineNo:         i + 1,
			})
			outItems = append(outItems, OrderItemOutput{
				SkuID:          l.SkuID,
				SkuName:        l.Name,
				WarehouseID:    l.WarehouseID,
				Qty:            l.Qty,
				UnitPrice:      l.UnitPrice,
				DiscountAmount: lineDiscount,
				Amount:         lineAmount.Sub(lineDiscount),
			})
		}
		if err := r.Orders().CreateItems(ctx, orderID, items); err != nil {
			return err
		}

		// 適用実績とPromoAppliedファクト
		if promoResult.PromoID != nil {
			if err := r.Promos().CreateRecord(ctx, model.PromoRecord{
				RecordNo:       newRefNo("PR"),
				PromoID:        *promoResult.PromoID,
				OrderNo:        orderNo,
				DiscountAmount: discount,
			}); err != nil {
				return err
			}
			ev, err := event.New(event.TypePromoApplied, "promo", orderNo, in.Operator, event.PromoAppliedPayload{
				PromoID:        *promoResult.PromoID,
				PromoCode:      promoResult.PromoCode,
				OrderNo:        orderNo,
				DiscountAmount: discount,
			})
			if err != nil {
				return err
			}
			if err := appendFact(ctx, r, event.TopicPromoEvents, ev); err != nil {
				return err
			}
		}

		out = OrderOutput{
			OrderNo:        orderNo,
			Status:         string(model.OrderStatusPendingPayment),
			SubtotalAmount: subtotal,
			DiscountAmount: discount,
			TotalAmount:    total,
			PromoID:        promoResult.PromoID,
			Items:          outItems,
			CreatedAt:      time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		// 補償: 取得済みの予約を返す
		_ = u.stocks.Unlock(ctx, orderNo, in.Operator)
		return OrderOutput{}, err
	}

	metrics.OrdersCreated.Inc()
	return out, nil
}

type PayInput struct {
	OrderNo  string          `json:"order_no"`
	Method   string          `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
	Operator string
}

// PayはPENDING_PAYMENT→PAID。支払行とOrderPaidファクトを状態書き込みと
// 同一ローカルTxに置く（transactional outbox）。
func (u *OrderUsecase) Pay(ctx context.Context, in PayInput) error {
	if in.OrderNo == "" {
		return apperr.Validation("order_no is required")
	}
	if in.Method == "" {
		return apperr.Validation("method is required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNoForUpdate(ctx, in.OrderNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order")
		}
		if err != nil {
			return err
		}

		if o.Status == model.OrderStatusPaid {
			return apperr.OrderAlreadyPaid(in.OrderNo)
		}
		if !canTransition(o.Status, model.OrderStatusPaid) {
			return apperr.InvalidOrderState(string(o.Status), string(model.OrderStatusPaid))
		}
		if !in.Amount.Equal(o.TotalAmount) {
			return apperr.Validation("paid amount must equal order total")
		}

		o.Status = model.OrderStatusPaid
		o.PaidAmount = in.Amount
		if err := r.Orders().Save(ctx, &o); err != nil {
			return err
		}

		if err := r.Orders().CreatePayment(ctx, model.Payment{
			PaymentNo: newRefNo("PAY"),
			OrderID:   o.ID,
			Method:    in.Method,
			Amount:    in.Amount,
			PaidBy:    in.Operator,
		}); err != nil {
			return err
		}

		ev, err := event.New(event.TypeOrderPaid, "order", o.OrderNo, in.Operator, event.OrderPaidPayload{
			OrderNo:     o.OrderNo,
			MemberID:    o.MemberID,
			TotalAmount: o.TotalAmount,
			PaidAmount:  in.Amount,
			Method:      in.Method,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicOrderEvents, ev)
	})
	if err != nil {
		return err
	}

	metrics.OrderTransitions.WithLabelValues(string(model.OrderStatusPaid)).Inc()
	return nil
}

// CancelはPENDING_PAYMENT→CANCELLED、その後に予約を補償解放する。
func (u *OrderUsecase) Cancel(ctx context.Context, orderNo, operator string) error {
	if orderNo == "" {
		return apperr.Validation("order_no is required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNoForUpdate(ctx, orderNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order")
		}
		if err != nil {
			return err
		}
		if !canTransition(o.Status, model.OrderStatusCancelled) {
			return apperr.InvalidOrderState(string(o.Status), string(model.OrderStatusCancelled))
		}

		o.Status = model.OrderStatusCancelled
		return r.Orders().Save(ctx, &o)
	})
	if err != nil {
		return err
	}

	// 補償アクション。Unlockは冪等なので再実行も安全。
	if err := u.stocks.Unlock(ctx, orderNo, operator); err != nil {
		return err
	}
	metrics.OrderTransitions.WithLabelValues(string(model.OrderStatusCancelled)).Inc()
	return nil
}

type ShipInput struct {
	OrderNo    string `json:"order_no"`
	Carrier    string `json:"carrier"`
	TrackingNo string `json:"tracking_no"`
	Operator   string
}

// ShipはPAID→SHIPPED。出荷行とOrderShippedファクトを同一Txで書く。
func (u *OrderUsecase) Ship(ctx context.Context, in ShipInput) error {
	if in.OrderNo == "" {
		return apperr.Validation("order_no is required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNoForUpdate(ctx, in.OrderNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order")
		}
		if err != nil {
			return err
		}
		if !canTransition(o.Status, model.OrderStatusShipped) {
			return apperr.InvalidOrderState(string(o.Status), string(model.OrderStatusShipped))
		}

		o.Status = model.OrderStatusShipped
		if err := r.Orders().Save(ctx, &o); err != nil {
			return err
		}

		shipmentNo := newRefNo("SH")
		if err := r.Orders().CreateShipment(ctx, model.Shipment{
			ShipmentNo: shipmentNo,
			OrderID:    o.ID,
			Carrier:    in.Carrier,
			TrackingNo: in.TrackingNo,
			ShippedBy:  in.Operator,
		}); err != nil {
			return err
		}

		ev, err := event.New(event.TypeOrderShipped, "order", o.OrderNo, in.Operator, event.OrderShippedPayload{
			OrderNo:    o.OrderNo,
			ShipmentNo: shipmentNo,
			Carrier:    in.Carrier,
			TrackingNo: in.TrackingNo,
		})
		if err != nil {
			return err
		}
		return appendFact(ctx, r, event.TopicOrderEvents, ev)
	})
	if err != nil {
		return err
	}

	metrics.OrderTransitions.WithLabelValues(string(model.OrderStatusShipped)).Inc()
	return nil
}

func (u *OrderUsecase) Complete(ctx context.Context, orderNo string) error {
	return u.transition(ctx, orderNo, model.OrderStatusCompleted)
}

func (u *OrderUsecase) RequestRefund(ctx context.Context, orderNo string) error {
	return u.transition(ctx, orderNo, model.OrderStatusRefundPending)
}

func (u *OrderUsecase) Refund(ctx context.Context, orderNo string) error {
	return u.transition(ctx, orderNo, model.OrderStatusRefunded)
}

// 付随処理のない辺の遷移
func (u *OrderUsecase) transition(ctx context.Context, orderNo string, to model.OrderStatus) error {
	if orderNo == "" {
		return apperr.Validation("order_no is required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNoForUpdate(ctx, orderNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order")
		}
		if err != nil {
			return err
		}
		if !canTransition(o.Status, to) {
			return apperr.InvalidOrderState(string(o.Status), string(to))
		}

		o.Status = to
		return r.Orders().Save(ctx, &o)
	})
	if err != nil {
		return err
	}

	metrics.OrderTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

func (u *OrderUsecase) Get(ctx context.Context, orderNo string) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNo(ctx, orderNo)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order")
		}
		if err != nil {
			return err
		}
		items, err := r.Orders().ListItemsByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}

		outItems := make([]OrderItemOutput, 0, len(items))
		for _, it := range items {
			outItems = append(outItems, OrderItemOutput{
				SkuID:          it.SkuID,
				SkuName:        it.SkuName,
				WarehouseID:    it.WarehouseID,
				Qty:            it.Qty,
				UnitPrice:      it.UnitPrice,
				DiscountAmount: it.DiscountAmount,
				Amount:         it.Amount,
			})
		}
		out = OrderOutput{
			OrderNo:        o.OrderNo,
			Status:         string(o.Status),
			SubtotalAmount: o.SubtotalAmount,
			DiscountAmount: o.DiscountAmount,
			TotalAmount:    o.TotalAmount,
			PromoID:        o.PromoID,
			Items:          outItems,
			CreatedAt:      o.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) List(ctx context.Context, q repo.OrderQuery) ([]model.SalesOrder, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	var orders []model.SalesOrder
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, total, err = r.Orders().List(ctx, q)
		return err
	})
	return orders, total, err
}
