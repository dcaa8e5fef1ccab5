package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"github.com/shopspring/decimal"
)

// =====================
// インメモリ実装（ユースケーステスト用）
// WithinTxは作業コピーに対して実行し、エラー時は捨てる（ロールバック相当）。
// =====================

type memStore struct {
	seq int64

	stocks     map[string]model.Stock
	movements  []model.StockMovement
	locks      []model.StockLock
	warehouses []model.Warehouse

	orders     []model.SalesOrder
	orderItems map[int64][]model.SalesOrderItem
	payments   []model.Payment
	shipments  []model.Shipment

	promos       []model.Promo
	promoRecords []model.PromoRecord

	costs map[string]model.CostSheet

	items      []model.Item
	categories []model.ItemCategory

	members   []model.Member
	levels    []model.MemberLevel
	pointLogs []model.MemberPointLog

	suppliers []model.Supplier
	pos       []model.PurchaseOrder
	poItems   map[int64][]model.PurchaseOrderItem

	boms     []model.BomTemplate
	bomItems map[int64][]model.BomTemplateItem
	mos      []model.ManufactureOrder

	jobs  []model.JobReport
	users []model.User

	outbox    []model.OutboxMessage
	processed map[string]bool
	audits    []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		stocks:     map[string]model.Stock{},
		orderItems: map[int64][]model.SalesOrderItem{},
		costs:      map[string]model.CostSheet{},
		poItems:    map[int64][]model.PurchaseOrderItem{},
		bomItems:   map[int64][]model.BomTemplateItem{},
		processed:  map[string]bool{},
	}
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

func stockKey(skuID string, warehouseID int64) string {
	return fmt.Sprintf("%s|%d", skuID, warehouseID)
}

func costKey(skuID, period string, costType model.CostType) string {
	return fmt.Sprintf("%s|%s|%s", skuID, period, costType)
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *memStore) clone() *memStore {
	return &memStore{
		seq:          s.seq,
		stocks:       copyMap(s.stocks),
		movements:    append([]model.StockMovement(nil), s.movements...),
		locks:        append([]model.StockLock(nil), s.locks...),
		warehouses:   append([]model.Warehouse(nil), s.warehouses...),
		orders:       append([]model.SalesOrder(nil), s.orders...),
		orderItems:   copySliceMap(s.orderItems),
		payments:     append([]model.Payment(nil), s.payments...),
		shipments:    append([]model.Shipment(nil), s.shipments...),
		promos:       append([]model.Promo(nil), s.promos...),
		promoRecords: append([]model.PromoRecord(nil), s.promoRecords...),
		costs:        copyMap(s.costs),
		items:        append([]model.Item(nil), s.items...),
		categories:   append([]model.ItemCategory(nil), s.categories...),
		members:      append([]model.Member(nil), s.members...),
		levels:       append([]model.MemberLevel(nil), s.levels...),
		pointLogs:    append([]model.MemberPointLog(nil), s.pointLogs...),
		suppliers:    append([]model.Supplier(nil), s.suppliers...),
		pos:          append([]model.PurchaseOrder(nil), s.pos...),
		poItems:      copySliceMap(s.poItems),
		boms:         append([]model.BomTemplate(nil), s.boms...),
		bomItems:     copySliceMap(s.bomItems),
		mos:          append([]model.ManufactureOrder(nil), s.mos...),
		jobs:         append([]model.JobReport(nil), s.jobs...),
		users:        append([]model.User(nil), s.users...),
		outbox:       append([]model.OutboxMessage(nil), s.outbox...),
		processed:    copyMap(s.processed),
		audits:       append([]model.AuditLog(nil), s.audits...),
	}
}

type memTx struct {
	store *memStore
}

func newMemTx() *memTx {
	return &memTx{store: newMemStore()}
}

func (t *memTx) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	work := t.store.clone()
	if err := fn(&memRepos{s: work}); err != nil {
		return err
	}
	*t.store = *work
	return nil
}

type memRepos struct {
	s *memStore
}

func (r *memRepos) Stocks() repo.StockRepository             { return &memStockRepo{r.s} }
func (r *memRepos) Orders() repo.OrderRepository             { return &memOrderRepo{r.s} }
func (r *memRepos) Promos() repo.PromoRepository             { return &memPromoRepo{r.s} }
func (r *memRepos) Costs() repo.CostRepository               { return &memCostRepo{r.s} }
func (r *memRepos) Items() repo.ItemRepository               { return &memItemRepo{r.s} }
func (r *memRepos) Members() repo.MemberRepository           { return &memMemberRepo{r.s} }
func (r *memRepos) Purchases() repo.PurchaseRepository       { return &memPurchaseRepo{r.s} }
func (r *memRepos) Productions() repo.ProductionRepository   { return &memProductionRepo{r.s} }
func (r *memRepos) Jobs() repo.JobRepository                 { return &memJobRepo{r.s} }
func (r *memRepos) Users() repo.UserRepository               { return &memUserRepo{r.s} }
func (r *memRepos) Outbox() repo.OutboxRepository            { return &memOutboxRepo{r.s} }
func (r *memRepos) ProcessedEvents() repo.ProcessedEventRepository {
	return &memProcessedRepo{r.s}
}
func (r *memRepos) AuditLogs() repo.AuditLogRepository { return &memAuditRepo{r.s} }

// ---- stock ----

type memStockRepo struct{ s *memStore }

func (m *memStockRepo) FindLine(_ context.Context, skuID string, warehouseID int64) (model.Stock, error) {
	line, ok := m.s.stocks[stockKey(skuID, warehouseID)]
	if !ok {
		return model.Stock{}, repo.ErrNotFound
	}
	return line, nil
}

func (m *memStockRepo) FindLineForUpdate(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error) {
	return m.FindLine(ctx, skuID, warehouseID)
}

func (m *memStockRepo) FindOrCreateLineForUpdate(ctx context.Context, skuID string, warehouseID int64) (model.Stock, error) {
	line, err := m.FindLine(ctx, skuID, warehouseID)
	if err == nil {
		return line, nil
	}
	line = model.Stock{ID: m.s.nextID(), SkuID: skuID, WarehouseID: warehouseID}
	m.s.stocks[stockKey(skuID, warehouseID)] = line
	return line, nil
}

func (m *memStockRepo) SaveLine(_ context.Context, line *model.Stock) error {
	key := stockKey(line.SkuID, line.WarehouseID)
	if _, ok := m.s.stocks[key]; !ok {
		return repo.ErrNotFound
	}
	m.s.stocks[key] = *line
	return nil
}

func (m *memStockRepo) CreateMovement(_ context.Context, mv model.StockMovement) error {
	mv.ID = m.s.nextID()
	mv.CreatedAt = time.Now().UTC()
	m.s.movements = append(m.s.movements, mv)
	return nil
}

func (m *memStockRepo) ListMovements(_ context.Context, q repo.MovementQuery) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, mv := range m.s.movements {
		if q.SkuID != "" && mv.SkuID != q.SkuID {
			continue
		}
		if q.MoveType != "" && mv.MoveType != q.MoveType {
			continue
		}
		if q.SourceNo != "" && mv.SourceNo != q.SourceNo {
			continue
		}
		out = append(out, mv)
	}
	return out, int64(len(out)), nil
}

func (m *memStockRepo) CreateLock(_ context.Context, lock model.StockLock) error {
	lock.ID = m.s.nextID()
	lock.LockedAt = time.Now().UTC()
	m.s.locks = append(m.s.locks, lock)
	return nil
}

func (m *memStockRepo) SaveLock(_ context.Context, lock *model.StockLock) error {
	for i := range m.s.locks {
		if m.s.locks[i].ID == lock.ID {
			m.s.locks[i] = *lock
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStockRepo) FindActiveLocksByRef(_ context.Context, sourceNo string) ([]model.StockLock, error) {
	var out []model.StockLock
	for _, lk := range m.s.locks {
		if lk.SourceNo == sourceNo && lk.Status == model.LockStatusActive {
			out = append(out, lk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SkuID != out[j].SkuID {
			return out[i].SkuID < out[j].SkuID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func (m *memStockRepo) FindExpiredActiveLocks(_ context.Context, before time.Time, limit int) ([]model.StockLock, error) {
	var out []model.StockLock
	for _, lk := range m.s.locks {
		if lk.Status == model.LockStatusActive && lk.LockedAt.Before(before) {
			out = append(out, lk)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memStockRepo) FindWarehouse(_ context.Context, id int64) (model.Warehouse, error) {
	for _, w := range m.s.warehouses {
		if w.ID == id {
			return w, nil
		}
	}
	return model.Warehouse{}, repo.ErrNotFound
}

func (m *memStockRepo) ListWarehouses(_ context.Context) ([]model.Warehouse, error) {
	return append([]model.Warehouse(nil), m.s.warehouses...), nil
}

func (m *memStockRepo) CreateWarehouse(_ context.Context, w model.Warehouse) (int64, error) {
	w.ID = m.s.nextID()
	m.s.warehouses = append(m.s.warehouses, w)
	return w.ID, nil
}

// ---- order ----

type memOrderRepo struct{ s *memStore }

func (m *memOrderRepo) Create(_ context.Context, o model.SalesOrder) (int64, error) {
	o.ID = m.s.nextID()
	o.CreatedAt = time.Now().UTC()
	m.s.orders = append(m.s.orders, o)
	return o.ID, nil
}

func (m *memOrderRepo) CreateItems(_ context.Context, orderID int64, items []model.SalesOrderItem) error {
	for i := range items {
		items[i].ID = m.s.nextID()
		items[i].OrderID = orderID
	}
	m.s.orderItems[orderID] = append(m.s.orderItems[orderID], items...)
	return nil
}

func (m *memOrderRepo) FindByID(_ context.Context, id int64) (model.SalesOrder, error) {
	for _, o := range m.s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.SalesOrder{}, repo.ErrNotFound
}

func (m *memOrderRepo) FindByOrderNo(_ context.Context, orderNo string) (model.SalesOrder, error) {
	for _, o := range m.s.orders {
		if o.OrderNo == orderNo {
			return o, nil
		}
	}
	return model.SalesOrder{}, repo.ErrNotFound
}

func (m *memOrderRepo) FindByOrderNoForUpdate(ctx context.Context, orderNo string) (model.SalesOrder, error) {
	return m.FindByOrderNo(ctx, orderNo)
}

func (m *memOrderRepo) Save(_ context.Context, o *model.SalesOrder) error {
	for i := range m.s.orders {
		if m.s.orders[i].ID == o.ID {
			m.s.orders[i] = *o
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memOrderRepo) ListItemsByOrderID(_ context.Context, orderID int64) ([]model.SalesOrderItem, error) {
	return append([]model.SalesOrderItem(nil), m.s.orderItems[orderID]...), nil
}

func (m *memOrderRepo) List(_ context.Context, q repo.OrderQuery) ([]model.SalesOrder, int64, error) {
	var out []model.SalesOrder
	for _, o := range m.s.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) CreatePayment(_ context.Context, p model.Payment) error {
	p.ID = m.s.nextID()
	m.s.payments = append(m.s.payments, p)
	return nil
}

func (m *memOrderRepo) CreateShipment(_ context.Context, sh model.Shipment) error {
	sh.ID = m.s.nextID()
	m.s.shipments = append(m.s.shipments, sh)
	return nil
}

// ---- promo ----

type memPromoRepo struct{ s *memStore }

func (m *memPromoRepo) Create(_ context.Context, p model.Promo) (int64, error) {
	p.ID = m.s.nextID()
	m.s.promos = append(m.s.promos, p)
	return p.ID, nil
}

func (m *memPromoRepo) FindByID(_ context.Context, id int64) (model.Promo, error) {
	for _, p := range m.s.promos {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Promo{}, repo.ErrNotFound
}

func (m *memPromoRepo) FindByCode(_ context.Context, code string) (model.Promo, error) {
	for _, p := range m.s.promos {
		if p.Code == code {
			return p, nil
		}
	}
	return model.Promo{}, repo.ErrNotFound
}

func (m *memPromoRepo) Save(_ context.Context, p *model.Promo) error {
	for i := range m.s.promos {
		if m.s.promos[i].ID == p.ID {
			m.s.promos[i] = *p
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memPromoRepo) List(_ context.Context, q repo.PromoQuery) ([]model.Promo, int64, error) {
	var out []model.Promo
	for _, p := range m.s.promos {
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.Code != "" && !strings.Contains(p.Code, q.Code) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memPromoRepo) ListEnabledAt(_ context.Context, now time.Time) ([]model.Promo, error) {
	var out []model.Promo
	for _, p := range m.s.promos {
		if p.Status != model.PromoStatusEnabled {
			continue
		}
		if now.Before(p.ValidFrom) || now.After(p.ValidTo) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPromoRepo) CreateRecord(_ context.Context, r model.PromoRecord) error {
	r.ID = m.s.nextID()
	m.s.promoRecords = append(m.s.promoRecords, r)
	return nil
}

// ---- cost ----

type memCostRepo struct{ s *memStore }

func (m *memCostRepo) Replace(_ context.Context, sheet model.CostSheet) error {
	key := costKey(sheet.SkuID, sheet.Period, sheet.CostType)
	if old, ok := m.s.costs[key]; ok {
		sheet.ID = old.ID
	} else {
		sheet.ID = m.s.nextID()
	}
	m.s.costs[key] = sheet
	return nil
}

func (m *memCostRepo) FindByKey(_ context.Context, skuID, period string, costType model.CostType) (model.CostSheet, error) {
	sheet, ok := m.s.costs[costKey(skuID, period, costType)]
	if !ok {
		return model.CostSheet{}, repo.ErrNotFound
	}
	return sheet, nil
}

func (m *memCostRepo) List(_ context.Context, q repo.CostQuery) ([]model.CostSheet, int64, error) {
	var out []model.CostSheet
	for _, sheet := range m.s.costs {
		if q.SkuID != "" && sheet.SkuID != q.SkuID {
			continue
		}
		if q.Period != "" && sheet.Period != q.Period {
			continue
		}
		if q.CostType != "" && sheet.CostType != q.CostType {
			continue
		}
		out = append(out, sheet)
	}
	return out, int64(len(out)), nil
}

// ---- item ----

type memItemRepo struct{ s *memStore }

func (m *memItemRepo) Create(_ context.Context, it model.Item) (int64, error) {
	it.ID = m.s.nextID()
	m.s.items = append(m.s.items, it)
	return it.ID, nil
}

func (m *memItemRepo) FindByID(_ context.Context, id int64) (model.Item, error) {
	for _, it := range m.s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.Item{}, repo.ErrNotFound
}

func (m *memItemRepo) FindBySkuID(_ context.Context, skuID string) (model.Item, error) {
	for _, it := range m.s.items {
		if it.SkuID == skuID {
			return it, nil
		}
	}
	return model.Item{}, repo.ErrNotFound
}

func (m *memItemRepo) Save(_ context.Context, it *model.Item) error {
	for i := range m.s.items {
		if m.s.items[i].ID == it.ID {
			m.s.items[i] = *it
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memItemRepo) List(_ context.Context, q repo.ItemQuery) ([]model.Item, int64, error) {
	var out []model.Item
	for _, it := range m.s.items {
		if q.Status != "" && it.Status != q.Status {
			continue
		}
		out = append(out, it)
	}
	return out, int64(len(out)), nil
}

func (m *memItemRepo) CreateCategory(_ context.Context, c model.ItemCategory) (int64, error) {
	c.ID = m.s.nextID()
	m.s.categories = append(m.s.categories, c)
	return c.ID, nil
}

func (m *memItemRepo) ListCategories(_ context.Context) ([]model.ItemCategory, error) {
	return append([]model.ItemCategory(nil), m.s.categories...), nil
}

// ---- member ----

type memMemberRepo struct{ s *memStore }

func (m *memMemberRepo) Create(_ context.Context, mb model.Member) (int64, error) {
	mb.ID = m.s.nextID()
	m.s.members = append(m.s.members, mb)
	return mb.ID, nil
}

func (m *memMemberRepo) FindByID(_ context.Context, id int64) (model.Member, error) {
	for _, mb := range m.s.members {
		if mb.ID == id {
			return mb, nil
		}
	}
	return model.Member{}, repo.ErrNotFound
}

func (m *memMemberRepo) FindByIDForUpdate(ctx context.Context, id int64) (model.Member, error) {
	return m.FindByID(ctx, id)
}

func (m *memMemberRepo) FindByMemberNo(_ context.Context, memberNo string) (model.Member, error) {
	for _, mb := range m.s.members {
		if mb.MemberNo == memberNo {
			return mb, nil
		}
	}
	return model.Member{}, repo.ErrNotFound
}

func (m *memMemberRepo) Save(_ context.Context, mb *model.Member) error {
	for i := range m.s.members {
		if m.s.members[i].ID == mb.ID {
			m.s.members[i] = *mb
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memMemberRepo) List(_ context.Context, q repo.MemberQuery) ([]model.Member, int64, error) {
	return append([]model.Member(nil), m.s.members...), int64(len(m.s.members)), nil
}

func (m *memMemberRepo) FindLevel(_ context.Context, id int64) (model.MemberLevel, error) {
	for _, l := range m.s.levels {
		if l.ID == id {
			return l, nil
		}
	}
	return model.MemberLevel{}, repo.ErrNotFound
}

func (m *memMemberRepo) ListLevels(_ context.Context) ([]model.MemberLevel, error) {
	out := append([]model.MemberLevel(nil), m.s.levels...)
	sort.Slice(out, func(i, j int) bool { return out[i].MinConsumed.LessThan(out[j].MinConsumed) })
	return out, nil
}

func (m *memMemberRepo) CreateLevel(_ context.Context, l model.MemberLevel) (int64, error) {
	l.ID = m.s.nextID()
	m.s.levels = append(m.s.levels, l)
	return l.ID, nil
}

func (m *memMemberRepo) CreatePointLog(_ context.Context, log model.MemberPointLog) error {
	log.ID = m.s.nextID()
	m.s.pointLogs = append(m.s.pointLogs, log)
	return nil
}

func (m *memMemberRepo) ListPointLogs(_ context.Context, memberID int64, page, limit int) ([]model.MemberPointLog, int64, error) {
	var out []model.MemberPointLog
	for _, log := range m.s.pointLogs {
		if log.MemberID == memberID {
			out = append(out, log)
		}
	}
	return out, int64(len(out)), nil
}

// ---- purchase ----

type memPurchaseRepo struct{ s *memStore }

func (m *memPurchaseRepo) CreateSupplier(_ context.Context, sp model.Supplier) (int64, error) {
	sp.ID = m.s.nextID()
	m.s.suppliers = append(m.s.suppliers, sp)
	return sp.ID, nil
}

func (m *memPurchaseRepo) FindSupplier(_ context.Context, id int64) (model.Supplier, error) {
	for _, sp := range m.s.suppliers {
		if sp.ID == id {
			return sp, nil
		}
	}
	return model.Supplier{}, repo.ErrNotFound
}

func (m *memPurchaseRepo) SaveSupplier(_ context.Context, sp *model.Supplier) error {
	for i := range m.s.suppliers {
		if m.s.suppliers[i].ID == sp.ID {
			m.s.suppliers[i] = *sp
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memPurchaseRepo) ListSuppliers(_ context.Context, page, limit int) ([]model.Supplier, int64, error) {
	return append([]model.Supplier(nil), m.s.suppliers...), int64(len(m.s.suppliers)), nil
}

func (m *memPurchaseRepo) CreateOrder(_ context.Context, po model.PurchaseOrder) (int64, error) {
	po.ID = m.s.nextID()
	m.s.pos = append(m.s.pos, po)
	return po.ID, nil
}

func (m *memPurchaseRepo) CreateOrderItems(_ context.Context, poID int64, items []model.PurchaseOrderItem) error {
	for i := range items {
		items[i].ID = m.s.nextID()
		items[i].PoID = poID
	}
	m.s.poItems[poID] = append(m.s.poItems[poID], items...)
	return nil
}

func (m *memPurchaseRepo) FindOrderByNo(_ context.Context, poNo string) (model.PurchaseOrder, error) {
	for _, po := range m.s.pos {
		if po.PoNo == poNo {
			return po, nil
		}
	}
	return model.PurchaseOrder{}, repo.ErrNotFound
}

func (m *memPurchaseRepo) FindOrderByNoForUpdate(ctx context.Context, poNo string) (model.PurchaseOrder, error) {
	return m.FindOrderByNo(ctx, poNo)
}

func (m *memPurchaseRepo) SaveOrder(_ context.Context, po *model.PurchaseOrder) error {
	for i := range m.s.pos {
		if m.s.pos[i].ID == po.ID {
			m.s.pos[i] = *po
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memPurchaseRepo) ListOrderItems(_ context.Context, poID int64) ([]model.PurchaseOrderItem, error) {
	return append([]model.PurchaseOrderItem(nil), m.s.poItems[poID]...), nil
}

func (m *memPurchaseRepo) ListOrders(_ context.Context, q repo.PurchaseOrderQuery) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for _, po := range m.s.pos {
		if q.Status != "" && po.Status != q.Status {
			continue
		}
		out = append(out, po)
	}
	return out, int64(len(out)), nil
}

// ---- production ----

type memProductionRepo struct{ s *memStore }

func (m *memProductionRepo) CreateBom(_ context.Context, bom model.BomTemplate) (int64, error) {
	bom.ID = m.s.nextID()
	m.s.boms = append(m.s.boms, bom)
	return bom.ID, nil
}

func (m *memProductionRepo) CreateBomItems(_ context.Context, bomID int64, items []model.BomTemplateItem) error {
	for i := range items {
		items[i].ID = m.s.nextID()
		items[i].BomID = bomID
	}
	m.s.bomItems[bomID] = append(m.s.bomItems[bomID], items...)
	return nil
}

func (m *memProductionRepo) FindBom(_ context.Context, id int64) (model.BomTemplate, error) {
	for _, b := range m.s.boms {
		if b.ID == id {
			return b, nil
		}
	}
	return model.BomTemplate{}, repo.ErrNotFound
}

func (m *memProductionRepo) ListBomItems(_ context.Context, bomID int64) ([]model.BomTemplateItem, error) {
	return append([]model.BomTemplateItem(nil), m.s.bomItems[bomID]...), nil
}

func (m *memProductionRepo) ListBoms(_ context.Context, page, limit int) ([]model.BomTemplate, int64, error) {
	return append([]model.BomTemplate(nil), m.s.boms...), int64(len(m.s.boms)), nil
}

func (m *memProductionRepo) CreateMo(_ context.Context, mo model.ManufactureOrder) (int64, error) {
	mo.ID = m.s.nextID()
	m.s.mos = append(m.s.mos, mo)
	return mo.ID, nil
}

func (m *memProductionRepo) FindMoByNo(_ context.Context, moNo string) (model.ManufactureOrder, error) {
	for _, mo := range m.s.mos {
		if mo.MoNo == moNo {
			return mo, nil
		}
	}
	return model.ManufactureOrder{}, repo.ErrNotFound
}

func (m *memProductionRepo) FindMoByNoForUpdate(ctx context.Context, moNo string) (model.ManufactureOrder, error) {
	return m.FindMoByNo(ctx, moNo)
}

func (m *memProductionRepo) SaveMo(_ context.Context, mo *model.ManufactureOrder) error {
	for i := range m.s.mos {
		if m.s.mos[i].ID == mo.ID {
			m.s.mos[i] = *mo
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memProductionRepo) ListMos(_ context.Context, q repo.MoQuery) ([]model.ManufactureOrder, int64, error) {
	var out []model.ManufactureOrder
	for _, mo := range m.s.mos {
		if q.Status != "" && mo.Status != q.Status {
			continue
		}
		out = append(out, mo)
	}
	return out, int64(len(out)), nil
}

// ---- job ----

type memJobRepo struct{ s *memStore }

func (m *memJobRepo) Create(_ context.Context, j model.JobReport) (int64, error) {
	j.ID = m.s.nextID()
	m.s.jobs = append(m.s.jobs, j)
	return j.ID, nil
}

func (m *memJobRepo) ListByMoNo(_ context.Context, moNo string) ([]model.JobReport, error) {
	var out []model.JobReport
	for _, j := range m.s.jobs {
		if j.MoNo == moNo {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memJobRepo) SumWorkHoursByMoNo(_ context.Context, moNo string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, j := range m.s.jobs {
		if j.MoNo == moNo {
			sum = sum.Add(j.WorkHours)
		}
	}
	return sum, nil
}

// ---- user ----

type memUserRepo struct{ s *memStore }

func (m *memUserRepo) Create(_ context.Context, u model.User) (int64, error) {
	u.ID = m.s.nextID()
	m.s.users = append(m.s.users, u)
	return u.ID, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id int64) (model.User, error) {
	for _, u := range m.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (m *memUserRepo) FindByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range m.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (m *memUserRepo) Save(_ context.Context, u *model.User) error {
	for i := range m.s.users {
		if m.s.users[i].ID == u.ID {
			m.s.users[i] = *u
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	return append([]model.User(nil), m.s.users...), int64(len(m.s.users)), nil
}

// ---- outbox / processed / audit ----

type memOutboxRepo struct{ s *memStore }

func (m *memOutboxRepo) Create(_ context.Context, msg model.OutboxMessage) error {
	msg.ID = m.s.nextID()
	msg.CreatedAt = time.Now().UTC()
	m.s.outbox = append(m.s.outbox, msg)
	return nil
}

func (m *memOutboxRepo) ListPending(_ context.Context, limit int) ([]model.OutboxMessage, error) {
	var out []model.OutboxMessage
	for _, msg := range m.s.outbox {
		if msg.Status == model.OutboxStatusPending {
			out = append(out, msg)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memOutboxRepo) MarkSent(_ context.Context, id int64) error {
	for i := range m.s.outbox {
		if m.s.outbox[i].ID == id {
			now := time.Now().UTC()
			m.s.outbox[i].Status = model.OutboxStatusSent
			m.s.outbox[i].SentAt = &now
			return nil
		}
	}
	return repo.ErrNotFound
}

type memProcessedRepo struct{ s *memStore }

func (m *memProcessedRepo) MarkProcessed(_ context.Context, eventID, consumer string) (bool, error) {
	key := eventID + "|" + consumer
	if m.s.processed[key] {
		return false, nil
	}
	m.s.processed[key] = true
	return true, nil
}

type memAuditRepo struct{ s *memStore }

func (m *memAuditRepo) Create(_ context.Context, log model.AuditLog) error {
	log.ID = m.s.nextID()
	log.CreatedAt = time.Now().UTC()
	m.s.audits = append(m.s.audits, log)
	return nil
}

func (m *memAuditRepo) List(_ context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	return append([]model.AuditLog(nil), m.s.audits...), nil
}
