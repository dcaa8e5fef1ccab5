package repository

import (
	"context"

	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	stocks          repo.StockRepository
	orders          repo.OrderRepository
	promos          repo.PromoRepository
	costs           repo.CostRepository
	items           repo.ItemRepository
	members         repo.MemberRepository
	purchases       repo.PurchaseRepository
	productions     repo.ProductionRepository
	jobs            repo.JobRepository
	users           repo.UserRepository
	outbox          repo.OutboxRepository
	processedEvents repo.ProcessedEventRepository
	auditLogs       repo.AuditLogRepository
}

func (r *txReposGorm) Stocks() repo.StockRepository                   { return r.stocks }
func (r *txReposGorm) Orders() repo.OrderRepository                   { return r.orders }
func (r *txReposGorm) Promos() repo.PromoRepository                   { return r.promos }
func (r *txReposGorm) Costs() repo.CostRepository                     { return r.costs }
func (r *txReposGorm) Items() repo.ItemRepository                     { return r.items }
func (r *txReposGorm) Members() repo.MemberRepository                 { return r.members }
func (r *txReposGorm) Purchases() repo.PurchaseRepository             { return r.purchases }
func (r *txReposGorm) Productions() repo.ProductionRepository         { return r.productions }
func (r *txReposGorm) Jobs() repo.JobRepository                       { return r.jobs }
func (r *txReposGorm) Users() repo.UserRepository                     { return r.users }
func (r *txReposGorm) Outbox() repo.OutboxRepository                  { return r.outbox }
func (r *txReposGorm) ProcessedEvents() repo.ProcessedEventRepository { return r.processedEvents }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository             { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			stocks:          NewStockGormRepository(tx),
			orders:          NewOrderGormRepository(tx),
			promos:          NewPromoGormRepository(tx),
			costs:           NewCostGormRepository(tx),
			items:           NewItemGormRepository(tx),
			members:         NewMemberGormRepository(tx),
			purchases:       NewPurchaseGormRepository(tx),
			productions:     NewProductionGormRepository(tx),
			jobs:            NewJobGormRepository(tx),
			users:           NewUserGormRepository(tx),
			outbox:          NewOutboxGormRepository(tx),
			processedEvents: NewProcessedEventGormRepository(tx),
			auditLogs:       NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
