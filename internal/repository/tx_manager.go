package repository

import "context"

// トランザクション内で使う約束。
// 各エンティティの変更入口は所有コンポーネントのrepoだけに置く。
type TxRepos interface {
	Stocks() StockRepository
	Orders() OrderRepository
	Promos() PromoRepository
	Costs() CostRepository
	Items() ItemRepository
	Members() MemberRepository
	Purchases() PurchaseRepository
	Productions() ProductionRepository
	Jobs() JobRepository
	Users() UserRepository
	Outbox() OutboxRepository
	ProcessedEvents() ProcessedEventRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
