package server

import (
	"erp/internal/domain/model"
	"erp/internal/handler"
	"erp/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers束ねてDIを1箇所にまとめる
type Handlers struct {
	Auth       *handler.AuthHandler
	Stock      *handler.StockHandler
	Order      *handler.OrderHandler
	Promo      *handler.PromoHandler
	Item       *handler.ItemHandler
	Member     *handler.MemberHandler
	Purchase   *handler.PurchaseHandler
	Production *handler.ProductionHandler
	Cost       *handler.CostHandler
	Report     *handler.ReportHandler
}

func (s *Server) registerRoutes(h Handlers) {
	e := s.echo

	// 認証不要
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)
	if s.cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api/v1", middleware.AuthJWT(s.cfg))

	// 商品
	api.GET("/items", h.Item.List)
	api.GET("/items/:sku", h.Item.Get)
	api.POST("/items", h.Item.Create, middleware.RequireCapability(model.CapCatalogWrite))
	api.PUT("/items/:sku", h.Item.Update, middleware.RequireCapability(model.CapCatalogWrite))
	api.PUT("/items/:sku/status", h.Item.SetStatus, middleware.RequireCapability(model.CapCatalogWrite))
	api.GET("/categories", h.Item.ListCategories)
	api.POST("/categories", h.Item.CreateCategory, middleware.RequireCapability(model.CapCatalogWrite))

	// 在庫
	api.GET("/stocks/:sku/:warehouse", h.Stock.GetLine)
	api.GET("/stock-movements", h.Stock.ListMovements)
	api.GET("/stock-locks", h.Stock.ListLocks)
	api.GET("/warehouses", h.Stock.ListWarehouses)
	stockWrite := middleware.RequireCapability(model.CapStockWrite)
	api.POST("/warehouses", h.Stock.CreateWarehouse, stockWrite)
	api.POST("/stocks/lock", h.Stock.Lock, stockWrite)
	api.POST("/stocks/unlock", h.Stock.Unlock, stockWrite)
	api.POST("/stocks/in", h.Stock.MoveIn, stockWrite)
	api.POST("/stocks/out", h.Stock.MoveOut, stockWrite)

	// 受注
	api.GET("/orders", h.Order.List)
	api.GET("/orders/:no", h.Order.Get)
	orderWrite := middleware.RequireCapability(model.CapOrderWrite)
	api.POST("/orders", h.Order.Create, orderWrite)
	api.POST("/orders/:no/pay", h.Order.Pay, orderWrite)
	api.POST("/orders/:no/cancel", h.Order.Cancel, orderWrite)
	api.POST("/orders/:no/ship", h.Order.Ship, orderWrite)
	api.POST("/orders/:no/complete", h.Order.Complete, orderWrite)
	api.POST("/orders/:no/refund-request", h.Order.RequestRefund, orderWrite)
	api.POST("/orders/:no/refund", h.Order.Refund, orderWrite)

	// 販促
	api.POST("/promo/calc", h.Promo.Calculate)
	api.GET("/promos", h.Promo.List)
	api.GET("/promos/:id", h.Promo.Get)
	api.POST("/promos", h.Promo.Create, middleware.RequireCapability(model.CapPromoWrite))
	api.PUT("/promos/:id/status", h.Promo.UpdateStatus, middleware.RequireCapability(model.CapPromoWrite))

	// 会員
	api.GET("/members", h.Member.List)
	api.GET("/members/:id", h.Member.Get)
	api.GET("/members/:id/points", h.Member.ListPointLogs)
	api.POST("/members", h.Member.Create, orderWrite)
	api.POST("/members/:id/points/adjust", h.Member.AdjustPoints, middleware.RequireCapability(model.CapAdminOps))
	api.GET("/member-levels", h.Member.ListLevels)
	api.POST("/member-levels", h.Member.CreateLevel, middleware.RequireCapability(model.CapAdminOps))

	// 仕入
	api.GET("/suppliers", h.Purchase.ListSuppliers)
	api.POST("/suppliers", h.Purchase.CreateSupplier, stockWrite)
	api.GET("/purchase-orders", h.Purchase.List)
	api.GET("/purchase-orders/:no", h.Purchase.Get)
	api.POST("/purchase-orders", h.Purchase.CreateOrder, stockWrite)
	api.POST("/purchase-orders/:no/approve", h.Purchase.Approve, stockWrite)
	api.POST("/purchase-orders/:no/receive", h.Purchase.Receive, stockWrite)

	// 生産
	api.GET("/boms", h.Production.ListBoms)
	api.POST("/boms", h.Production.CreateBom, stockWrite)
	api.GET("/manufacture-orders", h.Production.ListMos)
	api.GET("/manufacture-orders/:no", h.Production.GetMo)
	api.POST("/manufacture-orders", h.Production.CreateMo, stockWrite)
	api.POST("/manufacture-orders/:no/start", h.Production.Start, stockWrite)
	api.POST("/manufacture-orders/:no/complete", h.Production.Complete, stockWrite)
	api.GET("/manufacture-orders/:no/jobs", h.Production.ListJobs)
	api.POST("/manufacture-orders/:no/jobs", h.Production.ReportJob, stockWrite)

	// 原価
	api.GET("/cost-sheets", h.Cost.List)
	api.GET("/cost-sheets/:sku/:period/:type", h.Cost.Get)

	// 帳票
	reportRead := middleware.RequireCapability(model.CapReportRead)
	api.GET("/reports/movements.xlsx", h.Report.ExportMovements, reportRead)
	api.GET("/reports/cost-sheets.xlsx", h.Report.ExportCostSheets, reportRead)

	// 管理
	adminOps := middleware.RequireCapability(model.CapAdminOps)
	api.GET("/users", h.Auth.ListUsers, adminOps)
	api.PUT("/users/:id/active", h.Auth.SetActive, adminOps)
}
