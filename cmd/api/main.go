package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erp/internal/config"
	"erp/internal/handler"
	"erp/internal/infra/db"
	"erp/internal/infra/eventbus"
	"erp/internal/infra/logger"
	infraRepo "erp/internal/infra/repository"
	"erp/internal/relay"
	"erp/internal/server"
	"erp/internal/usecase"
	"erp/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	// ローカル開発時のみ.envが存在する
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.GoEnv)

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	tx := infraRepo.NewTxManagerGorm(gormDB)

	stockUC := usecase.NewStockUsecase(tx)
	promoUC := usecase.NewPromoUsecase(tx)
	orderUC := usecase.NewOrderUsecase(tx, stockUC, promoUC)
	costUC := usecase.NewCostUsecase(tx)
	itemUC := usecase.NewItemUsecase(tx)
	memberUC := usecase.NewMemberUsecase(tx)
	purchaseUC := usecase.NewPurchaseUsecase(tx, stockUC)
	productionUC := usecase.NewProductionUsecase(tx, stockUC)
	jobUC := usecase.NewJobUsecase(tx)
	authUC := usecase.NewAuthUsecase(tx, cfg)
	reportUC := usecase.NewReportUsecase(tx)

	publisher := eventbus.NewKafkaPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go relay.New(tx, publisher, log).Run(ctx)
	worker.New(cfg, publisher, stockUC, costUC, memberUC, log).Run(ctx)

	srv := server.New(cfg, log, server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Stock:      handler.NewStockHandler(stockUC),
		Order:      handler.NewOrderHandler(orderUC),
		Promo:      handler.NewPromoHandler(promoUC),
		Item:       handler.NewItemHandler(itemUC),
		Member:     handler.NewMemberHandler(memberUC),
		Purchase:   handler.NewPurchaseHandler(purchaseUC),
		Production: handler.NewProductionHandler(productionUC, jobUC),
		Cost:       handler.NewCostHandler(costUC),
		Report:     handler.NewReportHandler(reportUC),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
