// BudgeBuddy API Gatewayのエントリポイント。
// GraphQLエンジンを起動し、データストアの準備完了後にリクエストの受け付けを開始する。
// 本番モードではビルド済みクライアントも配信する。
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nao1215/budgebuddy/internal/auth"
	"github.com/nao1215/budgebuddy/internal/config"
	"github.com/nao1215/budgebuddy/internal/gateway"
	"github.com/nao1215/budgebuddy/internal/graphql"
	"github.com/nao1215/budgebuddy/internal/store"
)

func main() {
	// .envは任意。存在しなければ環境変数のみを使う
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf(".envの読み込みに失敗: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}

	// runの後処理（データストアの切断）を終えてから終了コードを決める
	err = run(cfg, logger)
	if err != nil {
		logger.Error("Gatewayサービスが異常終了しました", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run はGatewayを起動し、シグナルを受けるまでブロックする。
func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn := store.Connect(ctx, cfg.Store, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := conn.Close(closeCtx); err != nil {
			logger.Warn("データストアの切断に失敗しました", zap.Error(err))
		}
	}()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	engine := graphql.NewEngine(conn, issuer, logger, graphql.WithMaxDepth(cfg.GraphQLMaxDepth))
	server := gateway.NewServer(cfg, engine, auth.NewJWTProvider(issuer), conn, logger)

	logger.Info("Gatewayサービスを起動します",
		zap.String("port", cfg.Port),
		zap.String("mode", string(cfg.Mode)),
		zap.String("store", string(cfg.Store.Driver)))

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newLogger はデプロイモードとログレベルに応じたロガーを生成する。
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("ログレベル %q が不正: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	return zcfg.Build(zap.Fields(zap.String("service", "gateway")))
}
