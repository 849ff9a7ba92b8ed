package gateway

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/budgebuddy/internal/auth"
	"github.com/nao1215/budgebuddy/internal/config"
	"github.com/nao1215/budgebuddy/internal/graphql"
	"github.com/nao1215/budgebuddy/internal/readiness"
	"github.com/nao1215/budgebuddy/pkg/middleware"
)

// ErrAlreadyStarted はRunが二度呼ばれたことを表す。
var ErrAlreadyStarted = errors.New("Gatewayサーバーは既に起動しています")

// ListenFunc はリスナーを生成する関数。net.Listenと同じシグネチャを持つ。
type ListenFunc func(network, address string) (net.Listener, error)

// Option はServerの設定を変更する。
type Option func(*Server)

// WithListenFunc はリスナーの生成方法を差し替える。
func WithListenFunc(fn ListenFunc) Option {
	return func(s *Server) {
		s.listen = fn
	}
}

// WithStaticFS は本番モードで配信するクライアントのファイルシステムを差し替える。
func WithStaticFS(fsys fs.FS) Option {
	return func(s *Server) {
		s.static = fsys
	}
}

// Server はAPI GatewayのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はプロセス設定。
	cfg *config.Config
	// engine はGraphQL実行エンジン。
	engine *graphql.Engine
	// provider はリクエストごとの認証情報を生成する。
	provider auth.ContextProvider
	// gate はデータストアの準備完了シグナル。
	gate readiness.Gate
	// logger はロガー。
	logger *zap.Logger
	// static は本番モードで配信するクライアント。
	static fs.FS
	// listen はリスナーを生成する。
	listen ListenFunc

	// mu は以下のフィールドを保護する。
	mu sync.Mutex
	// started はRunが呼ばれたかどうか。
	started bool
	// state は起動シーケンスの現在の状態。
	state State
	// addr はリッスン中のアドレス。Listening到達前はnil。
	addr net.Addr
}

// NewServer は新しいGatewayサーバーを生成する。
// ルートの登録とリッスンはRunで行う。
func NewServer(cfg *config.Config, engine *graphql.Engine, provider auth.ContextProvider, gate readiness.Gate, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		router:   gin.New(),
		cfg:      cfg,
		engine:   engine,
		provider: provider,
		gate:     gate,
		logger:   logger.Named("gateway"),
		listen:   net.Listen,
		state:    StateInitializing,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.static == nil && cfg.IsProduction() {
		s.static = os.DirFS(cfg.StaticDir)
	}
	return s
}

// Run は起動シーケンスを実行し、ctxが終了するまでリクエストを処理する。
// エンジンの起動に失敗した場合はルートを登録せずにエラーを返す。
// データストアが準備完了にならない限りポートはリッスンしない。
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.setState(StateEngineStarting)
	if err := s.engine.Start(ctx); err != nil {
		return fmt.Errorf("GraphQLエンジンの起動に失敗: %w", err)
	}

	s.setupRoutes()
	s.setState(StateMiddlewareRegistered)

	s.setState(StateAwaitingStore)
	s.logger.Info("データストアの準備完了を待機しています")
	if err := readiness.Wait(ctx, s.gate); err != nil {
		return err
	}

	ln, err := s.listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("ポート %s のリッスンに失敗: %w", s.cfg.Port, err)
	}
	return s.serve(ctx, ln)
}

// serve はlnでリクエストを受け付け、ctxの終了時にグレースフルシャットダウンする。
func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.state = StateListening
	s.mu.Unlock()

	port := s.cfg.Port
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = fmt.Sprint(tcp.Port)
	}
	s.logger.Info("API server running", zap.String("port", port))
	s.logger.Info("Use GraphQL", zap.String("url", fmt.Sprintf("http://localhost:%s%s", port, graphql.Path)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーが異常終了: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("シャットダウンしています")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	return nil
}

// State は起動シーケンスの現在の状態を返す。
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr はリッスン中のアドレスを返す。Listening到達前はnilを返す。
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// setupRoutes はミドルウェアとルートを登録する。登録順がそのまま処理順になる。
// 静的ファイル配信はNoRouteとして最後に登録するため、APIルートを隠すことはない。
func (s *Server) setupRoutes() {
	s.router.Use(middleware.ReferrerPolicy())
	s.router.Use(middleware.AccessLog(s.logger))
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig(s.cfg.CORSOrigin)))
	s.router.Use(middleware.BodyParser(s.cfg.BodyLimit))

	// GraphQLエンドポイント。CORSはグローバルミドルウェアに任せる
	h := graphql.NewHandler(s.engine, s.provider, s.logger)
	s.router.GET(graphql.Path, h)
	s.router.POST(graphql.Path, h)

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())

	if s.cfg.IsProduction() {
		s.router.NoRoute(staticAssets(s.static, s.logger))
	}
}

// handleHealth はヘルスチェックのハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "waiting"
		select {
		case <-s.gate.Ready():
			status = "ready"
		default:
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway", "store": status})
	}
}
