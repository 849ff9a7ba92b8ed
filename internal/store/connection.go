package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nao1215/budgebuddy/internal/config"
	"github.com/nao1215/budgebuddy/internal/readiness"
)

// Connection はデータストアへの接続を所有し、準備完了を一度だけ通知する。
// Repository を実装し、接続確立前の呼び出しには ErrNotReady を返す。
type Connection struct {
	// signal は接続確立時に発火する。
	signal *readiness.Signal
	// logger はロガー。
	logger *zap.Logger
	// mu はbackendを保護する。
	mu sync.RWMutex
	// backend は接続済みの実装。接続確立前はnil。
	backend backend
	// closed はCloseが呼ばれたかどうか。
	closed bool
}

var _ Repository = (*Connection)(nil)

// Connect はバックグラウンドでデータストアへの接続を開始する。
// 接続に成功するとReadyのチャネルがクローズされる。失敗した場合はログを出力し、
// シグナルは発火しないまま残る。リトライは行わない。
func Connect(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) *Connection {
	c := newConnection(logger)
	go func() {
		b, err := openBackend(ctx, cfg, c.logger)
		if err != nil {
			c.logger.Error("データストアへの接続に失敗しました",
				zap.String("driver", string(cfg.Driver)),
				zap.Error(err))
			return
		}
		c.attach(b)
	}()
	return c
}

func newConnection(logger *zap.Logger) *Connection {
	return &Connection{
		signal: readiness.New(),
		logger: logger.Named("store"),
	}
}

func openBackend(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (backend, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		return openSQLite(ctx, cfg.SQLitePath, logger)
	case config.StoreDriverMongoDB:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("未対応のドライバです: %q", cfg.Driver)
	}
}

// attach は接続済みのバックエンドを登録し、シグナルを発火する。
// Close済みの場合は登録せずにバックエンドを閉じる。
func (c *Connection) attach(b backend) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if err := b.Close(context.Background()); err != nil {
			c.logger.Warn("Close後に確立した接続の切断に失敗しました", zap.Error(err))
		}
		return
	}
	c.backend = b
	c.mu.Unlock()

	if c.signal.Fire() {
		c.logger.Info("データストアに接続しました")
	}
}

// Ready は接続確立時にクローズされるチャネルを返す。
func (c *Connection) Ready() <-chan struct{} {
	return c.signal.Ready()
}

// IsReady は接続が確立済みかどうかを返す。
func (c *Connection) IsReady() bool {
	return c.signal.Fired()
}

// Close は接続を閉じる。接続確立中の場合は、確立した時点でattachが閉じる。
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	b := c.backend
	c.backend = nil
	c.closed = true
	c.mu.Unlock()
	if b == nil {
		return nil
	}
	return b.Close(ctx)
}

func (c *Connection) repo() (backend, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.backend == nil {
		return nil, ErrNotReady
	}
	return c.backend, nil
}

func (c *Connection) CreateUser(ctx context.Context, u *User) error {
	b, err := c.repo()
	if err != nil {
		return err
	}
	return b.CreateUser(ctx, u)
}

func (c *Connection) UserByEmail(ctx context.Context, email string) (*User, error) {
	b, err := c.repo()
	if err != nil {
		return nil, err
	}
	return b.UserByEmail(ctx, email)
}

func (c *Connection) UserByID(ctx context.Context, id string) (*User, error) {
	b, err := c.repo()
	if err != nil {
		return nil, err
	}
	return b.UserByID(ctx, id)
}

func (c *Connection) AddExpense(ctx context.Context, e *Expense) error {
	b, err := c.repo()
	if err != nil {
		return err
	}
	return b.AddExpense(ctx, e)
}

func (c *Connection) ExpensesByUser(ctx context.Context, userID string) ([]Expense, error) {
	b, err := c.repo()
	if err != nil {
		return nil, err
	}
	return b.ExpensesByUser(ctx, userID)
}

func (c *Connection) RemoveExpense(ctx context.Context, userID, id string) (bool, error) {
	b, err := c.repo()
	if err != nil {
		return false, err
	}
	return b.RemoveExpense(ctx, userID, id)
}
