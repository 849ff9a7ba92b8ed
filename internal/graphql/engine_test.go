package graphql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/budgebuddy/internal/auth"
	"github.com/nao1215/budgebuddy/internal/config"
	"github.com/nao1215/budgebuddy/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testJWTSecret はテスト用のJWT署名秘密鍵。
const testJWTSecret = "test-secret-key"

// newTestStore は接続済みのインメモリSQLiteストアを生成する。
func newTestStore(t *testing.T) *store.Connection {
	t.Helper()

	conn := store.Connect(context.Background(), config.StoreConfig{
		Driver:     config.StoreDriverSQLite,
		SQLitePath: ":memory:",
	}, zap.NewNop())
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	select {
	case <-conn.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("5秒以内にデータストアが準備完了にならなかった")
	}
	return conn
}

// newTestEngine は起動済みのEngineを生成する。
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	e := NewEngine(newTestStore(t), auth.NewIssuer(testJWTSecret, time.Hour), zap.NewNop(), opts...)
	e.resolver.bcryptCost = bcrypt.MinCost
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("エンジンの起動に失敗: %v", err)
	}
	return e
}

// TestEngineStart はエンジンの起動処理を検証する。
func TestEngineStart(t *testing.T) {
	t.Parallel()

	t.Run("起動フックが登録順に実行されること", func(t *testing.T) {
		t.Parallel()

		var order []int
		e := NewEngine(nil, nil, zap.NewNop(),
			WithStartHook(func(context.Context) error { order = append(order, 1); return nil }),
			WithStartHook(func(context.Context) error { order = append(order, 2); return nil }),
		)
		if err := e.Start(context.Background()); err != nil {
			t.Fatalf("Start()でエラーが発生: %v", err)
		}
		if len(order) != 2 || order[0] != 1 || order[1] != 2 {
			t.Errorf("実行順 = %v, want [1 2]", order)
		}
		if !e.Started() {
			t.Error("Started() = false, want true")
		}
	})

	t.Run("起動フックが失敗した場合はエンジンが起動しないこと", func(t *testing.T) {
		t.Parallel()

		hookErr := errors.New("プラグインの初期化に失敗")
		e := NewEngine(nil, nil, zap.NewNop(),
			WithStartHook(func(context.Context) error { return hookErr }),
		)
		if err := e.Start(context.Background()); !errors.Is(err, hookErr) {
			t.Errorf("Start() error = %v, want %v", err, hookErr)
		}
		if e.Started() {
			t.Error("Started() = true, want false")
		}

		resp := e.Execute(context.Background(), Request{Query: "{ me { id } }"})
		if len(resp.Errors) != 1 {
			t.Fatalf("errors件数 = %d, want 1", len(resp.Errors))
		}
	})

	t.Run("二度目のStartはErrEngineStartedを返すこと", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(nil, nil, zap.NewNop())
		if err := e.Start(context.Background()); err != nil {
			t.Fatalf("Start()でエラーが発生: %v", err)
		}
		if err := e.Start(context.Background()); !errors.Is(err, ErrEngineStarted) {
			t.Errorf("Start() error = %v, want %v", err, ErrEngineStarted)
		}
	})

	t.Run("最大深さを超えるクエリは拒否されること", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t, WithMaxDepth(1))
		resp := e.Execute(context.Background(), Request{Query: "{ me { expenses { id } } }"})
		if len(resp.Errors) == 0 {
			t.Error("深さ制限を超えるクエリでエラーが返らなかった")
		}
	})
}
