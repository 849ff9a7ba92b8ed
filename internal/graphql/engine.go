package graphql

import (
	"context"
	"errors"
	"fmt"
	"sync"

	graphqlgo "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"go.uber.org/zap"

	"github.com/nao1215/budgebuddy/internal/auth"
	"github.com/nao1215/budgebuddy/internal/store"
)

var (
	// ErrEngineStarted はStartが二度呼ばれたことを表す。
	ErrEngineStarted = errors.New("GraphQLエンジンは既に起動しています")
	// errEngineNotStarted は起動前のエンジンでクエリを実行しようとしたことを表す。
	errEngineNotStarted = errors.New("graphql engine has not started")
)

// StartHook はエンジン起動時に実行される初期化処理。エラーを返すと起動は失敗する。
type StartHook func(ctx context.Context) error

// Option はEngineの設定を変更する。
type Option func(*Engine)

// WithStartHook は起動フックを追加する。フックは登録順に実行される。
func WithStartHook(h StartHook) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, h)
	}
}

// WithMaxDepth はクエリの最大ネスト深さを設定する。0以下は無制限。
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// Request はGraphQL-over-HTTPのリクエスト。
type Request struct {
	// Query はクエリ文字列。
	Query string `json:"query"`
	// OperationName は実行する操作名。
	OperationName string `json:"operationName"`
	// Variables は変数。
	Variables map[string]any `json:"variables"`
}

// Engine はコンパイル済みスキーマを保持するGraphQL実行エンジン。
type Engine struct {
	// resolver はルートリゾルバ。
	resolver *Resolver
	// hooks は起動フック。
	hooks []StartHook
	// maxDepth はクエリの最大ネスト深さ。
	maxDepth int
	// logger はロガー。
	logger *zap.Logger

	// mu はschemaを保護する。
	mu sync.RWMutex
	// schema はStart完了後に設定される。
	schema *graphqlgo.Schema
}

// NewEngine は新しいEngineを生成する。スキーマのコンパイルはStartで行う。
func NewEngine(repo store.Repository, issuer *auth.Issuer, logger *zap.Logger, opts ...Option) *Engine {
	logger = logger.Named("graphql")
	e := &Engine{
		resolver: newResolver(repo, issuer, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start はスキーマをコンパイルし、起動フックを順に実行する。
// いずれかが失敗した場合はエンジンは起動しない。
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.schema != nil {
		return ErrEngineStarted
	}

	opts := []graphqlgo.SchemaOpt{
		graphqlgo.Logger(panicLogger{logger: e.logger}),
	}
	if e.maxDepth > 0 {
		opts = append(opts, graphqlgo.MaxDepth(e.maxDepth))
	}
	schema, err := graphqlgo.ParseSchema(schemaSDL, e.resolver, opts...)
	if err != nil {
		return fmt.Errorf("スキーマのコンパイルに失敗: %w", err)
	}

	for i, hook := range e.hooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("起動フック %d が失敗: %w", i, err)
		}
	}

	e.schema = schema
	e.logger.Info("GraphQLエンジンを起動しました")
	return nil
}

// Started はStartが完了しているかどうかを返す。
func (e *Engine) Started() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schema != nil
}

// Execute はリクエストを実行する。起動前の場合はエラーのみのレスポンスを返す。
func (e *Engine) Execute(ctx context.Context, req Request) *graphqlgo.Response {
	e.mu.RLock()
	schema := e.schema
	e.mu.RUnlock()

	if schema == nil {
		return &graphqlgo.Response{
			Errors: []*gqlerrors.QueryError{{Message: errEngineNotStarted.Error()}},
		}
	}
	return schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
}

// panicLogger はリゾルバのパニックをzapで記録する。
type panicLogger struct {
	logger *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value any) {
	l.logger.Error("リゾルバでパニックが発生しました", zap.Any("panic", value), zap.Stack("stack"))
}
