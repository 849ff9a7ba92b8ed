package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound は対象のレコードが存在しないことを表す。
	ErrNotFound = errors.New("レコードが見つかりません")
	// ErrDuplicate は一意制約に違反したことを表す。
	ErrDuplicate = errors.New("レコードが既に存在します")
	// ErrNotReady はデータストアへの接続がまだ確立していないことを表す。
	ErrNotReady = errors.New("データストアの準備ができていません")
)

// User はユーザーアカウント。
type User struct {
	// ID はユーザーの一意識別子（UUID）。
	ID string `bson:"_id"`
	// Username は表示名。
	Username string `bson:"username"`
	// Email はログインに使うメールアドレス。小文字で保存する。
	Email string `bson:"email"`
	// PasswordHash はbcryptでハッシュ化したパスワード。
	PasswordHash string `bson:"password_hash"`
	// CreatedAt は作成日時（UTC）。
	CreatedAt time.Time `bson:"created_at"`
}

// Expense はユーザーが記録した1件の支出。
type Expense struct {
	// ID は支出の一意識別子（UUID）。
	ID string `bson:"_id"`
	// UserID は所有ユーザーのID。
	UserID string `bson:"user_id"`
	// Description は支出の内容。
	Description string `bson:"description"`
	// Amount は金額。
	Amount float64 `bson:"amount"`
	// Category は分類。
	Category string `bson:"category"`
	// CreatedAt は記録日時（UTC）。
	CreatedAt time.Time `bson:"created_at"`
}

// Repository はGraphQLリゾルバが使用する永続化操作。
type Repository interface {
	// CreateUser はユーザーを作成する。メールアドレスが重複する場合は ErrDuplicate を返す。
	CreateUser(ctx context.Context, u *User) error
	// UserByEmail はメールアドレスでユーザーを取得する。
	UserByEmail(ctx context.Context, email string) (*User, error)
	// UserByID はIDでユーザーを取得する。
	UserByID(ctx context.Context, id string) (*User, error)
	// AddExpense は支出を記録する。
	AddExpense(ctx context.Context, e *Expense) error
	// ExpensesByUser はユーザーの支出を新しい順に返す。
	ExpensesByUser(ctx context.Context, userID string) ([]Expense, error)
	// RemoveExpense はユーザー自身の支出を削除し、削除したかどうかを返す。
	RemoveExpense(ctx context.Context, userID, id string) (bool, error)
}

// backend は接続済みのデータストア実装。
type backend interface {
	Repository
	Close(ctx context.Context) error
}
