package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nao1215/budgebuddy/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// sqliteStore はSQLiteによる Repository 実装。
type sqliteStore struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// openSQLite はSQLiteを開き、疎通確認とマイグレーションを行う。
func openSQLite(ctx context.Context, path string, logger *zap.Logger) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == ":memory:" {
		// インメモリDBは接続ごとに独立するため1接続に固定する
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースの疎通確認に失敗: %w", err)
	}
	if _, err := migration.Run(ctx, db, migrationsFS, "migrations", logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

// sqliteDSN はファイルDBにWALとビジータイムアウトを設定したDSNを返す。
func sqliteDSN(path string) string {
	pragmas := "_pragma=foreign_keys(1)"
	if path != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func (s *sqliteStore) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *sqliteStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return nil
}

func (s *sqliteStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *sqliteStore) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *sqliteStore) AddExpense(ctx context.Context, e *Expense) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, description, amount, category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Description, e.Amount, e.Category, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("支出の記録に失敗: %w", err)
	}
	return nil
}

func (s *sqliteStore) ExpensesByUser(ctx context.Context, userID string) ([]Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount, category, created_at
		   FROM expenses WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("支出の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	expenses := []Expense{}
	for rows.Next() {
		var (
			e         Expense
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("支出の読み取りに失敗: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *sqliteStore) RemoveExpense(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("支出の削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return n > 0, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u         User
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// 日時はソート可能な固定長のRFC3339形式で保存する。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日時のパースに失敗: %w", err)
	}
	return t, nil
}
