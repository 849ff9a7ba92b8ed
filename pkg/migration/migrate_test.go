package migration

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// newTestDB はテスト用のインメモリSQLiteを生成する。
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	// :memory: は接続ごとに別DBになるため1接続に固定する
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRun はマイグレーションの適用を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/000002_add_items_note.up.sql": {Data: []byte("ALTER TABLE items ADD COLUMN note TEXT NOT NULL DEFAULT '';")},
		"migrations/000001_create_items.up.sql":   {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"migrations/000001_create_items.down.sql": {Data: []byte("DROP TABLE items;")},
		"migrations/README.md":                    {Data: []byte("ignored")},
		"migrations/nover_file.up.sql":            {Data: []byte("SELECT broken")},
	}

	t.Run("バージョン順に適用されること", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		n, err := Run(context.Background(), db, fsys, "migrations", zap.NewNop())
		if err != nil {
			t.Fatalf("Run()でエラーが発生: %v", err)
		}
		if n != 2 {
			t.Errorf("適用件数 = %d, want 2", n)
		}
		if _, err := db.Exec("INSERT INTO items (id, note) VALUES ('a', 'b')"); err != nil {
			t.Errorf("マイグレーション後のINSERTに失敗: %v", err)
		}
	})

	t.Run("2回目の実行では何も適用されないこと", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		if _, err := Run(context.Background(), db, fsys, "migrations", zap.NewNop()); err != nil {
			t.Fatalf("1回目のRun()でエラーが発生: %v", err)
		}
		n, err := Run(context.Background(), db, fsys, "migrations", zap.NewNop())
		if err != nil {
			t.Fatalf("2回目のRun()でエラーが発生: %v", err)
		}
		if n != 0 {
			t.Errorf("適用件数 = %d, want 0", n)
		}
	})

	t.Run("SQLが不正な場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		broken := fstest.MapFS{
			"m/000001_broken.up.sql": {Data: []byte("CREATE TABLE;")},
		}
		db := newTestDB(t)
		if _, err := Run(context.Background(), db, broken, "m", zap.NewNop()); err == nil {
			t.Error("不正なSQLでエラーが返らなかった")
		}
	})

	t.Run("ディレクトリが存在しない場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		if _, err := Run(context.Background(), db, fsys, "missing", zap.NewNop()); err == nil {
			t.Error("存在しないディレクトリでエラーが返らなかった")
		}
	})
}
