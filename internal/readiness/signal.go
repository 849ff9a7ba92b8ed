package readiness

import (
	"context"
	"sync"
)

// Gate はシグナルの購読側インターフェース。
// Ready が返すチャネルは準備完了時にクローズされる。
type Gate interface {
	Ready() <-chan struct{}
}

// Signal は一度だけ発火するラッチ。ゼロ値は使用できないため New で生成する。
type Signal struct {
	// once は発火を一度に制限する。
	once sync.Once
	// done は発火時にクローズされるチャネル。
	done chan struct{}
}

// New は未発火のシグナルを生成する。
func New() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire はシグナルを発火する。初回の呼び出しのみtrueを返す。
func (s *Signal) Fire() bool {
	fired := false
	s.once.Do(func() {
		close(s.done)
		fired = true
	})
	return fired
}

// Ready は発火時にクローズされるチャネルを返す。
func (s *Signal) Ready() <-chan struct{} {
	return s.done
}

// Fired はシグナルが発火済みかどうかを返す。
func (s *Signal) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait はゲートが開くかコンテキストが終了するまでブロックする。
// タイムアウトは設けない。打ち切りたい場合は呼び出し側がコンテキストで制御する。
func Wait(ctx context.Context, g Gate) error {
	select {
	case <-g.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
