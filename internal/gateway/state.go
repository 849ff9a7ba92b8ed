package gateway

// State は起動シーケンスの状態。
type State int

const (
	// StateInitializing はRun呼び出し前の状態。
	StateInitializing State = iota
	// StateEngineStarting はGraphQLエンジンを起動中の状態。
	StateEngineStarting
	// StateMiddlewareRegistered はミドルウェアとルートの登録が完了した状態。
	StateMiddlewareRegistered
	// StateAwaitingStore はデータストアの準備完了を待っている状態。
	StateAwaitingStore
	// StateListening はポートをリッスンしてリクエストを受け付けている状態。
	StateListening
)

// String は状態名を返す。
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateEngineStarting:
		return "EngineStarting"
	case StateMiddlewareRegistered:
		return "MiddlewareRegistered"
	case StateAwaitingStore:
		return "AwaitingStore"
	case StateListening:
		return "Listening"
	default:
		return "Unknown"
	}
}
