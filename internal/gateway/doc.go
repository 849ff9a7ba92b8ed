// Package gateway はBudgeBuddy API Gatewayの起動処理とHTTPパイプラインを提供する。
//
// GraphQLエンジンの起動、ミドルウェアとルートの登録、データストアの
// 準備完了待ちを順に行い、全ての前提条件が揃ってから初めてポートを
// リッスンする。本番モードではビルド済みクライアントも配信する。
package gateway
