// Package readiness は外部依存が利用可能になったことを一度だけ通知するシグナルを提供する。
//
// データストアの接続処理が Signal を発火し、Gatewayは読み取り専用の Gate として
// それを購読する。発火は一度きりでリセットはできない。
package readiness
