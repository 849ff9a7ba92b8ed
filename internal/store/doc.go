// Package store はユーザーと支出を永続化するデータストアを提供する。
//
// バックエンドはSQLite（modernc.org/sqlite）とMongoDBから選択する。
// Connect はバックグラウンドで接続を確立し、成功した時点で一度だけ
// readiness シグナルを発火する。Gatewayはこのシグナルが発火するまで
// リッスンを開始しない。
package store
