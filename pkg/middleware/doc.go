// Package middleware はGatewayのHTTPパイプラインで使用するGinミドルウェアを提供する。
//
// セキュリティヘッダー、アクセスログ、パニックリカバリ、CORS、
// リクエストボディの解析を含む。登録順はgatewayパッケージが決める。
package middleware
