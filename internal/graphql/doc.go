// Package graphql はGraphQLエンジンとそのHTTPエンドポイントを提供する。
//
// Engine はスキーマのコンパイルと起動フックの実行を Start で行い、
// 起動が完了するまでクエリを受け付けない。NewHandler はリクエストごとに
// auth.ContextProvider で認証情報を生成し、エンジンで実行した結果を
// GraphQLのレスポンス形式で返す。認証エラーはHTTPステータスではなく
// レスポンスのerrorsに含める。CORSはグローバルミドルウェアに一任し、
// このエンドポイントでは扱わない。
package graphql
