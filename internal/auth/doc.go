// Package auth はJWTの発行・検証と、GraphQL実行コンテキストへの認証情報の受け渡しを提供する。
//
// ContextProvider はHTTPリクエストから Identity を生成する。資格情報が無い
// リクエストは匿名（nil）として扱い、エラーにはしない。資格情報が不正な場合のみ
// *Error を返す。エラーはHTTPレイヤーでは拒否せず、GraphQLのerrorsとして返す。
package auth
