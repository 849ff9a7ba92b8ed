package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity は認証済みユーザーを表す。
type Identity struct {
	// UserID はユーザーの一意識別子。
	UserID string
	// Email はメールアドレス。
	Email string
	// Username は表示名。
	Username string
}

// ContextProvider はリクエストからGraphQL実行用の認証情報を生成する。
// 資格情報が無い場合は (nil, nil) を返す。
type ContextProvider interface {
	ProduceContext(r *http.Request) (*Identity, error)
}

// JWTProvider はBearerトークンを検証する ContextProvider。
type JWTProvider struct {
	// issuer はトークンの検証に使う。
	issuer *Issuer
}

var _ ContextProvider = (*JWTProvider)(nil)

// NewJWTProvider は新しいJWTProviderを生成する。
func NewJWTProvider(issuer *Issuer) *JWTProvider {
	return &JWTProvider{issuer: issuer}
}

// ProduceContext はAuthorizationヘッダー、次にtokenクエリパラメータからトークンを探して検証する。
func (p *JWTProvider) ProduceContext(r *http.Request) (*Identity, error) {
	token, err := extractToken(r)
	if err != nil || token == "" {
		return nil, err
	}
	return p.issuer.Verify(token)
}

func extractToken(r *http.Request) (string, error) {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrMalformedCredential
		}
		return strings.TrimSpace(token), nil
	}
	return r.URL.Query().Get("token"), nil
}

// contextKey はコンテキストキーの型。
type contextKey struct{}

// WithIdentity は認証済みユーザーをコンテキストに設定する。匿名の場合はnilを渡す。
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom はコンテキストから認証済みユーザーを取得する。匿名の場合はnilを返す。
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}

// Require は認証済みユーザーを返す。匿名の場合は ErrNotAuthenticated を返す。
func Require(ctx context.Context) (*Identity, error) {
	if id := IdentityFrom(ctx); id != nil {
		return id, nil
	}
	return nil, ErrNotAuthenticated
}
