package auth

// Error は認証に関するエラー。GraphQLのerrorsにはcodeを拡張情報として含める。
type Error struct {
	// Message は利用者向けのメッセージ。
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions はGraphQLエラーの拡張情報を返す。
func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": "UNAUTHENTICATED"}
}

var (
	// ErrInvalidToken はトークンの形式または署名が不正であることを表す。
	ErrInvalidToken = &Error{Message: "invalid token"}
	// ErrTokenExpired はトークンの有効期限が切れていることを表す。
	ErrTokenExpired = &Error{Message: "token expired"}
	// ErrMalformedCredential はAuthorizationヘッダーの形式が不正であることを表す。
	ErrMalformedCredential = &Error{Message: "malformed authorization header"}
	// ErrNotAuthenticated はログインが必要な操作を匿名で呼び出したことを表す。
	ErrNotAuthenticated = &Error{Message: "You need to be logged in!"}
	// ErrIncorrectCredentials はメールアドレスまたはパスワードが誤っていることを表す。
	ErrIncorrectCredentials = &Error{Message: "Incorrect credentials"}
)
