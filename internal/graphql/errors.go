package graphql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
)

// inputError は引数の検証エラー。
type inputError struct {
	message string
}

func (e *inputError) Error() string {
	return e.message
}

// Extensions はGraphQLエラーの拡張情報を返す。
func (e *inputError) Extensions() map[string]any {
	return map[string]any{"code": "BAD_USER_INPUT"}
}

// errInternal は内部エラーを利用者に返す際の代替エラー。詳細はログにのみ出力する。
var errInternal = errors.New("internal server error")

// newInputError はvalidatorのエラーを利用者向けのメッセージに変換する。
func newInputError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &inputError{message: err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' rule", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &inputError{message: strings.Join(msgs, "; ")}
}

// requestError はクエリの実行前に失敗したリクエストのエラーを生成する。
func requestError(message string) *gqlerrors.QueryError {
	return &gqlerrors.QueryError{
		Message:    message,
		Extensions: map[string]any{"code": "BAD_REQUEST"},
	}
}

// contextError はContextProviderが返したエラーをGraphQLエラーに変換する。
func contextError(err error) *gqlerrors.QueryError {
	qe := &gqlerrors.QueryError{Message: err.Error(), Err: err}
	var ext interface{ Extensions() map[string]any }
	if errors.As(err, &ext) {
		qe.Extensions = ext.Extensions()
	}
	return qe
}
