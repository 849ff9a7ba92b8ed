package graphql

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"go.uber.org/zap"

	"github.com/nao1215/budgebuddy/internal/auth"
)

// Path はGraphQLエンドポイントのパス。
const Path = "/graphql"

// NewHandler はGraphQLエンドポイントのハンドラを返す。
// 認証情報の生成に失敗してもリクエストは匿名として実行し、
// 失敗理由をレスポンスのerrorsに追加する。
func NewHandler(engine *Engine, provider auth.ContextProvider, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("graphql")
	return func(c *gin.Context) {
		req, err := parseRequest(c)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			c.JSON(status, &graphqlgo.Response{
				Errors: []*gqlerrors.QueryError{requestError(err.Error())},
			})
			return
		}

		identity, authErr := provider.ProduceContext(c.Request)
		if authErr != nil {
			logger.Debug("認証情報の検証に失敗しました", zap.Error(authErr))
			identity = nil
		}

		resp := engine.Execute(auth.WithIdentity(c.Request.Context(), identity), req)
		if authErr != nil {
			resp.Errors = append(resp.Errors, contextError(authErr))
		}
		c.JSON(http.StatusOK, resp)
	}
}

var (
	errMissingQuery       = errors.New("GraphQL operations must contain a non-empty `query`")
	errInvalidBody        = errors.New("request body is not valid JSON")
	errInvalidVariables   = errors.New("variables must be a JSON object")
	errUnsupportedContent = errors.New("unsupported content type")
	errBodyTooLarge       = errors.New("request body too large")
)

// parseRequest はGETのクエリ文字列、またはPOSTのボディからリクエストを組み立てる。
func parseRequest(c *gin.Context) (Request, error) {
	var (
		req Request
		err error
	)
	switch c.Request.Method {
	case http.MethodGet:
		req, err = requestFromValues(c.Query("query"), c.Query("operationName"), c.Query("variables"))
	case http.MethodPost:
		req, err = requestFromBody(c)
	default:
		return Request{}, errUnsupportedContent
	}
	if err != nil {
		return Request{}, err
	}
	if req.Query == "" {
		return Request{}, errMissingQuery
	}
	return req, nil
}

func requestFromBody(c *gin.Context) (Request, error) {
	switch c.ContentType() {
	case gin.MIMEJSON:
		var req Request
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			return Request{}, bodyError(err)
		}
		return req, nil
	case gin.MIMEPOSTForm:
		return requestFromValues(c.PostForm("query"), c.PostForm("operationName"), c.PostForm("variables"))
	case "application/graphql":
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return Request{}, bodyError(err)
		}
		return requestFromValues(string(body), c.Query("operationName"), c.Query("variables"))
	default:
		return Request{}, errUnsupportedContent
	}
}

// bodyError はボディの読み取りエラーを分類する。サイズ上限の超過は413として扱う。
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return errInvalidBody
}

func requestFromValues(query, operationName, variables string) (Request, error) {
	req := Request{Query: query, OperationName: operationName}
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
			return Request{}, errInvalidVariables
		}
	}
	return req, nil
}
