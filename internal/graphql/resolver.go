package graphql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	graphqlgo "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/budgebuddy/internal/auth"
	"github.com/nao1215/budgebuddy/internal/store"
)

// Resolver はQueryとMutationのルートリゾルバ。
type Resolver struct {
	// repo はデータストア。
	repo store.Repository
	// issuer はログイン時のトークン発行に使う。
	issuer *auth.Issuer
	// validate は引数の検証に使う。
	validate *validator.Validate
	// logger はロガー。
	logger *zap.Logger
	// bcryptCost はパスワードハッシュのコスト。
	bcryptCost int
	// now は現在時刻を返す。
	now func() time.Time
}

func newResolver(repo store.Repository, issuer *auth.Issuer, logger *zap.Logger) *Resolver {
	return &Resolver{
		repo:       repo,
		issuer:     issuer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// addUserInput はaddUserの引数。
type addUserInput struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=5"`
}

// addExpenseInput はaddExpenseの引数。
type addExpenseInput struct {
	Description string  `validate:"required,max=200"`
	Amount      float64 `validate:"gt=0"`
	Category    string  `validate:"required,max=50"`
}

// Me はログイン中のユーザーを返す。
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	u, err := r.repo.UserByID(ctx, id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// トークン発行後に削除されたユーザー
		return nil, auth.ErrNotAuthenticated
	}
	if err != nil {
		return nil, r.internal("ユーザーの取得に失敗しました", err)
	}
	return &userResolver{root: r, user: u}, nil
}

// Expenses はログイン中のユーザーの支出を返す。
func (r *Resolver) Expenses(ctx context.Context) ([]*expenseResolver, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	return r.expensesOf(ctx, id.UserID)
}

// AddUser はユーザーを登録し、トークンを発行する。
func (r *Resolver) AddUser(ctx context.Context, args struct {
	Username string
	Email    string
	Password string
}) (*authResolver, error) {
	in := addUserInput{
		Username: strings.TrimSpace(args.Username),
		Email:    normalizeEmail(args.Email),
		Password: args.Password,
	}
	if err := r.validate.Struct(in); err != nil {
		return nil, newInputError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.bcryptCost)
	if err != nil {
		return nil, r.internal("パスワードのハッシュ化に失敗しました", err)
	}

	u := &store.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    r.now().UTC(),
	}
	if err := r.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &inputError{message: "email is already registered"}
		}
		return nil, r.internal("ユーザーの作成に失敗しました", err)
	}
	return r.signIn(u)
}

// Login はメールアドレスとパスワードを検証し、トークンを発行する。
func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authResolver, error) {
	u, err := r.repo.UserByEmail(ctx, normalizeEmail(args.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrIncorrectCredentials
	}
	if err != nil {
		return nil, r.internal("ユーザーの取得に失敗しました", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(args.Password)); err != nil {
		return nil, auth.ErrIncorrectCredentials
	}
	return r.signIn(u)
}

// AddExpense はログイン中のユーザーの支出を記録する。
func (r *Resolver) AddExpense(ctx context.Context, args struct {
	Description string
	Amount      float64
	Category    string
}) (*expenseResolver, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	in := addExpenseInput{
		Description: strings.TrimSpace(args.Description),
		Amount:      args.Amount,
		Category:    strings.TrimSpace(args.Category),
	}
	if err := r.validate.Struct(in); err != nil {
		return nil, newInputError(err)
	}

	e := &store.Expense{
		ID:          uuid.New().String(),
		UserID:      id.UserID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.repo.AddExpense(ctx, e); err != nil {
		return nil, r.internal("支出の記録に失敗しました", err)
	}
	return &expenseResolver{expense: *e}, nil
}

// RemoveExpense はログイン中のユーザーの支出を削除する。
func (r *Resolver) RemoveExpense(ctx context.Context, args struct {
	ExpenseID graphqlgo.ID
}) (bool, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return false, err
	}
	removed, err := r.repo.RemoveExpense(ctx, id.UserID, string(args.ExpenseID))
	if err != nil {
		return false, r.internal("支出の削除に失敗しました", err)
	}
	return removed, nil
}

func (r *Resolver) signIn(u *store.User) (*authResolver, error) {
	token, err := r.issuer.Sign(auth.Identity{UserID: u.ID, Email: u.Email, Username: u.Username})
	if err != nil {
		return nil, r.internal("トークンの発行に失敗しました", err)
	}
	return &authResolver{token: token, user: &userResolver{root: r, user: u}}, nil
}

func (r *Resolver) expensesOf(ctx context.Context, userID string) ([]*expenseResolver, error) {
	expenses, err := r.repo.ExpensesByUser(ctx, userID)
	if err != nil {
		return nil, r.internal("支出の取得に失敗しました", err)
	}
	out := make([]*expenseResolver, len(expenses))
	for i := range expenses {
		out[i] = &expenseResolver{expense: expenses[i]}
	}
	return out, nil
}

// internal は内部エラーをログに出力し、詳細を伏せたエラーを返す。
func (r *Resolver) internal(msg string, err error) error {
	r.logger.Error(msg, zap.Error(err))
	return errInternal
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userResolver はUser型のリゾルバ。
type userResolver struct {
	root *Resolver
	user *store.User
}

func (u *userResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(u.user.ID)
}

func (u *userResolver) Username() string {
	return u.user.Username
}

func (u *userResolver) Email() string {
	return u.user.Email
}

func (u *userResolver) Expenses(ctx context.Context) ([]*expenseResolver, error) {
	return u.root.expensesOf(ctx, u.user.ID)
}

// Total は支出の合計額を返す。
func (u *userResolver) Total(ctx context.Context) (float64, error) {
	expenses, err := u.root.expensesOf(ctx, u.user.ID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range expenses {
		total += e.expense.Amount
	}
	return total, nil
}

// expenseResolver はExpense型のリゾルバ。
type expenseResolver struct {
	expense store.Expense
}

func (e *expenseResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(e.expense.ID)
}

func (e *expenseResolver) Description() string {
	return e.expense.Description
}

func (e *expenseResolver) Amount() float64 {
	return e.expense.Amount
}

func (e *expenseResolver) Category() string {
	return e.expense.Category
}

func (e *expenseResolver) CreatedAt() string {
	return e.expense.CreatedAt.UTC().Format(time.RFC3339)
}

// authResolver はAuth型のリゾルバ。
type authResolver struct {
	token string
	user  *userResolver
}

func (a *authResolver) Token() string {
	return a.token
}

func (a *authResolver) User() *userResolver {
	return a.user
}
