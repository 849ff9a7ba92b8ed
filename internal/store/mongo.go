package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoStore はMongoDBによる Repository 実装。
type mongoStore struct {
	// client はMongoDBクライアント。
	client *mongo.Client
	// users はusersコレクション。
	users *mongo.Collection
	// expenses はexpensesコレクション。
	expenses *mongo.Collection
}

// openMongo はMongoDBに接続し、疎通確認とインデックス作成を行う。
// サーバー選択の待ち時間はドライバの既定値に従う。
func openMongo(ctx context.Context, uri, database string) (*mongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("MongoDBクライアントの生成に失敗: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDBの疎通確認に失敗: %w", err)
	}

	db := client.Database(database)
	s := &mongoStore{
		client:   client,
		users:    db.Collection("users"),
		expenses: db.Collection("expenses"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *mongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("usersインデックスの作成に失敗: %w", err)
	}
	if _, err := s.expenses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("expensesインデックスの作成に失敗: %w", err)
	}
	return nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *mongoStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return nil
}

func (s *mongoStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *mongoStore) UserByID(ctx context.Context, id string) (*User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *mongoStore) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return &u, nil
}

func (s *mongoStore) AddExpense(ctx context.Context, e *Expense) error {
	if _, err := s.expenses.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("支出の記録に失敗: %w", err)
	}
	return nil
}

func (s *mongoStore) ExpensesByUser(ctx context.Context, userID string) ([]Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.expenses.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("支出の取得に失敗: %w", err)
	}
	expenses := []Expense{}
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("支出の読み取りに失敗: %w", err)
	}
	return expenses, nil
}

func (s *mongoStore) RemoveExpense(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.expenses.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("支出の削除に失敗: %w", err)
	}
	return res.DeletedCount > 0, nil
}
