package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type customerDocument struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Email         string    `bson:"email"`
	Phone         string    `bson:"phone"`
	PurchaseDate  time.Time `bson:"purchase_date"`
	Total         string    `bson:"total"`
	PaymentMethod string    `bson:"payment_method"`
	Items         string    `bson:"items"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("customers"),
	}
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m *MongoRepository) Insert(ctx context.Context, customer *domain.Customer) error {
	rec, err := toRecord(customer)
	if err != nil {
		return err
	}

	doc := customerDocument{
		ID:            rec.ID,
		Name:          rec.Name,
		Email:         rec.Email,
		Phone:         rec.Phone,
		PurchaseDate:  customer.PurchaseDate.UTC(),
		Total:         rec.Total.String(),
		PaymentMethod: rec.PaymentMethod,
		Items:         rec.Items,
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCustomer
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (m *MongoRepository) ListAll(ctx context.Context) ([]*domain.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "purchase_date", Value: -1}})

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []*domain.Customer
	for cursor.Next(ctx) {
		var doc customerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode customer: %w", err)
		}
		total, err := domain.NewMoney(doc.Total)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		rec := record{
			ID:            doc.ID,
			Name:          doc.Name,
			Email:         doc.Email,
			Phone:         doc.Phone,
			PurchaseDate:  doc.PurchaseDate.UTC().Format(time.RFC3339Nano),
			Total:         total,
			PaymentMethod: doc.PaymentMethod,
			Items:         doc.Items,
		}
		c, err := rec.toCustomer()
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return customers, nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "purchase_date", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.collection.Database().Client().Ping(ctx, nil)
}

func (m *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}
