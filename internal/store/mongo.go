package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	messagesCollection = "messages"
	usersCollection    = "users"
)

// Config represents the document store configuration.
type Config struct {
	URI      string
	Database string
}

// Mongo bundles the message log and the account store over one client.
type Mongo struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect connects to the document store and pings it.
func Connect(ctx context.Context, cfg Config) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	m := &Mongo{
		client:   client,
		database: client.Database(cfg.Database),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}
	return nil
}

// Close disconnects from the store.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Messages returns the message log backed by this store.
func (m *Mongo) Messages() Messages {
	return &mongoMessages{collection: m.database.Collection(messagesCollection)}
}

// Users returns the account store backed by this store.
func (m *Mongo) Users() Users {
	return &mongoUsers{collection: m.database.Collection(usersCollection)}
}

type mongoMessages struct {
	collection *mongo.Collection
}

// Insert implements Messages
func (s *mongoMessages) Insert(ctx context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	_, err := s.collection.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

type mongoUsers struct {
	collection *mongo.Collection
}

// Create implements Users
func (s *mongoUsers) Create(ctx context.Context, user User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByUsername implements Users
func (s *mongoUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
