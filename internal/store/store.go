package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store errors
var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned when a unique constraint is violated
	ErrAlreadyExists = errors.New("document already exists")
)

// Message is one relayed message, logged after the fact. Logging is
// observational: delivery never waits on it.
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Kind     string             `bson:"kind"` // broadcast or room
	Room     string             `bson:"room,omitempty"`
	SenderID string             `bson:"sender_id"`
	Text     string             `bson:"text"`
	SentAt   time.Time          `bson:"sent_at"`
}

// User is one registered account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// Messages is the message log.
type Messages interface {
	Insert(ctx context.Context, msg Message) error
}

// Users is the account store.
type Users interface {
	Create(ctx context.Context, user User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
}
