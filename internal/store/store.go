package store

import (
	"context"
	"time"
)

// User represents a registered user.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message represents a persisted direct message.
// Text and Image are both optional on the wire; at least one is set
// (validated before the message reaches the store).
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Text        string
	Image       string
	CreatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user. Email uniqueness is enforced here;
	// a duplicate returns ErrEmailTaken.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfilePic sets the user's profile picture URL and bumps updated_at.
	UpdateProfilePic(ctx context.Context, userID, profilePic string) (*User, error)

	// ListUsersExcept returns every user except the given one, for the contact list.
	ListUsersExcept(ctx context.Context, userID string) ([]*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListConversation returns all messages exchanged between two users,
	// oldest first.
	ListConversation(ctx context.Context, userA, userB string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
