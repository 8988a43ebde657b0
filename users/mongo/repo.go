// Package mongo stores users in a MongoDB collection with a unique email index.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/gatekeeper/internal/errors"
	"github.com/jrsteele09/gatekeeper/users"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const userCollection = "users"

var _ users.Repo = (*Repo)(nil)

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	FullName     string    `bson:"full_name,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

type Repo struct {
	client *mongo.Client
	users  *mongo.Collection
}

// Open connects, pings and ensures the unique email index exists.
func Open(ctx context.Context, uri, database string, connectTimeout time.Duration) (*Repo, error) {
	opts := options.Client().ApplyURI(uri)
	if connectTimeout > 0 {
		opts.SetConnectTimeout(connectTimeout).SetServerSelectionTimeout(connectTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("[mongo Open] connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("[mongo Open] ping: %w", err)
	}

	collection := client.Database(database).Collection(userCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("[mongo Open] create email index: %w", err)
	}

	return &Repo{client: client, users: collection}, nil
}

func (r *Repo) Close() error {
	return r.client.Disconnect(context.Background())
}

// Reset is a no-op: the driver replaces broken connections in its own pool.
func (r *Repo) Reset() {}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Repo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, classify(err)
	}
	return &users.User{
		ID:           doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		FullName:     doc.FullName,
		CreatedAt:    doc.CreatedAt.UTC(),
	}, nil
}

func (r *Repo) Any(ctx context.Context) (bool, error) {
	err := r.users.FindOne(ctx, bson.M{}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, classify(err)
	}
	return true, nil
}

func (r *Repo) Insert(ctx context.Context, user *users.User) error {
	_, err := r.users.InsertOne(ctx, userDocument{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FullName:     user.FullName,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return insertError(err)
	}
	return nil
}

func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateEmail
	}
	return classify(err)
}

func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %w", apperrors.ErrConnectionLost, err)
	}
	return fmt.Errorf("mongo error: %w", err)
}
