package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/safestreet/account-service/internal/core/domain"
)

const (
	usersCollection = "users"
	emailIndex      = "email_unique"
	nameIndex       = "name_unique"
)

// UserRepository persists user accounts in MongoDB. Uniqueness of name and
// email is enforced by the indexes created in EnsureUserIndexes.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	PasswordHash    string             `bson:"password_hash"`
	IsEmailVerified bool               `bson:"is_email_verified"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:              mu.ID.Hex(),
		Name:            mu.Name,
		Email:           mu.Email,
		PasswordHash:    mu.PasswordHash,
		IsEmailVerified: mu.IsEmailVerified,
		CreatedAt:       mu.CreatedAt.UTC(),
	}
}

// Create inserts the user. A duplicate-key error from either unique index
// maps to *domain.ConflictError, naming the violated field.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Name:            user.Name,
		Email:           user.Email,
		PasswordHash:    user.PasswordHash,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflictFromDuplicate(err)
		}
		return nil, domain.WrapStore("insert user", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// conflictFromDuplicate decides which field a duplicate-key error names.
// The driver surfaces the violated index name inside the error message;
// when it is indeterminate the email conflict is reported, matching the
// documented precedence.
func conflictFromDuplicate(err error) error {
	if strings.Contains(err.Error(), nameIndex) {
		return domain.NewConflict(domain.FieldName)
	}
	return domain.NewConflict(domain.FieldEmail)
}

// FindByEmailOrName looks a user up by either unique field, serving both
// conflict messaging and login identification.
func (r *UserRepository) FindByEmailOrName(ctx context.Context, identifier string) (*domain.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"email": identifier},
		{"name": identifier},
	}}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.WrapStore("find user", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.WrapStore("find user by id", err)
	}
	return mu.toDomain(), nil
}

// MarkVerified flips is_email_verified to true. Setting it on an already
// verified user matches the document and is a no-op; there is no write path
// back to false.
func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"is_email_verified": true}})
	if err != nil {
		return domain.WrapStore("mark verified", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
