package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zunayedTheCreator/property-prospect-server/internal/auth"
	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/db"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// IUserService defines the identity store operations.
type IUserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// CreateIfAbsent inserts u unless its email is already registered, in which
	// case it returns ErrUserExists.
	CreateIfAbsent(ctx context.Context, u *models.User, password string) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) (WriteCount, error)
	MarkFraud(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (int64, error)
	ResolveIdentity(ctx context.Context, email string) (auth.Identity, error)
	// Authenticate checks the password of accounts that have one. Accounts
	// without a password (social sign-in) always pass.
	Authenticate(ctx context.Context, email, password string) error
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database, cfg *config.Config) IUserService {
	return &userService{db: db, cfg: cfg}
}

func (s *userService) coll() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	cursor, err := s.coll().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// FindByEmail returns ErrNotFound when no user has the email.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	var user models.User
	if err := s.coll().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, storeErr("find user by email", err)
	}
	return &user, nil
}

func (s *userService) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	var user models.User
	if err := s.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, storeErr("find user "+id, err)
	}
	return &user, nil
}

func (s *userService) CreateIfAbsent(ctx context.Context, u *models.User, password string) (*models.User, error) {
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}
	u.Email = strings.TrimSpace(u.Email)

	if _, err := s.FindByEmail(ctx, u.Email); err == nil {
		return nil, ErrUserExists
	} else if !isNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	u.ID = primitive.NilObjectID
	// Roles and the fraud flag are granted by administrators only.
	u.Role = models.RoleNormal
	u.Status = ""
	u.PasswordHash = ""
	u.CreatedAt = now
	u.UpdatedAt = now
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()
	if _, err := db.InsertOne(ctx, s.coll(), u); err != nil {
		// Lost a race with another insert of the same email.
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, storeErr("insert user", err)
	}
	return u, nil
}

func (s *userService) update(ctx context.Context, op, id string, set bson.M) (WriteCount, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return WriteCount{}, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC()
	res, err := s.coll().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return WriteCount{}, storeErr(op, err)
	}
	if res.MatchedCount == 0 {
		return WriteCount{}, fmt.Errorf("%s: user %s: %w", op, id, ErrNotFound)
	}
	return WriteCount{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *userService) SetRole(ctx context.Context, id string, role models.Role) (WriteCount, error) {
	switch role {
	case models.RoleNormal, models.RoleAgent, models.RoleAdmin:
	default:
		return WriteCount{}, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, role)
	}
	return s.update(ctx, "set user role", id, bson.M{"role": role})
}

// MarkFraud flags an agent account and returns the updated user.
func (s *userService) MarkFraud(ctx context.Context, id string) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.EffectiveRole() != models.RoleAgent {
		return nil, fmt.Errorf("%w: only agents can be marked fraud", ErrInvalidArgument)
	}
	if _, err := s.update(ctx, "mark user fraud", id, bson.M{"status": models.UserStatusFraud}); err != nil {
		return nil, err
	}
	user.Status = models.UserStatusFraud
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) (int64, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return 0, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, storeErr("delete user", err)
	}
	return res.DeletedCount, nil
}

func (s *userService) ResolveIdentity(ctx context.Context, email string) (auth.Identity, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.IdentityOf(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) error {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			// Accounts are created by the client right after sign-in.
			return nil
		}
		return err
	}
	if user.PasswordHash == "" {
		return nil
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	return nil
}
