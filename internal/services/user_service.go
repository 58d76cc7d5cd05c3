package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/blog-be/internal/database"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

var (
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,}$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9]{4,}$`)
)

// Public messages for signup and login failures.
const (
	MsgNicknameFormat      = "nickname format is invalid"
	MsgPasswordFormat      = "password format is invalid"
	MsgPasswordMismatch    = "passwords do not match"
	MsgPasswordTooLong     = "password must be at most 72 characters"
	MsgPasswordHasNickname = "password must not contain the nickname"
	MsgNicknameTaken       = "nickname is already taken"
	MsgInvalidCredentials  = "check your nickname or password"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	Signup(ctx context.Context, nickname, password, confirm string) (models.User, error)
	Authenticate(ctx context.Context, nickname, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db           *sql.DB
	eventService EventServiceProvider
	hashCost     int
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, eventService EventServiceProvider) *UserService {
	return &UserService{db: db, eventService: eventService, hashCost: bcrypt.DefaultCost}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, nickname, password_hash, created_at, updated_at FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, notFound("user", id)
		}
		return models.User{}, internal(err, "failed to load user")
	}
	user.PasswordHash = ""
	return user, nil
}

// getUserByNickname retrieves a user by nickname, including the password hash.
func (s *UserService) getUserByNickname(ctx context.Context, nickname string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, nickname, password_hash, created_at, updated_at FROM users WHERE nickname = ?", nickname)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, oops.Code(CodeNotFound).Errorf("user with nickname %s not found", nickname)
		}
		return models.User{}, internal(err, "failed to load user")
	}
	return user, nil
}

// ValidateSignup checks signup input in the order clients expect the
// messages: nickname shape, password shape and length, confirmation, nickname
// inclusion.
func ValidateSignup(nickname, password, confirm string) error {
	if !nicknamePattern.MatchString(nickname) {
		return validationError(MsgNicknameFormat)
	}
	if !passwordPattern.MatchString(password) {
		return validationError(MsgPasswordFormat)
	}
	if len(password) > maxPasswordBytes {
		return validationError(MsgPasswordTooLong)
	}
	if password != confirm {
		return validationError(MsgPasswordMismatch)
	}
	if strings.Contains(password, nickname) {
		return validationError(MsgPasswordHasNickname)
	}
	return nil
}

// Signup validates the input and creates a new user with a hashed password.
func (s *UserService) Signup(ctx context.Context, nickname, password, confirm string) (models.User, error) {
	if err := ValidateSignup(nickname, password, confirm); err != nil {
		return models.User{}, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE nickname = ?)", nickname).Scan(&exists)
	if err != nil {
		return models.User{}, internal(err, "failed to check nickname")
	}
	if exists {
		return models.User{}, nicknameTaken(nickname)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.User{}, internal(err, "failed to hash password")
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Nickname:     nickname,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, nickname, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Nickname, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		// Lost a race with a concurrent signup for the same nickname.
		if database.IsUniqueViolation(err) {
			return models.User{}, nicknameTaken(nickname)
		}
		return models.User{}, internal(err, "failed to create user")
	}

	recordEvent(ctx, s.eventService, "user.signup", LevelInfo, fmt.Sprintf("User '%s' signed up.", user.Nickname), &user.ID, nil)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown nicknames and wrong
// passwords fail with the same error.
func (s *UserService) Authenticate(ctx context.Context, nickname, password string) (models.User, error) {
	user, err := s.getUserByNickname(ctx, nickname)
	if err != nil {
		if !HasCode(err, CodeNotFound) {
			return models.User{}, err
		}
		recordEvent(ctx, s.eventService, "auth.login.fail", LevelWarn, fmt.Sprintf("Login failed for unknown nickname '%s'.", nickname), nil, nil)
		return models.User{}, invalidCredentials(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		recordEvent(ctx, s.eventService, "auth.login.fail", LevelWarn, fmt.Sprintf("Login failed for '%s'.", nickname), &user.ID, nil)
		return models.User{}, invalidCredentials(err)
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Nickname, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func nicknameTaken(nickname string) error {
	return oops.Code(CodeConflict).
		With("nickname", nickname).
		Public(MsgNicknameTaken).
		Errorf("nickname %s already exists", nickname)
}

// invalidCredentials does not wrap cause: oops reports the deepest code in a
// chain, which would surface the NOT_FOUND of an unknown nickname.
func invalidCredentials(cause error) error {
	return oops.Code(CodeInvalidCredentials).
		With("cause", cause.Error()).
		Public(MsgInvalidCredentials).
		New("authentication failed")
}
