package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token claims checked by the auth middleware.
const (
	TokenIssuer   = "inkwell-api"
	TokenAudience = "inkwell-client"
)

const defaultUserPageSize = 20

type UserService struct {
	users     repository.UserRepository
	events    *events.Publisher
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ListUsersQuery struct {
	Search string
	// Status is "active", "inactive" or empty for all users.
	Status string
	PageRequest
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []repository.UserWithStats `json:"users"`
	Pagination Pagination                 `json:"pagination"`
}

func NewUserService(users repository.UserRepository, publisher *events.Publisher, jwtSecret string, tokenTTL time.Duration) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{
		users:     users,
		events:    publisher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	checks := []error{
		validation.ValidateUsername(in.Username),
		validation.ValidateEmail(in.Email),
		validation.ValidatePassword(in.Password),
	}
	if in.FirstName != "" {
		checks = append(checks, validation.ValidateName("first name", in.FirstName))
	}
	if in.LastName != "" {
		checks = append(checks, validation.ValidateName("last name", in.LastName))
	}
	for _, err := range checks {
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := models.NewUnauthorizedError("Invalid credentials")

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError("Account is deactivated")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// IssueToken signs an HS256 token for user.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     string(user.Role),
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// Resolve loads the user behind an authenticated request. Lookups are cached
// and the cache entry is dropped whenever the user's status or role changes.
func (s *UserService) Resolve(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(userID), &user, cache.UserTTL, func() error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ToggleStatus flips a user's activation. Admins cannot toggle themselves or
// deactivate another active admin.
func (s *UserService) ToggleStatus(ctx context.Context, admin Actor, targetID uint) (*models.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if targetID == admin.UserID {
		return nil, models.NewSelfActionError("You cannot change your own account status")
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() && target.IsActive {
		return nil, models.NewUnauthorizedError("Cannot deactivate another admin")
	}

	target.IsActive = !target.IsActive
	if err := s.users.SetActive(ctx, targetID, target.IsActive); err != nil {
		return nil, err
	}
	s.events.Notify(ctx, targetID, events.Event{
		Type:       events.UserToggled,
		ActorID:    admin.UserID,
		ResourceID: targetID,
		Data:       map[string]any{"is_active": target.IsActive},
	})
	return target, nil
}

// SetRole promotes or demotes a user. It backs the admin command line tool.
func (s *UserService) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, models.NewValidationError("Invalid role")
	}
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (s *UserService) List(ctx context.Context, admin Actor, q ListUsersQuery) (*UserPage, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var active *bool
	switch strings.ToLower(strings.TrimSpace(q.Status)) {
	case "":
	case "active":
		v := true
		active = &v
	case "inactive":
		v := false
		active = &v
	default:
		return nil, models.NewValidationError("Status must be active or inactive")
	}

	req := q.PageRequest.normalize(defaultUserPageSize)
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search: strings.TrimSpace(q.Search),
		Active: active,
		Page:   req.window(),
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []repository.UserWithStats{}
	}
	return &UserPage{Users: users, Pagination: newPagination(req, total)}, nil
}
