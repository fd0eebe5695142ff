package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/utils"
)

// AdminSeed describes the operator created at boot
type AdminSeed struct {
	Email    string
	Password string
	FullName string
}

// LoginResult is returned on a successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService issues tokens for dashboard operators
type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
}

func NewAuthService(users repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

// Login checks the credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.InvalidArgumentError("Email and password are required", nil)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			utils.LogWarn("Login attempt for unknown email %s", email)
			return nil, utils.UnauthorizedError(utils.ErrInvalidCredentials, nil)
		}
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	if !utils.CheckPassword(password, user.Password) {
		utils.LogWarn("Invalid password for user %s", user.ID)
		return nil, utils.UnauthorizedError(utils.ErrInvalidCredentials, nil)
	}
	if !user.IsActive {
		return nil, utils.ForbiddenError("Account is inactive", nil)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, utils.InternalError("Failed to generate token", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		utils.LogWarn("Failed to record last login for %s: %v", user.ID, err)
	}
	utils.LogInfo("User %s logged in", user.ID)
	return &LoginResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to an active user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := utils.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, utils.UnauthorizedError(utils.ErrInvalidToken, err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.UnauthorizedError(utils.ErrUserNotFound, err)
		}
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	if !user.IsActive {
		return nil, utils.ForbiddenError("Account is inactive", nil)
	}
	return user, nil
}

// EnsureAdmin creates the seed operator unless one with that email exists.
// An empty seed is a no-op.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	email := utils.NormalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		utils.LogDebug("No admin seed configured")
		return nil
	}

	hash, err := utils.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	user := &models.User{
		Username: strings.Split(email, "@")[0],
		Email:    email,
		FullName: seed.FullName,
		Password: hash,
		IsActive: true,
	}
	if err := s.users.FirstOrCreate(ctx, user); err != nil {
		return err
	}
	utils.LogInfo("Admin user %s ready", user.ID)
	return nil
}
