package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskmaster/internal/domain"
	"taskmaster/internal/repository"
	"taskmaster/internal/service/auth"
	"taskmaster/internal/validation"
)

// AuthenticationRequest carries login credentials. UserCredential is an email or a username.
type AuthenticationRequest struct {
	UserCredential string `json:"userCredential" validate:"required"`
	Password       string `json:"password" validate:"required"`
}

// AuthenticationResponse describes the outcome of a login or token refresh.
// RefreshToken is never serialized; transports hand it out separately.
type AuthenticationResponse struct {
	ID           int64    `json:"id,omitempty"`
	UserName     string   `json:"userName"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	IsVerified   bool     `json:"isVerified"`
	HasError     bool     `json:"hasError"`
	Error        string   `json:"error,omitempty"`
	JWToken      string   `json:"jwToken,omitempty"`
	RefreshToken string   `json:"-"`
}

// RegisterRequest is the self-service registration form.
type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	UserName        string `json:"userName" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Phone           string `json:"phone" validate:"required"`
}

// RegisterResponse reports a business-level registration failure through HasError.
type RegisterResponse struct {
	HasError bool   `json:"hasError"`
	Error    string `json:"error,omitempty"`
}

// RegisterMessages are the field rule messages for RegisterRequest.
var RegisterMessages = validation.Messages{
	"FirstName.required":      "First name is required.",
	"LastName.required":       "Last name is required.",
	"Email.required":          "Email is required.",
	"Email.email":             "Email is not valid.",
	"UserName.required":       "Username is required.",
	"Password.required":       "Password is required.",
	"ConfirmPassword.eqfield": "Confirm password must match password.",
	"Phone.required":          "Phone number is required.",
}

// LoginMessages are the field rule messages for AuthenticationRequest.
var LoginMessages = validation.Messages{
	"UserCredential.required": "User credential is required.",
	"Password.required":       "Password is required.",
}

const (
	msgRegisterFailed      = "An error occurred trying to register the user."
	msgInvalidRefreshToken = "Invalid refresh token"
)

// AccountService describes account lifecycle and authentication operations.
// Business rejections are reported in the returned value; errors are infrastructure faults.
type AccountService interface {
	UserVerifier
	Authenticate(ctx context.Context, req AuthenticationRequest, issueAPIToken bool) (*AuthenticationResponse, error)
	RegisterUser(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	RefreshToken(ctx context.Context, token string) (*AuthenticationResponse, error)
	SignOut(ctx context.Context, token string) error
	Bootstrap(ctx context.Context) error
}

// SeedUser is the account created by Bootstrap when absent.
type SeedUser struct {
	UserName  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AccountOptions tunes an AccountService.
type AccountOptions struct {
	DefaultRole string
	Seed        SeedUser
	HashCost    int
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

type accountService struct {
	users       repository.UserRepository
	tokens      repository.RefreshTokenRepository
	issuer      *auth.TokenService
	defaultRole string
	seed        SeedUser
	hashCost    int
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewAccountService(users repository.UserRepository, tokens repository.RefreshTokenRepository, issuer *auth.TokenService, opts AccountOptions) AccountService {
	if opts.DefaultRole == "" {
		opts.DefaultRole = domain.RoleClient
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &accountService{
		users:       users,
		tokens:      tokens,
		issuer:      issuer,
		defaultRole: opts.DefaultRole,
		seed:        opts.Seed,
		hashCost:    opts.HashCost,
		log:         opts.Logger,
		now:         opts.Now,
	}
}

func (s *accountService) VerifyUser(ctx context.Context, userName string) (bool, error) {
	_, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *accountService) Authenticate(ctx context.Context, req AuthenticationRequest, issueAPIToken bool) (*AuthenticationResponse, error) {
	resp := &AuthenticationResponse{}

	user, err := s.findByCredential(ctx, req.UserCredential)
	if err != nil {
		return nil, err
	}
	if user == nil {
		resp.HasError = true
		resp.Error = fmt.Sprintf("No Accounts registered with %s", req.UserCredential)
		return resp, nil
	}

	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.log.WithField("user_name", user.UserName).Warn("failed sign-in attempt")
		resp.HasError = true
		resp.Error = fmt.Sprintf("Invalid credentials for %s", req.UserCredential)
		return resp, nil
	}

	if err := s.fillIdentity(ctx, resp, user, issueAPIToken); err != nil {
		return nil, err
	}
	return resp, nil
}

// findByCredential tries credential as an email first, then as a username.
// A nil user with a nil error means neither matched.
func (s *accountService) findByCredential(ctx context.Context, credential string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, credential)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err = s.users.GetByUserName(ctx, credential)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

func (s *accountService) fillIdentity(ctx context.Context, resp *AuthenticationResponse, user *domain.User, issueAPIToken bool) error {
	roles, err := s.users.GetRoles(ctx, user.ID)
	if err != nil {
		return err
	}

	resp.ID = user.ID
	resp.Email = user.Email
	resp.UserName = user.UserName
	resp.Roles = roles
	resp.IsVerified = user.EmailConfirmed

	if !issueAPIToken {
		return nil
	}

	jwToken, _, err := s.issuer.GenerateAccessToken(user, roles)
	if err != nil {
		return err
	}
	refresh, err := s.issuer.GenerateRefreshToken(user.ID)
	if err != nil {
		return err
	}
	if _, err := s.tokens.Create(ctx, refresh); err != nil {
		return err
	}

	resp.JWToken = jwToken
	resp.RefreshToken = refresh.Token
	return nil
}

func (s *accountService) RegisterUser(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp := &RegisterResponse{}

	if _, err := s.users.GetByUserName(ctx, req.UserName); err == nil {
		resp.HasError = true
		resp.Error = fmt.Sprintf("username '%s' is already taken.", req.UserName)
		return resp, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		resp.HasError = true
		resp.Error = fmt.Sprintf("Email '%s' is already registered.", req.Email)
		return resp, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		UserName:       req.UserName,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		IsActive:       true,
		EmailConfirmed: true,
	}
	if err := s.createWithRole(ctx, user, req.Password); err != nil {
		s.log.WithError(err).WithField("user_name", req.UserName).Error("register user")
		resp.HasError = true
		resp.Error = msgRegisterFailed
		return resp, nil
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "user_name": user.UserName}).Info("user registered")
	return resp, nil
}

func (s *accountService) createWithRole(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if _, err := s.users.Create(ctx, user); err != nil {
		return err
	}
	if err := s.users.AddToRole(ctx, user.ID, s.defaultRole); err != nil {
		// a user without a role could never use the API but would hold the username
		if derr := s.users.Delete(ctx, user.ID); derr != nil {
			s.log.WithError(derr).WithField("user_id", user.ID).Error("remove user left without role")
		}
		return err
	}
	return nil
}

func (s *accountService) RefreshToken(ctx context.Context, token string) (*AuthenticationResponse, error) {
	invalid := &AuthenticationResponse{HasError: true, Error: msgInvalidRefreshToken}
	if token == "" {
		return invalid, nil
	}

	stored, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid, nil
		}
		return nil, err
	}
	if !stored.IsActive(s.now()) {
		return invalid, nil
	}
	// revoking first means a concurrent exchange of the same token loses
	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid, nil
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return invalid, nil
	}

	resp := &AuthenticationResponse{}
	if err := s.fillIdentity(ctx, resp, user, true); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *accountService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	stored, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.tokens.Revoke(ctx, stored.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// Bootstrap creates the default role and the seed account. Running it again is a no-op.
func (s *accountService) Bootstrap(ctx context.Context) error {
	if err := s.users.EnsureRole(ctx, s.defaultRole); err != nil {
		return err
	}
	if s.seed.UserName == "" || s.seed.Email == "" {
		return nil
	}

	for _, lookup := range []func() (*domain.User, error){
		func() (*domain.User, error) { return s.users.GetByEmail(ctx, s.seed.Email) },
		func() (*domain.User, error) { return s.users.GetByUserName(ctx, s.seed.UserName) },
	} {
		_, err := lookup()
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	user := &domain.User{
		UserName:       s.seed.UserName,
		Email:          s.seed.Email,
		FirstName:      s.seed.FirstName,
		LastName:       s.seed.LastName,
		IsActive:       true,
		EmailConfirmed: true,
		PhoneConfirmed: true,
	}
	if err := s.createWithRole(ctx, user, s.seed.Password); err != nil {
		return fmt.Errorf("seed user %s: %w", s.seed.UserName, err)
	}
	s.log.WithField("user_name", user.UserName).Info("seeded default user")
	return nil
}
