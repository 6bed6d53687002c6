package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/policy"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

// TokenIssuer signs bearer tokens for accounts.
type TokenIssuer interface {
	Issue(account *model.Account) (string, error)
}

const minPasswordLength = 8

type AuthService struct {
	store    repository.Store
	tokens   TokenIssuer
	logger   *zap.Logger
	hashCost int
}

func NewAuthService(store repository.Store, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// Session is returned by register and login.
type Session struct {
	Token string         `json:"token"`
	User  *model.Account `json:"user"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a USER account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Email == "":
		return nil, invalid("email", "must not be empty")
	case in.Name == "":
		return nil, invalid("name", "must not be empty")
	case len(in.Password) < minPasswordLength:
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Email:        in.Email,
		Name:         in.Name,
		Role:         model.RoleUser,
		PasswordHash: string(hash),
	}

	err = s.store.Tx(ctx, func(r repository.Repositories) error {
		return r.Accounts().Create(ctx, account)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("email", account.Email),
	)
	return s.session(account)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(account)
}

// StaffLogin is Login restricted to STAFF, ADMIN and DEV accounts.
func (s *AuthService) StaffLogin(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if account.Role == model.RoleUser {
		return nil, fmt.Errorf("staff login: %w", ErrForbidden)
	}
	return s.session(account)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	var account *model.Account
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		account, err = r.Accounts().GetByEmail(ctx, strings.TrimSpace(email))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func (s *AuthService) session(account *model.Account) (*Session, error) {
	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: account}, nil
}

// ResolveActor loads the account behind a token subject together with its
// current role and, when the email matches a staff record, the staff id.
func (s *AuthService) ResolveActor(ctx context.Context, accountID uuid.UUID) (Actor, error) {
	var actor Actor
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		account, err := r.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if account == nil {
			return ErrUnauthenticated
		}

		actor = Actor{AccountID: account.ID, Email: account.Email, Role: account.Role}

		staff, err := r.Staff().GetByEmail(ctx, account.Email)
		if err != nil {
			return fmt.Errorf("get staff: %w", err)
		}
		if staff != nil {
			actor.StaffID = &staff.ID
		}
		return nil
	})
	return actor, err
}

// SetRole is the administrative role change.
func (s *AuthService) SetRole(ctx context.Context, actor Actor, email string, role model.Role) (*model.Account, error) {
	if err := actor.require(policy.AccountAssignRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("role", "must be USER, STAFF, ADMIN or DEV")
	}

	var account *model.Account
	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		var err error
		account, err = r.Accounts().GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if account == nil {
			return fmt.Errorf("account %q: %w", email, ErrNotFound)
		}
		if err := r.Accounts().UpdateRole(ctx, account.ID, role); err != nil {
			return err
		}
		account.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account role changed",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(role)),
	)
	return account, nil
}
