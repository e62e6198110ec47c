package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"albumshop/internal/apperr"
	"albumshop/internal/auth"
	"albumshop/internal/domain"
	"albumshop/internal/repos"
)

// ErrBadCreds is returned for every login failure so callers cannot tell a
// wrong password from an unknown email.
var ErrBadCreds = apperr.New(apperr.KindUnauthorized, "invalid email or password")

type AuthService struct {
	DB         *sqlx.DB
	Users      *repos.UserRepo
	Carts      *repos.CartRepo
	Token      auth.Config
	BcryptCost int
	Now        Clock

	// Compare checks a password against a bcrypt hash. Unknown emails are
	// compared against a throwaway hash so both failures cost the same.
	Compare   func(hash, password []byte) error
	dummyHash func() []byte
}

func NewAuthService(db *sqlx.DB, token auth.Config, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		DB:         db,
		Users:      repos.NewUserRepo(db),
		Carts:      repos.NewCartRepo(db),
		Token:      token,
		BcryptCost: bcryptCost,
		Compare:    bcrypt.CompareHashAndPassword,
		dummyHash:  sync.OnceValue(func() []byte {
			h, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
			return h
		}),
	}
}

func (s *AuthService) compare(hash []byte, password string) error {
	if s.Compare == nil {
		return bcrypt.CompareHashAndPassword(hash, []byte(password))
	}
	return s.Compare(hash, []byte(password))
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=50"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"first_name" validate:"required,max=20"`
	LastName  string `json:"last_name" validate:"required,max=20"`
}

type Registration struct {
	UserID string `json:"user_id"`
	CartID string `json:"cart_id"`
}

// Register creates the user and their cart in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return Registration{}, apperr.Transient(err, "hash password")
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Hash:      string(hash),
	}

	var reg Registration
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		created, err := s.Users.WithTx(tx).Create(ctx, u)
		if err != nil {
			return err
		}
		if !created {
			return apperr.New(apperr.KindConflict, "email already exists")
		}
		cartID, err := s.Carts.WithTx(tx).EnsureCart(ctx, u.ID)
		if err != nil {
			return err
		}
		reg = Registration{UserID: u.ID, CartID: cartID}
		return nil
	})
	if err != nil {
		return Registration{}, storageErr(err, "", "register user")
	}
	return reg, nil
}

type LoginResult struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	CartID  string `json:"cart_id"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if s.dummyHash != nil {
				_ = s.compare(s.dummyHash(), password)
			}
			return LoginResult{}, ErrBadCreds
		}
		return LoginResult{}, apperr.Transient(err, "load user")
	}
	if s.compare([]byte(u.Hash), password) != nil {
		return LoginResult{}, ErrBadCreds
	}
	cartID, err := s.Carts.EnsureCart(ctx, u.ID)
	if err != nil {
		return LoginResult{}, apperr.Transient(err, "ensure cart")
	}
	token, err := auth.MintAccessToken(s.Token, s.Now.now(), u.ID, u.IsAdmin)
	if err != nil {
		return LoginResult{}, apperr.Transient(err, "mint token")
	}
	return LoginResult{Token: token, UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, CartID: cartID}, nil
}

// Authenticate validates a bearer token and loads the user it names. The
// admin flag comes from the stored user, not from the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := auth.ParseAccessToken(s.Token, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, err, "invalid or expired token")
	}
	u, err := s.Users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
		}
		return nil, apperr.Transient(err, "load user")
	}
	return u, nil
}
