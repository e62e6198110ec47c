package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	"albumshop/internal/repos"
)

type ProfileService struct {
	DB        *sqlx.DB
	Users     *repos.UserRepo
	Addresses *repos.AddressRepo
}

func NewProfileService(db *sqlx.DB) *ProfileService {
	return &ProfileService{DB: db, Users: repos.NewUserRepo(db), Addresses: repos.NewAddressRepo(db)}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "user not found", "load user")
	}
	return u, nil
}

type NameInput struct {
	FirstName string `json:"first_name" validate:"required,max=20"`
	LastName  string `json:"last_name" validate:"required,max=20"`
}

func (s *ProfileService) UpdateName(ctx context.Context, userID string, in NameInput) (*domain.User, error) {
	ok, err := s.Users.UpdateName(ctx, userID, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName))
	if err != nil {
		return nil, apperr.Transient(err, "update user")
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return s.Me(ctx, userID)
}

func (s *ProfileService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	out, err := s.Addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "list addresses")
	}
	return out, nil
}

type AddressInput struct {
	Label      string `json:"label" validate:"max=30"`
	Line1      string `json:"line1" validate:"required,max=100"`
	Line2      string `json:"line2" validate:"max=100"`
	City       string `json:"city" validate:"required,max=50"`
	PostalCode string `json:"postal_code" validate:"required,postal"`
	Country    string `json:"country" validate:"required,len=2,alpha"`
	IsDefault  bool   `json:"is_default"`
}

// AddAddress stores a new address. A new default replaces the previous one;
// a user's first address is always the default.
func (s *ProfileService) AddAddress(ctx context.Context, userID string, in AddressInput) (domain.Address, error) {
	a := domain.Address{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      strings.TrimSpace(in.Label),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.ToUpper(in.Country),
		IsDefault:  in.IsDefault,
	}
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		addrs := s.Addresses.WithTx(tx)
		existing, err := addrs.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := addrs.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return addrs.Create(ctx, &a)
	})
	if err != nil {
		return domain.Address{}, apperr.Transient(err, "add address")
	}
	return a, nil
}

func (s *ProfileService) DeleteAddress(ctx context.Context, userID, id string) error {
	ok, err := s.Addresses.Delete(ctx, userID, id)
	if err != nil {
		return apperr.Transient(err, "delete address")
	}
	if !ok {
		return apperr.NotFound("address not found")
	}
	return nil
}
