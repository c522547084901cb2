package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/shared/security"
)

// AccountUsecase defines the interface for local account use cases.
type AccountUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*RegisterResult, error)
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// CheckAvailability reports whether value is already used as a username,
	// email or mobile.
	CheckAvailability(ctx context.Context, value string) (bool, error)
}

// RegisterParams defines the parameters for account registration.
type RegisterParams struct {
	Username            string
	Email               string
	Mobile              string
	Password            string
	Name                string
	Gender              string
	DateOfBirth         string
	HomeTown            string
	Profession          string
	ProofDocument       string
	ProofDocumentNumber string
	FacebookProfileID   string
	FacebookPages       []string
	InstaProfileID      string
	TwitterProfileID    string
	GoogleProfileID     string
	YoutubeProfileID    string
	YoutubeChannels     []string
	WhatsappProfileID   string
	WhatsappChannels    []string
}

// LoginParams defines the parameters for account login.
type LoginParams struct {
	Identifier string
	Password   string
}

type RegisterResult struct {
	Account *model.LocalAccount
	Profile payload.RegisteredAccountResponse
}

type LoginResult struct {
	Account *model.LocalAccount
	Profile payload.AccountResponse
}

var (
	ErrIdentifierRequired   = errors.New("provide username or email or mobile")
	ErrPasswordRequired     = errors.New("password required")
	ErrCredentialsRequired  = errors.New("identifier and password required")
	ErrAccountAlreadyExists = errors.New("username/email/mobile already exists")
	ErrInvalidDateOfBirth   = errors.New("invalid dateOfBirth")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrValueRequired        = errors.New("value required")
)

const sourceLocal = "user"

type accountUsecase struct {
	accountRepo repository.AccountRepository
	notifier    Notifier
}

func NewAccountUsecase(accountRepo repository.AccountRepository, notifier Notifier) AccountUsecase {
	return &accountUsecase{
		accountRepo: accountRepo,
		notifier:    notifier,
	}
}

func (u *accountUsecase) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	if params.Username == "" && params.Email == "" && params.Mobile == "" {
		return nil, ErrIdentifierRequired
	}
	if params.Password == "" {
		return nil, ErrPasswordRequired
	}

	dateOfBirth, err := parseDateOfBirth(params.DateOfBirth)
	if err != nil {
		return nil, err
	}

	exists, err := u.accountRepo.ExistsAny(ctx, repository.IdentifierParams{
		Username: params.Username,
		Email:    params.Email,
		Mobile:   params.Mobile,
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountAlreadyExists
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.CreateAccount(ctx, &model.LocalAccount{
		Username:            params.Username,
		Email:               params.Email,
		Mobile:              params.Mobile,
		PasswordHash:        passwordHash,
		Name:                params.Name,
		Gender:              params.Gender,
		DateOfBirth:         dateOfBirth,
		HomeTown:            params.HomeTown,
		Profession:          params.Profession,
		ProofDocument:       params.ProofDocument,
		ProofDocumentNumber: params.ProofDocumentNumber,
		FacebookProfileID:   params.FacebookProfileID,
		FacebookPages:       params.FacebookPages,
		InstaProfileID:      params.InstaProfileID,
		TwitterProfileID:    params.TwitterProfileID,
		GoogleProfileID:     params.GoogleProfileID,
		YoutubeProfileID:    params.YoutubeProfileID,
		YoutubeChannels:     params.YoutubeChannels,
		WhatsappProfileID:   params.WhatsappProfileID,
		WhatsappChannels:    params.WhatsappChannels,
	})
	if err != nil {
		// Lost a race with a concurrent registration past the pre-check.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountAlreadyExists
		}

		return nil, err
	}

	profile := projectRegisteredAccount(account)
	u.notifier.Notify(profile)
	u.notifier.Welcome(account.Email, account.Name)

	return &RegisterResult{Account: account, Profile: profile}, nil
}

func (u *accountUsecase) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	if params.Identifier == "" || params.Password == "" {
		return nil, ErrCredentialsRequired
	}

	account, err := u.accountRepo.GetAccountByIdentifier(ctx, params.Identifier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, account.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	return &LoginResult{Account: account, Profile: projectAccount(account)}, nil
}

func (u *accountUsecase) CheckAvailability(ctx context.Context, value string) (bool, error) {
	if value == "" {
		return false, ErrValueRequired
	}

	return u.accountRepo.ExistsAny(ctx, repository.IdentifierParams{
		Username: value,
		Email:    value,
		Mobile:   value,
	})
}

// parseDateOfBirth accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// An empty value is not an error.
func parseDateOfBirth(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, ErrInvalidDateOfBirth
}

func projectAccount(account *model.LocalAccount) payload.AccountResponse {
	return payload.AccountResponse{
		ID:       account.ID.Hex(),
		Username: account.Username,
		Email:    account.Email,
		Name:     account.Name,
		Mobile:   account.Mobile,
		Source:   sourceLocal,
	}
}

func projectRegisteredAccount(account *model.LocalAccount) payload.RegisteredAccountResponse {
	return payload.RegisteredAccountResponse{
		ID:                account.ID.Hex(),
		Username:          account.Username,
		Email:             account.Email,
		Name:              account.Name,
		Mobile:            account.Mobile,
		FacebookProfileID: account.FacebookProfileID,
		FacebookPages:     orEmpty(account.FacebookPages),
		YoutubeChannels:   orEmpty(account.YoutubeChannels),
		WhatsappChannels:  orEmpty(account.WhatsappChannels),
		Source:            sourceLocal,
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
