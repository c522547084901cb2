package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository/repositorytest"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	accounts := repositorytest.NewAccounts()
	notifier := &recordingNotifier{}
	u := NewAccountUsecase(accounts, notifier)

	result, err := u.Register(ctx, RegisterParams{
		Username:      "alice",
		Email:         "alice@example.com",
		Password:      "s3cret",
		DateOfBirth:   "1990-05-17",
		FacebookPages: []string{"page"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.Account.PasswordHash == "" || result.Account.PasswordHash == "s3cret" {
		t.Errorf("password stored as %q, want a digest", result.Account.PasswordHash)
	}
	if result.Account.DateOfBirth == nil || result.Account.DateOfBirth.Year() != 1990 {
		t.Errorf("date of birth = %v", result.Account.DateOfBirth)
	}
	if result.Profile.Source != "user" || result.Profile.Username != "alice" {
		t.Errorf("profile = %+v", result.Profile)
	}
	if len(result.Profile.YoutubeChannels) != 0 || result.Profile.YoutubeChannels == nil {
		t.Errorf("youtube channels = %#v, want empty list", result.Profile.YoutubeChannels)
	}
	if len(notifier.payloads) != 1 {
		t.Errorf("webhook payloads = %d, want 1", len(notifier.payloads))
	}
	if len(notifier.welcomed) != 1 || notifier.welcomed[0] != "alice@example.com" {
		t.Errorf("welcomed = %v", notifier.welcomed)
	}
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name    string
		params  RegisterParams
		wantErr error
	}{
		{
			name:    "no identifier",
			params:  RegisterParams{Password: "x"},
			wantErr: ErrIdentifierRequired,
		},
		{
			name:    "no password",
			params:  RegisterParams{Mobile: "0800000000"},
			wantErr: ErrPasswordRequired,
		},
		{
			name:    "bad date of birth",
			params:  RegisterParams{Username: "bob", Password: "x", DateOfBirth: "17/05/1990"},
			wantErr: ErrInvalidDateOfBirth,
		},
		{
			name:    "duplicate username",
			params:  RegisterParams{Username: "alice", Password: "other"},
			wantErr: ErrAccountAlreadyExists,
		},
		{
			name:    "duplicate on any identifier",
			params:  RegisterParams{Username: "carol", Email: "alice@example.com", Password: "x"},
			wantErr: ErrAccountAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			accounts := repositorytest.NewAccounts()
			u := NewAccountUsecase(accounts, &recordingNotifier{})

			if _, err := u.Register(ctx, RegisterParams{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "s3cret",
			}); err != nil {
				t.Fatalf("seed: %v", err)
			}

			_, err := u.Register(ctx, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if accounts.Len() != 1 {
				t.Errorf("accounts = %d, want 1", accounts.Len())
			}
		})
	}
}

func TestRegisterAcceptsRFC3339DateOfBirth(t *testing.T) {
	u := NewAccountUsecase(repositorytest.NewAccounts(), &recordingNotifier{})

	result, err := u.Register(context.Background(), RegisterParams{
		Username:    "dave",
		Password:    "x",
		DateOfBirth: "1990-05-17T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Account.DateOfBirth == nil {
		t.Fatal("date of birth not stored")
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	accounts := repositorytest.NewAccounts()
	u := NewAccountUsecase(accounts, &recordingNotifier{})

	registered, err := u.Register(ctx, RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Mobile:   "0812345678",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "by username", identifier: "alice", password: "s3cret"},
		{name: "by email", identifier: "alice@example.com", password: "s3cret"},
		{name: "by mobile", identifier: "0812345678", password: "s3cret"},
		{name: "wrong password", identifier: "alice", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown identifier", identifier: "mallory", password: "s3cret", wantErr: ErrInvalidCredentials},
		{name: "missing password", identifier: "alice", wantErr: ErrCredentialsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := u.Login(ctx, LoginParams{Identifier: tt.identifier, Password: tt.password})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if result.Profile.ID != registered.Account.ID.Hex() {
				t.Errorf("id = %s, want %s", result.Profile.ID, registered.Account.ID.Hex())
			}
		})
	}

	// Login never mutates the account.
	if accounts.Len() != 1 {
		t.Errorf("accounts = %d, want 1", accounts.Len())
	}
	again, err := u.Login(ctx, LoginParams{Identifier: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if again.Account.PasswordHash != registered.Account.PasswordHash {
		t.Error("digest changed after login")
	}
}

func TestLoginRejectsMutatedPassword(t *testing.T) {
	ctx := context.Background()
	u := NewAccountUsecase(repositorytest.NewAccounts(), &recordingNotifier{})

	const password = "p@ss1234"
	if _, err := u.Register(ctx, RegisterParams{Username: "alice", Password: password}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := range len(password) {
		mutated := []byte(password)
		mutated[i]++
		if _, err := u.Login(ctx, LoginParams{Identifier: "alice", Password: string(mutated)}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) err = %v, want ErrInvalidCredentials", mutated, err)
		}
	}
}

func TestLoginStoreError(t *testing.T) {
	accounts := repositorytest.NewAccounts()
	storeErr := errors.New("store down")
	accounts.Err = storeErr
	u := NewAccountUsecase(accounts, &recordingNotifier{})

	_, err := u.Login(context.Background(), LoginParams{Identifier: "alice", Password: "x"})
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	u := NewAccountUsecase(repositorytest.NewAccounts(), &recordingNotifier{})

	if _, err := u.Register(ctx, RegisterParams{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		value   string
		want    bool
		wantErr error
	}{
		{value: "alice", want: true},
		{value: "bob", want: false},
		{value: "", wantErr: ErrValueRequired},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := u.CheckAvailability(ctx, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("exists = %v, want %v", got, tt.want)
			}
		})
	}
}
