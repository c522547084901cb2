// Package repositorytest provides in-memory implementations of the auth
// service repositories for tests. Each fake returns Err from every method
// when it is set.
package repositorytest

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
)

// DuplicateKeyError satisfies mongo.IsDuplicateKeyError.
var DuplicateKeyError = mongo.WriteException{
	WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
}

func hexID(id string) (bson.ObjectID, error) {
	return bson.ObjectIDFromHex(id)
}

// Accounts is an in-memory repository.AccountRepository.
type Accounts struct {
	mu       sync.Mutex
	accounts []*model.LocalAccount
	Err      error
}

var _ repository.AccountRepository = (*Accounts)(nil)

func NewAccounts() *Accounts {
	return &Accounts{}
}

// Len returns the number of stored accounts.
func (f *Accounts) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

func (f *Accounts) CreateAccount(_ context.Context, account *model.LocalAccount) (*model.LocalAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	for _, existing := range f.accounts {
		if collides(existing, account) {
			return nil, DuplicateKeyError
		}
	}

	stored := *account
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	f.accounts = append(f.accounts, &stored)

	out := stored
	return &out, nil
}

func collides(a, b *model.LocalAccount) bool {
	return (b.Username != "" && a.Username == b.Username) ||
		(b.Email != "" && a.Email == b.Email) ||
		(b.Mobile != "" && a.Mobile == b.Mobile)
}

func (f *Accounts) GetAccount(_ context.Context, id string) (*model.LocalAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	objectID, err := hexID(id)
	if err != nil {
		return nil, err
	}
	for _, account := range f.accounts {
		if account.ID == objectID {
			out := *account
			return &out, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *Accounts) GetAccountByIdentifier(_ context.Context, identifier string) (*model.LocalAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	probe := &model.LocalAccount{Username: identifier, Email: identifier, Mobile: identifier}
	for _, account := range f.accounts {
		if collides(account, probe) {
			out := *account
			return &out, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *Accounts) ExistsAny(_ context.Context, params repository.IdentifierParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}

	probe := &model.LocalAccount{Username: params.Username, Email: params.Email, Mobile: params.Mobile}
	for _, account := range f.accounts {
		if collides(account, probe) {
			return true, nil
		}
	}

	return false, nil
}

// FacebookProfiles is an in-memory repository.FacebookProfileRepository.
type FacebookProfiles struct {
	mu       sync.Mutex
	profiles map[string]*model.FacebookProfile
	Err      error
}

var _ repository.FacebookProfileRepository = (*FacebookProfiles)(nil)

func NewFacebookProfiles() *FacebookProfiles {
	return &FacebookProfiles{profiles: make(map[string]*model.FacebookProfile)}
}

// Len returns the number of stored profiles.
func (f *FacebookProfiles) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

func (f *FacebookProfiles) UpsertProfile(
	_ context.Context,
	params repository.UpsertFacebookProfileParams,
) (*model.FacebookProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	now := time.Now()
	profile, ok := f.profiles[params.FacebookID]
	if !ok {
		profile = &model.FacebookProfile{ID: bson.NewObjectID(), FacebookID: params.FacebookID, CreatedAt: now}
		f.profiles[params.FacebookID] = profile
	}

	profile.Name = params.Name
	profile.ProfileLink = params.ProfileLink
	profile.Raw = maps.Clone(params.Raw)
	if params.Email != "" {
		profile.Email = params.Email
	}
	if params.ProfilePic != "" {
		profile.ProfilePic = params.ProfilePic
	}
	if params.NumberOfPosts != nil {
		n := *params.NumberOfPosts
		profile.NumberOfPosts = &n
	}
	profile.UpdatedAt = now

	out := *profile
	return &out, nil
}

func (f *FacebookProfiles) GetProfile(_ context.Context, id string) (*model.FacebookProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	objectID, err := hexID(id)
	if err != nil {
		return nil, err
	}
	for _, profile := range f.profiles {
		if profile.ID == objectID {
			out := *profile
			return &out, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *FacebookProfiles) GetProfileByFacebookID(_ context.Context, facebookID string) (*model.FacebookProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	profile, ok := f.profiles[facebookID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	out := *profile
	return &out, nil
}

// GoogleProfiles is an in-memory repository.GoogleProfileRepository.
type GoogleProfiles struct {
	mu       sync.Mutex
	profiles map[string]*model.GoogleProfile
	Err      error
}

var _ repository.GoogleProfileRepository = (*GoogleProfiles)(nil)

func NewGoogleProfiles() *GoogleProfiles {
	return &GoogleProfiles{profiles: make(map[string]*model.GoogleProfile)}
}

// Len returns the number of stored profiles.
func (f *GoogleProfiles) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

func (f *GoogleProfiles) UpsertProfile(
	_ context.Context,
	params repository.UpsertGoogleProfileParams,
) (*model.GoogleProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	now := time.Now()
	profile, ok := f.profiles[params.GoogleID]
	if !ok {
		profile = &model.GoogleProfile{ID: bson.NewObjectID(), GoogleID: params.GoogleID, CreatedAt: now}
		f.profiles[params.GoogleID] = profile
	}

	profile.Name = params.Name
	profile.Profile = maps.Clone(params.Profile)
	if params.Email != "" {
		profile.Email = params.Email
	}
	if params.ProfilePic != "" {
		profile.ProfilePic = params.ProfilePic
	}
	profile.UpdatedAt = now

	out := *profile
	return &out, nil
}

func (f *GoogleProfiles) GetProfile(_ context.Context, id string) (*model.GoogleProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	objectID, err := hexID(id)
	if err != nil {
		return nil, err
	}
	for _, profile := range f.profiles {
		if profile.ID == objectID {
			out := *profile
			return &out, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *GoogleProfiles) GetProfileByGoogleID(_ context.Context, googleID string) (*model.GoogleProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	profile, ok := f.profiles[googleID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	out := *profile
	return &out, nil
}

// TwitterProfiles is an in-memory repository.TwitterProfileRepository.
// GetErr, when set, is returned only by GetProfileByTwitterID.
type TwitterProfiles struct {
	mu       sync.Mutex
	profiles map[string]*model.TwitterProfile
	Err      error
	GetErr   error
}

var _ repository.TwitterProfileRepository = (*TwitterProfiles)(nil)

func NewTwitterProfiles() *TwitterProfiles {
	return &TwitterProfiles{profiles: make(map[string]*model.TwitterProfile)}
}

// Len returns the number of stored profiles.
func (f *TwitterProfiles) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

// Delete removes the profile for twitterID.
func (f *TwitterProfiles) Delete(twitterID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, twitterID)
}

// upsertLocked returns the record for twitterID, creating it when absent.
func (f *TwitterProfiles) upsertLocked(twitterID string) *model.TwitterProfile {
	now := time.Now()
	profile, ok := f.profiles[twitterID]
	if !ok {
		profile = &model.TwitterProfile{ID: bson.NewObjectID(), TwitterID: twitterID, CreatedAt: now}
		f.profiles[twitterID] = profile
	}
	profile.UpdatedAt = now
	return profile
}

func (f *TwitterProfiles) UpsertProfile(
	_ context.Context,
	params repository.UpsertTwitterProfileParams,
) (*model.TwitterProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	profile := f.upsertLocked(params.TwitterID)
	profile.Name = params.Name
	profile.OAuthToken = params.OAuthToken
	profile.OAuthTokenSecret = params.OAuthTokenSecret
	profile.ProfileRaw = maps.Clone(params.ProfileRaw)
	if params.Username != "" {
		profile.Username = params.Username
	}

	out := *profile
	return &out, nil
}

func (f *TwitterProfiles) GetProfile(_ context.Context, id string) (*model.TwitterProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	objectID, err := hexID(id)
	if err != nil {
		return nil, err
	}
	for _, profile := range f.profiles {
		if profile.ID == objectID {
			out := *profile
			return &out, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *TwitterProfiles) GetProfileByTwitterID(_ context.Context, twitterID string) (*model.TwitterProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.GetErr != nil {
		return nil, f.GetErr
	}

	profile, ok := f.profiles[twitterID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	out := *profile
	return &out, nil
}

func (f *TwitterProfiles) UpdateMetrics(_ context.Context, twitterID string, metrics model.TwitterMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}

	profile := f.upsertLocked(twitterID)
	profile.FollowersCount = metrics.FollowersCount
	profile.TweetCount = metrics.TweetCount
	profile.ListedCount = metrics.ListedCount
	profile.MediaCount = metrics.MediaCount
	profile.ProfileImageURL = metrics.ProfileImageURL

	return nil
}

func (f *TwitterProfiles) SetRecentTweetCount(_ context.Context, twitterID string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}

	profile := f.upsertLocked(twitterID)
	profile.RecentTweetCount = &count

	return nil
}

// OAuthStates is an in-memory repository.OAuthStateRepository.
type OAuthStates struct {
	mu     sync.Mutex
	states map[string]*model.OAuthState
	Err    error
}

var _ repository.OAuthStateRepository = (*OAuthStates)(nil)

func NewOAuthStates() *OAuthStates {
	return &OAuthStates{states: make(map[string]*model.OAuthState)}
}

func (f *OAuthStates) CreateState(_ context.Context, state *model.OAuthState) (*model.OAuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.states[state.Key]; ok {
		return nil, DuplicateKeyError
	}

	stored := *state
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	f.states[state.Key] = &stored

	out := stored
	return &out, nil
}

func (f *OAuthStates) ConsumeState(_ context.Context, provider, key string) (*model.OAuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	state, ok := f.states[key]
	if !ok || state.Provider != provider || !state.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrStateNotFound
	}
	delete(f.states, key)

	return state, nil
}
