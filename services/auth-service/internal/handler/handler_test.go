package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/notifier"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository/repositorytest"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/strategy"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/siwic-api/shared/auth"
	"github.com/vasapolrittideah/siwic-api/shared/logger"
	"github.com/vasapolrittideah/siwic-api/shared/middleware"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
	"github.com/vasapolrittideah/siwic-api/shared/validation"
	"github.com/vasapolrittideah/siwic-api/shared/worker"
)

const cookieName = "siwic_session"

type fakeAuthenticator struct {
	mu       sync.Mutex
	identity *provider.Identity
	err      error
}

func (f *fakeAuthenticator) Begin(_ context.Context, state string) (provider.BeginResult, error) {
	return provider.BeginResult{URL: "https://provider.test/authorize?state=" + state, Key: state}, nil
}

func (f *fakeAuthenticator) CallbackKey(query url.Values) string {
	return query.Get("state")
}

func (f *fakeAuthenticator) Complete(context.Context, provider.CallbackParams) (*provider.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity, f.err
}

func (f *fakeAuthenticator) set(identity *provider.Identity, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity, f.err = identity, err
}

type fakeEnricher struct {
	err error
}

func (f *fakeEnricher) GetUser(context.Context, string) (*provider.TwitterUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.TwitterUser{PublicMetrics: &provider.TwitterPublicMetrics{FollowersCount: 7}}, nil
}

func (f *fakeEnricher) RecentTweets(context.Context, string) ([]provider.Tweet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []provider.Tweet{{ID: "1"}, {ID: "2"}}, nil
}

// inlineSubmitter runs background tasks synchronously.
type inlineSubmitter struct{}

func (inlineSubmitter) Submit(_ string, task worker.Task, done func(error)) bool {
	err := task(context.Background())
	if done != nil {
		done(err)
	}
	return true
}

type harness struct {
	router   http.Handler
	accounts *repositorytest.Accounts
	twitter  *repositorytest.TwitterProfiles
	states   *repositorytest.OAuthStates
	facebook *fakeAuthenticator
	tw       *fakeAuthenticator
	enricher *fakeEnricher
	webhook  *httptest.Server
	hooks    chan map[string]any
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		accounts: repositorytest.NewAccounts(),
		twitter:  repositorytest.NewTwitterProfiles(),
		states:   repositorytest.NewOAuthStates(),
		facebook: &fakeAuthenticator{},
		tw:       &fakeAuthenticator{},
		enricher: &fakeEnricher{},
		hooks:    make(chan map[string]any, 16),
	}
	facebookProfiles := repositorytest.NewFacebookProfiles()
	googleProfiles := repositorytest.NewGoogleProfiles()

	h.webhook = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		h.hooks <- body
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(h.webhook.Close)

	log := logger.Nop()
	sessionCfg := config.SessionConfig{
		Secret:     "test-secret",
		CookieName: cookieName,
		TTL:        time.Hour,
		Issuer:     "siwic-auth",
	}
	jwtAuth := auth.NewJWTAuthenticator(sessionCfg.Issuer, sessionCfg.Issuer)

	n := notifier.New(log, inlineSubmitter{}, notifier.Options{PostbackURL: h.webhook.URL})
	sessionUsecase := usecase.NewSessionUsecase(h.accounts, facebookProfiles, googleProfiles, h.twitter, jwtAuth, sessionCfg)
	callbackUsecase := usecase.NewCallbackUsecase(log, h.twitter, h.enricher, n)
	accountUsecase := usecase.NewAccountUsecase(h.accounts, n)

	validator, err := validation.New()
	if err != nil {
		t.Fatalf("validation.New() error = %v", err)
	}

	cookies := NewSessionCookies(sessionUsecase, sessionCfg)
	strategies := strategy.NewRegistry(
		strategy.NewFacebookStrategy(h.facebook, facebookProfiles),
		strategy.NewTwitterStrategy(h.tw, h.twitter),
	)

	h.router = NewRouter(
		NewAuthHandler(strategies, h.states, callbackUsecase, sessionUsecase, cookies, time.Minute),
		NewUserHandler(accountUsecase, validator, cookies),
		RouterOptions{
			Logger:        log,
			AllowedOrigin: "http://localhost:3000",
			Session:       middleware.NewSessionMiddleware(jwtAuth, sessionCfg.Secret, cookieName),
		},
	)

	return h
}

func (h *harness) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", cookieName)
	return nil
}

// beginLogin starts a provider login and returns the state it stored.
func (h *harness) beginLogin(t *testing.T, providerName string) string {
	t.Helper()

	rec := h.do(t, http.MethodGet, "/auth/"+providerName, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("begin status = %d, want %d", rec.Code, http.StatusFound)
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	state := location.Query().Get("state")
	if state == "" {
		t.Fatalf("Location %q carries no state", location)
	}
	return state
}
