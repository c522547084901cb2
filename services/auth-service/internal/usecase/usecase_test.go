package usecase

import (
	"context"
	"sync"

	"github.com/vasapolrittideah/siwic-api/shared/provider"
)

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []any
	welcomed []string
}

func (n *recordingNotifier) Notify(payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
}

func (n *recordingNotifier) Welcome(address, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if address != "" {
		n.welcomed = append(n.welcomed, address)
	}
}

type fakeEnricher struct {
	user      *provider.TwitterUser
	userErr   error
	tweets    []provider.Tweet
	tweetsErr error
}

func (f *fakeEnricher) GetUser(context.Context, string) (*provider.TwitterUser, error) {
	return f.user, f.userErr
}

func (f *fakeEnricher) RecentTweets(context.Context, string) ([]provider.Tweet, error) {
	return f.tweets, f.tweetsErr
}
