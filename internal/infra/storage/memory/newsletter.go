package memory

import (
	"context"
	"sync"

	domainnewsletter "homeseek/internal/domain/newsletter"
	domainuser "homeseek/internal/domain/user"
)

// NewsletterStore keeps subscriptions in memory.
type NewsletterStore struct {
	mu     sync.Mutex
	emails map[string]domainnewsletter.Subscription
}

func NewNewsletterStore() *NewsletterStore {
	return &NewsletterStore{emails: make(map[string]domainnewsletter.Subscription)}
}

func (s *NewsletterStore) Save(ctx context.Context, sub domainnewsletter.Subscription) error {
	email := domainuser.NormalizeEmail(sub.Email)
	if email == "" {
		return domainnewsletter.ErrEmailRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[email]; ok {
		return domainnewsletter.ErrAlreadySubscribed
	}
	sub.Email = email
	s.emails[email] = sub
	return nil
}

var _ domainnewsletter.Repository = (*NewsletterStore)(nil)
