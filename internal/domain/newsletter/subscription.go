package newsletter

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrEmailRequired     = errors.New("newsletter: email is required")
	ErrAlreadySubscribed = errors.New("newsletter: already subscribed")
)

type Subscription struct {
	Email     string
	CreatedAt time.Time
}

func NewSubscription(email string) (Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Subscription{}, ErrEmailRequired
	}
	return Subscription{Email: email, CreatedAt: time.Now()}, nil
}

type Repository interface {
	Save(ctx context.Context, sub Subscription) error
}
