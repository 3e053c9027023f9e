package auth

import (
	"time"

	"github.com/polkiloo/library/internal/domain/model"
)

// Strategy issues and verifies session tokens carrying a caller identity.
type Strategy interface {
	IssueToken(identity model.Identity) (string, error)
	ParseToken(token string) (model.Identity, error)
}

type Options struct {
	TTL time.Duration
}
