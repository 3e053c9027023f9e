package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/library/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

const defaultTTL = 24 * time.Hour

// sessionClaims is the JWT payload of a library session.
type sessionClaims struct {
	UserID int64 `json:"uid,omitempty"`
	Admin  bool  `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// JWTStrategy signs session tokens with HS256.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken generates a signed session token for the identity.
func (s *JWTStrategy) IssueToken(identity model.Identity) (string, error) {
	if identity.IsAnonymous() {
		return "", ErrInvalidToken
	}
	now := s.now()
	claims := sessionClaims{
		UserID: identity.UserID,
		Admin:  identity.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates the token and returns the identity it carries.
func (s *JWTStrategy) ParseToken(token string) (model.Identity, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return model.Identity{}, ErrInvalidToken
	}

	identity := model.Identity{UserID: claims.UserID, Admin: claims.Admin}
	if identity.IsAnonymous() {
		return model.Identity{}, ErrInvalidToken
	}
	return identity, nil
}
