package auth

import (
	"github.com/polkiloo/library/internal/config"
	"go.uber.org/fx"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
	fx.Provide(newAdminCredential),
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewJWTStrategy(p.Config.SessionSecret, Options{TTL: p.Config.SessionTTL})
}

type adminParams struct {
	fx.In

	Config *config.Config
	Hasher PasswordHasher
}

func newAdminCredential(p adminParams) (AdminCredential, error) {
	return NewAdminCredential(p.Config.AdminUsername, p.Config.AdminPassword, p.Hasher)
}
