package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/library/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewCatalogUseCase,
	NewLendingUseCase,
	newLendingPolicy,
)

func newLendingPolicy(cfg *config.Config) LendingPolicy {
	return LendingPolicy{
		LoanPeriod:       cfg.LoanPeriod,
		OwnerReturnsOnly: cfg.ReturnPolicy == config.ReturnPolicyOwner,
		MaxAttempts:      cfg.LendingMaxAttempts,
	}
}
