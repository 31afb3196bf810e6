package usecase

import "context"

// AdminUsecase guards the maintenance surface. Login is rate limited with a
// hard lockout; the destructive operations additionally require the admin
// flag established by the delivery layer.
type AdminUsecase interface {
	// Login checks the administrator password. Every call counts against
	// the lockout window, including successful ones.
	Login(ctx context.Context, password string) error

	// ResetAllData empties every collection while keeping the document
	// identity.
	ResetAllData(ctx context.Context) error

	// PruneCompleted removes completed requests older than the manual
	// retention window and returns how many were removed.
	PruneCompleted(ctx context.Context) (int, error)
}
