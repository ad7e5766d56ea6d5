package blog

import (
	"context"
	"log/slog"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// GrantReader is the part of the document store the authorizer needs.
type GrantReader interface {
	AdminExists(ctx context.Context, uid string) (bool, error)
}

// Authorizer decides whether an identity may write posts. An identity is an
// admin iff a grant document keyed by its id exists.
type Authorizer struct {
	grants GrantReader
	logger *slog.Logger
}

func NewAuthorizer(grants GrantReader, logger *slog.Logger) *Authorizer {
	return &Authorizer{grants: grants, logger: logger}
}

// Check never returns an error: a failed read counts as not authorized.
func (a *Authorizer) Check(ctx context.Context, identity *models.Identity) bool {
	if identity == nil || identity.ID == "" {
		return false
	}

	a.logger.Debug("checking admin grant", "uid", identity.ID)
	ok, err := a.grants.AdminExists(ctx, identity.ID)
	if err != nil {
		a.logger.Error("admin check failed", "uid", identity.ID, "error", err)
		return false
	}
	a.logger.Debug("admin grant checked", "uid", identity.ID, "exists", ok)
	return ok
}
