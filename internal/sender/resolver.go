package sender

import (
	"context"

	"github.com/brightlabs/portal-mailer/internal/mailer"
	"github.com/brightlabs/portal-mailer/internal/pkg/logger"
)

// Resolver fills in missing sender fields from the stored default, falling
// back to a configured identity when the lookup fails. Resolution never
// returns an error: a broken sender table must not block message sending.
type Resolver struct {
	store    *Store
	fallback mailer.Identity
}

// NewResolver creates a resolver backed by the sender store. fallback must
// have both fields populated.
func NewResolver(store *Store, fallback mailer.Identity) *Resolver {
	return &Resolver{store: store, fallback: fallback}
}

// Resolve returns a complete sender identity. Explicit values win
// field-by-field; email and name are resolved independently, not as a pair.
func (r *Resolver) Resolve(ctx context.Context, email, name string) mailer.Identity {
	if email != "" && name != "" {
		return mailer.Identity{Email: email, Name: name}
	}

	def := r.lookupDefault(ctx)

	out := mailer.Identity{Email: email, Name: name}
	if out.Email == "" {
		out.Email = def.Email
	}
	if out.Name == "" {
		out.Name = def.Name
	}
	return out
}

func (r *Resolver) lookupDefault(ctx context.Context) mailer.Identity {
	def, err := r.store.GetDefault(ctx)
	if err != nil {
		logger.Warn("default sender lookup failed, using fallback identity", "error", err)
		return r.fallback
	}
	if def == nil {
		return r.fallback
	}
	out := mailer.Identity{Email: def.Email, Name: def.Name}
	if out.Email == "" {
		out.Email = r.fallback.Email
	}
	if out.Name == "" {
		out.Name = r.fallback.Name
	}
	return out
}
