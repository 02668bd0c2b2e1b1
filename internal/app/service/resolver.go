package service

import (
	"context"
	"errors"
	"time"

	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
	"go.uber.org/zap"
)

// Resolver applies the redirect gating rules to an inbound short code.
//
// The checks run in a fixed order, each a possible early exit:
// lookup, enabled flag, expiry, password. Expiry is lazy: there is no
// background sweep, the first access after the deadline flips the
// link to disabled. A later access therefore sees ErrLinkDisabled,
// not ErrLinkExpired.
type Resolver struct {
	links  repository.LinkRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewResolver returns a Resolver over the given link store.
func NewResolver(links repository.LinkRepository, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{links: links, logger: logger, now: time.Now}
}

// Resolve returns the link for code if every gate passes, or one of
// ErrNotFound, ErrLinkDisabled, ErrLinkExpired, ErrPasswordRequired.
func (r *Resolver) Resolve(ctx context.Context, code string) (*model.Link, error) {
	link, err := r.links.GetByCodeOrAlias(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !link.Enabled {
		return nil, ErrLinkDisabled
	}

	if link.Expired(r.now()) {
		// Persist the deactivation; the 410 goes out either way.
		if err := r.links.SetEnabled(ctx, link.ID, false); err != nil {
			r.logger.Error("failed to disable expired link",
				zap.Uint("link_id", link.ID), zap.Error(err))
		}
		return nil, ErrLinkExpired
	}

	if link.Protected() {
		return nil, ErrPasswordRequired
	}

	return link, nil
}
