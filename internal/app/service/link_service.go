package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
	"golang.org/x/crypto/bcrypt"
)

const createAttempts = 3

// LinkService implements link creation, owner-scoped management and
// per-link analytics.
type LinkService struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
	gen    *Generator
	stats  *Aggregator
}

// NewLinkService wires the link service from its collaborators.
func NewLinkService(links repository.LinkRepository, clicks repository.ClickRepository, gen *Generator, stats *Aggregator) *LinkService {
	return &LinkService{links: links, clicks: clicks, gen: gen, stats: stats}
}

// CreateLinkInput captures data required to shorten a URL. OwnerID is
// nil for anonymous links.
type CreateLinkInput struct {
	OriginalURL string
	Alias       string
	Password    string
	ExpiresAt   *time.Time
	OwnerID     *uint
}

// UpdateLinkInput captures fields that can change on an existing
// link. Nil means "no change", distinct from an explicit empty value.
type UpdateLinkInput struct {
	OriginalURL *string
	Alias       *string
	Enabled     *bool
	ExpiresAt   *time.Time
	Password    *string
}

// CreateLink validates the destination, picks or claims a short code
// and persists the link. Insert-time duplicate-key failures on a
// generated code are treated as collisions and retried.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if err := ValidateDestination(input.OriginalURL); err != nil {
		return nil, err
	}

	var passwordHash *string
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	if input.Alias != "" {
		if err := s.gen.ClaimAlias(ctx, input.Alias); err != nil {
			return nil, err
		}
		alias := input.Alias
		link := &model.Link{
			Code:         alias,
			Alias:        &alias,
			OriginalURL:  input.OriginalURL,
			OwnerID:      input.OwnerID,
			PasswordHash: passwordHash,
			Enabled:      true,
			ExpiresAt:    input.ExpiresAt,
		}
		if err := s.links.Create(ctx, link); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return nil, ErrAliasTaken
			}
			return nil, fmt.Errorf("create link: %w", err)
		}
		return link, nil
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := s.gen.Generate(ctx)
		if err != nil {
			return nil, err
		}

		link := &model.Link{
			Code:         code,
			OriginalURL:  input.OriginalURL,
			OwnerID:      input.OwnerID,
			PasswordHash: passwordHash,
			Enabled:      true,
			ExpiresAt:    input.ExpiresAt,
		}
		err = s.links.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the check-then-insert race, pick another code.
			continue
		}
		return nil, fmt.Errorf("create link: %w", err)
	}
	return nil, ErrGenerationExhausted
}

// ListLinks returns the owner's links, newest first.
func (s *LinkService) ListLinks(ctx context.Context, ownerID uint) ([]model.Link, error) {
	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// UpdateLink merges the patch into the stored link. Only the owner,
// or an admin, may mutate.
func (s *LinkService) UpdateLink(ctx context.Context, id uint, actorID uint, isAdmin bool, input UpdateLinkInput) (*model.Link, error) {
	link, err := s.loadOwned(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	if input.OriginalURL != nil {
		if err := ValidateDestination(*input.OriginalURL); err != nil {
			return nil, err
		}
		link.OriginalURL = *input.OriginalURL
	}
	if input.Alias != nil && (link.Alias == nil || *input.Alias != *link.Alias) {
		if err := s.gen.ClaimAlias(ctx, *input.Alias); err != nil {
			return nil, err
		}
		alias := *input.Alias
		link.Alias = &alias
	}
	if input.Enabled != nil {
		link.Enabled = *input.Enabled
	}
	if input.ExpiresAt != nil {
		link.ExpiresAt = input.ExpiresAt
	}
	if input.Password != nil {
		if *input.Password == "" {
			link.PasswordHash = nil
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			h := string(hash)
			link.PasswordHash = &h
		}
	}

	if err := s.links.Update(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAliasTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update link: %w", err)
	}
	return link, nil
}

// DeleteLink removes the link and its recorded clicks.
func (s *LinkService) DeleteLink(ctx context.Context, id uint, actorID uint, isAdmin bool) error {
	link, err := s.loadOwned(ctx, id, actorID, isAdmin)
	if err != nil {
		return err
	}

	if err := s.clicks.DeleteByLink(ctx, link.ID); err != nil {
		return fmt.Errorf("delete clicks: %w", err)
	}
	if err := s.links.Delete(ctx, link.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// Stats aggregates the owner's link analytics over the default window.
func (s *LinkService) Stats(ctx context.Context, code string, ownerID uint) (*LinkStats, error) {
	link, err := s.links.GetByCodeOrAlias(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load link: %w", err)
	}
	if link.OwnerID == nil || *link.OwnerID != ownerID {
		// Same body as an unknown code so ownership is not probeable.
		return nil, ErrNotFound
	}

	return s.stats.Stats(ctx, link, DefaultStatsWindow)
}

func (s *LinkService) loadOwned(ctx context.Context, id uint, actorID uint, isAdmin bool) (*model.Link, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load link: %w", err)
	}
	if isAdmin {
		return link, nil
	}
	if link.OwnerID == nil || *link.OwnerID != actorID {
		return nil, ErrNotOwner
	}
	return link, nil
}

// ValidateDestination checks that raw is a syntactically valid http
// or https URL whose host is not loopback, private or link-local.
func ValidateDestination(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ErrInvalidURL
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return ErrForbiddenHost
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
			return ErrForbiddenHost
		}
	}
	return nil
}
