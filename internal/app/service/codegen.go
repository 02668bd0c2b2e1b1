package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/varkes/adshort/internal/app/repository"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"
	codeLength   = 7
	maxAttempts  = 10

	bloomCapacity = 1_000_000
	bloomFalsePos = 0.01
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// Generator produces collision-checked short codes and validates
// user-supplied aliases. A bloom filter over every known code and
// alias screens candidates before the store is consulted; a false
// positive only costs one extra attempt.
type Generator struct {
	links repository.LinkRepository

	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewGenerator returns a Generator backed by the given link store.
func NewGenerator(links repository.LinkRepository) *Generator {
	return &Generator{
		links:  links,
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFalsePos),
	}
}

// Warm seeds the bloom filter from the store. Call once at startup.
func (g *Generator) Warm(ctx context.Context) (int, error) {
	codes, err := g.links.AllCodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("warm code filter: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, code := range codes {
		g.filter.AddString(code)
	}
	return len(codes), nil
}

// Generate produces a fresh 7-character code. The check-then-insert
// race is closed by the store's uniqueness constraint; callers treat
// a duplicate-key insert failure as one more collision.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := randomCode(codeLength)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		if g.maybeKnown(candidate) {
			continue
		}

		taken, err := g.links.CodeInUse(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if taken {
			g.remember(candidate)
			continue
		}

		g.remember(candidate)
		return candidate, nil
	}
	return "", ErrGenerationExhausted
}

// ClaimAlias validates alias syntax and availability. The alias
// shares the code namespace, so it is checked against both columns.
func (g *Generator) ClaimAlias(ctx context.Context, alias string) error {
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidAlias
	}

	taken, err := g.links.CodeInUse(ctx, alias)
	if err != nil {
		return fmt.Errorf("check alias: %w", err)
	}
	if taken {
		return ErrAliasTaken
	}

	g.remember(alias)
	return nil
}

func (g *Generator) maybeKnown(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.TestString(code)
}

func (g *Generator) remember(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter.AddString(code)
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
