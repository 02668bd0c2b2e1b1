package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varkes/adshort/internal/app/model"
)

func TestGenerateProducesValidCode(t *testing.T) {
	gen := NewGenerator(newMemLinkRepo())

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, code, codeLength)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r), "unexpected character %q", r)
	}
}

func TestGenerateAvoidsCollisions(t *testing.T) {
	gen := NewGenerator(newMemLinkRepo())

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[code], "code %q issued twice", code)
		seen[code] = true
	}
}

func TestGenerateExhausted(t *testing.T) {
	repo := newMemLinkRepo()
	repo.forceCodeInUse = true
	gen := NewGenerator(repo)

	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestWarmSeedsFilter(t *testing.T) {
	repo := newMemLinkRepo()
	alias := "my-alias"
	require.NoError(t, repo.Create(context.Background(), &model.Link{
		Code: "abc1234", Alias: &alias, OriginalURL: "https://example.com", Enabled: true,
	}))

	gen := NewGenerator(repo)
	n, err := gen.Warm(context.Background())
	require.NoError(t, err)

	// Code and alias both enter the filter.
	assert.Equal(t, 2, n)
	assert.True(t, gen.maybeKnown("abc1234"))
	assert.True(t, gen.maybeKnown("my-alias"))
}

func TestClaimAliasValidation(t *testing.T) {
	tests := []struct {
		name    string
		alias   string
		wantErr error
	}{
		{name: "valid", alias: "promo-2026_a", wantErr: nil},
		{name: "too short", alias: "ab", wantErr: ErrInvalidAlias},
		{name: "too long", alias: strings.Repeat("a", 65), wantErr: ErrInvalidAlias},
		{name: "bad characters", alias: "has space", wantErr: ErrInvalidAlias},
		{name: "slash", alias: "a/b/c", wantErr: ErrInvalidAlias},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(newMemLinkRepo())
			err := gen.ClaimAlias(context.Background(), tt.alias)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClaimAliasTaken(t *testing.T) {
	repo := newMemLinkRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Link{
		Code: "promo", OriginalURL: "https://example.com", Enabled: true,
	}))

	gen := NewGenerator(repo)
	// "promo" exists as a code, and the alias namespace is shared.
	assert.ErrorIs(t, gen.ClaimAlias(context.Background(), "promo"), ErrAliasTaken)
}
