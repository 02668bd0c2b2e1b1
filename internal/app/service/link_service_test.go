package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLinkService(links *memLinkRepo, clicks *memClickRepo) *LinkService {
	return NewLinkService(links, clicks, NewGenerator(links), NewAggregator(clicks))
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func TestCreateLinkGeneratedCode(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com/some/long/path?q=1",
	})
	require.NoError(t, err)

	assert.Len(t, link.Code, codeLength)
	assert.Nil(t, link.Alias)
	assert.Nil(t, link.OwnerID)
	assert.True(t, link.Enabled)
	assert.Nil(t, link.PasswordHash)

	stored, err := links.GetByCodeOrAlias(context.Background(), link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/some/long/path?q=1", stored.OriginalURL)
}

func TestCreateLinkWithAlias(t *testing.T) {
	svc := newLinkService(newMemLinkRepo(), newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		Alias:       "my-link",
		OwnerID:     uintPtr(7),
	})
	require.NoError(t, err)

	assert.Equal(t, "my-link", link.Code)
	require.NotNil(t, link.Alias)
	assert.Equal(t, "my-link", *link.Alias)
}

func TestCreateLinkAliasConflict(t *testing.T) {
	svc := newLinkService(newMemLinkRepo(), newMemClickRepo())

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		Alias:       "taken",
	})
	require.NoError(t, err)

	_, err = svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.org",
		Alias:       "taken",
	})
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestCreateLinkHashesPassword(t *testing.T) {
	svc := newLinkService(newMemLinkRepo(), newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		Password:    "hunter22",
	})
	require.NoError(t, err)

	require.NotNil(t, link.PasswordHash)
	assert.NotEqual(t, "hunter22", *link.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte("hunter22")))
	assert.True(t, link.Protected())
}

func TestValidateDestination(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "https ok", raw: "https://example.com/a?b=c", wantErr: nil},
		{name: "http ok", raw: "http://example.com", wantErr: nil},
		{name: "no scheme", raw: "example.com/page", wantErr: ErrInvalidURL},
		{name: "ftp", raw: "ftp://example.com/file", wantErr: ErrInvalidURL},
		{name: "javascript", raw: "javascript:alert(1)", wantErr: ErrInvalidURL},
		{name: "empty host", raw: "https://", wantErr: ErrInvalidURL},
		{name: "localhost", raw: "http://localhost:8080/admin", wantErr: ErrForbiddenHost},
		{name: "localhost subdomain", raw: "http://api.localhost/x", wantErr: ErrForbiddenHost},
		{name: "mdns", raw: "http://printer.local", wantErr: ErrForbiddenHost},
		{name: "loopback ip", raw: "http://127.0.0.1/", wantErr: ErrForbiddenHost},
		{name: "private ip", raw: "http://10.0.0.5/", wantErr: ErrForbiddenHost},
		{name: "link local", raw: "http://169.254.169.254/latest/meta-data", wantErr: ErrForbiddenHost},
		{name: "unspecified", raw: "http://0.0.0.0/", wantErr: ErrForbiddenHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDestination(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListLinksScopedToOwner(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com/a", OwnerID: uintPtr(1)})
	require.NoError(t, err)
	_, err = svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com/b", OwnerID: uintPtr(1)})
	require.NoError(t, err)
	_, err = svc.CreateLink(context.Background(), CreateLinkInput{OriginalURL: "https://example.com/c", OwnerID: uintPtr(2)})
	require.NoError(t, err)

	mine, err := svc.ListLinks(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestUpdateLinkPartialPatch(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com/old",
		OwnerID:     uintPtr(1),
		Password:    "secret1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateLink(context.Background(), link.ID, 1, false, UpdateLinkInput{
		OriginalURL: strPtr("https://example.com/new"),
		Enabled:     boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/new", updated.OriginalURL)
	assert.False(t, updated.Enabled)
	// Untouched fields survive a partial patch.
	assert.NotNil(t, updated.PasswordHash)
	assert.Equal(t, link.Code, updated.Code)
}

func TestUpdateLinkClearsPassword(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
		Password:    "secret1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateLink(context.Background(), link.ID, 1, false, UpdateLinkInput{
		Password: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.PasswordHash)
	assert.False(t, updated.Protected())
}

func TestUpdateLinkOwnership(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
	})
	require.NoError(t, err)

	_, err = svc.UpdateLink(context.Background(), link.ID, 2, false, UpdateLinkInput{
		Enabled: boolPtr(false),
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	// Admins bypass the ownership check.
	_, err = svc.UpdateLink(context.Background(), link.ID, 2, true, UpdateLinkInput{
		Enabled: boolPtr(false),
	})
	assert.NoError(t, err)
}

func TestUpdateLinkRejectsBadDestination(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
	})
	require.NoError(t, err)

	_, err = svc.UpdateLink(context.Background(), link.ID, 1, false, UpdateLinkInput{
		OriginalURL: strPtr("http://127.0.0.1/internal"),
	})
	assert.ErrorIs(t, err, ErrForbiddenHost)
}

func TestDeleteLinkCascadesClicks(t *testing.T) {
	links := newMemLinkRepo()
	clicks := newMemClickRepo()
	svc := newLinkService(links, clicks)

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
	})
	require.NoError(t, err)

	recorder := NewClickRecorder(links, clicks)
	require.NoError(t, recorder.Record(context.Background(), link.ID, ClickMeta{IP: "203.0.113.9"}))
	require.Equal(t, 1, clicks.count(link.ID))

	require.NoError(t, svc.DeleteLink(context.Background(), link.ID, 1, false))

	_, err = links.GetByID(context.Background(), link.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, clicks.count(link.ID))
}

func TestDeleteLinkNotOwner(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteLink(context.Background(), link.ID, 2, false), ErrNotOwner)
}

func TestStatsOwnershipNotProbeable(t *testing.T) {
	links := newMemLinkRepo()
	svc := newLinkService(links, newMemClickRepo())

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
	})
	require.NoError(t, err)

	// A foreign code and an unknown code must be indistinguishable.
	_, errForeign := svc.Stats(context.Background(), link.Code, 2)
	_, errUnknown := svc.Stats(context.Background(), "nosuchcode", 2)
	assert.ErrorIs(t, errForeign, ErrNotFound)
	assert.ErrorIs(t, errUnknown, ErrNotFound)
}

func TestStatsReturnsAggregates(t *testing.T) {
	links := newMemLinkRepo()
	clicks := newMemClickRepo()
	svc := newLinkService(links, clicks)

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com",
		OwnerID:     uintPtr(1),
	})
	require.NoError(t, err)

	recorder := NewClickRecorder(links, clicks)
	for i := 0; i < 3; i++ {
		require.NoError(t, recorder.Record(context.Background(), link.ID, ClickMeta{
			IP:        "203.0.113.9",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0",
			Country:   "DE",
			Timestamp: time.Now(),
		}))
	}

	stats, err := svc.Stats(context.Background(), link.Code, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalClicks)
	assert.Equal(t, 3, stats.Countries["DE"])
}
