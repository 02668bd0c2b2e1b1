package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
)

// memLinkRepo is an in-memory LinkRepository used across the service
// tests. It enforces the shared code/alias namespace like the real
// Postgres constraints do.
type memLinkRepo struct {
	mu     sync.Mutex
	nextID uint
	links  map[uint]*model.Link

	// test knobs
	forceCodeInUse bool
	incrementErr   error
	createErr      error
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: make(map[uint]*model.Link)}
}

func (m *memLinkRepo) Create(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.links {
		if existing.Code == link.Code || (existing.Alias != nil && *existing.Alias == link.Code) {
			return repository.ErrDuplicateKey
		}
		if link.Alias != nil && (existing.Code == *link.Alias ||
			(existing.Alias != nil && *existing.Alias == *link.Alias)) {
			return repository.ErrDuplicateKey
		}
	}

	m.nextID++
	link.ID = m.nextID
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	stored := *link
	m.links[link.ID] = &stored
	return nil
}

func (m *memLinkRepo) GetByID(ctx context.Context, id uint) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memLinkRepo) GetByCodeOrAlias(ctx context.Context, code string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.Code == code {
			cp := *link
			return &cp, nil
		}
	}
	for _, link := range m.links {
		if link.Alias != nil && *link.Alias == code {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memLinkRepo) ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Link
	for _, link := range m.links {
		if link.OwnerID != nil && *link.OwnerID == ownerID {
			result = append(result, *link)
		}
	}
	return result, nil
}

func (m *memLinkRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceCodeInUse {
		return true, nil
	}
	for _, link := range m.links {
		if link.Code == code || (link.Alias != nil && *link.Alias == code) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLinkRepo) AllCodes(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var codes []string
	for _, link := range m.links {
		codes = append(codes, link.Code)
		if link.Alias != nil {
			codes = append(codes, *link.Alias)
		}
	}
	return codes, nil
}

func (m *memLinkRepo) Update(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *link
	m.links[link.ID] = &stored
	return nil
}

func (m *memLinkRepo) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return repository.ErrNotFound
	}
	link.Enabled = enabled
	return nil
}

func (m *memLinkRepo) IncrementClickCount(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrementErr != nil {
		return m.incrementErr
	}
	link, ok := m.links[id]
	if !ok {
		return repository.ErrNotFound
	}
	link.ClickCount++
	return nil
}

func (m *memLinkRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *memLinkRepo) clickCount(id uint) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link, ok := m.links[id]; ok {
		return link.ClickCount
	}
	return -1
}

// memClickRepo is an in-memory ClickRepository.
type memClickRepo struct {
	mu        sync.Mutex
	nextID    uint
	clicks    []model.Click
	createErr error
}

func newMemClickRepo() *memClickRepo {
	return &memClickRepo{}
}

func (m *memClickRepo) Create(ctx context.Context, click *model.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	click.ID = m.nextID
	m.clicks = append(m.clicks, *click)
	return nil
}

func (m *memClickRepo) ListSince(ctx context.Context, linkID uint, since time.Time) ([]model.Click, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Click
	for _, click := range m.clicks {
		if click.LinkID == linkID && !click.Timestamp.Before(since) {
			result = append(result, click)
		}
	}
	return result, nil
}

func (m *memClickRepo) DeleteByLink(ctx context.Context, linkID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.clicks[:0]
	for _, click := range m.clicks {
		if click.LinkID != linkID {
			kept = append(kept, click)
		}
	}
	m.clicks = kept
	return nil
}

func (m *memClickRepo) count(linkID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, click := range m.clicks {
		if click.LinkID == linkID {
			n++
		}
	}
	return n
}

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]*model.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, user := range m.users {
		result = append(result, *user)
	}
	return result, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memAPIKeyRepo is an in-memory APIKeyRepository.
type memAPIKeyRepo struct {
	mu     sync.Mutex
	nextID uint
	keys   map[uint]*model.APIKey
}

func newMemAPIKeyRepo() *memAPIKeyRepo {
	return &memAPIKeyRepo{keys: make(map[uint]*model.APIKey)}
}

func (m *memAPIKeyRepo) Create(ctx context.Context, key *model.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.keys {
		if existing.Digest == key.Digest {
			return repository.ErrDuplicateKey
		}
	}
	m.nextID++
	key.ID = m.nextID
	stored := *key
	m.keys[key.ID] = &stored
	return nil
}

func (m *memAPIKeyRepo) Revoke(ctx context.Context, userID uint, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range m.keys {
		if key.UserID == userID && key.Digest == digest {
			key.Revoked = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memAPIKeyRepo) byDigest(digest string) *model.APIKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range m.keys {
		if key.Digest == digest {
			cp := *key
			return &cp
		}
	}
	return nil
}
