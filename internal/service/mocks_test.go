package service

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sakif/matchboard/internal/apperror"
	"github.com/sakif/matchboard/internal/model"
)

// mockUserRepo is an in-memory UserRepository.
// The hooks let a test force an error or simulate a lost race.
type mockUserRepo struct {
	mu     sync.Mutex
	users  []model.User
	nextID int64

	createErr error
	getErr    error
	listErr   error
	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func(r *mockUserRepo)
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1}
}

func (m *mockUserRepo) add(u model.User) {
	u.ID = m.nextID
	m.nextID++
	m.users = append(m.users, u)
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.beforeCreate != nil {
		hook := m.beforeCreate
		m.beforeCreate = nil
		hook(m)
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.AlreadyExists("user", user.Email)
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	m.nextID++
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]model.User{}, m.users...), nil
}

func (m *mockUserRepo) ListByGender(_ context.Context, gender string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.User{}
	for _, u := range m.users {
		if u.Gender != nil && *u.Gender == gender {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// mockLikeRepo is an in-memory LikeRepository.
type mockLikeRepo struct {
	mu       sync.Mutex
	likes    []model.Like
	err      error
	countErr error
	counts   int // number of CountLikesReceived calls
	// afterCount runs once, outside the lock, after the count is taken
	// and before it is returned.
	afterCount func()
}

func (m *mockLikeRepo) CreateLike(_ context.Context, like *model.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	like.ID = int64(len(m.likes) + 1)
	like.CreatedAt = time.Now().UTC()
	m.likes = append(m.likes, *like)
	return nil
}

func (m *mockLikeRepo) CountLikesReceived(_ context.Context, email string) (int64, error) {
	m.mu.Lock()
	m.counts++
	if m.countErr != nil {
		m.mu.Unlock()
		return 0, m.countErr
	}
	var n int64
	for _, l := range m.likes {
		if l.LikedEmail == email {
			n++
		}
	}
	hook := m.afterCount
	m.afterCount = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return n, nil
}

// mockImages records saved uploads without touching disk.
type mockImages struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (m *mockImages) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := "img-" + originalName
	m.saved = append(m.saved, name)
	return name, nil
}

func (m *mockImages) Handler() http.Handler {
	return http.NotFoundHandler()
}
