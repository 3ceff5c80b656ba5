package service

import (
	"context"
	"sync"
	"time"

	"github.com/unitnode/unitnode/internal/model"
	"github.com/unitnode/unitnode/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository for tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *fakeUserRepo) MarkVerified(email string, verifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.EmailVerifiedAt == nil {
		user.EmailVerifiedAt = &verifiedAt
	}
	user.IsActive = true
	return nil
}

func (r *fakeUserRepo) SetCompanyName(email, companyName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.CompanyName = &companyName
	return nil
}

type sentMail struct {
	Email string
	Code  string
	Token string
	Name  string
	Kind  string // "signup" or "login"
}

// captureMailer records outbound mail instead of sending it.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error // when set, every send returns this error
}

func (m *captureMailer) SendSignupVerification(ctx context.Context, email, code, token, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{Email: email, Code: code, Token: token, Name: name, Kind: "signup"})
	return nil
}

func (m *captureMailer) SendLoginCode(ctx context.Context, email, code, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{Email: email, Code: code, Name: name, Kind: "login"})
	return nil
}

func (m *captureMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}
