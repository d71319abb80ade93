package auth_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/staffdesk/auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// stubIdentityProvider implements auth.IdentityProvider with function fields
type stubIdentityProvider struct {
	verify func(ctx context.Context, email, password string) (auth.Identity, error)
	find   func(ctx context.Context, email string) (auth.Identity, error)
}

func (s stubIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (auth.Identity, error) {
	return s.verify(ctx, email, password)
}

func (s stubIdentityProvider) FindIdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	if s.find == nil {
		return nil, repository.NewRecordNotFound()
	}
	return s.find(ctx, email)
}

// testIdentity implements auth.Identity
type testIdentity struct {
	id    string
	email string
	role  string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Email() string { return t.email }
func (t testIdentity) Role() string  { return t.role }

// testConfig implements auth.Config
type testConfig struct {
	signingKey    string
	tokenTTL      time.Duration
	issuer        string
	audience      []string
	resetTokenTTL time.Duration
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:    "test-signing-key",
		tokenTTL:      time.Hour,
		issuer:        "staffdesk-test",
		resetTokenTTL: 30 * time.Minute,
	}
}

func (c testConfig) GetSigningKey() string           { return c.signingKey }
func (c testConfig) GetTokenTTL() time.Duration      { return c.tokenTTL }
func (c testConfig) GetIssuer() string               { return c.issuer }
func (c testConfig) GetAudience() []string           { return c.audience }
func (c testConfig) GetResetTokenTTL() time.Duration { return c.resetTokenTTL }

// captureMailer records dispatched messages so tests can wait on the
// fire-and-forget delivery goroutine.
type captureMailer struct {
	messages chan auth.MailMessage
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{messages: make(chan auth.MailMessage, 8)}
}

func (m *captureMailer) Send(ctx context.Context, msg auth.MailMessage) error {
	m.messages <- msg
	return nil
}

func (m *captureMailer) wait(timeout time.Duration) (auth.MailMessage, bool) {
	select {
	case msg := <-m.messages:
		return msg, true
	case <-time.After(timeout):
		return auth.MailMessage{}, false
	}
}

// memoryResetStore is an in-memory auth.ResetTokenStore guarded by a mutex.
// MarkConsumed mirrors the conditional-update contract: exactly one caller
// observes true per token.
type memoryResetStore struct {
	mu   sync.Mutex
	rows map[string]*auth.PasswordReset
}

func newMemoryResetStore() *memoryResetStore {
	return &memoryResetStore{rows: map[string]*auth.PasswordReset{}}
}

func (s *memoryResetStore) CreateReset(ctx context.Context, reset *auth.PasswordReset) (*auth.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *reset
	s.rows[reset.Token] = &clone
	return reset, nil
}

func (s *memoryResetStore) GetByToken(ctx context.Context, token string) (*auth.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[token]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	clone := *row
	return &clone, nil
}

func (s *memoryResetStore) SupersedeActive(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Consumed {
			row.Consumed = true
			consumedAt := at
			row.ConsumedAt = &consumedAt
			n++
		}
	}
	return n, nil
}

func (s *memoryResetStore) MarkConsumed(ctx context.Context, token string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[token]
	if !ok || row.Consumed {
		return false, nil
	}

	row.Consumed = true
	consumedAt := at
	row.ConsumedAt = &consumedAt
	return true, nil
}

func (s *memoryResetStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, row := range s.rows {
		if row.Expired(cutoff) || row.Consumed {
			delete(s.rows, token)
			n++
		}
	}
	return n, nil
}

func (s *memoryResetStore) liveCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, row := range s.rows {
		if row.UserID == userID && !row.Consumed {
			count++
		}
	}
	return count
}

// fakeUsers is an in-memory auth.Users covering the methods the flows
// exercise. The embedded interface panics on anything unimplemented, which
// doubles as a guard against flows growing new storage calls untested.
type fakeUsers struct {
	auth.Users

	mu      sync.Mutex
	byID    map[uuid.UUID]*auth.User
	byEmail map[string]*auth.User
}

func newFakeUsers(seed ...*auth.User) *fakeUsers {
	f := &fakeUsers{
		byID:    map[uuid.UUID]*auth.User{},
		byEmail: map[string]*auth.User{},
	}
	for _, user := range seed {
		f.put(user)
	}
	return f
}

func (f *fakeUsers) put(user *auth.User) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byID[user.ID] = user
	f.byEmail[strings.ToLower(user.Email)] = user
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return f.GetByEmailTx(ctx, nil, email)
}

func (f *fakeUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound()
	}

	user, ok := f.byID[parsed]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (f *fakeUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(record)
	return record, nil
}

func (f *fakeUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.byID[id]
	if !ok {
		return repository.NewRecordNotFound()
	}

	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUsers) UpdateStatus(ctx context.Context, id uuid.UUID, status auth.AccountStatus) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.byID[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	user.Status = status
	return user, nil
}

func (f *fakeUsers) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.byID[user.ID]
	if !ok {
		return repository.NewRecordNotFound()
	}

	stored.LoginAttempts++
	now := time.Now()
	stored.LoginAttemptAt = &now
	return nil
}

func (f *fakeUsers) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.byID[user.ID]
	if !ok {
		return repository.NewRecordNotFound()
	}

	stored.LoginAttempts = 0
	stored.LoginAttemptAt = nil
	now := time.Now()
	stored.LoggedInAt = &now
	return nil
}

// fakeRepoManager implements auth.RepositoryManager over the in-memory
// fakes. RunInTx has nothing to roll back, so it just runs the function.
type fakeRepoManager struct {
	users  *fakeUsers
	resets auth.PasswordResets
}

func newFakeRepoManager(users *fakeUsers) *fakeRepoManager {
	return &fakeRepoManager{users: users}
}

func (m *fakeRepoManager) Validate() error { return nil }
func (m *fakeRepoManager) MustValidate()   {}

func (m *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *fakeRepoManager) Users() auth.Users                   { return m.users }
func (m *fakeRepoManager) PasswordResets() auth.PasswordResets { return m.resets }
