package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/safestreet/account-service/internal/core/domain"
	"github.com/safestreet/account-service/internal/core/ports"
)

// stubUserRepo mimics the Mongo repository: conflicts are decided inside
// Create under a single lock, the way the unique indexes decide them.
type stubUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User // keyed by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.NewConflict(domain.FieldEmail)
		}
		if u.Name == user.Name {
			return nil, domain.NewConflict(domain.FieldName)
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = "u" + strconv.Itoa(r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByEmailOrName(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == identifier || u.Name == identifier {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) MarkVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsEmailVerified = true
	return nil
}

type sentMail struct {
	to      string
	subject string
	text    string
	html    string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (m *stubMailer) Send(_ context.Context, to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text, html: html})
	return nil
}

func (m *stubMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return m.sent[len(m.sent)-1]
}

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *stubRecorder) Record(event domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type fixture struct {
	svc    *AccountService
	repo   *stubUserRepo
	mailer *stubMailer
	tokens *TokenService
	clock  *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture() *fixture {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tokens := NewTokenService("test-secret")
	tokens.now = clock.Now

	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := NewAccountService(repo, tokens, mailer, &stubRecorder{}, "http://localhost:5000", 0, 0, zerolog.Nop())
	svc.now = clock.Now

	return &fixture{svc: svc, repo: repo, mailer: mailer, tokens: tokens, clock: clock}
}

// emailedToken pulls the verification token out of the plain-text body.
func emailedToken(t *testing.T, m sentMail) string {
	t.Helper()
	idx := strings.Index(m.text, "token=")
	if idx < 0 {
		t.Fatalf("no token link in mail body: %q", m.text)
	}
	rest := m.text[idx+len("token="):]
	if end := strings.IndexAny(rest, "\n \t"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func TestRegister_CreatesUnverifiedUser(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.IsEmailVerified {
		t.Fatal("new user must start unverified")
	}
	if user.PasswordHash == "Secret123" {
		t.Fatal("password must be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	mail := f.mailer.last(t)
	if mail.to != "a@x.com" {
		t.Fatalf("verification mail sent to %q", mail.to)
	}
	if !strings.Contains(mail.text, "http://localhost:5000/verify-email?token=") {
		t.Fatalf("mail body missing verification link: %q", mail.text)
	}
}

func TestRegister_TrimsNameAndEmail(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Register(context.Background(), "  alice  ", " a@x.com ", "Secret123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Name != "alice" || user.Email != "a@x.com" {
		t.Fatalf("fields not trimmed: %q %q", user.Name, user.Email)
	}
}

func TestRegister_ConflictPrecedence(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123"); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	cases := []struct {
		name, email, field string
	}{
		{"bob", "a@x.com", domain.FieldEmail},   // email taken
		{"alice", "b@x.com", domain.FieldName},  // name taken
		{"alice", "a@x.com", domain.FieldEmail}, // both taken: email wins
	}
	for _, tc := range cases {
		_, err := f.svc.Register(context.Background(), tc.name, tc.email, "pw123456")
		ce, ok := domain.IsConflict(err)
		if !ok {
			t.Fatalf("(%s,%s): expected conflict, got %v", tc.name, tc.email, err)
		}
		if ce.Field != tc.field {
			t.Fatalf("(%s,%s): expected %s conflict, got %s", tc.name, tc.email, tc.field, ce.Field)
		}
	}
}

func TestRegister_EmptyInput(t *testing.T) {
	f := newFixture()
	for _, args := range [][3]string{
		{"", "a@x.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@x.com", ""},
	} {
		if _, err := f.svc.Register(context.Background(), args[0], args[1], args[2]); err != domain.ErrInvalidInput {
			t.Fatalf("%v: expected ErrInvalidInput, got %v", args, err)
		}
	}
}

func TestRegister_MailDispatchFailure(t *testing.T) {
	f := newFixture()
	f.mailer.fail = errors.New("smtp: connection refused")

	_, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123")
	if !errors.Is(err, domain.ErrMailDispatch) {
		t.Fatalf("expected ErrMailDispatch, got %v", err)
	}

	// The account exists by the time dispatch fails.
	if _, err := f.repo.FindByEmailOrName(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("user should have been created before dispatch: %v", err)
	}
}

func TestVerifyEmail_MarksVerifiedAndIsIdempotent(t *testing.T) {
	f := newFixture()
	user, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token := emailedToken(t, f.mailer.last(t))

	if err := f.svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	stored, err := f.repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !stored.IsEmailVerified {
		t.Fatal("user not marked verified")
	}

	// Second redemption of the same token is a no-op, not an error.
	if err := f.svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("second redemption should be safe, got %v", err)
	}
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token := emailedToken(t, f.mailer.last(t))

	f.clock.Advance(11 * time.Minute)
	if err := f.svc.VerifyEmail(context.Background(), token); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyEmail_SessionTokenRejected(t *testing.T) {
	f := newFixture()
	user, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	session, err := f.tokens.Issue(user.ID, ports.PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := f.svc.VerifyEmail(context.Background(), session); err != domain.ErrTokenInvalid {
		t.Fatalf("session token must not verify an email, got %v", err)
	}
}

func TestVerifyEmail_UnknownUser(t *testing.T) {
	f := newFixture()
	token, err := f.tokens.Issue("missing", ports.PurposeVerifyEmail, time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := f.svc.VerifyEmail(context.Background(), token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected generic ErrTokenInvalid, got %v", err)
	}
}

func TestLogin_UnverifiedUserGetsNoSession(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, _, err := f.svc.Login(context.Background(), "a@x.com", "Secret123")
	if err != domain.ErrEmailNotVerified {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	if token != "" {
		t.Fatal("no session token may be issued for an unverified account")
	}
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	f := newFixture()
	user, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := f.repo.MarkVerified(context.Background(), user.ID); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}

	_, _, errUnknown := f.svc.Login(context.Background(), "ghost@x.com", "Secret123")
	_, _, errWrongPw := f.svc.Login(context.Background(), "a@x.com", "wrong")
	if errUnknown != domain.ErrInvalidCredentials || errWrongPw != domain.ErrInvalidCredentials {
		t.Fatalf("expected identical ErrInvalidCredentials, got %v and %v", errUnknown, errWrongPw)
	}
}

func TestRegisterVerifyLogin_EndToEnd(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Register(context.Background(), "alice", "a@x.com", "Secret123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := f.svc.VerifyEmail(context.Background(), emailedToken(t, f.mailer.last(t))); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	token, profile, err := f.svc.Login(context.Background(), "a@x.com", "Secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if profile.Name != "alice" || profile.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// Session token is purpose-scoped and bound to the user.
	userID, err := f.tokens.Verify(token, ports.PurposeSession)
	if err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
	stored, err := f.repo.FindByID(context.Background(), userID)
	if err != nil || stored.Name != "alice" {
		t.Fatalf("session token bound to wrong user: %v %+v", err, stored)
	}

	// Login by name works the same as login by email.
	if _, _, err := f.svc.Login(context.Background(), "alice", "Secret123"); err != nil {
		t.Fatalf("login by name failed: %v", err)
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	f := newFixture()

	type result struct {
		err error
	}
	results := make(chan result, 2)
	start := make(chan struct{})
	for _, name := range []string{"alice", "alicia"} {
		go func(name string) {
			<-start
			_, err := f.svc.Register(context.Background(), name, "a@x.com", "Secret123")
			results <- result{err: err}
		}(name)
	}
	close(start)

	var successes, emailConflicts int
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err == nil {
			successes++
			continue
		}
		if ce, ok := domain.IsConflict(res.err); ok && ce.Field == domain.FieldEmail {
			emailConflicts++
		} else {
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	if successes != 1 || emailConflicts != 1 {
		t.Fatalf("expected exactly one success and one email conflict, got %d/%d", successes, emailConflicts)
	}
}
