package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/connectpp/student-network/internal/mail"
	"github.com/connectpp/student-network/internal/model"
	"github.com/connectpp/student-network/internal/queue"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/token"
)

// memUsers is a UserStore/UserDirectory keeping the unique regno index in memory.
type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
	order []string
	err   error
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]model.User{}} }

func (m *memUsers) FindByRegno(_ context.Context, regno string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.User{}, m.err
	}
	u, ok := m.users[regno]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByName(_ context.Context, first, last string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, regno := range m.order {
		u := m.users[regno]
		if u.Firstname == first && (last == "" || u.Lastname == last) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]model.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.UserSummary{}
	for _, regno := range m.order {
		out = append(out, m.users[regno].Summary())
	}
	return out, nil
}

func (m *memUsers) Insert(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[u.Regno]; ok {
		return repository.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = "id-" + u.Regno
	}
	m.users[u.Regno] = *u
	m.order = append(m.order, u.Regno)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, regno, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[regno]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[regno] = u
	return nil
}

// recordingMailer keeps every message it was asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, m mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

func (r *recordingMailer) last(t *testing.T) mail.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

type recordingEvents struct {
	mu     sync.Mutex
	events []queue.AuthEvent
}

func (r *recordingEvents) Publish(_ context.Context, ev queue.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return errors.New("broker down") // failures must not affect the flow
}

type fixture struct {
	svc    *AuthService
	search *SearchService
	users  *memUsers
	mailer *recordingMailer
	events *recordingEvents
	access *token.AccessCodec
	otp    *token.OTPCodec
}

const testOTP = "aB3dE5gH7j"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	access, err := token.NewAccessCodec("app-secret")
	require.NoError(t, err)
	otp, err := token.NewOTPCodec("otp-secret")
	require.NoError(t, err)

	f := &fixture{
		users:  newMemUsers(),
		mailer: &recordingMailer{},
		events: &recordingEvents{},
		access: access,
		otp:    otp,
	}
	f.svc = NewAuthService(f.users, access, otp, f.mailer, f.events, nil, "muj.manipal.edu")
	f.svc.newOTP = func() (string, error) { return testOTP, nil }
	f.search = NewSearchService(f.users, access)
	return f
}

func (f *fixture) open(t *testing.T, raw string, kind token.Kind) token.Claims {
	t.Helper()
	c, err := f.access.Open(raw, kind)
	require.NoError(t, err)
	return c
}

func annSignUp() SignUpInput {
	return SignUpInput{Firstname: "Ann", Lastname: "Lee", Regno: "123456789", Password: "pw1"}
}

// register runs sign-up and verification for in.
func (f *fixture) register(t *testing.T, in SignUpInput) string {
	t.Helper()
	ctx := context.Background()
	raw, err := f.svc.SignUp(ctx, in)
	require.NoError(t, err)
	userTok, err := f.svc.VerifySignUp(ctx, f.open(t, raw, token.SignUpAccessToken), testOTP)
	require.NoError(t, err)
	return userTok
}
