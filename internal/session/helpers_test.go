package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qcom/litelist/internal/api"
	"github.com/qcom/litelist/internal/models"
	"github.com/qcom/litelist/internal/repository"
	"github.com/qcom/litelist/internal/testutil"
)

var testNow = time.Unix(1700000000, 0)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func rejected(status int) error {
	return &api.StatusError{Method: http.MethodGet, Path: "/test", StatusCode: status}
}

var errConnRefused = errors.New("connection refused")

// fakeAuth is a scripted Authenticator.
type fakeAuth struct {
	mu sync.Mutex

	loginToken string
	loginErr   error
	user       *models.User
	meErr      error
	renewToken string
	renewErr   error

	// renewStarted receives once per RenewToken call when non-nil.
	renewStarted chan struct{}
	// renewGate, when non-nil, blocks RenewToken until it is closed.
	renewGate chan struct{}
	// onMe, when non-nil, runs at the start of every Me call.
	onMe func()

	loginCalls int
	meCalls    int
	renewCalls int
	renewedFor []string
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) Me(_ context.Context, _ string) (*models.User, error) {
	if f.onMe != nil {
		f.onMe()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	user := *f.user
	return &user, nil
}

func (f *fakeAuth) RenewToken(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	f.renewCalls++
	f.renewedFor = append(f.renewedFor, token)
	started, gate := f.renewStarted, f.renewGate
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renewToken, f.renewErr
}

func (f *fakeAuth) calls() (login, me, renew int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.meCalls, f.renewCalls
}

// fakeTicker is fired by hand from tests.
type fakeTicker struct {
	period  time.Duration
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire delivers one tick; it fails the test if nobody is listening.
func (t *fakeTicker) fire(tb testing.TB) {
	tb.Helper()
	select {
	case t.ch <- testNow:
	case <-time.After(2 * time.Second):
		tb.Fatal("tick was not consumed")
	}
}

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{period: d, ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *fakeTickers) last(tb testing.TB) *fakeTicker {
	tb.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		tb.Fatal("scheduler was never armed")
	}
	return f.tickers[len(f.tickers)-1]
}

type harness struct {
	ctrl    *Controller
	auth    *fakeAuth
	store   *repository.MemoryStore
	tickers *fakeTickers
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		auth:    &fakeAuth{user: &models.User{Username: "alice", Email: "alice@example.com"}},
		store:   repository.NewMemoryStore(),
		tickers: &fakeTickers{},
	}
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithScheduler(NewScheduler(DefaultRenewPeriod, h.tickers.New, testLogger())),
	}
	h.ctrl = NewController(h.auth, h.store, testLogger(), append(base, opts...)...)
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) token(t *testing.T, d time.Duration) string {
	t.Helper()
	return testutil.TokenExpiringIn(t, "alice", testNow, d)
}

// login performs a successful login with a token expiring after d.
func (h *harness) login(t *testing.T, d time.Duration) string {
	t.Helper()
	token := h.token(t, d)
	h.auth.mu.Lock()
	h.auth.loginToken = token
	h.auth.mu.Unlock()
	if err := h.ctrl.Login(context.Background(), "alice", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func (h *harness) stored(t *testing.T) (string, bool) {
	t.Helper()
	value, err := h.store.Get(context.Background(), TokenKey)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false
	}
	if err != nil {
		t.Fatalf("store Get: %v", err)
	}
	return value, true
}

func assertLoggedOut(t *testing.T, h *harness) {
	t.Helper()
	s := h.ctrl.Session()
	if s.Authenticated || s.User != nil || s.Token != "" {
		t.Fatalf("session = %+v, want logged out", s)
	}
	if v, ok := h.stored(t); ok {
		t.Fatalf("persisted token = %q, want none", v)
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}
