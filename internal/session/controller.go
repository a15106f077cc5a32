// Package session owns the client's authentication lifecycle: login, logout,
// recovery of a persisted token at startup, and proactive token renewal.
//
// A process has exactly one Controller. It is built in main and handed to
// whatever needs to read or change the session; nothing in this package is
// global.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qcom/litelist/internal/api"
	"github.com/qcom/litelist/internal/claims"
	"github.com/qcom/litelist/internal/models"
	"github.com/qcom/litelist/internal/repository"
)

// TokenKey is the credential store key holding the current token.
const TokenKey = "session.token"

const (
	// DefaultRecoveryMargin is the least remaining lifetime a persisted token
	// needs to be resumed at startup.
	DefaultRecoveryMargin = 60 * time.Second
	// DefaultRenewalMargin is the remaining lifetime below which a tick renews.
	DefaultRenewalMargin = 100 * time.Second
)

// Authenticator is the slice of the API the session needs.
// Errors for rejected requests are expected to satisfy api.IsClientError.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*models.User, error)
	RenewToken(ctx context.Context, token string) (string, error)
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithScheduler(s *Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithMargins overrides the recovery and renewal margins. Renewal should stay
// above recovery so a resumed session survives until its first renewal check.
func WithMargins(recovery, renewal time.Duration) Option {
	return func(c *Controller) {
		c.recoveryMargin = int64(recovery / time.Second)
		c.renewalMargin = int64(renewal / time.Second)
	}
}

// Controller drives the {logged out, authenticated} state machine.
type Controller struct {
	auth      Authenticator
	store     repository.Store
	scheduler *Scheduler
	metrics   *Metrics
	logger    *logrus.Logger
	now       func() time.Time

	recoveryMargin int64
	renewalMargin  int64

	// lifetime bounds scheduled renewals; cancelled by Close.
	lifetime context.Context
	cancel   context.CancelFunc

	mu    sync.Mutex
	state state
}

func NewController(auth Authenticator, store repository.Store, logger *logrus.Logger, opts ...Option) *Controller {
	lifetime, cancel := context.WithCancel(context.Background())
	c := &Controller{
		auth:           auth,
		store:          store,
		logger:         logger,
		now:            time.Now,
		recoveryMargin: int64(DefaultRecoveryMargin / time.Second),
		renewalMargin:  int64(DefaultRenewalMargin / time.Second),
		lifetime:       lifetime,
		cancel:         cancel,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.scheduler == nil {
		c.scheduler = NewScheduler(DefaultRenewPeriod, NewTimeTicker, logger)
	}

	return c
}

// Session returns a copy of the current state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

// Login authenticates with the API and, on success, persists the token and
// starts scheduled renewal. A failed login leaves the current state untouched.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if c.lifetime.Err() != nil {
		return ErrClosed
	}

	token, err := c.auth.Login(ctx, username, password)
	if err != nil {
		if api.IsClientError(err) {
			c.logger.WithField("username", username).Info("Login rejected")
			c.metrics.login("invalid_credentials")
			return ErrInvalidCredentials
		}
		c.logger.WithError(err).Warn("Login request failed")
		c.metrics.login("server_unavailable")
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}

	user, err := c.auth.Me(ctx, token)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to fetch profile after login")
		c.metrics.login("server_unavailable")
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Close may have run while the requests were in flight.
	if c.lifetime.Err() != nil {
		c.metrics.login("closed")
		return ErrClosed
	}

	c.establishLocked(token, user)
	c.persistLocked(ctx, token)
	c.metrics.login("success")
	c.logger.WithField("username", user.Username).Info("Logged in")
	return nil
}

// Logout clears the session and the persisted token. It is safe in any state.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutLocked(ctx, "user")
}

// RecoverFromStorage resumes a persisted session at startup and reports
// whether the session is authenticated afterwards. Failures are expected
// (cold start, stale token, API down) and are logged, never returned.
func (c *Controller) RecoverFromStorage(ctx context.Context) bool {
	err := c.recoverSession(ctx)
	result := recoveryResult(err)
	c.metrics.recovery(result)
	if err != nil {
		c.logger.WithError(err).WithField("result", result).Debug("Session not recovered")
	}
	return c.Session().Authenticated
}

func (c *Controller) recoverSession(ctx context.Context) error {
	if c.lifetime.Err() != nil {
		return ErrClosed
	}

	c.mu.Lock()
	if c.state.session.Authenticated {
		c.mu.Unlock()
		return nil
	}
	gen := c.state.generation
	c.mu.Unlock()

	token, err := c.store.Get(ctx, TokenKey)
	if errors.Is(err, repository.ErrNotFound) {
		return errNoStoredSession
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errNoStoredSession, err)
	}

	remaining, err := claims.SecondsTilExpire(token, c.now())
	if err != nil {
		c.discardStored(ctx, gen)
		return err
	}
	if remaining <= c.recoveryMargin {
		c.discardStored(ctx, gen)
		return fmt.Errorf("%w: %ds left", errSessionStale, remaining)
	}

	user, err := c.auth.Me(ctx, token)
	if err != nil {
		if api.IsClientError(err) {
			c.discardStored(ctx, gen)
			return fmt.Errorf("%w: %v", errProfileRejected, err)
		}
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lifetime.Err() != nil {
		return ErrClosed
	}
	if c.state.generation != gen || c.state.session.Authenticated {
		return errSuperseded
	}
	c.establishLocked(token, user)
	c.logger.WithField("username", user.Username).Info("Session recovered")
	return nil
}

func recoveryResult(err error) string {
	switch {
	case err == nil:
		return "recovered"
	case errors.Is(err, errNoStoredSession):
		return "absent"
	case errors.Is(err, claims.ErrDecode):
		return "malformed"
	case errors.Is(err, errSessionStale):
		return "stale"
	case errors.Is(err, errProfileRejected):
		return "rejected"
	case errors.Is(err, errSuperseded):
		return "superseded"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "failed"
	}
}

// TryRenew renews the current token when it is close to expiry. A rejected
// or failed renewal logs the session out; the returned error then wraps
// ErrRenewalFailed and is informational only.
func (c *Controller) TryRenew(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.session.Authenticated {
		c.mu.Unlock()
		return nil
	}
	token, gen := c.state.session.Token, c.state.generation
	c.mu.Unlock()

	remaining, err := claims.SecondsTilExpire(token, c.now())
	if err == nil && remaining >= c.renewalMargin {
		return nil
	}
	if err != nil {
		// Cannot schedule around an unreadable token; let the API decide.
		c.logger.WithError(err).Debug("Current token has no readable expiry, renewing")
	}

	fresh, err := c.auth.RenewToken(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.generation != gen || !c.state.session.Authenticated {
		c.metrics.renewal("superseded")
		return nil
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.metrics.renewal("failed")
		c.logger.WithError(err).Warn("Token renewal failed, logging out")
		c.logoutLocked(ctx, "renewal_failed")
		return fmt.Errorf("%w: %v", ErrRenewalFailed, err)
	}

	c.state.session.Token = fresh
	c.persistLocked(ctx, fresh)
	c.metrics.renewal("renewed")
	c.logger.Debug("Token renewed")
	return nil
}

// Close stops scheduled renewal without logging out, leaving the persisted
// token for the next start. Login and recovery fail with ErrClosed afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.renewal != nil {
		c.state.renewal.Cancel()
		c.state.renewal = nil
	}
	c.cancel()
}

func (c *Controller) establishLocked(token string, user *models.User) {
	if c.state.renewal != nil {
		c.state.renewal.Cancel()
	}

	c.state.generation++
	c.state.session = Session{
		Authenticated: true,
		User:          user,
		Token:         token,
	}
	c.state.renewal = c.scheduler.Arm(c.lifetime, c.renewTick)
	c.metrics.loggedIn()
}

func (c *Controller) logoutLocked(ctx context.Context, reason string) {
	// Disarm before clearing so no tick can observe a half-reset state.
	if c.state.renewal != nil {
		c.state.renewal.Cancel()
		c.state.renewal = nil
	}

	wasAuthenticated := c.state.session.Authenticated
	c.state.session = Session{}
	c.state.generation++

	if err := c.store.Remove(context.WithoutCancel(ctx), TokenKey); err != nil {
		c.logger.WithError(err).Warn("Failed to remove persisted token")
	}

	if wasAuthenticated {
		c.metrics.loggedOut(reason)
		c.logger.WithField("reason", reason).Info("Logged out")
	}
}

func (c *Controller) persistLocked(ctx context.Context, token string) {
	if err := c.store.Set(context.WithoutCancel(ctx), TokenKey, token); err != nil {
		c.logger.WithError(err).Warn("Failed to persist token")
	}
}

// discardStored removes a persisted token that can never be resumed, unless
// a login or logout has happened since it was read.
func (c *Controller) discardStored(ctx context.Context, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.generation != gen {
		return
	}
	if err := c.store.Remove(context.WithoutCancel(ctx), TokenKey); err != nil {
		c.logger.WithError(err).Warn("Failed to discard stale token")
	}
}

func (c *Controller) renewTick(ctx context.Context) {
	if err := c.TryRenew(ctx); err != nil {
		c.logger.WithError(err).Debug("Scheduled renewal did not complete")
	}
}
