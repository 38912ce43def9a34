// Package auth owns the signed-in session: restoring it at startup,
// verifying it against the server, and replacing it on login, signup and
// logout.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/store"
)

const (
	loginFallback  = "Login failed"
	signupFallback = "Signup failed"
)

// ErrNoSession is returned by Verify when there is nothing to verify.
var ErrNoSession = errors.New("no session")

// Manager is the single owner of session state. All mutation goes through
// its methods; everything else reads snapshots.
type Manager struct {
	api    Authenticator
	creds  store.CredentialStore
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	session     Session
	phase       Phase
	gen         uint64 // bumped whenever the session is replaced
	initialized bool
	ready       chan struct{}
	subs        map[int]func(Session, Phase)
	nextSub     int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides the clock used for the token expiry check.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager in PhaseLoading with no session. Call
// Initialize before the first guard evaluation.
func NewManager(a Authenticator, creds store.CredentialStore, opts ...Option) *Manager {
	m := &Manager{
		api:    a,
		creds:  creds,
		logger: zap.NewNop(),
		now:    time.Now,
		ready:  make(chan struct{}),
		subs:   make(map[int]func(Session, Phase)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize restores persisted credentials. With a stored session it is
// applied optimistically and verified in the background, leaving the
// manager in PhaseLoading until verification completes. Without one the
// manager is ready on return. Only the first call has any effect.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	sess, ok := m.restore(ctx)
	if !ok {
		m.mu.Lock()
		m.setReadyLocked()
		snap, phase := m.session, m.phase
		m.mu.Unlock()
		m.notify(snap, phase)
		return
	}

	m.mu.Lock()
	m.session = sess
	gen := m.gen
	m.mu.Unlock()
	m.notify(sess, PhaseLoading)

	// Verification outlives the caller's context; its result is applied
	// unless the session was replaced in the meantime.
	go func() {
		_ = m.verify(context.WithoutCancel(ctx), sess, gen)
	}()
}

// restore loads and decodes stored credentials. Records that can't be
// used are purged.
func (m *Manager) restore(ctx context.Context) (Session, bool) {
	creds, err := m.creds.Load(ctx)
	if err != nil {
		m.logger.Warn("load stored credentials", zap.Error(err))
		return Session{}, false
	}
	if creds == nil {
		return Session{}, false
	}

	var user api.User
	if err := json.Unmarshal(creds.User, &user); err != nil {
		m.logger.Warn("discarding undecodable stored user", zap.Error(err))
		m.purge(ctx)
		return Session{}, false
	}
	if tokenExpired(creds.Token, m.now()) {
		m.logger.Info("discarding expired stored token", zap.String("user_id", user.ID))
		m.purge(ctx)
		return Session{}, false
	}
	return Session{User: &user, Token: creds.Token}, true
}

func (m *Manager) purge(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		m.logger.Warn("clear stored credentials", zap.Error(err))
	}
}

// Verify re-checks the current session against the server. On success the
// user record is refreshed in memory and in storage. On any failure the
// session is cleared as if the user had logged out. The manager is ready
// afterwards in both cases.
func (m *Manager) Verify(ctx context.Context) error {
	m.mu.Lock()
	sess, gen := m.session, m.gen
	m.mu.Unlock()
	return m.verify(ctx, sess, gen)
}

func (m *Manager) verify(ctx context.Context, sess Session, gen uint64) error {
	if !sess.Authenticated() {
		m.mu.Lock()
		m.setReadyLocked()
		snap, phase := m.session, m.phase
		m.mu.Unlock()
		m.notify(snap, phase)
		return ErrNoSession
	}

	user, verr := m.api.Me(ctx, sess.Token)

	m.mu.Lock()
	if m.gen != gen {
		// Superseded by login, signup or logout; they already settled phase.
		m.mu.Unlock()
		return verr
	}

	if verr != nil {
		m.logger.Info("session verification failed; signing out", zap.Error(verr))
		m.purge(ctx)
		m.session = Session{}
		m.gen++
	} else {
		m.session = Session{User: user, Token: sess.Token}
		if err := m.persistLocked(ctx, m.session); err != nil {
			m.logger.Warn("persist refreshed user", zap.Error(err))
		}
	}
	m.setReadyLocked()
	snap, phase := m.session, m.phase
	m.mu.Unlock()

	m.notify(snap, phase)
	if verr != nil {
		return fmt.Errorf("verify session: %w", verr)
	}
	return nil
}

// Login authenticates with email and password. Failures are reported in
// the result, never as an error.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Info("login rejected", zap.Error(err))
		return Result{Error: api.Message(err, loginFallback)}
	}
	return m.establish(ctx, resp, loginFallback)
}

// Signup creates an account and signs into it.
func (m *Manager) Signup(ctx context.Context, username, email, password string) Result {
	resp, err := m.api.Signup(ctx, username, email, password)
	if err != nil {
		m.logger.Info("signup rejected", zap.Error(err))
		return Result{Error: api.Message(err, signupFallback)}
	}
	return m.establish(ctx, resp, signupFallback)
}

// establish persists a freshly issued session and then makes it current.
// If persisting fails nothing changes.
func (m *Manager) establish(ctx context.Context, resp *api.AuthResponse, fallback string) Result {
	user := resp.User
	sess := Session{User: &user, Token: resp.AccessToken}

	m.mu.Lock()
	if err := m.persistLocked(ctx, sess); err != nil {
		m.mu.Unlock()
		m.logger.Warn("persist session", zap.Error(err))
		return Result{Error: fallback}
	}
	m.session = sess
	m.gen++
	m.setReadyLocked()
	snap, phase := m.session, m.phase
	m.mu.Unlock()

	m.notify(snap, phase)
	u := user
	return Result{OK: true, User: &u}
}

func (m *Manager) persistLocked(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return m.creds.Save(ctx, store.Credentials{Token: sess.Token, User: raw})
}

// Logout clears the session in memory and in storage. Calling it without
// a session is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	had := m.session.Authenticated()
	m.purge(context.Background())
	m.session = Session{}
	m.gen++
	m.setReadyLocked()
	snap, phase := m.session, m.phase
	m.mu.Unlock()

	if had {
		m.notify(snap, phase)
	}
}

func (m *Manager) setReadyLocked() {
	if m.phase == PhaseReady {
		return
	}
	m.phase = PhaseReady
	close(m.ready)
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().Authenticated()
}

func (m *Manager) IsAdmin() bool {
	return m.Snapshot().IsAdmin()
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// Ready returns a channel closed once the manager reaches PhaseReady.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until the manager is ready or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to be called after every session or phase
// change, outside the manager's lock. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(Session, Phase)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(s Session, p Phase) {
	m.mu.Lock()
	fns := make([]func(Session, Phase), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	for _, fn := range fns {
		fn(s, p)
	}
}
