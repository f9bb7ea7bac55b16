// Package session holds the authenticated identity of the client and keeps
// it in durable local storage between runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/and161185/perpus/internal/client"
	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
	"github.com/and161185/perpus/internal/pkg/json"
	"github.com/and161185/perpus/internal/storage"
	"github.com/and161185/perpus/internal/validate"
)

// StorageKey is the state entry holding the session.
const StorageKey = "user"

// Transport sends unauthenticated (or explicitly authenticated) requests.
type Transport interface {
	Do(ctx context.Context, r client.Request, out any) error
}

// Store is the session holder. It is Anonymous until Restore finds a saved
// session or Login succeeds.
type Store struct {
	mu  sync.RWMutex
	cur model.Session
	ok  bool

	state storage.Store
	tr    Transport
	v     *validate.Validator
	log   *zap.Logger
}

var _ client.SessionSource = (*Store)(nil)

// New creates an Anonymous Store.
func New(state storage.Store, tr Transport, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{state: state, tr: tr, v: validate.New(), log: log}
}

// Current returns a copy of the held session and whether one is held.
func (s *Store) Current() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur, s.ok
}

// Restore loads the persisted session. Missing or unreadable state leaves
// the store Anonymous.
func (s *Store) Restore(ctx context.Context) {
	data, err := s.state.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Debug("no saved session")
		} else {
			s.log.Warn("read saved session", zap.Error(err))
		}
		return
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.log.Warn("malformed saved session", zap.Error(err))
		return
	}
	if !sess.Valid() {
		s.log.Debug("saved session has no token")
		return
	}

	s.mu.Lock()
	s.cur, s.ok = sess, true
	s.mu.Unlock()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string   `json:"token"`
	UserID model.ID `json:"idPengguna"`
}

// Login authenticates against the backend and persists the new session.
// On any failure the previous state is kept and nothing is written.
func (s *Store) Login(ctx context.Context, username, password string) (model.Session, error) {
	verr := &errs.ValidationError{}
	if strings.TrimSpace(username) == "" {
		verr.Add("username", "username is required")
	}
	if password == "" {
		verr.Add("password", "password is required")
	}
	if err := verr.OrNil(); err != nil {
		return model.Session{}, err
	}

	var resp loginResponse
	err := s.tr.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		return model.Session{}, loginError(err)
	}
	if resp.Token == "" {
		return model.Session{}, &errs.AuthenticationError{Message: "login failed: backend returned no token"}
	}

	sess := model.Session{
		Username:  username,
		Token:     resp.Token,
		UserID:    resp.UserID,
		ExpiresAt: tokenExpiry(resp.Token),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return model.Session{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.state.Put(ctx, StorageKey, data); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.cur, s.ok = sess, true
	s.mu.Unlock()
	s.log.Info("logged in", zap.String("username", username), zap.String("user_id", sess.UserID.String()))
	return sess, nil
}

func loginError(err error) error {
	var ne *errs.NetworkError
	if errors.As(err, &ne) {
		return &errs.AuthenticationError{Message: "login failed: backend unreachable", Err: err}
	}
	return &errs.AuthenticationError{Message: "login failed: check username and password", Err: err}
}

// Logout notifies the backend when a token is held and always clears the
// session. Backend failures are logged and ignored.
func (s *Store) Logout(ctx context.Context) {
	if cur, ok := s.Current(); ok && cur.Token != "" {
		err := s.tr.Do(ctx, client.Request{
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Token:  cur.Token,
			Body:   struct{}{},
		}, nil)
		if err != nil {
			s.log.Warn("logout request failed", zap.Error(err))
		}
	}
	s.clear(ctx)
}

// Invalidate drops the session without contacting the backend.
func (s *Store) Invalidate(ctx context.Context) {
	s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) {
	if err := s.state.Delete(ctx, StorageKey); err != nil {
		s.log.Warn("delete saved session", zap.Error(err))
	}
	s.mu.Lock()
	s.cur, s.ok = model.Session{}, false
	s.mu.Unlock()
}

// tokenExpiry reads the exp claim without verifying the token. The backend
// stays the only judge of validity.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser(jwt.WithoutClaimsValidation()).ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
