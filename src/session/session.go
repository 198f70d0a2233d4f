package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/username/stonksoverwatch/backend/src/models"
)

const CookieName = "stonks_session"

var ErrNoSession = errors.New("session: no active session")

type contextKey string

const sessionContextKey contextKey = "session"

// State is the per-browser session payload. The dashboard is single-user,
// so the session tracks UI state and broker authentication flags rather
// than an identity.
type State struct {
	ID                string
	SelectedPortfolio models.PortfolioSelector

	mu    sync.Mutex
	flags map[string]bool
}

func newState(id string) *State {
	return &State{
		ID:                id,
		SelectedPortfolio: models.SelectorAll,
		flags:             make(map[string]bool),
	}
}

func (s *State) setFlag(key string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = value
}

func (s *State) flag(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[key]
}

func (s *State) SetAuthenticated(broker string, ok bool) {
	s.setFlag(broker+"_authenticated", ok)
}

func (s *State) IsAuthenticated(broker string) bool {
	return s.flag(broker + "_authenticated")
}

func (s *State) SetTOTPRequired(broker string, required bool) {
	s.setFlag(broker+"_totp_required", required)
}

func (s *State) IsTOTPRequired(broker string) bool {
	return s.flag(broker + "_totp_required")
}

// ClearBroker drops every flag for a broker, used when authentication
// fails outright and the stored state can no longer be trusted.
func (s *State) ClearBroker(broker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, broker+"_authenticated")
	delete(s.flags, broker+"_totp_required")
}

// Manager issues and resolves sessions. The cookie carries a signed JWT
// whose subject is the session ID; the payload itself lives server-side
// in an expiring cache.
type Manager struct {
	secret []byte
	expiry time.Duration
	store  *gocache.Cache
	secure bool
}

func NewManager(secret string, expiry time.Duration, secureCookies bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		expiry: expiry,
		store:  gocache.New(expiry, 2*expiry),
		secure: secureCookies,
	}
}

// Issue creates a fresh session and sets its cookie on the response.
func (m *Manager) Issue(w http.ResponseWriter) (*State, error) {
	id := uuid.New().String()
	state := newState(id)
	m.store.SetDefault(id, state)

	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.expiry.Seconds()),
	})
	return state, nil
}

// Resolve returns the session referenced by the request cookie.
func (m *Manager) Resolve(r *http.Request) (*State, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}

	id, err := token.Claims.GetSubject()
	if err != nil || id == "" {
		return nil, ErrNoSession
	}
	cached, found := m.store.Get(id)
	if !found {
		return nil, ErrNoSession
	}
	return cached.(*State), nil
}

// Middleware resolves the session, creating one when the request carries
// none, and injects it into the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, err := m.Resolve(r)
		if err != nil {
			state, err = m.Issue(w)
			if err != nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the session injected by the middleware.
func FromContext(ctx context.Context) (*State, bool) {
	state, ok := ctx.Value(sessionContextKey).(*State)
	return state, ok
}
