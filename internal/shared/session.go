package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Identity is the authenticated actor cached in the session: the bearer
// token issued by the backend plus the claims returned alongside it.
// The token is only ever forwarded by the HTTP layer; nothing here
// inspects it.
type Identity struct {
	UserID      string   `json:"user_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Token       string   `json:"token"`
}

// SessionManager orchestrates cookie based sessions backed by Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID        string
	values    map[string]string
	identity  Identity
	flashes   []FlashMessage
	manager   *SessionManager
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values   map[string]string `json:"values"`
	Identity Identity          `json:"identity"`
	Flashes  []FlashMessage    `json:"flashes"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads or creates a session for the request. A store read failure
// yields a fresh unauthenticated session rather than an error: guards must
// always have a session to evaluate against.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return sm.newSession(), nil
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		sess := sm.newSession()
		sess.ID = cookie.Value
		sess.isNew = true
		if !errors.Is(err, redis.Nil) {
			return sess, err
		}
		return sess, nil
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		sess := sm.newSession()
		sess.ID = cookie.Value
		return sess, err
	}

	sess := sm.newSession()
	sess.ID = cookie.Value
	sess.values = stored.Values
	sess.identity = stored.Identity
	sess.flashes = stored.Flashes
	sess.isNew = false
	sess.dirty = false
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	if sess.dirty || sess.isNew {
		payload := sessionPayload{Values: sess.values, Identity: sess.identity, Flashes: sess.flashes}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		cookie := &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(sm.ttl),
		}
		http.SetCookie(w, cookie)
	}

	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// Login stores an already-verified identity. Credential validation belongs
// to the backend; this only records the result.
func (s *Session) Login(id Identity) {
	s.identity = id
	s.dirty = true
}

// Logout clears every identity field synchronously. Predicates observe the
// cleared state immediately, before the store round-trip.
func (s *Session) Logout() {
	s.identity = Identity{}
	s.values = make(map[string]string)
	s.dirty = true
	s.destroyed = true
}

// Identity returns a copy of the cached identity.
func (s *Session) Identity() Identity {
	if s == nil {
		return Identity{}
	}
	return s.identity
}

// UserID returns the authenticated user's ID, empty when anonymous.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.identity.UserID
}

// Token returns the bearer credential for the HTTP layer.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.identity.Token
}

// IsAuthenticated reports whether a bearer token is present.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.identity.Token != ""
}

// HasPermission reports whether the named permission was granted. It is
// total: an absent session or empty permission set answers false.
func (s *Session) HasPermission(name string) bool {
	if s == nil || name == "" {
		return false
	}
	for _, p := range s.identity.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the session holds at least one of the
// candidate roles.
func (s *Session) HasAnyRole(candidates ...string) bool {
	if s == nil || len(candidates) == 0 {
		return false
	}
	for _, role := range s.identity.Roles {
		for _, c := range candidates {
			if role == c {
				return true
			}
		}
	}
	return false
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if s == nil || len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

// PopFlashes drains every pending flash message in queue order.
func (s *Session) PopFlashes() []FlashMessage {
	if s == nil || len(s.flashes) == 0 {
		return nil
	}
	msgs := s.flashes
	s.flashes = nil
	s.dirty = true
	return msgs
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:      sm.generateSessionID(),
		values:  make(map[string]string),
		manager: sm,
		isNew:   true,
		dirty:   true,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
