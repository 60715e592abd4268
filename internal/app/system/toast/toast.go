// Package toast carries short user notifications across a redirect
// using an encrypted flash cookie.
package toast

import (
	"context"
	"encoding/gob"
	"net/http"
	"strings"
	"sync"

	"github.com/dalemusser/stratastock/internal/app/system/keys"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Level is the kind of notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Message is one notification.
type Message struct {
	Level Level
	Text  string
}

func init() {
	gob.Register(Message{})
}

// Store reads and writes the flash cookie.
type Store struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
}

// NewStore creates a Store. The cookie is signed and encrypted with keys
// derived from secret. In secure mode a weak secret is rejected.
func NewStore(secret, name string, secure bool, logger *zap.Logger) (*Store, error) {
	if secure && keys.IsWeak(secret) {
		return nil, &ConfigError{Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)"}
	}
	if keys.IsWeak(secret) {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(secret)),
			zap.Bool("is_default", keys.IsDefault(secret)))
	}

	hashKey, err := keys.Derive(secret, "toast-hash", 32)
	if err != nil {
		return nil, &ConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}
	blockKey, err := keys.Derive(secret, "toast-block", 32)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = "stratastock-flash"
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Store{store: store, name: name, logger: logger}, nil
}

// ConfigError is returned when the flash store configuration is invalid.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

type ctxKey struct{}

// Middleware attaches a Bag to every request.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bag := &Bag{store: s, w: w, r: r}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, bag)))
	})
}

// From returns the request's Bag. Without the middleware it returns a
// Bag that only holds messages for the current response.
func From(ctx context.Context) *Bag {
	if b, ok := ctx.Value(ctxKey{}).(*Bag); ok {
		return b
	}
	return &Bag{}
}

// Bag collects notifications raised while handling one request.
// It satisfies viewmodel.Notifier.
type Bag struct {
	store *Store
	w     http.ResponseWriter
	r     *http.Request

	mu      sync.Mutex
	pending []Message
}

func (b *Bag) add(level Level, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.pending {
		if m.Level == level && m.Text == text {
			return
		}
	}
	b.pending = append(b.pending, Message{Level: level, Text: text})
}

// Success queues a success message.
func (b *Bag) Success(text string) { b.add(LevelSuccess, text) }

// Error queues an error message.
func (b *Bag) Error(text string) { b.add(LevelError, text) }

// Info queues an informational message.
func (b *Bag) Info(text string) { b.add(LevelInfo, text) }

// Messages returns messages carried over from the previous response
// followed by those queued during this request, and clears both. Call it
// before the response body is written.
func (b *Bag) Messages() []Message {
	var out []Message
	if b.store != nil {
		out = b.store.pop(b.w, b.r)
	}
	b.mu.Lock()
	out = append(out, b.pending...)
	b.pending = nil
	b.mu.Unlock()
	return out
}

// Flush saves queued messages to the cookie so they survive a redirect.
func (b *Bag) Flush() error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()
	if len(pending) == 0 || b.store == nil {
		return nil
	}
	return b.store.push(b.w, b.r, pending)
}

// Redirect flushes queued messages and redirects with 303 See Other.
func (b *Bag) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := b.Flush(); err != nil && b.store != nil {
		b.store.logger.Warn("failed to save flash messages", zap.Error(err))
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Store) session(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			s.logger.Debug("discarding unreadable flash cookie", zap.Error(err))
		} else {
			s.logger.Warn("flash cookie error", zap.Error(err))
		}
		// Get returns a fresh session alongside a decode error.
		if sess == nil {
			sess = sessions.NewSession(s.store, s.name)
			sess.Options = s.store.Options
			sess.IsNew = true
		}
	}
	return sess
}

func (s *Store) push(w http.ResponseWriter, r *http.Request, msgs []Message) error {
	sess := s.session(r)
	for _, m := range msgs {
		sess.AddFlash(m)
	}
	return sess.Save(r, w)
}

func (s *Store) pop(w http.ResponseWriter, r *http.Request) []Message {
	if w == nil || r == nil {
		return nil
	}
	if _, err := r.Cookie(s.name); err != nil {
		return nil
	}
	sess := s.session(r)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("failed to clear flash messages", zap.Error(err))
	}
	out := make([]Message, 0, len(flashes))
	for _, f := range flashes {
		if m, ok := f.(Message); ok {
			out = append(out, m)
		}
	}
	return out
}
