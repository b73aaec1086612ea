package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/session"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

var errCSRF = errors.New("server: missing or invalid csrf token")

// acquire loads the caller's session and holds its lock until release is
// called. Unknown or unreadable ids start a fresh session under a new id.
func (s *Server) acquire(w http.ResponseWriter, r *http.Request) (*workflow.Session, func(), error) {
	ctx := r.Context()
	if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
		id := cookie.Value
		unlock := s.locks.Lock(id)
		snap, err := s.store.Load(ctx, id)
		switch {
		case err == nil:
			sess, restoreErr := s.engine.Restore(snap)
			if restoreErr == nil {
				return sess, unlock, nil
			}
			s.logger.Warn("server: discard unrestorable session", "session_id", id, "error", restoreErr)
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrInvalidID):
		default:
			unlock()
			return nil, nil, err
		}
		unlock()
	}

	id := uuid.NewString()
	unlock := s.locks.Lock(id)
	sess := s.engine.NewSession(id)
	if err := s.store.Save(ctx, sess.Snapshot()); err != nil {
		unlock()
		return nil, nil, err
	}
	s.setSessionCookie(w, id)
	return sess, unlock, nil
}

func (s *Server) save(ctx context.Context, sess *workflow.Session) error {
	return s.store.Save(ctx, sess.Snapshot())
}

func (s *Server) cookiePath() string {
	return s.basePath
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	cookie := &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     s.cookiePath(),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookieTTL > 0 {
		cookie.MaxAge = int(s.cookieTTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (s *Server) csrfCookieName() string {
	return s.cookieName + "_csrf"
}

// csrfToken returns the caller's token, issuing one when absent. It returns
// "" when CSRF protection is disabled.
func (s *Server) csrfToken(w http.ResponseWriter, r *http.Request) string {
	if !s.csrf {
		return ""
	}
	if cookie, err := r.Cookie(s.csrfCookieName()); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.csrfCookieName(),
		Value:    token,
		Path:     s.cookiePath(),
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// checkCSRF compares the submitted token with the cookie. Forms send it as a
// hidden field, JSON clients in the CSRFHeader header.
func (s *Server) checkCSRF(r *http.Request, submitted string) error {
	if !s.csrf {
		return nil
	}
	cookie, err := r.Cookie(s.csrfCookieName())
	if err != nil || cookie.Value == "" {
		return errCSRF
	}
	if submitted == "" {
		submitted = r.Header.Get(CSRFHeader)
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) != 1 {
		return errCSRF
	}
	return nil
}

func hiddenFields(token string) map[string]string {
	if token == "" {
		return nil
	}
	return render.MergeHiddenFields(nil, render.CSRFToken(token))
}
