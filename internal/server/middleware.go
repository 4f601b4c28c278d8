package server

import (
	"context"
	"net/http"
	"time"

	"github.com/alexanderramin/ridewait/internal/log"
)

// SessionCookie names the cookie carrying the conversation ID.
const SessionCookie = "ridewait_session"

type ctxKey int

const sessionKey ctxKey = iota

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

// sessionMiddleware resolves the session cookie, starting a session when the
// cookie is missing or refers to a session that no longer exists.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(SessionCookie); err == nil {
			current = c.Value
		}

		id, err := s.svc.EnsureSession(r.Context(), current)
		if err != nil {
			s.logger.Errorw("resolving session", "error", err)
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		if id != current {
			setSessionCookie(w, id)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, id)))
	})
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.HTTPRequest(s.logger, r.Method, r.URL.Path, rec.status, time.Since(start), rec.size, r.RemoteAddr)
	})
}
