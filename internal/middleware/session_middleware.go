package middleware

import (
	"time"

	"agora/internal/service"
	"agora/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the name of the cookie carrying the opaque session ID.
const SessionCookie = "agora_session"

const (
	ctxSessionID = "session_id"
	ctxCaller    = "caller"
)

// SessionMiddleware resolves the session cookie against the Redis store and
// attaches the resulting Caller to the request context. Visitors without a
// valid session get a guest session, so flash notices work before login.
func SessionMiddleware(store *session.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var data *session.Data

		sid, err := c.Cookie(SessionCookie)
		if err == nil {
			data, _ = store.Get(c.Request.Context(), sid)
		}

		if data == nil {
			sid, err = store.Create(c.Request.Context(), session.Data{})
			if err != nil {
				// Redis down: continue as anonymous without a session
				sid = ""
				data = &session.Data{}
			} else {
				c.SetCookie(SessionCookie, sid, int(ttl.Seconds()), "/", "", false, true)
				data = &session.Data{}
			}
		}

		caller := service.Caller{}
		if data.UserID != "" {
			if uid, parseErr := uuid.Parse(data.UserID); parseErr == nil {
				caller.UserID = &uid
				caller.IsAdmin = data.IsAdmin
			}
		}

		c.Set(ctxSessionID, sid)
		c.Set(ctxCaller, caller)

		c.Next()
	}
}

// CallerFrom returns the Caller the session middleware attached to the
// request, or a zero (anonymous) Caller.
func CallerFrom(c *gin.Context) service.Caller {
	if v, exists := c.Get(ctxCaller); exists {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{}
}

// SessionIDFrom returns the current request's session ID, or "" when no
// session could be established.
func SessionIDFrom(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
