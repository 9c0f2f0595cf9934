package handler

import (
	"strconv"

	"agora/internal/middleware"
	"agora/internal/session"
	"agora/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// flash queues a one-shot notice on the caller's session. A failed push is
// logged and swallowed; losing a notice never fails the request.
func flash(store *session.Store, c *gin.Context, kind, text string) {
	sid := middleware.SessionIDFrom(c)
	if sid == "" {
		return
	}
	if err := store.PushNotice(c.Request.Context(), sid, session.Notice{Kind: kind, Text: text}); err != nil {
		logger.Log.Warn("Failed to push flash notice",
			zap.Error(err),
		)
	}
}

// popNotices drains the pending notices for the current session so the view
// can show them once.
func popNotices(store *session.Store, c *gin.Context) []session.Notice {
	sid := middleware.SessionIDFrom(c)
	if sid == "" {
		return nil
	}
	notices, err := store.PopNotices(c.Request.Context(), sid)
	if err != nil {
		logger.Log.Warn("Failed to pop flash notices",
			zap.Error(err),
		)
		return nil
	}
	return notices
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
