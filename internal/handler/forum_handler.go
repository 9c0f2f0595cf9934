package handler

import (
	"errors"
	"fmt"
	"net/http"

	"agora/internal/middleware"
	"agora/internal/service"
	"agora/internal/session"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct {
	forumService *service.ForumService
	store        *session.Store
}

func NewForumHandler(forumService *service.ForumService, store *session.Store) *ForumHandler {
	return &ForumHandler{
		forumService: forumService,
		store:        store,
	}
}

// Index renders the area list with thread and message counts.
// GET /
func (h *ForumHandler) Index(c *gin.Context) {
	areas, err := h.forumService.ListAreas()
	if err != nil {
		flash(h.store, c, "error", fmt.Sprintf("Error loading areas: %v", err))
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Areas":   areas,
		"Caller":  middleware.CallerFrom(c),
		"Notices": popNotices(h.store, c),
	})
}

// Threads renders an area's thread list, most recently active first. An empty
// area is not fatal: the empty view is rendered with a notice.
// GET /:area_id/threads
func (h *ForumHandler) Threads(c *gin.Context) {
	areaID, ok := paramID(c, "area_id")
	if !ok {
		flash(h.store, c, "error", "Area not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	threads, err := h.forumService.ListThreads(areaID)
	if err != nil {
		flash(h.store, c, "error", fmt.Sprintf("Error loading threads: %v", err))
	} else if len(threads) == 0 {
		flash(h.store, c, "error", "Thread not found.")
	}

	c.HTML(http.StatusOK, "threads.html", gin.H{
		"Threads": threads,
		"AreaID":  areaID,
		"Caller":  middleware.CallerFrom(c),
		"Notices": popNotices(h.store, c),
	})
}

// NewThreadForm renders the thread creation form.
// GET /:area_id/new_thread
func (h *ForumHandler) NewThreadForm(c *gin.Context) {
	areaID, ok := paramID(c, "area_id")
	if !ok {
		flash(h.store, c, "error", "Area not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "new_thread.html", gin.H{
		"AreaID":  areaID,
		"Caller":  middleware.CallerFrom(c),
		"Notices": popNotices(h.store, c),
	})
}

// NewThread creates a thread with its first message. Success and failure both
// redirect back to the thread list; only the notice kind differs.
// POST /:area_id/new_thread
func (h *ForumHandler) NewThread(c *gin.Context) {
	areaID, ok := paramID(c, "area_id")
	if !ok {
		flash(h.store, c, "error", "Area not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")

	_, err := h.forumService.CreateThread(areaID, title, content, middleware.CallerFrom(c))
	if err != nil {
		flash(h.store, c, "error", fmt.Sprintf("Error creating thread: %v", err))
	} else {
		flash(h.store, c, "success", "New thread created successfully!")
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/%d/threads", areaID))
}

// PostMessage appends a message to a thread.
// POST /area/thread/:thread_id/new_message
func (h *ForumHandler) PostMessage(c *gin.Context) {
	threadID, ok := paramID(c, "thread_id")
	if !ok {
		flash(h.store, c, "error", "Thread not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	err := h.forumService.PostMessage(threadID, c.PostForm("content"), middleware.CallerFrom(c))
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		flash(h.store, c, "error", "You must be logged in to post a message.")
		c.Redirect(http.StatusFound, "/auth/login")
		return
	case errors.Is(err, service.ErrEmptyContent):
		flash(h.store, c, "error", "Message content cannot be empty.")
	case err != nil:
		flash(h.store, c, "error", fmt.Sprintf("Error posting message: %v", err))
	default:
		flash(h.store, c, "success", "Message posted successfully.")
	}

	c.Redirect(http.StatusFound, threadURL(threadID))
}

// ViewMessages renders a thread's messages oldest first. A missing thread
// redirects to the area index instead of rendering.
// GET /area/thread/:thread_id
func (h *ForumHandler) ViewMessages(c *gin.Context) {
	threadID, ok := paramID(c, "thread_id")
	if !ok {
		flash(h.store, c, "error", "Thread not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	thread, messages, err := h.forumService.GetThreadView(threadID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			flash(h.store, c, "error", "Thread not found.")
		} else {
			flash(h.store, c, "error", fmt.Sprintf("Error loading thread: %v", err))
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "messages.html", gin.H{
		"ThreadID":    threadID,
		"ThreadTitle": thread.Title,
		"Messages":    messages,
		"Caller":      middleware.CallerFrom(c),
		"Notices":     popNotices(h.store, c),
	})
}

// DeleteMessage removes a message when the caller is its author or an admin.
// POST /thread/:thread_id/message/:message_id/delete
func (h *ForumHandler) DeleteMessage(c *gin.Context) {
	threadID, ok := paramID(c, "thread_id")
	if !ok {
		flash(h.store, c, "error", "Thread not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	messageID, ok := paramID(c, "message_id")
	if !ok {
		flash(h.store, c, "error", "Message not found.")
		c.Redirect(http.StatusFound, threadURL(threadID))
		return
	}

	err := h.forumService.DeleteMessage(messageID, middleware.CallerFrom(c))
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		flash(h.store, c, "error", "You must be logged in to delete messages.")
		c.Redirect(http.StatusFound, "/auth/login")
		return
	case errors.Is(err, service.ErrNotFound):
		flash(h.store, c, "error", "Message not found.")
	case errors.Is(err, service.ErrUnauthorized):
		flash(h.store, c, "error", "You are not authorized to delete this message.")
	case err != nil:
		flash(h.store, c, "error", fmt.Sprintf("Error deleting message: %v", err))
	default:
		flash(h.store, c, "success", "Message deleted successfully.")
	}

	c.Redirect(http.StatusFound, threadURL(threadID))
}

// EditMessageForm renders the edit form pre-filled with the current content.
// Strict ownership: admins who are not the author are turned away.
// GET /thread/:thread_id/message/:message_id/edit
func (h *ForumHandler) EditMessageForm(c *gin.Context) {
	threadID, ok := paramID(c, "thread_id")
	if !ok {
		flash(h.store, c, "error", "Thread not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	messageID, ok := paramID(c, "message_id")
	if !ok {
		flash(h.store, c, "error", "Message not found.")
		c.Redirect(http.StatusFound, threadURL(threadID))
		return
	}

	message, err := h.forumService.GetMessageForEdit(messageID, middleware.CallerFrom(c))
	if err != nil {
		h.redirectEditFailure(c, threadID, err)
		return
	}

	c.HTML(http.StatusOK, "edit_message.html", gin.H{
		"ThreadID":  threadID,
		"MessageID": messageID,
		"Content":   message.Content,
		"Caller":    middleware.CallerFrom(c),
		"Notices":   popNotices(h.store, c),
	})
}

// EditMessage updates a message's content with the submitted value, stored
// verbatim. Success and failure both redirect to the thread view.
// POST /thread/:thread_id/message/:message_id/edit
func (h *ForumHandler) EditMessage(c *gin.Context) {
	threadID, ok := paramID(c, "thread_id")
	if !ok {
		flash(h.store, c, "error", "Thread not found.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	messageID, ok := paramID(c, "message_id")
	if !ok {
		flash(h.store, c, "error", "Message not found.")
		c.Redirect(http.StatusFound, threadURL(threadID))
		return
	}

	err := h.forumService.EditMessage(messageID, c.PostForm("content"), middleware.CallerFrom(c))
	if err != nil {
		h.redirectEditFailure(c, threadID, err)
		return
	}

	flash(h.store, c, "success", "Message updated successfully.")
	c.Redirect(http.StatusFound, threadURL(threadID))
}

func (h *ForumHandler) redirectEditFailure(c *gin.Context, threadID int64, err error) {
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		flash(h.store, c, "error", "You must be logged in to edit messages.")
		c.Redirect(http.StatusFound, "/auth/login")
		return
	case errors.Is(err, service.ErrNotFound):
		flash(h.store, c, "error", "Message not found.")
	case errors.Is(err, service.ErrUnauthorized):
		flash(h.store, c, "error", "You are not authorized to edit this message.")
	default:
		flash(h.store, c, "error", fmt.Sprintf("Error updating message: %v", err))
	}
	c.Redirect(http.StatusFound, threadURL(threadID))
}

func threadURL(threadID int64) string {
	return fmt.Sprintf("/area/thread/%d", threadID)
}
