package service

import (
	"errors"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized for this action")
)

type ForumService struct {
	forumRepo *repository.ForumRepository
}

func NewForumService(forumRepo *repository.ForumRepository) *ForumService {
	return &ForumService{forumRepo: forumRepo}
}

// ListAreas returns every area with its thread and message counts, ordered by
// name. Areas with no threads are included with zero counts.
func (s *ForumService) ListAreas() ([]repository.AreaSummary, error) {
	return s.forumRepo.ListAreas()
}

// ListThreads returns the threads of an area, most recently active first. An
// empty result is not an error; the handler renders the empty view with a
// notice.
func (s *ForumService) ListThreads(areaID int64) ([]repository.ThreadSummary, error) {
	return s.forumRepo.ListThreads(areaID)
}

// CreateThread creates a thread and its first message atomically and returns
// the new thread ID. Anonymous authorship is permitted: a caller without a
// user leaves the message's user_id NULL.
func (s *ForumService) CreateThread(areaID int64, title, content string, caller Caller) (int64, error) {
	thread := &models.Thread{
		Title:  title,
		AreaID: areaID,
	}
	firstMessage := &models.Message{
		Content: content,
		UserID:  caller.UserID,
	}

	if err := s.forumRepo.CreateThreadWithMessage(thread, firstMessage); err != nil {
		logger.Log.Error("Failed to create thread",
			zap.Int64("area_id", areaID),
			zap.Error(err),
		)
		return 0, err
	}

	logger.Log.Info("Thread created",
		zap.Int64("thread_id", thread.ID),
		zap.Int64("area_id", areaID),
	)

	return thread.ID, nil
}

// PostMessage inserts a message into a thread. The caller must be
// authenticated and the content must be non-empty after trimming whitespace;
// the trimmed content is what gets stored, otherwise verbatim.
func (s *ForumService) PostMessage(threadID int64, content string, caller Caller) error {
	if !caller.IsAuthenticated() {
		return ErrAuthRequired
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	message := &models.Message{
		Content:  content,
		ThreadID: threadID,
		UserID:   caller.UserID,
	}

	if err := s.forumRepo.CreateMessage(message); err != nil {
		logger.Log.Error("Failed to post message",
			zap.Int64("thread_id", threadID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Message posted",
		zap.Int64("message_id", message.ID),
		zap.Int64("thread_id", threadID),
	)

	return nil
}

// GetThreadView returns a thread's title and its messages oldest first, each
// joined with the author's username. ErrNotFound when the thread does not
// exist; no message list is fetched in that case.
func (s *ForumService) GetThreadView(threadID int64) (*models.Thread, []repository.MessageView, error) {
	thread, err := s.forumRepo.GetThread(threadID)
	if err != nil {
		return nil, nil, err
	}
	if thread == nil {
		return nil, nil, ErrNotFound
	}

	messages, err := s.forumRepo.ListMessages(threadID)
	if err != nil {
		return nil, nil, err
	}

	return thread, messages, nil
}

// DeleteMessage removes a message. Allowed for the message's author or for an
// admin; the ownership check reads the row's current user_id at request time.
func (s *ForumService) DeleteMessage(messageID int64, caller Caller) error {
	if !caller.IsAuthenticated() {
		return ErrAuthRequired
	}

	message, err := s.forumRepo.GetMessage(messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return ErrNotFound
	}

	if !caller.CanDelete(message.UserID) {
		return ErrUnauthorized
	}

	if err := s.forumRepo.DeleteMessage(messageID); err != nil {
		logger.Log.Error("Failed to delete message",
			zap.Int64("message_id", messageID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Message deleted",
		zap.Int64("message_id", messageID),
		zap.String("deleted_by", caller.UserID.String()),
		zap.Bool("is_admin", caller.IsAdmin),
	)

	return nil
}

// GetMessageForEdit returns the message for pre-filling the edit form. Only
// the author may edit; admins get no override, unlike deletion.
func (s *ForumService) GetMessageForEdit(messageID int64, caller Caller) (*models.Message, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrAuthRequired
	}

	message, err := s.forumRepo.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrNotFound
	}

	if !caller.CanEdit(message.UserID) {
		return nil, ErrUnauthorized
	}

	return message, nil
}

// EditMessage replaces a message's content with newContent, stored verbatim.
// Ownership is re-checked against the row's current user_id.
func (s *ForumService) EditMessage(messageID int64, newContent string, caller Caller) error {
	if _, err := s.GetMessageForEdit(messageID, caller); err != nil {
		return err
	}

	if err := s.forumRepo.UpdateMessageContent(messageID, newContent); err != nil {
		logger.Log.Error("Failed to update message",
			zap.Int64("message_id", messageID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Message updated",
		zap.Int64("message_id", messageID),
	)

	return nil
}
