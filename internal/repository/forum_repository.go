package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agora/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForumRepository is the single place forum SQL lives. Every query is
// parameterized; handlers and services never build SQL strings.
type ForumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// AreaSummary is one row of the area index: an area with its aggregate
// thread and message counts.
type AreaSummary struct {
	ID           int64
	Name         string
	ThreadCount  int64
	MessageCount int64
}

// ThreadSummary is one row of an area's thread list. LastMessage is nil for
// a thread with no messages, which should not occur since threads are created
// with their first message.
type ThreadSummary struct {
	ID          int64
	Title       string
	LastMessage *time.Time
}

// MessageView is one rendered message joined with its author's username.
type MessageView struct {
	ID        int64
	Content   string
	Username  string
	UserID    *uuid.UUID
	CreatedAt time.Time
}

// ListAreas returns all areas ordered by name with thread and message counts.
// The outer joins keep areas with zero threads in the result with zero counts.
func (r *ForumRepository) ListAreas() ([]AreaSummary, error) {
	var areas []AreaSummary
	err := r.db.Raw(`
		SELECT a.id, a.name,
		       COUNT(DISTINCT t.id) AS thread_count,
		       COUNT(m.id) AS message_count
		FROM areas a
		LEFT JOIN threads t ON t.area_id = a.id
		LEFT JOIN messages m ON m.thread_id = t.id
		GROUP BY a.id, a.name
		ORDER BY a.name ASC`).Scan(&areas).Error

	return areas, err
}

// threadRow is the raw scan target for ListThreads. The MAX() aggregate has
// no declared column type, so drivers hand it over as text rather than a
// timestamp; the repository parses it before the row leaves this package.
type threadRow struct {
	ID          int64
	Title       string
	LastMessage sql.NullString
}

// ListThreads returns the threads of one area, most recently active first.
func (r *ForumRepository) ListThreads(areaID int64) ([]ThreadSummary, error) {
	var rows []threadRow
	err := r.db.Raw(`
		SELECT t.id, t.title, MAX(m.created_at) AS last_message
		FROM threads t
		LEFT JOIN messages m ON m.thread_id = t.id
		WHERE t.area_id = ?
		GROUP BY t.id, t.title
		ORDER BY last_message DESC`, areaID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	threads := make([]ThreadSummary, 0, len(rows))
	for _, row := range rows {
		summary := ThreadSummary{ID: row.ID, Title: row.Title}
		if row.LastMessage.Valid {
			ts, parseErr := parseTimestamp(row.LastMessage.String)
			if parseErr != nil {
				return nil, parseErr
			}
			summary.LastMessage = &ts
		}
		threads = append(threads, summary)
	}

	return threads, nil
}

// timestampLayouts covers the text forms the configured drivers emit for an
// untyped timestamp column: database/sql formats postgres values as
// RFC 3339, the sqlite driver stores them in its own datetime layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// GetThread retrieves a thread by ID, or nil if it does not exist.
func (r *ForumRepository) GetThread(threadID int64) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

// ListMessages returns a thread's messages oldest first, joined with the
// author's username. Anonymous messages survive the join with a placeholder
// username instead of being dropped.
func (r *ForumRepository) ListMessages(threadID int64) ([]MessageView, error) {
	var messages []MessageView
	err := r.db.Raw(`
		SELECT m.id, m.content, m.user_id, m.created_at,
		       COALESCE(u.username, 'anonymous') AS username
		FROM messages m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.thread_id = ?
		ORDER BY m.created_at ASC`, threadID).Scan(&messages).Error

	return messages, err
}

// CreateThreadWithMessage inserts a thread and its first message in one
// transaction. A failure on either insert rolls back both.
func (r *ForumRepository) CreateThreadWithMessage(thread *models.Thread, firstMessage *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}

		firstMessage.ThreadID = thread.ID
		return tx.Create(firstMessage).Error
	})
}

func (r *ForumRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetMessage retrieves a message by ID, or nil if it does not exist.
func (r *ForumRepository) GetMessage(messageID int64) (*models.Message, error) {
	var message models.Message
	err := r.db.First(&message, messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// UpdateMessageContent replaces a message's content. Last write wins; there is
// no version column.
func (r *ForumRepository) UpdateMessageContent(messageID int64, content string) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("content", content).Error
}

func (r *ForumRepository) DeleteMessage(messageID int64) error {
	return r.db.Delete(&models.Message{}, messageID).Error
}
