package service_test

import (
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"
	"agora/internal/testutil"
	"agora/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ForumServiceIntegrationTestSuite defines test suite
type ForumServiceIntegrationTestSuite struct {
	suite.Suite
	testDB       *testutil.TestDatabase
	forumService *service.ForumService
	author       *models.User
	stranger     *models.User
	admin        *models.User
}

// SetupSuite runs before all tests
func (s *ForumServiceIntegrationTestSuite) SetupSuite() {
	// Initialize logger (required for ForumService)
	logger.Init(false)

	// Start in-memory SQLite (migrations run automatically)
	s.testDB = testutil.SetupTestDatabase(s.T())

	forumRepo := repository.NewForumRepository(s.testDB.DB)
	s.forumService = service.NewForumService(forumRepo)

	// Create test users: an author, an unrelated user, and an admin
	s.author, _ = testutil.CreateTestUser("author", "author@example.com", "Author1234", models.RoleUser)
	s.stranger, _ = testutil.CreateTestUser("stranger", "stranger@example.com", "Stranger1234", models.RoleUser)
	s.admin, _ = testutil.CreateTestUser("admin", "admin@example.com", "Admin1234", models.RoleAdmin)
	s.testDB.DB.Create(s.author)
	s.testDB.DB.Create(s.stranger)
	s.testDB.DB.Create(s.admin)
}

// TearDownSuite runs after all tests
func (s *ForumServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test (users are kept, forum content is not)
func (s *ForumServiceIntegrationTestSuite) SetupTest() {
	s.testDB.DB.Exec("DELETE FROM messages")
	s.testDB.DB.Exec("DELETE FROM threads")
	s.testDB.DB.Exec("DELETE FROM areas")
}

func (s *ForumServiceIntegrationTestSuite) callerFor(user *models.User) service.Caller {
	uid := user.ID
	return service.Caller{UserID: &uid, IsAdmin: user.IsAdmin()}
}

func (s *ForumServiceIntegrationTestSuite) createArea(name string) *models.Area {
	area := testutil.CreateTestArea(name)
	require.NoError(s.T(), s.testDB.DB.Create(area).Error)
	return area
}

func (s *ForumServiceIntegrationTestSuite) createThread(areaID int64, title string) *models.Thread {
	thread := testutil.CreateTestThread(areaID, title)
	require.NoError(s.T(), s.testDB.DB.Create(thread).Error)
	return thread
}

func (s *ForumServiceIntegrationTestSuite) createMessage(threadID int64, user *models.User, content string, at time.Time) *models.Message {
	var userID *uuid.UUID
	if user != nil {
		uid := user.ID
		userID = &uid
	}
	msg := testutil.CreateTestMessage(threadID, userID, content, at)
	require.NoError(s.T(), s.testDB.DB.Create(msg).Error)
	return msg
}

// TestListAreasCountsAndOrdering tests the area index aggregation
func (s *ForumServiceIntegrationTestSuite) TestListAreasCountsAndOrdering() {
	beta := s.createArea("Beta")
	alpha := s.createArea("Alpha")

	thread := s.createThread(alpha.ID, "First thread")
	now := time.Now()
	s.createMessage(thread.ID, s.author, "one", now.Add(-2*time.Minute))
	s.createMessage(thread.ID, s.author, "two", now.Add(-1*time.Minute))

	areas, err := s.forumService.ListAreas()
	require.NoError(s.T(), err)
	require.Len(s.T(), areas, 2)

	// Sorted by name ascending
	assert.Equal(s.T(), "Alpha", areas[0].Name)
	assert.Equal(s.T(), int64(1), areas[0].ThreadCount)
	assert.Equal(s.T(), int64(2), areas[0].MessageCount)

	// An area with zero threads still appears, with zero counts
	assert.Equal(s.T(), "Beta", areas[1].Name)
	assert.Equal(s.T(), beta.ID, areas[1].ID)
	assert.Equal(s.T(), int64(0), areas[1].ThreadCount)
	assert.Equal(s.T(), int64(0), areas[1].MessageCount)
}

// TestListThreadsOrderingAndFiltering tests the thread listing of one area
func (s *ForumServiceIntegrationTestSuite) TestListThreadsOrderingAndFiltering() {
	area := s.createArea("General")
	otherArea := s.createArea("Off-topic")

	now := time.Now()
	older := s.createThread(area.ID, "Older activity")
	newer := s.createThread(area.ID, "Newer activity")
	elsewhere := s.createThread(otherArea.ID, "Elsewhere")

	s.createMessage(older.ID, s.author, "old post", now.Add(-1*time.Hour))
	s.createMessage(newer.ID, s.author, "fresh post", now.Add(-1*time.Minute))
	s.createMessage(elsewhere.ID, s.author, "other area post", now)

	threads, err := s.forumService.ListThreads(area.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), threads, 2, "Only the requested area's threads")

	// Most recently active first
	assert.Equal(s.T(), newer.ID, threads[0].ID)
	assert.Equal(s.T(), older.ID, threads[1].ID)
	require.NotNil(s.T(), threads[0].LastMessage)
	require.NotNil(s.T(), threads[1].LastMessage)
	assert.True(s.T(), threads[0].LastMessage.After(*threads[1].LastMessage))
	assert.WithinDuration(s.T(), now.Add(-1*time.Minute), *threads[0].LastMessage, time.Second)
	assert.WithinDuration(s.T(), now.Add(-1*time.Hour), *threads[1].LastMessage, time.Second)
}

// TestListThreadsEmptyArea tests that an empty area is not an error
func (s *ForumServiceIntegrationTestSuite) TestListThreadsEmptyArea() {
	area := s.createArea("Empty")

	threads, err := s.forumService.ListThreads(area.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), threads)
}

// TestCreateThread tests the atomic thread + first message creation
func (s *ForumServiceIntegrationTestSuite) TestCreateThread() {
	area := s.createArea("General")

	threadID, err := s.forumService.CreateThread(area.ID, "Hello", "first message", s.callerFor(s.author))
	require.NoError(s.T(), err)
	assert.Greater(s.T(), threadID, int64(0))

	var threadCount, messageCount int64
	s.testDB.DB.Model(&models.Thread{}).Count(&threadCount)
	s.testDB.DB.Model(&models.Message{}).Count(&messageCount)
	assert.Equal(s.T(), int64(1), threadCount)
	assert.Equal(s.T(), int64(1), messageCount)

	var msg models.Message
	require.NoError(s.T(), s.testDB.DB.Where("thread_id = ?", threadID).First(&msg).Error)
	assert.Equal(s.T(), "first message", msg.Content)
	require.NotNil(s.T(), msg.UserID)
	assert.Equal(s.T(), s.author.ID, *msg.UserID)

	// Both rows are visible in the same read afterward
	thread, messages, err := s.forumService.GetThreadView(threadID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Hello", thread.Title)
	require.Len(s.T(), messages, 1)
}

// TestCreateThreadAnonymous tests anonymous thread creation (NULL user_id)
func (s *ForumServiceIntegrationTestSuite) TestCreateThreadAnonymous() {
	area := s.createArea("General")

	threadID, err := s.forumService.CreateThread(area.ID, "Anon thread", "hello", service.Caller{})
	require.NoError(s.T(), err)

	var msg models.Message
	require.NoError(s.T(), s.testDB.DB.Where("thread_id = ?", threadID).First(&msg).Error)
	assert.Nil(s.T(), msg.UserID, "Anonymous authorship is stored as NULL")

	// The anonymous message still renders with a placeholder username
	_, messages, err := s.forumService.GetThreadView(threadID)
	require.NoError(s.T(), err)
	require.Len(s.T(), messages, 1)
	assert.Equal(s.T(), "anonymous", messages[0].Username)
}

// TestCreateThreadRollback tests that a failed first-message insert rolls back
// the thread insert too
func (s *ForumServiceIntegrationTestSuite) TestCreateThreadRollback() {
	area := s.createArea("General")

	// Simulate a store failure on the second insert of the transaction
	require.NoError(s.T(), s.testDB.DB.Migrator().DropTable(&models.Message{}))
	defer func() {
		require.NoError(s.T(), s.testDB.DB.AutoMigrate(&models.Message{}))
	}()

	_, err := s.forumService.CreateThread(area.ID, "Doomed", "never lands", s.callerFor(s.author))
	require.Error(s.T(), err)

	var threadCount int64
	s.testDB.DB.Model(&models.Thread{}).Count(&threadCount)
	assert.Equal(s.T(), int64(0), threadCount, "Neither row persists after rollback")
}

// TestPostMessage tests the happy path and the verbatim round-trip
func (s *ForumServiceIntegrationTestSuite) TestPostMessage() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "Round trip")

	content := "hello <b>world</b>"
	require.NoError(s.T(), s.forumService.PostMessage(thread.ID, content, s.callerFor(s.author)))

	_, messages, err := s.forumService.GetThreadView(thread.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), messages, 1)
	assert.Equal(s.T(), content, messages[0].Content, "Content is stored and returned verbatim")
	assert.Equal(s.T(), "author", messages[0].Username)
}

// TestPostMessageAuthRequired tests that anonymous callers cannot post
func (s *ForumServiceIntegrationTestSuite) TestPostMessageAuthRequired() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "Members only")

	err := s.forumService.PostMessage(thread.ID, "hi", service.Caller{})
	assert.ErrorIs(s.T(), err, service.ErrAuthRequired)

	var count int64
	s.testDB.DB.Model(&models.Message{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// TestPostMessageEmptyContent tests that whitespace-only content writes no row
func (s *ForumServiceIntegrationTestSuite) TestPostMessageEmptyContent() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "No blanks")

	err := s.forumService.PostMessage(thread.ID, "   ", s.callerFor(s.author))
	assert.ErrorIs(s.T(), err, service.ErrEmptyContent)

	var count int64
	s.testDB.DB.Model(&models.Message{}).Count(&count)
	assert.Equal(s.T(), int64(0), count, "Whitespace-only content writes zero rows")
}

// TestViewMessagesOrdering tests ascending display order within a thread
func (s *ForumServiceIntegrationTestSuite) TestViewMessagesOrdering() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "Ordered")

	now := time.Now()
	s.createMessage(thread.ID, s.author, "second", now.Add(-1*time.Minute))
	s.createMessage(thread.ID, s.stranger, "first", now.Add(-2*time.Minute))
	s.createMessage(thread.ID, s.author, "third", now)

	_, messages, err := s.forumService.GetThreadView(thread.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), messages, 3)
	assert.Equal(s.T(), "first", messages[0].Content)
	assert.Equal(s.T(), "second", messages[1].Content)
	assert.Equal(s.T(), "third", messages[2].Content)
	assert.Equal(s.T(), "stranger", messages[0].Username)
}

// TestViewMessagesNotFound tests the missing-thread condition
func (s *ForumServiceIntegrationTestSuite) TestViewMessagesNotFound() {
	thread, messages, err := s.forumService.GetThreadView(99999)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
	assert.Nil(s.T(), thread)
	assert.Nil(s.T(), messages, "No message list for a missing thread")
}

// TestDeleteMessagePermissions tests the delete authorization matrix
func (s *ForumServiceIntegrationTestSuite) TestDeleteMessagePermissions() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "Delete matrix")

	// Non-author, non-admin caller is rejected and the row survives
	msg := s.createMessage(thread.ID, s.author, "keep me", time.Now())
	err := s.forumService.DeleteMessage(msg.ID, s.callerFor(s.stranger))
	assert.ErrorIs(s.T(), err, service.ErrUnauthorized)

	var count int64
	s.testDB.DB.Model(&models.Message{}).Where("id = ?", msg.ID).Count(&count)
	assert.Equal(s.T(), int64(1), count, "Message still present after unauthorized attempt")

	// The author may delete their own message
	require.NoError(s.T(), s.forumService.DeleteMessage(msg.ID, s.callerFor(s.author)))
	s.testDB.DB.Model(&models.Message{}).Where("id = ?", msg.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)

	// An admin who is not the author may delete too
	msg = s.createMessage(thread.ID, s.author, "admin target", time.Now())
	require.NoError(s.T(), s.forumService.DeleteMessage(msg.ID, s.callerFor(s.admin)))
	s.testDB.DB.Model(&models.Message{}).Where("id = ?", msg.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// TestDeleteMessageConditions tests auth and not-found short circuits
func (s *ForumServiceIntegrationTestSuite) TestDeleteMessageConditions() {
	err := s.forumService.DeleteMessage(1, service.Caller{})
	assert.ErrorIs(s.T(), err, service.ErrAuthRequired)

	err = s.forumService.DeleteMessage(99999, s.callerFor(s.author))
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

// TestEditMessageStrictOwnership tests that editing has no admin override
func (s *ForumServiceIntegrationTestSuite) TestEditMessageStrictOwnership() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "Edit rules")
	msg := s.createMessage(thread.ID, s.author, "original", time.Now())

	// Admin who is not the author is rejected, content unchanged
	err := s.forumService.EditMessage(msg.ID, "admin edit", s.callerFor(s.admin))
	assert.ErrorIs(s.T(), err, service.ErrUnauthorized)

	var stored models.Message
	require.NoError(s.T(), s.testDB.DB.First(&stored, msg.ID).Error)
	assert.Equal(s.T(), "original", stored.Content)

	// The author's edit lands exactly as submitted
	require.NoError(s.T(), s.forumService.EditMessage(msg.ID, "  edited <i>verbatim</i>  ", s.callerFor(s.author)))
	require.NoError(s.T(), s.testDB.DB.First(&stored, msg.ID).Error)
	assert.Equal(s.T(), "  edited <i>verbatim</i>  ", stored.Content)
}

// TestGetMessageForEdit tests the edit form pre-fill path
func (s *ForumServiceIntegrationTestSuite) TestGetMessageForEdit() {
	area := s.createArea("General")
	thread := s.createThread(area.ID, "Edit form")
	msg := s.createMessage(thread.ID, s.author, "current content", time.Now())

	got, err := s.forumService.GetMessageForEdit(msg.ID, s.callerFor(s.author))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "current content", got.Content)

	_, err = s.forumService.GetMessageForEdit(msg.ID, s.callerFor(s.admin))
	assert.ErrorIs(s.T(), err, service.ErrUnauthorized)

	_, err = s.forumService.GetMessageForEdit(msg.ID, service.Caller{})
	assert.ErrorIs(s.T(), err, service.ErrAuthRequired)

	_, err = s.forumService.GetMessageForEdit(99999, s.callerFor(s.author))
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func TestForumServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ForumServiceIntegrationTestSuite))
}
