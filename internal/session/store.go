package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Data is what a session holds for the current caller. UserID is empty for
// guest sessions; guests still get a session so flash notices work for them.
type Data struct {
	UserID  string `json:"user_id,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// Notice is a flash message shown once on the next rendered page.
type Notice struct {
	Kind string `json:"kind"` // "success" or "error"
	Text string `json:"text"`
}

// Store keeps sessions and their pending flash notices in Redis, keyed by an
// opaque session ID carried in a cookie.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string { return "session:" + id }
func noticeKey(id string) string  { return "notices:" + id }

// Create stores a new session and returns its ID.
func (s *Store) Create(ctx context.Context, data Data) (string, error) {
	id := uuid.New().String()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, sessionKey(id), payload, s.ttl).Err(); err != nil {
		return "", err
	}

	return id, nil
}

// Get returns the session data for id, or nil if the session does not exist
// (expired, destroyed, or never created).
func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Destroy removes the session and any notices still queued on it.
func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id), noticeKey(id)).Err()
}

// PushNotice queues a flash notice for the session.
func (s *Store) PushNotice(ctx context.Context, id string, notice Notice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, noticeKey(id), payload)
	pipe.Expire(ctx, noticeKey(id), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopNotices returns all queued notices for the session and clears them.
func (s *Store) PopNotices(ctx context.Context, id string) ([]Notice, error) {
	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, noticeKey(id), 0, -1)
	pipe.Del(ctx, noticeKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw, err := rangeCmd.Result()
	if err != nil {
		return nil, err
	}

	notices := make([]Notice, 0, len(raw))
	for _, item := range raw {
		var n Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}

	return notices, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
