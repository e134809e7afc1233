// Package session implements the per-browser session store: one JSON
// document per session id in Redis, holding the guest task list and
// pending flash messages.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"todo-tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

// Data is the session document. A missing document reads as the zero
// value; an empty document is deleted rather than written back.
type Data struct {
	Tasks   []models.SessionTask `json:"tasks,omitempty"`
	Flashes []string             `json:"flashes,omitempty"`
}

func (d *Data) IsEmpty() bool {
	return len(d.Tasks) == 0 && len(d.Flashes) == 0
}

// Store reads and writes session documents. Writes refresh the TTL, so
// a session lives as long as the browser keeps using it. Loads and
// saves are plain GET/SET per request: concurrent requests in the same
// session are last-write-wins.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *CircuitBreaker
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client:  client,
		ttl:     ttl,
		breaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Load fetches the session document. A missing document or an
// unavailable Redis yields an empty document, never an error: browsing
// must keep working when the session backend is degraded.
func (s *Store) Load(ctx context.Context, sessionID string) *Data {
	var data Data

	err := s.breaker.Call(func() error {
		raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &data)
	})
	if err != nil {
		log.Printf("session load failed for %s: %v", sessionID, err)
		return &Data{}
	}

	return &data
}

// Save writes the document back, deleting the key when nothing remains.
func (s *Store) Save(ctx context.Context, sessionID string, data *Data) error {
	return s.breaker.Call(func() error {
		if data.IsEmpty() {
			return s.client.Del(ctx, sessionKey(sessionID)).Err()
		}

		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal session data: %w", err)
		}
		return s.client.Set(ctx, sessionKey(sessionID), raw, s.ttl).Err()
	})
}

// Tasks returns the session task list, empty when absent.
func (s *Store) Tasks(ctx context.Context, sessionID string) []models.SessionTask {
	return s.Load(ctx, sessionID).Tasks
}

// SaveTasks replaces the task list, preserving pending flashes.
func (s *Store) SaveTasks(ctx context.Context, sessionID string, tasks []models.SessionTask) error {
	data := s.Load(ctx, sessionID)
	data.Tasks = tasks
	return s.Save(ctx, sessionID, data)
}

// ClearTasks removes every session-held task, preserving flashes.
func (s *Store) ClearTasks(ctx context.Context, sessionID string) error {
	data := s.Load(ctx, sessionID)
	data.Tasks = nil
	return s.Save(ctx, sessionID, data)
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Store) AddFlash(ctx context.Context, sessionID, message string) {
	data := s.Load(ctx, sessionID)
	data.Flashes = append(data.Flashes, message)
	if err := s.Save(ctx, sessionID, data); err != nil {
		log.Printf("failed to store flash for %s: %v", sessionID, err)
	}
}

// PopFlashes returns and clears the pending messages.
func (s *Store) PopFlashes(ctx context.Context, sessionID string) []string {
	data := s.Load(ctx, sessionID)
	if len(data.Flashes) == 0 {
		return nil
	}

	flashes := data.Flashes
	data.Flashes = nil
	if err := s.Save(ctx, sessionID, data); err != nil {
		log.Printf("failed to clear flashes for %s: %v", sessionID, err)
	}
	return flashes
}
