package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"southern-night/internal/logger"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions in memory. When it is full the least recently
// used session is dropped along with its cart and drafts.
type Store struct {
	sessions *lru.Cache[string, *Session]
	svc      *Services
	logger   *logger.Logger
}

func NewStore(capacity int, svc *Services) (*Store, error) {
	s := &Store{svc: svc, logger: svc.Logger}

	cache, err := lru.NewWithEvict[string, *Session](capacity, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	s.sessions = cache

	return s, nil
}

// Create starts a session with an empty cart and blank forms
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.svc)
	s.sessions.Add(sess.ID, sess)

	s.logger.Debug("session_created", "Session created", "", map[string]interface{}{
		"session_id": sess.ID,
		"sessions":   s.sessions.Len(),
	})
	return sess
}

func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *Store) Len() int {
	return s.sessions.Len()
}

func (s *Store) onEvict(id string, _ *Session) {
	s.logger.Info("session_evicted", "Session evicted from store", "", map[string]interface{}{
		"session_id": id,
	})
}
