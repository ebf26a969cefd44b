package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"tripmate/internal/agent"
	"tripmate/internal/repositories"
	"tripmate/pkg/utils"
)

// Session is one conversation. Its history may be read by an interrupt
// handler while a turn is running, so access goes through the mutex.
type Session struct {
	Key string

	mu    sync.Mutex
	items []agent.Item
}

func NewSession(key string, items []agent.Item) *Session {
	s := &Session{Key: key}
	s.Replace(items)
	return s
}

// Snapshot returns a copy of the history.
func (s *Session) Snapshot() []agent.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]agent.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Session) Replace(items []agent.Item) {
	cp := make([]agent.Item, len(items))
	copy(cp, items)
	s.mu.Lock()
	s.items = cp
	s.mu.Unlock()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type SessionServiceInterface interface {
	Load(ctx context.Context, key string) *Session
	Reload(ctx context.Context, s *Session) int
	Save(ctx context.Context, s *Session) error
	Reset(ctx context.Context, s *Session) error
	History(ctx context.Context, key string) ([]agent.Item, error)
	Location(key string) string
}

type SessionService struct {
	repo   repositories.HistoryRepository
	logger *zap.Logger
}

func NewSessionService(repo repositories.HistoryRepository, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, logger: logger}
}

// Load never fails: an unreadable history starts the session empty.
func (s *SessionService) Load(ctx context.Context, key string) *Session {
	return NewSession(key, s.read(ctx, key))
}

// Reload replaces the session's history with the stored one and returns
// the number of items loaded.
func (s *SessionService) Reload(ctx context.Context, sess *Session) int {
	items := s.read(ctx, sess.Key)
	sess.Replace(items)
	return len(items)
}

func (s *SessionService) Save(ctx context.Context, sess *Session) error {
	return s.repo.Save(ctx, sess.Key, sess.Snapshot())
}

func (s *SessionService) Reset(ctx context.Context, sess *Session) error {
	sess.Replace(nil)
	return s.Save(ctx, sess)
}

// History returns the stored transcript, or utils.ErrSessionNotFound.
func (s *SessionService) History(ctx context.Context, key string) ([]agent.Item, error) {
	return s.repo.Load(ctx, key)
}

func (s *SessionService) Location(key string) string {
	return s.repo.Describe(key)
}

func (s *SessionService) read(ctx context.Context, key string) []agent.Item {
	items, err := s.repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, utils.ErrSessionNotFound) {
			s.logger.Warn("history unreadable, starting empty",
				zap.String("location", s.repo.Describe(key)),
				zap.Error(err))
		}
		return nil
	}
	return items
}
