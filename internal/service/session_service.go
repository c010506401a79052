package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/ecomdash/internal/aggregation"
	"github.com/navid-fn/ecomdash/internal/dataset"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// MaxCachedSnapshots bounds the dashboards a session keeps per selection.
const MaxCachedSnapshots = 8

// SessionInfo describes a session to clients.
type SessionInfo struct {
	ID        string            `json:"id"`
	Selection dataset.Selection `json:"selection"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type session struct {
	mu        sync.Mutex
	id        string
	selection dataset.Selection
	createdAt time.Time
	lastSeen  time.Time

	// cache holds snapshots by Selection.Key, evicted oldest first.
	cache map[string]*aggregation.Dashboard
	order []string
}

func (s *session) snapshot(ctx context.Context, dashboards *DashboardService) (*aggregation.Dashboard, error) {
	key := s.selection.Key()
	if d, ok := s.cache[key]; ok {
		return d, nil
	}

	d, err := dashboards.Snapshot(ctx, s.selection)
	if err != nil {
		return nil, err
	}
	if len(s.order) >= MaxCachedSnapshots {
		delete(s.cache, s.order[0])
		s.order = s.order[1:]
	}
	s.cache[key] = d
	s.order = append(s.order, key)
	return d, nil
}

// SessionService keeps an independent selection and snapshot cache per
// dashboard user. Sessions idle for longer than the TTL are dropped.
type SessionService struct {
	dashboards *DashboardService
	ttl        time.Duration
	logger     *logrus.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionService(dashboards *DashboardService, ttl time.Duration, logger *logrus.Logger) *SessionService {
	return &SessionService{
		dashboards: dashboards,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

// Create starts a session on the default selection.
func (s *SessionService) Create(ctx context.Context) (SessionInfo, error) {
	sel, err := s.dashboards.DefaultSelection(ctx)
	if err != nil {
		return SessionInfo{}, err
	}

	now := s.now()
	sess := &session{
		id:        uuid.NewString(),
		selection: sel,
		createdAt: now,
		lastSeen:  now,
		cache:     make(map[string]*aggregation.Dashboard),
	}

	info := s.info(sess, now)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Debugf("Created session %s", sess.id)
	return info, nil
}

// Get returns the session and refreshes its idle timer.
func (s *SessionService) Get(id string) (SessionInfo, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.info(sess, s.now()), nil
}

// Select replaces the session's selection and returns its dashboard.
func (s *SessionService) Select(ctx context.Context, id string, sel dataset.Selection) (*aggregation.Dashboard, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.selection = sel
	return sess.snapshot(ctx, s.dashboards)
}

// Snapshot returns the dashboard of the session's current selection.
func (s *SessionService) Snapshot(ctx context.Context, id string) (*aggregation.Dashboard, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(ctx, s.dashboards)
}

// Delete ends a session.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionService) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Infof("Expired %d idle sessions", n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) lookup(id string) (*session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// expired reads lastSeen, which is only written under s.mu.
func (s *SessionService) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

func (s *SessionService) info(sess *session, seen time.Time) SessionInfo {
	info := SessionInfo{
		ID:        sess.id,
		Selection: sess.selection,
		CreatedAt: sess.createdAt,
	}
	if s.ttl > 0 {
		info.ExpiresAt = seen.Add(s.ttl)
	}
	return info
}
