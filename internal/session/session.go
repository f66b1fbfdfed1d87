package session

import (
	"sort"
	"sync"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/google/uuid"
)

// Session holds the process-local state of one resume interaction: extracted
// text and fields, the job description, analysis results, and chat history.
// Sessions are unpersisted and expire after the configured TTL.
type Session struct {
	ID          string                                           `json:"id"`
	FileName    string                                           `json:"fileName"`
	ResumeText  string                                           `json:"resumeText"`
	Fields      types.ResumeFields                               `json:"fields"`
	PageCount   int                                              `json:"pageCount"`
	Method      types.ExtractionMethod                           `json:"method"`
	JobContext  string                                           `json:"jobContext,omitempty"`
	Previews    [][]byte                                         `json:"-"`
	Analyses    map[types.AnalysisType]types.AnalyzeResumeOutput `json:"analyses,omitempty"`
	ChatHistory []types.ChatTurn                                 `json:"chatHistory,omitempty"`
	CreatedAt   time.Time                                        `json:"createdAt"`
	LastAccess  time.Time                                        `json:"lastAccess"`
}

// Store is an in-memory session store with TTL eviction
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      config.SessionConfig
	logger   *errors.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStore creates a session store. Call Start to enable background eviction.
func NewStore(cfg config.SessionConfig, logger *errors.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the TTL eviction goroutine
func (s *Store) Start() {
	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the eviction goroutine
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Create registers a new session for an extraction result and returns a copy
func (s *Store) Create(fileName string, result types.ExtractionResult) Session {
	now := time.Now()
	session := &Session{
		ID:         uuid.NewString(),
		FileName:   fileName,
		ResumeText: result.Text,
		Fields:     result.Fields,
		PageCount:  result.PageCount,
		Method:     result.Method,
		Previews:   result.Previews,
		Analyses:   make(map[types.AnalysisType]types.AnalyzeResumeOutput),
		CreatedAt:  now,
		LastAccess: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforceCapacityLocked()
	s.sessions[session.ID] = session

	s.logger.Debug("Session created",
		"session_id", session.ID,
		"file_name", fileName,
		"active_sessions", len(s.sessions))

	return snapshotLocked(session)
}

// Get returns a copy of the session and refreshes its last access time
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || s.expiredLocked(session, time.Now()) {
		return Session{}, errors.NewValidationError(errors.ErrCodeSessionNotFound,
			"Session not found or expired", nil)
	}

	session.LastAccess = time.Now()
	return snapshotLocked(session), nil
}

// SetJobContext stores the job description on the session
func (s *Store) SetJobContext(id, jobContext string) error {
	return s.update(id, func(session *Session) {
		session.JobContext = jobContext
	})
}

// SetAnalysis records an analysis result, replacing any previous result of
// the same type
func (s *Store) SetAnalysis(id string, output types.AnalyzeResumeOutput) error {
	return s.update(id, func(session *Session) {
		session.Analyses[output.AnalysisType] = output
	})
}

// AppendChat adds a question/answer pair to the history, trimming the oldest
// turns beyond the configured limit
func (s *Store) AppendChat(id, question, answer string) error {
	return s.update(id, func(session *Session) {
		session.ChatHistory = append(session.ChatHistory,
			types.ChatTurn{Role: "user", Content: question},
			types.ChatTurn{Role: "assistant", Content: answer},
		)
		if max := s.cfg.MaxChatTurns; max > 0 && len(session.ChatHistory) > max {
			session.ChatHistory = session.ChatHistory[len(session.ChatHistory)-max:]
		}
	})
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of active sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// update applies fn to a live session under the write lock
func (s *Store) update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || s.expiredLocked(session, time.Now()) {
		return errors.NewValidationError(errors.ErrCodeSessionNotFound,
			"Session not found or expired", nil)
	}

	fn(session)
	session.LastAccess = time.Now()
	return nil
}

// expiredLocked reports whether the session has outlived the TTL
func (s *Store) expiredLocked(session *Session, now time.Time) bool {
	ttl := s.cfg.TTL
	if ttl <= 0 {
		return false
	}
	return now.Sub(session.LastAccess) > ttl
}

// evictExpired removes sessions past their TTL
func (s *Store) evictExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted int
	for id, session := range s.sessions {
		if s.expiredLocked(session, now) {
			delete(s.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.Debug("Evicted expired sessions",
			"evicted", evicted,
			"active_sessions", len(s.sessions))
	}
}

// enforceCapacityLocked drops the least recently used sessions to stay under
// the configured maximum. Caller holds the write lock.
func (s *Store) enforceCapacityLocked() {
	max := s.cfg.MaxSessions
	if max <= 0 || len(s.sessions) < max {
		return
	}

	type entry struct {
		id         string
		lastAccess time.Time
	}
	entries := make([]entry, 0, len(s.sessions))
	for id, session := range s.sessions {
		entries = append(entries, entry{id: id, lastAccess: session.LastAccess})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].lastAccess.Before(entries[j].lastAccess)
	})

	// Make room for exactly one new session
	for i := 0; i <= len(entries)-max; i++ {
		delete(s.sessions, entries[i].id)
	}

	s.logger.Warn("Session capacity reached, evicted least recently used",
		"max_sessions", max)
}

// snapshotLocked returns a deep enough copy for safe use outside the lock
func snapshotLocked(session *Session) Session {
	copied := *session

	copied.Analyses = make(map[types.AnalysisType]types.AnalyzeResumeOutput, len(session.Analyses))
	for k, v := range session.Analyses {
		copied.Analyses[k] = v
	}

	copied.ChatHistory = append([]types.ChatTurn(nil), session.ChatHistory...)
	copied.Previews = append([][]byte(nil), session.Previews...)

	return copied
}
