package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

// SessionSweeper periodically deletes expired sessions so the session
// table does not accumulate stale records from users who never log
// out.
type SessionSweeper struct {
	sessions *service.SessionService
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewSessionSweeper creates a new session sweeper job
func NewSessionSweeper(sessions *service.SessionService, interval time.Duration) *SessionSweeper {
	if interval == 0 {
		interval = 1 * time.Hour
	}
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweeper loop
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
	slog.Info("session sweeper started", "interval", s.interval)
}

// Stop gracefully stops the sweeper loop
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	slog.Info("session sweeper stopped")
}

// run is the main loop
func (s *SessionSweeper) run() {
	defer s.wg.Done()

	// Sweep immediately on start.
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	purged, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		slog.Error("sweeping expired sessions failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("swept expired sessions", "purged", purged)
	}
}

// RunOnce runs a single sweep (for manual triggering)
func (s *SessionSweeper) RunOnce(ctx context.Context) (int, error) {
	return s.sessions.PurgeExpired(ctx)
}

// IsRunning returns whether the sweeper is running
func (s *SessionSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
