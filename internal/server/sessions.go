// internal/server/sessions.go
// Package server exposes wizard sessions over HTTP.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/config"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"github.com/anmicius0/lims-batch-composer/internal/wizard"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager opens and closes wizard sessions.
type SessionManager struct {
	cfg     *config.Config
	store   *SessionStore
	lims    client.LIMSClient
	metrics *utils.Metrics
}

// NewSessionManager constructs a SessionManager with the required dependencies.
func NewSessionManager(cfg *config.Config, store *SessionStore, lims client.LIMSClient, metrics *utils.Metrics) *SessionManager {
	return &SessionManager{cfg, store, lims, metrics}
}

// Open mounts a new wizard for role and loads its reference data.
func (sm *SessionManager) Open(ctx context.Context, role string, projectIDs []string) (*Session, error) {
	id := uuid.New().String()
	log := utils.WithSession("session_manager", id)

	ctrl := wizard.New(sm.lims, wizard.Options{
		SessionID:            id,
		QCRequiredBatchTypes: sm.cfg.QCRequiredBatchTypes,
		CanPerform: func(action string) bool {
			return action != wizard.ActionCreateBatch || role == RoleFull
		},
		OnCreated: func(batch client.CreatedBatch) {
			if err := sm.store.Update(id, func(s *Session) { s.LastCreated = &batch }); err != nil {
				log.Warn("Created batch for a session no longer in the store", zap.String(utils.FieldBatchID, batch.ID))
			}
		},
		OnCancelled: func() {
			log.Debug("Draft discarded")
		},
		Metrics:  sm.metrics,
		PageSize: sm.cfg.EligibleSamplePageSize,
	})

	now := time.Now()
	session := &Session{ID: id, Role: role, CreatedAt: now, UpdatedAt: now, Controller: ctrl}
	sm.store.Add(session)

	if err := ctrl.Mount(ctx, projectIDs); err != nil {
		sm.Close(id)
		return nil, err
	}
	log.Info("Opened wizard session", zap.String("role", role), zap.Strings("project_ids", projectIDs))
	return session, nil
}

// Close unmounts and forgets a session. It reports whether the session existed.
func (sm *SessionManager) Close(id string) bool {
	session, ok := sm.store.Remove(id)
	if !ok {
		return false
	}
	session.Controller.Close()
	utils.WithSession("session_manager", id).Debug("Closed wizard session")
	return true
}

// EvictIdle closes every session untouched for longer than the configured idle timeout.
func (sm *SessionManager) EvictIdle(now time.Time) int {
	idle := sm.store.RemoveIdle(now.Add(-sm.cfg.SessionIdleTimeout))
	for _, session := range idle {
		session.Controller.Close()
		utils.WithSession("session_manager", session.ID).Info("Evicted idle wizard session",
			zap.Time("updated_at", session.UpdatedAt))
	}
	return len(idle)
}

// RunEviction sweeps idle sessions every interval until ctx is done.
func (sm *SessionManager) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sm.EvictIdle(now)
		}
	}
}

// Shutdown closes every session, waiting for their in-flight requests to return.
func (sm *SessionManager) Shutdown() {
	sessions := sm.store.Drain()
	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Controller.Close()
		}(session)
	}
	wg.Wait()
	utils.WithComponent("session_manager").Info("Closed all wizard sessions", zap.Int("count", len(sessions)))
}
