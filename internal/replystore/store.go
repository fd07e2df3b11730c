// Package replystore holds the active reply-rule set for an account as
// an explicit state container with an injected persistence adapter, so
// the durable mirror can be swapped for an in-memory one in tests.
//
// Only the rule list is mirrored; transient editing state (the rule
// currently open in the dashboard editor) never leaves the process.
package replystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/replyflow/replyflow/internal/models"
)

// Adapter persists the rule list for an account. Load returns false
// when nothing has been saved yet.
type Adapter interface {
	Load(ctx context.Context, igAccountID int) ([]models.Reply, bool, error)
	Save(ctx context.Context, igAccountID int, rules []models.Reply) error
}

// Store is the in-process state container.
type Store struct {
	adapter Adapter

	mu      sync.RWMutex
	rules   map[int][]models.Reply
	editing map[int]*models.Reply // transient, never mirrored
}

// New creates a Store over the given adapter.
func New(adapter Adapter) *Store {
	return &Store{
		adapter: adapter,
		rules:   make(map[int][]models.Reply),
		editing: make(map[int]*models.Reply),
	}
}

// Replies returns the cached rule list for the account, falling back to
// the adapter on a cold start.
func (s *Store) Replies(ctx context.Context, igAccountID int) ([]models.Reply, error) {
	s.mu.RLock()
	rules, ok := s.rules[igAccountID]
	s.mu.RUnlock()
	if ok {
		return rules, nil
	}

	loaded, found, err := s.adapter.Load(ctx, igAccountID)
	if err != nil {
		return nil, fmt.Errorf("replystore.Replies: %w", err)
	}
	if !found {
		return nil, nil
	}

	s.mu.Lock()
	s.rules[igAccountID] = loaded
	s.mu.Unlock()
	return loaded, nil
}

// SetReplies replaces the rule list and mirrors it through the adapter.
func (s *Store) SetReplies(ctx context.Context, igAccountID int, rules []models.Reply) error {
	s.mu.Lock()
	s.rules[igAccountID] = rules
	s.mu.Unlock()

	if err := s.adapter.Save(ctx, igAccountID, rules); err != nil {
		return fmt.Errorf("replystore.SetReplies: %w", err)
	}
	return nil
}

// SetEditing records the rule currently open in the editor; nil clears
// it. Editing state is transient and excluded from the mirror.
func (s *Store) SetEditing(igAccountID int, reply *models.Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reply == nil {
		delete(s.editing, igAccountID)
		return
	}
	s.editing[igAccountID] = reply
}

// Editing returns the rule currently open in the editor, if any.
func (s *Store) Editing(igAccountID int) (*models.Reply, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.editing[igAccountID]
	return r, ok
}

// Invalidate drops the cached rule list for the account.
func (s *Store) Invalidate(igAccountID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, igAccountID)
}
