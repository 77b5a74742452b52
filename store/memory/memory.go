// Package memory provides an in-memory loans.StateStore.
package memory

import (
	"context"
	"sync"

	"github.com/warp/library-loans/loans"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	state *loans.LedgerState
	saves int
}

func New() *Memory {
	return &Memory{}
}

// NewWithState returns a store that loads a copy of state.
func NewWithState(state loans.LedgerState) *Memory {
	s := state.Clone()
	return &Memory{state: &s}
}

func (m *Memory) Load(_ context.Context) (*loans.LedgerState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == nil {
		return nil, nil
	}
	s := m.state.Clone()
	return &s, nil
}

func (m *Memory) Save(_ context.Context, state loans.LedgerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := state.Clone()
	m.state = &s
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
