package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"scoreclock/pkg/protocol"
)

// MemoryStore keeps session records in-process. It backs tests and DSN-less
// development runs; records marshal through JSON so callers never share
// pointers with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (protocol.GameState, error) {
	m.mu.RLock()
	blob, ok := m.blobs[sessionID]
	m.mu.RUnlock()
	if !ok {
		return protocol.GameState{}, ErrNotFound
	}
	var state protocol.GameState
	if err := json.Unmarshal(blob, &state); err != nil {
		return protocol.GameState{}, nil
	}
	return state, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, state protocol.GameState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	m.mu.Lock()
	m.blobs[sessionID] = blob
	m.mu.Unlock()
	return nil
}
