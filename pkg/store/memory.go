package store

import (
	"context"
	"sync"
)

// Memory keeps everything in process; nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) ForDevice(deviceID string) Store {
	return &memoryStore{parent: m, device: deviceID}
}

type memoryStore struct {
	parent *Memory
	device string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	v, ok := s.parent.data[s.device][key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	kv, ok := s.parent.data[s.device]
	if !ok {
		kv = make(map[string]string)
		s.parent.data[s.device] = kv
	}
	kv[key] = value
	return nil
}
