/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package directory

import (
	"context"
	"sync"
)

// Memory is a process-local Directory, used when no database is configured.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]string
	users map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]string),
		users: make(map[string]string),
	}
}

func (m *Memory) PutRoom(roomID, hostUserID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rooms[roomID] = hostUserID
}

func (m *Memory) PutUser(userID, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[userID] = username
}

func (m *Memory) RoomHost(ctx context.Context, roomID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	host, ok := m.rooms[roomID]
	if !ok {
		return "", ErrNotFound
	}

	return host, nil
}

func (m *Memory) DeleteRoom(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, roomID)

	return nil
}

func (m *Memory) DisplayName(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	name, ok := m.users[userID]
	if !ok {
		return "", ErrNotFound
	}

	return name, nil
}
