/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package hub tracks which live connections belong to which room and fans
// messages out to them.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Conn is one open client channel. Send must not block: a connection that
// cannot accept data right now returns an error instead.
type Conn interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type member struct {
	conn   Conn
	userID string
}

type room struct {
	mu      sync.RWMutex
	members map[string]member
}

type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		rooms:  make(map[string]*room),
		logger: logger,
	}
}

// Register admits conn into roomID on behalf of userID.
func (h *Hub) Register(roomID string, conn Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{members: make(map[string]member)}
		h.rooms[roomID] = r
	}

	r.mu.Lock()
	r.members[conn.ID()] = member{conn: conn, userID: userID}
	count := len(r.members)
	r.mu.Unlock()

	h.logger.Debug("connection registered", "room", roomID, "user", userID, "conn", conn.ID(), "members", count)
}

// Unregister removes conn from roomID. Removing a connection that is not
// registered is a no-op.
func (h *Hub) Unregister(roomID string, conn Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return
	}

	r.mu.Lock()
	_, existed := r.members[conn.ID()]
	delete(r.members, conn.ID())
	count := len(r.members)
	r.mu.Unlock()

	if count == 0 {
		delete(h.rooms, roomID)
	}

	if existed {
		h.logger.Debug("connection unregistered", "room", roomID, "user", userID, "conn", conn.ID(), "members", count)
	}
}

func (h *Hub) room(roomID string) *room {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.rooms[roomID]
}

// Broadcast encodes msg once and offers it to every connection in roomID.
// A connection that fails to accept it is logged and skipped. It returns the
// number of connections that accepted the message.
func (h *Hub) Broadcast(roomID string, msg any) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "room", roomID, "error", err)

		return 0
	}

	r := h.room(roomID)
	if r == nil {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for id, m := range r.members {
		if err := m.conn.Send(data); err != nil {
			h.logger.Warn("broadcast send failed", "room", roomID, "user", m.userID, "conn", id, "error", err)

			continue
		}
		delivered++
	}

	return delivered
}

// Send encodes msg and hands it to a single connection.
func (h *Hub) Send(conn Conn, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return conn.Send(data)
}

func (h *Hub) MemberCount(roomID string) int {
	r := h.room(roomID)
	if r == nil {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}

// UserConnected reports whether userID still has any open connection in
// roomID.
func (h *Hub) UserConnected(roomID, userID string) bool {
	r := h.room(roomID)
	if r == nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if m.userID == userID {
			return true
		}
	}

	return false
}

func (h *Hub) Stats() (rooms, conns int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms = len(h.rooms)
	for _, r := range h.rooms {
		r.mu.RLock()
		conns += len(r.members)
		r.mu.RUnlock()
	}

	return rooms, conns
}
