/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package board holds the live state of every puzzle room: piece transforms,
// lock ownership, snapped groups, and the handful of per-room attributes
// (host, image, start time) the session protocol needs.
//
// Each room is guarded by its own mutex, so every exported operation is a
// single atomic step with respect to other operations on the same room, and
// rooms never wait on each other.
package board

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var ErrRoomNotFound = errors.New("room not found")

// PieceState is the wire shape of a piece: what START_GAME carries and what
// late joiners receive.
type PieceState struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Piece is a point-in-time copy of a piece, including its group members
// (sorted, always containing Index) and current lock owner ("" when free).
type Piece struct {
	PieceState
	Group    []int
	LockedBy string
}

// Snapshot is everything a joining client needs, read under one lock.
type Snapshot struct {
	Host      string
	Started   bool
	StartTime int64
	Image     string
	Pieces    []PieceState
}

type piece struct {
	state    PieceState
	group    []int // shared between members, replaced (never mutated) on merge
	lockedBy string
}

type room struct {
	mu sync.Mutex

	pieces       map[int]*piece
	started      bool
	startTime    int64
	hasStartTime bool
	image        string
	host         string
	lastActive   time.Time
}

type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room

	now func() time.Time
}

func New() *Store {
	return &Store{
		rooms: make(map[string]*room),
		now:   time.Now,
	}
}

func (s *Store) lookup(roomID string) *room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rooms[roomID]
}

// InitRoom creates the room if it does not exist yet. A non-empty hostID is
// only recorded while the room has no host; an existing host is kept.
func (s *Store) InitRoom(roomID, hostID string) {
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	if !ok {
		r = &room{pieces: make(map[int]*piece)}
		s.rooms[roomID] = r
	}
	s.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if hostID != "" && r.host == "" {
		r.host = hostID
	}
	r.lastActive = s.now()
}

// SetImage records url as the room's reference image and reports whether it
// changed. Setting the current value again is a no-op that returns false.
func (s *Store) SetImage(roomID, url string) (bool, error) {
	r := s.lookup(roomID)
	if r == nil {
		return false, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.image == url {
		return false, nil
	}
	r.image = url
	r.lastActive = s.now()

	return true, nil
}

func (s *Store) Image(roomID string) (string, bool) {
	r := s.lookup(roomID)
	if r == nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.image, r.image != ""
}

// StartGame replaces every piece in the room with the supplied set, each in
// its own group and unlocked. Calling it again resets the board.
func (s *Store) StartGame(roomID string, pieces []PieceState, startTime int64) error {
	r := s.lookup(roomID)
	if r == nil {
		return ErrRoomNotFound
	}

	fresh := make(map[int]*piece, len(pieces))
	for _, p := range pieces {
		fresh[p.Index] = &piece{
			state: p,
			group: []int{p.Index},
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pieces = fresh
	r.started = true
	r.startTime = startTime
	r.hasStartTime = true
	r.lastActive = s.now()

	return nil
}

func (s *Store) Started(roomID string) bool {
	r := s.lookup(roomID)
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.started
}

// AllPieces returns every piece ordered by index. The result is never nil.
func (s *Store) AllPieces(roomID string) []PieceState {
	r := s.lookup(roomID)
	if r == nil {
		return []PieceState{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sortedPiecesLocked()
}

func (r *room) sortedPiecesLocked() []PieceState {
	out := make([]PieceState, 0, len(r.pieces))
	for _, p := range r.pieces {
		out = append(out, p.state)
	}
	slices.SortFunc(out, func(a, b PieceState) int {
		return a.Index - b.Index
	})

	return out
}

func (s *Store) Piece(roomID string, index int) (Piece, bool) {
	r := s.lookup(roomID)
	if r == nil {
		return Piece{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pieces[index]
	if !ok {
		return Piece{}, false
	}

	return Piece{
		PieceState: p.state,
		Group:      slices.Clone(p.group),
		LockedBy:   p.lockedBy,
	}, true
}

func (s *Store) StartTime(roomID string) (int64, bool) {
	r := s.lookup(roomID)
	if r == nil {
		return 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.startTime, r.hasStartTime
}

func (s *Store) Host(roomID string) string {
	r := s.lookup(roomID)
	if r == nil {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.host
}

// Snapshot reads the join-time view of a room atomically.
func (s *Store) Snapshot(roomID string) (Snapshot, bool) {
	r := s.lookup(roomID)
	if r == nil {
		return Snapshot{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Host:      r.host,
		Started:   r.started,
		StartTime: r.startTime,
		Image:     r.image,
		Pieces:    r.sortedPiecesLocked(),
	}, true
}

// CleanupRoom forgets everything about the room.
func (s *Store) CleanupRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
}

// Len reports how many rooms are currently held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
