/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import "time"

// Touch marks the room as active without changing its state.
func (s *Store) Touch(roomID string) {
	r := s.lookup(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	r.lastActive = s.now()
	r.mu.Unlock()
}

// IdleRooms lists rooms whose last state change happened before cutoff.
func (s *Store) IdleRooms(cutoff time.Time) []string {
	s.mu.RLock()
	rooms := make(map[string]*room, len(s.rooms))
	for id, r := range s.rooms {
		rooms[id] = r
	}
	s.mu.RUnlock()

	var idle []string
	for id, r := range rooms {
		r.mu.Lock()
		last := r.lastActive
		r.mu.Unlock()

		if last.Before(cutoff) {
			idle = append(idle, id)
		}
	}

	return idle
}

// RemoveIfIdle deletes the room only if it is still idle as of cutoff, so a
// connection that re-initialised the room in the meantime keeps it.
func (s *Store) RemoveIfIdle(roomID string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return false
	}

	r.mu.Lock()
	last := r.lastActive
	r.mu.Unlock()

	if !last.Before(cutoff) {
		return false
	}

	delete(s.rooms, roomID)

	return true
}
