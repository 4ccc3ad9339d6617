/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import "slices"

// LockPiece claims the piece at index, and every piece snapped to it, for
// userID. It fails without waiting when the piece does not exist or any
// member of its group is held by someone else. Re-locking a group the user
// already holds succeeds.
func (s *Store) LockPiece(roomID string, index int, userID string) bool {
	if userID == "" {
		return false
	}

	r := s.lookup(roomID)
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pieces[index]
	if !ok {
		return false
	}

	for _, member := range p.group {
		if owner := r.pieces[member].lockedBy; owner != "" && owner != userID {
			return false
		}
	}

	for _, member := range p.group {
		r.pieces[member].lockedBy = userID
	}
	r.lastActive = s.now()

	return true
}

// UnlockPiece releases the piece's group if userID holds the piece. Members
// held by anyone else are left alone.
func (s *Store) UnlockPiece(roomID string, index int, userID string) {
	r := s.lookup(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pieces[index]
	if !ok || userID == "" || p.lockedBy != userID {
		return
	}

	p.lockedBy = ""
	for _, member := range p.group {
		if m := r.pieces[member]; m.lockedBy == userID {
			m.lockedBy = ""
		}
	}
	r.lastActive = s.now()
}

// UpdatePiece applies a transform only when userID currently holds the
// piece, and reports whether it did. Updates from anyone else are dropped
// so reordered or stale messages cannot move a piece out from under its
// owner.
func (s *Store) UpdatePiece(roomID string, index int, x, y, rotation float64, userID string) bool {
	r := s.lookup(roomID)
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pieces[index]
	if !ok || userID == "" || p.lockedBy != userID {
		return false
	}

	p.state.X = x
	p.state.Y = y
	p.state.Rotation = rotation
	r.lastActive = s.now()

	return true
}

// ReleaseUser drops every lock held by userID in the room and returns the
// released pieces in index order.
func (s *Store) ReleaseUser(roomID, userID string) []PieceState {
	if userID == "" {
		return nil
	}

	r := s.lookup(roomID)
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var released []PieceState
	for _, p := range r.pieces {
		if p.lockedBy == userID {
			p.lockedBy = ""
			released = append(released, p.state)
		}
	}
	slices.SortFunc(released, func(a, b PieceState) int {
		return a.Index - b.Index
	})

	return released
}
