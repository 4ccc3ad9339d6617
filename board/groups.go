/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import "slices"

// MergeGroups snaps the groups of pieces a and b together. The union is
// computed from the live member lists and handed to every member, so any
// piece's group is always its whole equivalence class.
//
// It reports false, and changes nothing, when either piece is unknown.
func (s *Store) MergeGroups(roomID string, a, b int) bool {
	r := s.lookup(roomID)
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pa, ok := r.pieces[a]
	if !ok {
		return false
	}
	pb, ok := r.pieces[b]
	if !ok {
		return false
	}

	if slices.Contains(pa.group, b) {
		return true
	}

	union := make([]int, 0, len(pa.group)+len(pb.group))
	union = append(union, pa.group...)
	union = append(union, pb.group...)
	slices.Sort(union)
	union = slices.Compact(union)

	for _, member := range union {
		r.pieces[member].group = union
	}
	r.lastActive = s.now()

	return true
}
