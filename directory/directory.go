/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package directory is the persistent record of rooms and users that live
// sessions consult: who hosts a room, what a user is called, and removal of
// a room once its host has left.
package directory

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Directory interface {
	// RoomHost returns the user id recorded as the room's host. A room
	// without a recorded host yields "" and a nil error.
	RoomHost(ctx context.Context, roomID string) (string, error)

	// DeleteRoom removes the room record. Deleting a missing room is not an
	// error.
	DeleteRoom(ctx context.Context, roomID string) error

	DisplayName(ctx context.Context, userID string) (string, error)
}
