/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import (
	"context"
	"time"

	"github.com/Seednode/puzzlebox/board"
	"github.com/Seednode/puzzlebox/directory"
	"github.com/Seednode/puzzlebox/hub"
)

// Lifecycle admits connections to rooms and tears rooms down. Connect and
// Disconnect on the same room run one at a time, so a guest admitted while
// the host is leaving either sees ROOM_CLOSED or finds the room gone.
type Lifecycle struct {
	deps

	locks *roomLocks
}

func NewLifecycle(h *hub.Hub, b *board.Store, dir directory.Directory, opts Options) *Lifecycle {
	return &Lifecycle{
		deps:  newDeps(h, b, dir, opts),
		locks: newRoomLocks(),
	}
}

// Connect resolves the room's host from the directory, creating the room on
// first use, and registers the session's connection. When the directory
// cannot answer, the connecting user is offered as host; an already recorded
// host is never replaced.
func (l *Lifecycle) Connect(ctx context.Context, sess Session) {
	unlock := l.locks.lock(sess.RoomID)
	defer unlock()

	host := l.resolveHost(ctx, sess)

	l.board.InitRoom(sess.RoomID, host)
	l.hub.Register(sess.RoomID, sess.Conn, sess.UserID)
}

func (l *Lifecycle) resolveHost(ctx context.Context, sess Session) string {
	ctx, cancel := l.storeContext(ctx)
	defer cancel()

	host, err := l.dir.RoomHost(ctx, sess.RoomID)
	if err != nil {
		l.logger.Debug("room host lookup failed, using connecting user", "room", sess.RoomID, "user", sess.UserID, "error", err)

		return sess.UserID
	}

	return host
}

// Disconnect unregisters the session's connection. When the host leaves, the
// room is closed for everyone: remaining members are told, the directory
// record is deleted, and the board forgets the room. When a guest leaves for
// the last time, their locks are released and announced, and the room's idle
// clock restarts.
func (l *Lifecycle) Disconnect(ctx context.Context, sess Session) {
	unlock := l.locks.lock(sess.RoomID)
	defer unlock()

	l.hub.Unregister(sess.RoomID, sess.Conn, sess.UserID)

	if host := l.board.Host(sess.RoomID); host != "" && host == sess.UserID {
		l.closeRoom(ctx, sess)

		return
	}

	if !l.hub.UserConnected(sess.RoomID, sess.UserID) {
		for _, p := range l.board.ReleaseUser(sess.RoomID, sess.UserID) {
			l.hub.Broadcast(sess.RoomID, UnlockedMessage{
				Type:     TypeUnlocked,
				Index:    p.Index,
				X:        p.X,
				Y:        p.Y,
				Rotation: p.Rotation,
			})
		}
	}

	l.board.Touch(sess.RoomID)

	l.hub.Broadcast(sess.RoomID, PlayerMessage{
		Type:   TypePlayerLeft,
		UserID: sess.UserID,
		Count:  l.hub.MemberCount(sess.RoomID),
	})
}

func (l *Lifecycle) closeRoom(ctx context.Context, sess Session) {
	l.logger.Info("host left, closing room", "room", sess.RoomID, "host", sess.UserID)

	l.hub.Broadcast(sess.RoomID, RoomClosedMessage{
		Type:    TypeRoomClosed,
		Message: roomClosedNotice,
	})

	dctx, cancel := l.storeContext(ctx)
	defer cancel()

	if err := l.dir.DeleteRoom(dctx, sess.RoomID); err != nil {
		l.logger.Warn("failed to delete room record", "room", sess.RoomID, "error", err)
	}

	l.board.CleanupRoom(sess.RoomID)
}

// Reap evicts rooms that have no live connections and have not changed since
// cutoff. The directory record is kept. It returns the number of rooms
// evicted.
func (l *Lifecycle) Reap(cutoff time.Time) int {
	evicted := 0

	for _, roomID := range l.board.IdleRooms(cutoff) {
		if l.evictIfIdle(roomID, cutoff) {
			l.logger.Debug("evicted idle room", "room", roomID)
			evicted++
		}
	}

	return evicted
}

func (l *Lifecycle) evictIfIdle(roomID string, cutoff time.Time) bool {
	unlock := l.locks.lock(roomID)
	defer unlock()

	if l.hub.MemberCount(roomID) > 0 {
		return false
	}

	return l.board.RemoveIfIdle(roomID, cutoff)
}

// RunReaper calls Reap every timeout/2 until ctx is done. A non-positive
// timeout disables reaping.
func (l *Lifecycle) RunReaper(ctx context.Context, timeout time.Duration) {
	if timeout <= 0 {
		return
	}

	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Reap(l.now().Add(-timeout)); n > 0 {
				l.logger.Info("reaped idle rooms", "count", n)
			}
		}
	}
}
