/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/Seednode/puzzlebox/board"
	"github.com/Seednode/puzzlebox/directory"
	"github.com/Seednode/puzzlebox/hub"
)

// Dispatcher applies one inbound message at a time for a session. It holds
// no per-connection state, so a single Dispatcher serves every connection.
//
// Malformed messages, unknown types and messages missing required fields
// are dropped without a reply.
type Dispatcher struct {
	deps
}

func NewDispatcher(h *hub.Hub, b *board.Store, dir directory.Directory, opts Options) *Dispatcher {
	return &Dispatcher{deps: newDeps(h, b, dir, opts)}
}

// Handle decodes data and applies it on behalf of sess.
func (d *Dispatcher) Handle(ctx context.Context, sess Session, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		d.logger.Debug("dropping malformed message", "room", sess.RoomID, "user", sess.UserID, "error", err)

		return
	}

	switch msg.Type {
	case TypeJoin:
		d.join(sess)
	case TypeSetImage:
		d.setImage(sess, &msg)
	case TypeStartGame:
		d.startGame(sess, &msg)
	case TypeGrab:
		d.grab(sess, &msg)
	case TypeMove:
		d.move(sess, &msg)
	case TypeRelease:
		d.release(sess, &msg)
	case TypeMerge:
		d.merge(sess, &msg)
	case TypeChat:
		d.chat(ctx, sess, &msg)
	default:
		d.logger.Debug("dropping unknown message", "room", sess.RoomID, "user", sess.UserID, "type", msg.Type)
	}
}

func (d *Dispatcher) drop(sess Session, msg *Message, reason string) {
	d.logger.Debug("dropping message", "room", sess.RoomID, "user", sess.UserID, "type", msg.Type, "reason", reason)
}

func (d *Dispatcher) unicast(sess Session, msg any) {
	if err := d.hub.Send(sess.Conn, msg); err != nil {
		d.logger.Warn("unicast failed", "room", sess.RoomID, "user", sess.UserID, "error", err)
	}
}

func (d *Dispatcher) join(sess Session) {
	snap, _ := d.board.Snapshot(sess.RoomID)

	d.unicast(sess, IsHostMessage{
		Type:   TypeIsHost,
		IsHost: snap.Host != "" && snap.Host == sess.UserID,
	})

	d.hub.Broadcast(sess.RoomID, PlayerMessage{
		Type:   TypePlayerJoined,
		UserID: sess.UserID,
		Count:  d.hub.MemberCount(sess.RoomID),
	})

	if snap.Started {
		d.unicast(sess, GameStartedMessage{
			Type:      TypeGameStarted,
			Pieces:    snap.Pieces,
			StartTime: snap.StartTime,
		})
	}

	if snap.Image != "" {
		d.unicast(sess, ImageSetMessage{
			Type:     TypeImageSet,
			ImageURL: snap.Image,
		})
	}
}

func (d *Dispatcher) setImage(sess Session, msg *Message) {
	if msg.ImageURL == nil {
		d.drop(sess, msg, "missing image_url")

		return
	}

	changed, err := d.board.SetImage(sess.RoomID, *msg.ImageURL)
	if err != nil {
		d.logger.Debug("set image on unknown room", "room", sess.RoomID, "user", sess.UserID, "error", err)
	} else if !changed {
		return
	}

	d.hub.Broadcast(sess.RoomID, ImageSetMessage{
		Type:     TypeImageSet,
		ImageURL: *msg.ImageURL,
	})
}

// startGame is accepted from any member, host or not.
func (d *Dispatcher) startGame(sess Session, msg *Message) {
	if msg.Pieces == nil {
		d.drop(sess, msg, "missing pieces")

		return
	}

	startTime := d.now().Unix()

	if err := d.board.StartGame(sess.RoomID, *msg.Pieces, startTime); err != nil {
		d.logger.Debug("start game failed", "room", sess.RoomID, "user", sess.UserID, "error", err)

		return
	}

	d.hub.Broadcast(sess.RoomID, GameStartedMessage{
		Type:      TypeGameStarted,
		Pieces:    d.board.AllPieces(sess.RoomID),
		StartTime: startTime,
	})
}

func (d *Dispatcher) grab(sess Session, msg *Message) {
	if msg.Index == nil {
		d.drop(sess, msg, "missing index")

		return
	}

	if !d.board.LockPiece(sess.RoomID, *msg.Index, sess.UserID) {
		return
	}

	d.hub.Broadcast(sess.RoomID, LockedMessage{
		Type:   TypeLocked,
		Index:  *msg.Index,
		UserID: sess.UserID,
	})
}

// move echoes the transform even when the sender no longer holds the lock;
// clients ignore their own echoes and the board ignores the stale write.
func (d *Dispatcher) move(sess Session, msg *Message) {
	index, x, y, rotation, ok := msg.transform()
	if !ok {
		d.drop(sess, msg, "incomplete transform")

		return
	}

	d.board.UpdatePiece(sess.RoomID, index, x, y, rotation, sess.UserID)

	d.hub.Broadcast(sess.RoomID, MovedMessage{
		Type:     TypeMoved,
		Index:    index,
		X:        x,
		Y:        y,
		Rotation: rotation,
		UserID:   sess.UserID,
	})
}

func (d *Dispatcher) release(sess Session, msg *Message) {
	index, x, y, rotation, ok := msg.transform()
	if !ok {
		d.drop(sess, msg, "incomplete transform")

		return
	}

	d.board.UpdatePiece(sess.RoomID, index, x, y, rotation, sess.UserID)
	d.board.UnlockPiece(sess.RoomID, index, sess.UserID)

	d.hub.Broadcast(sess.RoomID, UnlockedMessage{
		Type:     TypeUnlocked,
		Index:    index,
		X:        x,
		Y:        y,
		Rotation: rotation,
	})
}

func (d *Dispatcher) merge(sess Session, msg *Message) {
	if msg.Piece1Index == nil || msg.Piece2Index == nil {
		d.drop(sess, msg, "missing piece indices")

		return
	}

	if !d.board.MergeGroups(sess.RoomID, *msg.Piece1Index, *msg.Piece2Index) {
		d.logger.Debug("merge references unknown piece", "room", sess.RoomID, "user", sess.UserID,
			"piece1", *msg.Piece1Index, "piece2", *msg.Piece2Index)
	}

	d.hub.Broadcast(sess.RoomID, MergedMessage{
		Type:        TypeMerged,
		Piece1Index: *msg.Piece1Index,
		Piece2Index: *msg.Piece2Index,
	})
}

func (d *Dispatcher) chat(ctx context.Context, sess Session, msg *Message) {
	if msg.Text == nil {
		d.drop(sess, msg, "missing message")

		return
	}

	text := strings.TrimSpace(*msg.Text)
	if text == "" || utf8.RuneCountInString(text) > maxChatLength {
		d.drop(sess, msg, "chat length out of bounds")

		return
	}

	d.hub.Broadcast(sess.RoomID, ChatMessage{
		Type:      TypeChat,
		UserID:    sess.UserID,
		Username:  d.displayName(ctx, sess.UserID),
		Message:   text,
		Timestamp: d.now().UnixMilli(),
	})
}

// displayName falls back to a truncated user id when the directory cannot
// name the user.
func (d *Dispatcher) displayName(ctx context.Context, userID string) string {
	ctx, cancel := d.storeContext(ctx)
	defer cancel()

	name, err := d.dir.DisplayName(ctx, userID)
	if err != nil {
		d.logger.Debug("display name lookup failed", "user", userID, "error", err)
	}
	if err != nil || name == "" {
		return truncateRunes(userID, fallbackNameLen)
	}

	return name
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}
