/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import "github.com/Seednode/puzzlebox/board"

const (
	TypeJoin      = "JOIN"
	TypeSetImage  = "SET_IMAGE"
	TypeStartGame = "START_GAME"
	TypeGrab      = "GRAB"
	TypeMove      = "MOVE"
	TypeRelease   = "RELEASE"
	TypeMerge     = "MERGE"
	TypeChat      = "CHAT"

	TypeIsHost       = "IS_HOST"
	TypePlayerJoined = "PLAYER_JOINED"
	TypeGameStarted  = "GAME_STARTED"
	TypeImageSet     = "IMAGE_SET"
	TypeLocked       = "LOCKED"
	TypeMoved        = "MOVED"
	TypeUnlocked     = "UNLOCKED"
	TypeMerged       = "MERGED"
	TypeRoomClosed   = "ROOM_CLOSED"
	TypePlayerLeft   = "PLAYER_LEFT"
)

const (
	maxChatLength    = 200
	fallbackNameLen  = 8
	roomClosedNotice = "The host has left, so this room has been closed."
)

// Message is any inbound client message. Optional fields are pointers so a
// missing field can be told apart from a zero value.
type Message struct {
	Type        string              `json:"type"`
	Index       *int                `json:"index,omitempty"`
	X           *float64            `json:"x,omitempty"`
	Y           *float64            `json:"y,omitempty"`
	Rotation    *float64            `json:"rotation,omitempty"`
	ImageURL    *string             `json:"image_url,omitempty"`
	Pieces      *[]board.PieceState `json:"pieces,omitempty"`
	Piece1Index *int                `json:"piece1_index,omitempty"`
	Piece2Index *int                `json:"piece2_index,omitempty"`
	Text        *string             `json:"message,omitempty"`
}

// transform reports the full position carried by MOVE and RELEASE.
func (m *Message) transform() (index int, x, y, rotation float64, ok bool) {
	if m.Index == nil || m.X == nil || m.Y == nil || m.Rotation == nil {
		return 0, 0, 0, 0, false
	}

	return *m.Index, *m.X, *m.Y, *m.Rotation, true
}

// Messages sent to clients

type IsHostMessage struct {
	Type   string `json:"type"`
	IsHost bool   `json:"is_host"`
}

type PlayerMessage struct {
	Type   string `json:"type"` // PLAYER_JOINED or PLAYER_LEFT
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

type GameStartedMessage struct {
	Type      string             `json:"type"`
	Pieces    []board.PieceState `json:"pieces"`
	StartTime int64              `json:"start_time"`
}

type ImageSetMessage struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

type LockedMessage struct {
	Type   string `json:"type"`
	Index  int    `json:"index"`
	UserID string `json:"user_id"`
}

type MovedMessage struct {
	Type     string  `json:"type"`
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	UserID   string  `json:"user_id"`
}

type UnlockedMessage struct {
	Type     string  `json:"type"`
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

type MergedMessage struct {
	Type        string `json:"type"`
	Piece1Index int    `json:"piece1_index"`
	Piece2Index int    `json:"piece2_index"`
}

type ChatMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

type RoomClosedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
