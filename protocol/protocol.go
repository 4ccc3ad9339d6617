/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package protocol implements the puzzle session message protocol: the
// per-connection Dispatcher that applies client messages to the board and
// fans out the results, and the Lifecycle that admits connections to rooms
// and tears rooms down.
package protocol

import (
	"context"
	"log/slog"
	"time"

	"github.com/Seednode/puzzlebox/board"
	"github.com/Seednode/puzzlebox/directory"
	"github.com/Seednode/puzzlebox/hub"
)

const defaultStoreTimeout = 3 * time.Second

// Session binds one connection to the room and user it was opened for.
type Session struct {
	RoomID string
	UserID string
	Conn   hub.Conn
}

type Options struct {
	Logger *slog.Logger

	// Now is the clock used for start and chat timestamps. Defaults to
	// time.Now.
	Now func() time.Time

	// StoreTimeout bounds each call to the directory. Defaults to 3s.
	StoreTimeout time.Duration
}

type deps struct {
	hub          *hub.Hub
	board        *board.Store
	dir          directory.Directory
	logger       *slog.Logger
	now          func() time.Time
	storeTimeout time.Duration
}

func newDeps(h *hub.Hub, b *board.Store, dir directory.Directory, opts Options) deps {
	d := deps{
		hub:          h,
		board:        b,
		dir:          dir,
		logger:       opts.Logger,
		now:          opts.Now,
		storeTimeout: opts.StoreTimeout,
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.storeTimeout <= 0 {
		d.storeTimeout = defaultStoreTimeout
	}

	return d
}

func (d *deps) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.storeTimeout)
}
