/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/puzzlebox/board"
	"github.com/Seednode/puzzlebox/directory"
	"github.com/Seednode/puzzlebox/hub"
	"github.com/Seednode/puzzlebox/protocol"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// serveSession upgrades to a websocket bound to (:roomid, :userid) and runs
// the session until the client goes away.
func serveSession(cfg *Config, life *protocol.Lifecycle, disp *protocol.Dispatcher, logger *slog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := ps.ByName("roomid")
		userID := ps.ByName("userid")
		if roomID == "" || userID == "" {
			http.Error(w, "missing room or user id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade failed", "room", roomID, "user", userID, "error", err)
			return
		}

		c := newClient(uuid.NewString(), conn)
		sess := protocol.Session{
			RoomID: roomID,
			UserID: userID,
			Conn:   c,
		}

		ctx := context.WithoutCancel(r.Context())

		startTime := time.Now()

		life.Connect(ctx, sess)
		logf(cfg, "ROOMS: %s joined room %s from %s", userID, roomID, realIP(r))

		go c.writePump()
		c.readPump(ctx, cfg, sess, disp, logger)

		_ = c.Close()
		life.Disconnect(ctx, sess)

		logf(cfg, "ROOMS: %s left room %s after %s", userID, roomID, time.Since(startTime).Round(time.Second))
	}
}

// qrHandler renders a PNG QR code pointing at the room URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerPuzzle sets up:
//   - $path/:roomid/ws/:userid → websocket session for that user in that room
//   - /ws$path/:roomid/:userid → same session, at the path existing clients dial
//   - $path/:roomid/qr         → PNG QR code for the room URL
//
// It returns the room lifecycle so the caller can run its reaper.
func registerPuzzle(cfg *Config, path string, mux *httprouter.Router, h *hub.Hub, b *board.Store, dir directory.Directory, logger *slog.Logger) *protocol.Lifecycle {
	opts := protocol.Options{
		Logger:       logger,
		StoreTimeout: cfg.storeTimeout,
	}

	life := protocol.NewLifecycle(h, b, dir, opts)
	disp := protocol.NewDispatcher(h, b, dir, opts)

	session := serveSession(cfg, life, disp, logger)
	mux.GET(cfg.prefix+path+"/:roomid/ws/:userid", session)
	mux.GET(cfg.prefix+"/ws"+path+"/:roomid/:userid", session)

	mux.GET(cfg.prefix+path+"/:roomid/qr", qrHandler)

	return life
}
