package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/services"
	live "github.com/trentd187/matchplay-league/internal/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// RequireUpgrade rejects plain HTTP requests on websocket routes with 426.
func RequireUpgrade(c *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
		"error": "websocket upgrade required",
	})
}

// LiveMatch returns the websocket handler for GET /ws/matches/:matchID.
//
// The client gets the current status as soon as it connects, then every status pushed
// through the hub after a score is submitted. Anything the client sends is ignored; the
// read loop only exists to notice the connection closing and to answer pings.
func LiveMatch(svc *services.Service, hub *live.Hub) fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		matchID, err := uuid.Parse(conn.Params("matchID"))
		if err != nil {
			_ = conn.WriteMessage(fiberws.CloseMessage,
				fiberws.FormatCloseMessage(fiberws.ClosePolicyViolation, "invalid matchID"))
			return
		}

		client := live.NewClient(matchID.String())
		hub.Register(client)
		defer hub.Unregister(client)

		// Snapshot first so the client does not wait for the next score.
		// Nothing else writes to conn until writeLoop starts.
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		status, err := svc.MatchStatus(ctx, matchID)
		cancel()
		if err != nil {
			slog.Debug("live snapshot failed", "match_id", matchID, "error", err)
		} else if data, err := json.Marshal(status); err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(fiberws.TextMessage, data); err != nil {
				return
			}
		}

		go readLoop(conn, hub, client)
		writeLoop(conn, client)
	})
}

// readLoop drains the connection until it closes, then unregisters the client,
// which closes client.Send and ends writeLoop.
func readLoop(conn *fiberws.Conn, hub *live.Hub, client *live.Client) {
	defer hub.Unregister(client)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseNormalClosure) {
				slog.Debug("live connection closed", "match_id", client.MatchID, "error", err)
			}
			return
		}
	}
}

// writeLoop forwards hub messages to the connection and keeps it alive with pings.
// The fiber websocket handler must not return while the connection is in use, so this
// runs on the handler's goroutine.
func writeLoop(conn *fiberws.Conn, client *live.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(fiberws.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(fiberws.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(fiberws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
