package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/game"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

const (
	errNoGame    domain.Error = "no game in progress"
	errSeatTaken domain.Error = "game was resumed on another connection"
)

// Handler runs games against the engine over a websocket.
type Handler struct {
	conns    *ConnectionManager
	sessions *game.SessionManager
	tickets  *auth.Tickets
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler accepts sockets from the allowed origins. Requests without an
// Origin header are not browsers and are let through.
func NewHandler(sessions *game.SessionManager, tickets *auth.Tickets, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		conns:    NewConnectionManager(),
		sessions: sessions,
		tickets:  tickets,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "ws").Logger(),
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}
	h.handleConnection(conn)
}

// connection is the per-socket state. Messages are handled one at a time, so
// it needs no lock.
type connection struct {
	conn   *websocket.Conn
	gameID string
	ctx    context.Context
}

func (h *Handler) handleConnection(conn *websocket.Conn) {
	// cancelled on disconnect, which interrupts a running engine search; the
	// game resumes from Continue when the client comes back
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.conns.Register(conn)
	defer func() {
		h.conns.Release(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := h.conns.Ping(conn); err != nil {
					return
				}
			}
		}
	}()

	c := &connection{conn: conn, ctx: ctx}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("game_id", c.gameID).Msg("client disconnected")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(c, errors.New("invalid message"))
			continue
		}
		h.processMessage(c, msg)
	}
}

func (h *Handler) processMessage(c *connection, msg ClientMessage) {
	switch msg.Type {
	case typeStart:
		h.start(c, msg)
	case typeMove:
		h.move(c, msg.Column)
	case typeResume:
		h.resume(c, msg.Ticket)
	case typeResign:
		h.resign(c)
	default:
		h.sendError(c, errors.New("unknown message type"))
	}
}

func (h *Handler) start(c *connection, msg ClientMessage) {
	difficulty, err := bot.ParseDifficulty(msg.Difficulty)
	if err != nil {
		h.sendError(c, err)
		return
	}

	snap, upd, err := h.sessions.Start(c.ctx, msg.EngineFirst, difficulty)
	if err != nil {
		h.sendError(c, err)
		return
	}

	ticket, err := h.tickets.Issue(snap.GameID, int(snap.Human))
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", snap.GameID).Msg("issuing ticket failed")
		h.sendError(c, errors.New("internal error"))
		return
	}

	h.seat(c, snap.GameID)
	h.send(c, ServerMessage{
		Type:       typeGameStarted,
		GameID:     snap.GameID,
		Ticket:     ticket,
		Board:      snap.Board,
		YourPlayer: int(snap.Human),
		Difficulty: string(snap.Difficulty),
	})
	h.sendUpdate(c, upd)
}

func (h *Handler) move(c *connection, column int) {
	if c.gameID == "" {
		h.sendError(c, errNoGame)
		return
	}
	if !h.conns.IsSeated(c.gameID, c.conn) {
		c.gameID = ""
		h.sendError(c, errSeatTaken)
		return
	}

	upd, err := h.sessions.Play(c.ctx, c.gameID, column)
	h.sendUpdate(c, upd)
	if err != nil {
		h.sendError(c, err)
	}
}

func (h *Handler) resume(c *connection, ticket string) {
	claims, err := h.tickets.Validate(ticket)
	if err != nil {
		h.logger.Debug().Err(err).Msg("rejected ticket")
		h.sendError(c, errors.New("invalid ticket"))
		return
	}

	snap, err := h.sessions.Snapshot(claims.GameID)
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.seat(c, snap.GameID)
	h.send(c, ServerMessage{
		Type:       typeGameStarted,
		GameID:     snap.GameID,
		Ticket:     ticket,
		Board:      snap.Board,
		YourPlayer: claims.Player,
		Difficulty: string(snap.Difficulty),
	})
	h.logger.Info().Str("game_id", snap.GameID).Msg("game resumed")

	if snap.Status.IsTerminal() {
		h.sendGameOver(c, snap.Status, "")
		return
	}

	upd, err := h.sessions.Continue(c.ctx, snap.GameID)
	h.sendUpdate(c, upd)
	if err != nil {
		h.sendError(c, err)
	}
}

func (h *Handler) resign(c *connection) {
	if c.gameID == "" {
		h.sendError(c, errNoGame)
		return
	}

	snap, err := h.sessions.Snapshot(c.gameID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := h.sessions.Abandon(c.gameID); err != nil {
		h.sendError(c, err)
		return
	}

	status := domain.FirstPlayerWins
	if snap.Human == domain.Player1 {
		status = domain.SecondPlayerWins
	}
	h.sendGameOver(c, status, domain.ReasonAbandoned)
	c.gameID = ""
}

func (h *Handler) seat(c *connection, gameID string) {
	h.conns.Seat(gameID, c.conn)
	c.gameID = gameID
}

// sendUpdate reports the moves in upd, then game_over if the game ended.
func (h *Handler) sendUpdate(c *connection, upd game.Update) {
	if upd.Human != nil {
		h.sendMove(c, *upd.Human, upd.Board)
	}
	if e := upd.Engine; e != nil {
		h.sendMove(c, e.Move, upd.Board)
		elapsed := e.Elapsed.Milliseconds()
		score := e.Score
		column := e.Column
		h.send(c, ServerMessage{
			Type:      typeEngineMove,
			Column:    &column,
			Score:     &score,
			Nodes:     e.Nodes,
			ElapsedMs: &elapsed,
			Depth:     e.Depth,
		})
	}
	if (upd.Human != nil || upd.Engine != nil) && upd.Status.IsTerminal() {
		h.sendGameOver(c, upd.Status, "")
	}
}

func (h *Handler) sendMove(c *connection, m game.Move, board [][]int) {
	column, row := m.Column, m.Row
	h.send(c, ServerMessage{
		Type:   typeMoveMade,
		Column: &column,
		Row:    &row,
		Player: int(m.Player),
		Board:  board,
	})
}

func (h *Handler) sendGameOver(c *connection, status domain.GameStatus, reason string) {
	winner := int(status.Winner())
	h.send(c, ServerMessage{
		Type:   typeGameOver,
		GameID: c.gameID,
		Status: status.String(),
		Winner: &winner,
		Reason: reason,
	})
}

func (h *Handler) sendError(c *connection, err error) {
	h.send(c, ServerMessage{Type: typeError, Message: err.Error()})
}

func (h *Handler) send(c *connection, msg ServerMessage) {
	if err := h.conns.Send(c.conn, msg); err != nil {
		h.logger.Debug().Err(err).Str("type", msg.Type).Msg("write failed")
	}
}
