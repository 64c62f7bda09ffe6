package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/samansohani78/private-poker/internal/game"
	"github.com/samansohani78/private-poker/internal/table"
)

const commandTimeout = 10 * time.Second

// Server bridges websocket clients to table handles. A client attaches to
// one table, optionally as a named user, then plays through commands while
// state updates stream back after every change.
type Server struct {
	manager  *table.Manager
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewServer(manager *table.Manager, log zerolog.Logger) *Server {
	return &Server{
		manager:  manager,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log,
	}
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}

	userID string
	handle *table.Handle
	watch  *table.Watch
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{
		conn:   conn,
		send:   make(chan []byte, 16),
		closed: make(chan struct{}),
	}
	go c.writeLoop()
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		close(c.closed)
		if c.handle != nil && c.watch != nil {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			c.handle.Unwatch(ctx, c.watch.ID)
			cancel()
		}
		_ = c.conn.Close()
		safeClose(c.send)
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			c.result("", errInvalid)
			continue
		}
		s.dispatch(c, cmd)
	}
}

var errInvalid = &wsError{"invalid_message"}
var errNotAttached = &wsError{"not_attached"}
var errAlreadyAttached = &wsError{"already_attached"}
var errNoUser = &wsError{"user_required"}

type wsError struct{ code string }

func (e *wsError) Error() string { return e.code }

func (s *Server) dispatch(c *client, cmd Command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if cmd.Type == "attach" {
		c.result(cmd.Type, s.attach(ctx, c, cmd))
		return
	}
	if c.handle == nil {
		c.result(cmd.Type, errNotAttached)
		return
	}
	switch cmd.Type {
	case "join":
		if c.userID == "" {
			c.result(cmd.Type, errNoUser)
			return
		}
		c.result(cmd.Type, c.handle.Join(ctx, c.userID, cmd.BuyIn))
	case "leave":
		if c.userID == "" {
			c.result(cmd.Type, errNoUser)
			return
		}
		c.result(cmd.Type, c.handle.Leave(ctx, c.userID))
	case "start":
		c.result(cmd.Type, c.handle.Start(ctx))
	case "action":
		if c.userID == "" {
			c.result(cmd.Type, errNoUser)
			return
		}
		act := game.Action{Type: game.ActionType(cmd.Action), Amount: cmd.Amount}
		c.result(cmd.Type, c.handle.Act(ctx, c.userID, act))
	case "view":
		c.pushState(ctx)
	default:
		c.result(cmd.Type, errInvalid)
	}
}

// attach binds the connection to a table. An empty user_id attaches as a
// spectator: views only, hole cards hidden.
func (s *Server) attach(ctx context.Context, c *client, cmd Command) error {
	if c.handle != nil {
		return errAlreadyAttached
	}
	h, ok := s.manager.Get(cmd.TableID)
	if !ok {
		return table.ErrTableNotFound
	}
	watch, err := h.Watch(ctx)
	if err != nil {
		return err
	}
	c.handle = h
	c.watch = watch
	c.userID = cmd.UserID
	s.log.Debug().Str("table_id", cmd.TableID).Str("user_id", cmd.UserID).Msg("client attached")

	go c.watchLoop(h, watch)
	c.pushState(ctx)
	return nil
}

// watchLoop streams a fresh view to the client after every table state
// change until either side goes away.
func (c *client) watchLoop(h *table.Handle, watch *table.Watch) {
	for {
		select {
		case <-watch.C:
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			c.pushState(ctx)
			cancel()
		case <-h.Done():
			msg, _ := json.Marshal(TableClosed{Type: "table_closed", ProtocolVersion: ProtocolVersion, TableID: h.ID()})
			safeSend(c.send, msg)
			return
		case <-c.closed:
			return
		}
	}
}

func (c *client) pushState(ctx context.Context) {
	view, err := c.handle.View(ctx, c.userID)
	if err != nil {
		return
	}
	msg, _ := json.Marshal(StateUpdate{Type: "state", ProtocolVersion: ProtocolVersion, View: view})
	safeSend(c.send, msg)
}

func (c *client) result(req string, err error) {
	res := Result{Type: "result", ProtocolVersion: ProtocolVersion, Req: req, Ok: err == nil}
	if err != nil {
		res.Error = err.Error()
	}
	msg, _ := json.Marshal(res)
	safeSend(c.send, msg)
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}
