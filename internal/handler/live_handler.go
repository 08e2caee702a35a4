package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/marketdev/internal/editor"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/metrics"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin 仅允许同源的编辑器页面建立连接
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
}

// liveMessage is sent by the editor over the websocket. Width is the
// preview pane's clientWidth in pixels.
type liveMessage struct {
	Type  string        `json:"type"`
	Draft *editor.Draft `json:"draft,omitempty"`
	Range editor.Range  `json:"range"`
	Text  string        `json:"text,omitempty"`
	Width float64       `json:"width,omitempty"`
}

// liveClient owns one websocket connection and its editor session.
type liveClient struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	session *editor.Session
	logger  *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// liveRegistry tracks connected clients so they can be closed on shutdown.
type liveRegistry struct {
	mu      sync.Mutex
	clients map[string]*liveClient
}

func newLiveRegistry() *liveRegistry {
	return &liveRegistry{clients: make(map[string]*liveClient)}
}

func (r *liveRegistry) add(c *liveClient) {
	r.mu.Lock()
	r.clients[c.id] = c
	r.mu.Unlock()
	metrics.SessionOpened()
}

func (r *liveRegistry) remove(c *liveClient) {
	r.mu.Lock()
	_, ok := r.clients[c.id]
	delete(r.clients, c.id)
	r.mu.Unlock()
	if ok {
		metrics.SessionClosed()
	}
}

func (r *liveRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *liveRegistry) closeAll() {
	r.mu.Lock()
	clients := make([]*liveClient, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

// LiveEditor upgrades to a websocket and attaches a fresh editor session to
// the page. Every connection gets its own session; nothing is shared.
func (a *API) LiveEditor(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	page, err := a.pages.Get(id)
	if err != nil {
		a.writeServiceError(c, err, "failed to load page")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.FromContext(c, a.logger).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &liveClient{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: a.logger.With(zap.Uint("page_id", page.ID)),
	}
	client.session = editor.NewSession(context.Background(), editor.Draft{
		Title:   page.Title,
		Slug:    page.Slug,
		Content: page.Content,
		Draft:   page.Draft,
	}, editor.Options{
		PageID:       page.ID,
		Saver:        editor.SaverFunc(a.savePage),
		Preview:      a.previewFor(page.SiteID, page.ID),
		Emit:         client.emit,
		SaveDelay:    a.opts.SaveDelay,
		PreviewDelay: a.opts.PreviewDelay,
		Logger:       a.logger,
	})

	a.live.add(client)
	go client.writePump()
	client.readPump()
	a.live.remove(client)
}

// emit queues an event for the browser, dropping it if the client is gone or
// too slow to keep up.
func (c *liveClient) emit(ev editor.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("encode live event", zap.Error(err))
		return
	}
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		c.logger.Warn("live client send buffer full; dropping event", zap.String("type", string(ev.Type)))
	}
}

func (c *liveClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.session.Close()
		_ = c.conn.Close()
	})
}

func (c *liveClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("live editor disconnected", zap.Error(err))
			}
			return
		}

		var msg liveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.emit(editor.Event{Type: editor.EventSaveFailed, Error: "malformed message", Rejected: true})
			continue
		}
		c.handle(msg)
	}
}

func (c *liveClient) handle(msg liveMessage) {
	var err error
	switch msg.Type {
	case "change":
		if msg.Draft == nil {
			return
		}
		if msg.Width > 0 {
			c.session.SetWidth(msg.Width)
		}
		err = c.session.Change(*msg.Draft)
	case "resize":
		err = c.session.Resize(msg.Width)
	case "save":
		if _, err = c.session.SaveNow(); !errors.Is(err, editor.ErrSessionClosed) {
			// 校验失败已经通过 invalid 事件回传
			err = nil
		}
	case "insert":
		err = c.session.Insert(msg.Range, msg.Text)
	default:
		c.logger.Debug("ignoring live message", zap.String("type", msg.Type))
	}
	if err != nil {
		c.logger.Warn("live message failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
