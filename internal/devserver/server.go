// Package devserver serves the UI to an ordinary browser and carries IPC
// over a websocket, so the shell can run without a native window.
package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/tuffi/internal/proto"
)

var log = logging.Logger("devserver")

// ErrNoClients is returned by EvaluateScript when no browser is connected.
var ErrNoClients = errors.New("no browser connected")

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 65536,
	// The page is served by this same process on localhost.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Receiver consumes raw messages posted by the page.
type Receiver interface {
	Receive(raw string) proto.Response
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(js string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(js))
}

// Server is an HTTP server for the asset handler plus the /ipc websocket. It
// implements shell.Surface and shell.Window.
type Server struct {
	addr     string
	assets   http.Handler
	receiver Receiver

	mu      sync.RWMutex
	clients map[string]*client

	srv *http.Server
	ln  net.Listener
}

// New creates a server; call Start to listen.
func New(addr string, assets http.Handler, receiver Receiver) *Server {
	return &Server{
		addr:     addr,
		assets:   assets,
		receiver: receiver,
		clients:  make(map[string]*client),
	}
}

// Handler returns the HTTP routes without listening.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ipc", s.handleIPC)
	mux.Handle("/", s.assets)
	return mux
}

// Start listens on the configured address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("serve: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		s.closeClients()
	}()

	log.Infof("dev server listening on %s", s.URL())
	return nil
}

// URL returns the address the server listens on.
func (s *Server) URL() string {
	if s.ln == nil {
		return "http://" + s.addr
	}
	return "http://" + s.ln.Addr().String()
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// EvaluateScript sends js to every connected browser.
func (s *Server) EvaluateScript(js string) error {
	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	if len(targets) == 0 {
		return ErrNoClients
	}

	var errs []error
	for _, c := range targets {
		if err := c.send(js); err != nil {
			errs = append(errs, err)
			s.drop(c)
		}
	}
	return errors.Join(errs...)
}

// RequestRedraw is a no-op; browsers repaint on their own.
func (s *Server) RequestRedraw() {}

func (s *Server) handleIPC(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %v", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	log.Infof("browser %s connected", c.id)

	defer s.drop(c)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		go s.receiver.Receive(string(data))
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()
	if ok {
		_ = c.conn.Close()
		log.Infof("browser %s disconnected", c.id)
	}
}

func (s *Server) closeClients() {
	s.mu.RLock()
	all := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		all = append(all, c)
	}
	s.mu.RUnlock()
	for _, c := range all {
		s.drop(c)
	}
}
