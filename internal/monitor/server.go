// Package monitor implements the shell-facing HTTP+WebSocket surface:
// a JSON enqueue/list/clear/execute API, a WebSocket stream of engine
// state transitions, and a Prometheus /metrics endpoint.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airgapwing/hidinject/internal/core/domain"
	"github.com/airgapwing/hidinject/internal/lifecycle"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// transitionEvent is the JSON shape broadcast to every connected /ws
// client on every Succeeded/Failed transition.
type transitionEvent struct {
	State       string `json:"state"`
	TaskKind    string `json:"task_kind"`
	Summary     string `json:"summary"`
	Succeeded   bool   `json:"succeeded"`
	Retransmits int    `json:"retransmits"`
}

// Server exposes a Handle over HTTP. It owns the set of live WebSocket
// clients and fans every engine transition out to them.
type Server struct {
	addr   string
	handle *lifecycle.Handle

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	srv *http.Server
}

// NewServer builds a Server bound to handle, listening on addr. It
// registers itself as an observer on handle's engine immediately.
func NewServer(addr string, handle *lifecycle.Handle) *Server {
	s := &Server{
		addr:    addr,
		handle:  handle,
		clients: make(map[*websocket.Conn]bool),
	}
	handle.Engine().AddObserver(s.broadcastTransition)
	return s
}

// Run starts the HTTP server and blocks until ctx is canceled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/api/list", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/enqueue/string", s.handleEnqueueString).Methods(http.MethodPost)
	r.HandleFunc("/api/enqueue/press", s.handleEnqueuePress).Methods(http.MethodPost)
	r.HandleFunc("/api/enqueue/delay", s.handleEnqueueDelay).Methods(http.MethodPost)
	r.HandleFunc("/api/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/api/execute", s.handleExecute).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{Addr: s.addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("hidinject: monitor: shutdown error: %v", err)
		}
	}()

	log.Printf("hidinject: monitor: listening on %s", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hidinject: monitor: ws upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer conn.Close()
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcastTransition is registered as an engine.TransitionHook
// observer; it must not block or call back into the engine.
func (s *Server) broadcastTransition(final domain.EngineState, task domain.Task, retransmits int) {
	evt := transitionEvent{
		State:       final.String(),
		TaskKind:    task.Kind.String(),
		Summary:     task.String(),
		Succeeded:   final == domain.Succeeded,
		Retransmits: retransmits,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("hidinject: monitor: marshal transition event: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// handleList serializes the same script-listing walk the text sink gets
// as a JSON array, for remote observability.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var lines []string
	s.handle.List(func(line string) { lines = append(lines, line) })
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"lines": lines})
}

type enqueueStringRequest struct {
	Lang domain.Lang `json:"lang"`
	Text string      `json:"text"`
}

func (s *Server) handleEnqueueString(w http.ResponseWriter, r *http.Request) {
	var req enqueueStringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.handle.EnqueueString(r.Context(), req.Lang, req.Text); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type enqueuePressRequest struct {
	Lang  domain.Lang `json:"lang"`
	Combo string      `json:"combo"`
}

func (s *Server) handleEnqueuePress(w http.ResponseWriter, r *http.Request) {
	var req enqueuePressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.handle.EnqueuePress(r.Context(), req.Lang, req.Combo); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type enqueueDelayRequest struct {
	MS uint32 `json:"ms"`
}

func (s *Server) handleEnqueueDelay(w http.ResponseWriter, r *http.Request) {
	var req enqueueDelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.handle.EnqueueDelay(r.Context(), req.MS); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.handle.Clear()
	w.WriteHeader(http.StatusOK)
}

type executeRequest struct {
	On bool `json:"on"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.handle.SetExecute(req.On)
	w.WriteHeader(http.StatusOK)
}
