package gateway

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"agentmux/internal/ptysession"
)

// Lookup resolves a session ID to a running session, for the /ws handler.
type Lookup func(sessionID string) (*ptysession.Session, bool)

// Server implements the §6 WebSocket gateway.
type Server struct {
	Lookup Lookup

	// DebugOutput gates forwarding raw pre-batch byte chunks to clients as
	// Output messages. Off by default per Open Question (b).
	DebugOutput bool

	upgrader websocket.Upgrader
}

// NewServer returns a gateway Server resolving sessions via lookup.
func NewServer(lookup Lookup, debugOutput bool) *Server {
	return &Server{
		Lookup:      lookup,
		DebugOutput: debugOutput,
		upgrader:    websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}
}

// Handler returns an http.Handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, ok := s.Lookup(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: upgrade failed for session %s: %v", id, err)
		return
	}
	go s.serveConn(conn, sess)
}

// serveConn drives one client connection: a write pump fed by the
// session's hub subscription and a read pump translating client frames
// into input/control messages, per §6.
func (s *Server) serveConn(conn *websocket.Conn, sess *ptysession.Session) {
	defer conn.Close()

	sub := sess.Subscribe()
	defer sess.Unsubscribe(sub)

	sizes, unsubSize := sess.SubscribeSize()
	defer unsubSize()

	out := make(chan ServerMessage, 64)
	done := make(chan struct{})
	go s.writePump(conn, out, done)

	clientID := conn.RemoteAddr().String()

	out <- ServerMessage{Type: TypeOutput, Data: OutputData{}}
	if kf, err := sess.RequestKeyframe(); err == nil {
		out <- ServerMessage{Type: TypeGridUpdate, Data: kf}
		out <- sizeMessage(kf.Size)
	}

	go func() {
		for {
			select {
			case u, ok := <-sub.Updates:
				if !ok {
					close(out)
					return
				}
				out <- gridUpdateMessage(u)
			case chunk, ok := <-sub.Raw:
				if !ok {
					continue
				}
				if s.DebugOutput {
					out <- outputMessage(chunk)
				}
			case size, ok := <-sizes:
				if !ok {
					continue
				}
				out <- sizeMessage(size)
			case <-sub.Lagged:
				if kf, err := sess.RequestKeyframe(); err == nil {
					out <- ServerMessage{Type: TypeGridUpdate, Data: kf}
				}
			case <-done:
				return
			}
		}
	}()

	s.readPump(conn, sess, clientID, out)
	close(done)
}

func (s *Server) writePump(conn *websocket.Conn, out <-chan ServerMessage, done <-chan struct{}) {
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) readPump(conn *websocket.Conn, sess *ptysession.Session, clientID string, out chan<- ServerMessage) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := parseClientMessage(raw)
		if err != nil {
			log.Printf("gateway: malformed message from %s: %v", clientID, err)
			continue
		}
		s.dispatch(msg, sess, clientID, out)
	}
}

func (s *Server) dispatch(msg ClientMessage, sess *ptysession.Session, clientID string, out chan<- ServerMessage) {
	switch msg.Type {
	case TypeKey:
		var data KeyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("gateway: malformed Key message from %s: %v", clientID, err)
			return
		}
		sess.InputTx <- ptysession.InputMessage{
			ClientID: clientID,
			Key:      &ptysession.KeyEvent{Code: data.Code, Modifiers: data.Modifiers},
		}
	case TypeResize:
		var data ResizeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("gateway: malformed Resize message from %s: %v", clientID, err)
			return
		}
		if err := sess.Resize(ptysession.GridSize{Rows: data.Rows, Cols: data.Cols}); err != nil {
			out <- errorMessage(err.Error())
		}
	case TypeRequestKeyframe:
		kf, err := sess.RequestKeyframe()
		if err != nil {
			out <- errorMessage(err.Error())
			return
		}
		out <- ServerMessage{Type: TypeGridUpdate, Data: kf}
	default:
		log.Printf("gateway: unknown message type %q from %s", msg.Type, clientID)
	}
}
