package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/deckchat/internal/session"
	"github.com/gorilla/websocket"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatTurn struct {
	User      session.Message `json:"user"`
	Assistant session.Message `json:"assistant"`
}

// turn runs one chat action: the user message and the reply, error replies
// included, are both appended to the transcript.
func (s *Server) turn(ctx context.Context, message string) chatTurn {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	credential, _ := s.session.Credential()
	user := s.session.Append(session.RoleUser, message)
	reply := s.chat.Respond(ctx, credential, message, s.session.Document())
	return chatTurn{
		User:      user,
		Assistant: s.session.Append(session.RoleAssistant, reply),
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	t := s.turn(r.Context(), req.Message)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	msgs := s.session.Messages()
	if r.URL.Query().Get("format") == "html" {
		out, err := session.RenderHTML(msgs)
		if err != nil {
			jsonError(w, "failed to render transcript: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(out))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"messages": msgs})
}

// Websocket frame types.
const (
	frameChat  = "chat"
	framePing  = "ping"
	framePong  = "pong"
	frameError = "error"
)

const (
	wsReadLimit   = 512 * 1024
	defaultWSIdle = 5 * time.Minute
)

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsReply struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(s.wsIdle))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.wsIdle))
	})

	ctx := r.Context()
	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", "error", err)
			}
			return
		}

		var reply wsReply
		switch frame.Type {
		case framePing:
			reply = wsReply{Type: framePong}
		case frameChat:
			var req chatRequest
			if err := json.Unmarshal(frame.Payload, &req); err != nil || strings.TrimSpace(req.Message) == "" {
				reply = wsReply{Type: frameError, Payload: map[string]string{"error": "chat payload needs a message"}}
				break
			}
			reply = wsReply{Type: frameChat, Payload: s.turn(ctx, req.Message)}
		default:
			reply = wsReply{Type: frameError, Payload: map[string]string{"error": "unknown frame type: " + frame.Type}}
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.log.Warn("websocket write error", "error", err)
			return
		}
		// The idle window restarts once the reply is out; a chat turn can
		// outlast it.
		conn.SetReadDeadline(time.Now().Add(s.wsIdle))
	}
}
