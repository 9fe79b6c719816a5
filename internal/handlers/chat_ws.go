package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pochi-app/pochi-web/internal/chat"
	"github.com/pochi-app/pochi-web/internal/models"
	"github.com/pochi-app/pochi-web/internal/upstream"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer on the HTTP routes;
		// the socket itself carries no credentials beyond the visitor cookie.
		return true
	},
}

// ChatClientMessage is one frame from the page.
type ChatClientMessage struct {
	Type      string `json:"type"` // "message", "ping"
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`
	DeepThink bool   `json:"deep_think,omitempty"`
}

// ChatServerEvent is one frame to the page.
type ChatServerEvent struct {
	Type        string    `json:"type"` // "reply", "error", "pong"
	Response    string    `json:"response,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	IsEmergency bool      `json:"is_emergency,omitempty"`
	Language    string    `json:"language,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChatWebSocket is the conversation channel. Each frame from the page is one
// user turn: it goes upstream without retries, both sides of the exchange are
// persisted asynchronously, and the assistant's answer comes back on the same
// socket with follow-up suggestions attached.
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// A connection without a session yet gets one; every turn on this socket
	// shares it unless the page sends its own.
	connSession := uuid.New().String()

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "message":
			handleChatTurn(r, conn, connSession, msg)
		case "ping":
			_ = conn.WriteJSON(ChatServerEvent{Type: "pong", Timestamp: time.Now().UTC()})
		default:
			// Ignore unknown types
		}
	}
}

func handleChatTurn(r *http.Request, conn *websocket.Conn, connSession string, msg ChatClientMessage) {
	text := strings.TrimSpace(msg.Message)
	if text == "" {
		return
	}
	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = connSession
	}

	chat.SaveTurnAsync(models.ChatTurn{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Text:      text,
		Language:  msg.Language,
		CreatedAt: time.Now().UTC(),
	})

	reply, err := backend.Chat(r.Context(), upstream.ChatRequest{
		Message:   text,
		SessionID: sessionID,
		Language:  msg.Language,
		DeepThink: msg.DeepThink,
	})
	if err != nil {
		log.Printf("❌ chat turn failed: %v", err)
		_ = conn.WriteJSON(ChatServerEvent{
			Type:      "error",
			SessionID: sessionID,
			Error:     "The assistant could not answer. Please try again.",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	if reply.SessionID == "" {
		reply.SessionID = sessionID
	}

	chat.SaveTurnAsync(models.ChatTurn{
		SessionID:   reply.SessionID,
		Role:        models.RoleAssistant,
		Text:        reply.Response,
		Language:    reply.Language,
		IsEmergency: reply.IsEmergency,
		AISource:    reply.AISource,
		CreatedAt:   time.Now().UTC(),
	})

	_ = conn.WriteJSON(ChatServerEvent{
		Type:        "reply",
		Response:    reply.Response,
		SessionID:   reply.SessionID,
		IsEmergency: reply.IsEmergency,
		Language:    reply.Language,
		Suggestions: chat.Suggest(text, reply.Language, 3),
		Timestamp:   time.Now().UTC(),
	})
}
