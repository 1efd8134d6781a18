package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
)

// Creator is the JSON shape of a creator.
type Creator struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Handle       string    `json:"handle"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	Specialties  []string  `json:"specialties"`
	IsOnline     bool      `json:"is_online"`
	ResponseTime *string   `json:"response_time,omitempty"`
}

// Message is the JSON shape of a chat message.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is an inbox entry.
type Conversation struct {
	ID            uuid.UUID `json:"id"`
	Creator       Creator   `json:"creator"`
	LastMessage   *Message  `json:"last_message"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Thread is the response to sending a message.
type Thread struct {
	Messages      []Message      `json:"messages"`
	Conversations []Conversation `json:"conversations"`
}

// StartConversationRequest is the body of POST /conversations.
type StartConversationRequest struct {
	CreatorID uuid.UUID `json:"creator_id"`
}

// SendMessageRequest is the body of POST /conversations/{conversationId}/messages.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MarkReadResponse reports how many messages were newly marked read.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// ListCreators handles GET /creators.
func (s *Server) ListCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := s.Chat.ListCreators(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "creator")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(creators, creatorToResponse))
}

// ListConversations handles GET /conversations.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	convs, err := s.Chat.ListConversations(r.Context(), uid)
	if err != nil {
		s.serviceError(w, r, err, "conversation")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(convs, conversationToResponse))
}

// StartConversation handles POST /conversations. Returns the existing
// conversation with the creator if there is one.
func (s *Server) StartConversation(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body StartConversationRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.CreatorID == uuid.Nil {
		requestError(w, "creator_id is required")
		return
	}

	conv, err := s.Chat.StartConversation(r.Context(), uid, body.CreatorID)
	if err != nil {
		s.serviceError(w, r, err, "creator")
		return
	}
	writeJSON(w, http.StatusOK, conversationToResponse(conv))
}

// ListMessages handles GET /conversations/{conversationId}/messages.
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	uid, convID, ok := conversationScope(w, r)
	if !ok {
		return
	}
	msgs, err := s.Chat.Messages(r.Context(), uid, convID)
	if err != nil {
		s.serviceError(w, r, err, "conversation")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(msgs, messageToResponse))
}

// SendMessage handles POST /conversations/{conversationId}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	uid, convID, ok := conversationScope(w, r)
	if !ok {
		return
	}
	var body SendMessageRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	th, err := s.Chat.SendMessage(r.Context(), uid, convID, body.Content)
	if err != nil {
		s.serviceError(w, r, err, "conversation")
		return
	}
	writeJSON(w, http.StatusCreated, Thread{
		Messages:      mapSlice(th.Messages, messageToResponse),
		Conversations: mapSlice(th.Conversations, conversationToResponse),
	})
}

// MarkConversationRead handles POST /conversations/{conversationId}/read.
func (s *Server) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	uid, convID, ok := conversationScope(w, r)
	if !ok {
		return
	}
	n, err := s.Chat.MarkRead(r.Context(), uid, convID)
	if err != nil {
		s.serviceError(w, r, err, "conversation")
		return
	}
	writeJSON(w, http.StatusOK, MarkReadResponse{Updated: n})
}

func conversationScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	uid, ok := userID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	convID, ok := pathUUID(w, r, "conversationId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return uid, convID, true
}

// --- mapping helpers --------------------------------------------------------

func creatorToResponse(c domain.Creator) Creator {
	resp := Creator{
		ID:           c.ID,
		Name:         c.Name,
		Handle:       c.Handle,
		AvatarURL:    optional(c.AvatarURL),
		Bio:          optional(c.Bio),
		Specialties:  c.Specialties,
		IsOnline:     c.IsOnline,
		ResponseTime: optional(c.ResponseTime),
	}
	if resp.Specialties == nil {
		resp.Specialties = []string{}
	}
	return resp
}

func messageToResponse(m domain.Message) Message {
	return Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         string(m.Sender),
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

func conversationToResponse(c domain.ConversationSummary) Conversation {
	resp := Conversation{
		ID:            c.Conversation.ID,
		Creator:       creatorToResponse(c.Creator),
		UnreadCount:   c.UnreadCount,
		LastMessageAt: c.Conversation.LastMessageAt,
		CreatedAt:     c.Conversation.CreatedAt,
	}
	if c.LastMessage != nil {
		m := messageToResponse(*c.LastMessage)
		resp.LastMessage = &m
	}
	return resp
}
