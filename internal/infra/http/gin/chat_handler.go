package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/app/dto"
	chatservice "homeseek/internal/app/services/chat"
)

// ChatHTTP exposes the messaging endpoints.
type ChatHTTP interface {
	StartConversation(c *gin.Context)
	ListConversations(c *gin.Context)
	ListMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	MarkRead(c *gin.Context)
	Pending(c *gin.Context)
}

type ChatHandler struct {
	Chat   *chatservice.Service
	Logger *slog.Logger
}

// StartConversation creates or fetches the single conversation between the
// caller and a listing's owner. The seller is resolved server-side.
func (h ChatHandler) StartConversation(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req dto.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	result, err := h.Chat.GetOrCreate(requestContext(c), p.ID, req.ListingID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	resp := dto.StartConversationResponse{
		Success:        true,
		ConversationID: string(result.Conversation.ID),
	}
	if result.Seller != nil {
		resp.Seller = &dto.PeerWithID{
			ID:       string(result.Seller.ID),
			Username: result.Seller.Username,
			Email:    result.Seller.Email,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListConversations returns the caller's inbox, newest activity first.
func (h ChatHandler) ListConversations(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	entries, err := h.Chat.Inbox(requestContext(c), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConversationList{Success: true, Items: dto.MapInbox(entries)})
}

// ListMessages returns the full history of one conversation, oldest first.
func (h ChatHandler) ListMessages(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	messages, err := h.Chat.History(requestContext(c), p.ID, c.Param("conversationId"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageList{Success: true, Items: dto.MapMessages(messages)})
}

// SendMessage appends to the conversation log and returns the stored message.
// Realtime fan-out is the client's follow-up via the websocket channel.
func (h ChatHandler) SendMessage(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	message, err := h.Chat.Send(requestContext(c), p.ID, req.ConversationID, req.Text)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.SendMessageResponse{Success: true, Message: dto.MapMessage(message)})
}

// MarkRead stamps all incoming messages in the conversation as read.
func (h ChatHandler) MarkRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	receipt, err := h.Chat.MarkRead(requestContext(c), p.ID, req.ConversationID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarkReadResponse{Success: true, Matched: receipt.Matched, Modified: receipt.Modified})
}

// Pending returns per-conversation unread counts for badge display.
func (h ChatHandler) Pending(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	counts, err := h.Chat.PendingCounts(requestContext(c), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.PendingList{Success: true, Items: dto.MapPending(counts)})
}
