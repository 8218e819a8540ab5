package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kbchat/internal/contextutil"
	"kbchat/internal/rag"
	"kbchat/internal/service"
	"kbchat/internal/storage"
	"kbchat/internal/usage"
)

// ChatHandler handles HTTP requests for chats and their messages.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// CreateChatRequest represents the HTTP request payload for a new chat.
//
// swagger:model CreateChatRequest
type CreateChatRequest struct {
	Title            string   `json:"title"`
	KnowledgeBaseIDs []string `json:"knowledge_base_ids"`
}

// ChatResponse represents a chat in HTTP responses.
//
// swagger:model ChatResponse
type ChatResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	KnowledgeBaseIDs []string  `json:"knowledge_base_ids"`
	CreatedAt        time.Time `json:"created_at"`
	LastModified     time.Time `json:"last_modified"`
}

// MessageResponse represents one chat message in HTTP responses.
//
// swagger:model MessageResponse
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest represents the HTTP request payload for a user turn.
//
// swagger:model SendMessageRequest
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse represents the HTTP response payload for an answered turn.
//
// swagger:model SendMessageResponse
type SendMessageResponse struct {
	UserMessage      MessageResponse `json:"user_message"`
	AssistantMessage MessageResponse `json:"assistant_message"`
	// Documents that grounded the answer, in retrieval order
	Sources []rag.Source `json:"sources"`
	// Usage records billed while answering
	Usage []UsageRecordResponse `json:"usage"`
}

// UsageRecordResponse is a billed provider call.
//
// swagger:model UsageRecordResponse
type UsageRecordResponse struct {
	Operation        string `json:"operation"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	EmbeddingTokens  int    `json:"embedding_tokens"`
}

// List lists the caller's chats.
//
// swagger:route GET /api/v1/chats listChats
//
// # List chats, most recently modified first
//
// responses:
//
//	'200':
//	  description: Chats of the caller
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to list chats")
		return
	}

	resp := make([]ChatResponse, len(chats))
	for i, c := range chats {
		resp[i] = toChatResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create creates a chat.
//
// swagger:route POST /api/v1/chats createChat
//
// # Create a chat bound to knowledge bases
//
// responses:
//
//	'201':
//	  description: Chat created
//	'400':
//	  description: Invalid title or knowledge base list
//	'404':
//	  description: Unknown knowledge base
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chat, err := h.chatService.CreateChat(ctx, userID, service.CreateChatRequest{
		Title:            req.Title,
		KnowledgeBaseIDs: req.KnowledgeBaseIDs,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, toChatResponse(chat))
}

// Delete deletes a chat and its messages.
//
// swagger:route DELETE /api/v1/chats/{chatID} deleteChat
//
// responses:
//
//	'204':
//	  description: Chat deleted
//	'404':
//	  description: Unknown chat
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), userID, chi.URLParam(r, "chatID")); err != nil {
		handleServiceError(w, r.Context(), err, "Failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages lists a chat's messages, oldest first.
//
// swagger:route GET /api/v1/chats/{chatID}/messages listMessages
//
// responses:
//
//	'200':
//	  description: Messages of the chat
//	'404':
//	  description: Unknown chat
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	msgs, err := h.chatService.ListMessages(r.Context(), userID, chi.URLParam(r, "chatID"))
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to list messages")
		return
	}

	resp := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = toMessageResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendMessage answers a question from the chat's enabled documents.
//
// swagger:route POST /api/v1/chats/{chatID}/messages sendMessage
//
// # Ask a grounded question
//
// Every enabled document of the chat's knowledge bases contributes at least one passage;
// the answer is generated from those passages and the trimmed conversation history.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Both persisted messages, the grounding sources and billed usage
//	  schema:
//	    "$ref": "#/definitions/SendMessageResponse"
//	'400':
//	  description: Empty content or no enabled documents
//	'404':
//	  description: Unknown chat
//	'422':
//	  description: Some enabled documents have no indexed passage
//	'502':
//	  description: Embedding or generation provider error
//	'503':
//	  description: Vector store unavailable
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.chatService.SendMessage(ctx, userID, chi.URLParam(r, "chatID"), service.SendMessageRequest{
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer message")
		return
	}

	resp := SendMessageResponse{
		UserMessage:      toMessageResponse(svcResp.UserMessage),
		AssistantMessage: toMessageResponse(svcResp.AssistantMessage),
		Sources:          svcResp.Sources,
		Usage:            make([]UsageRecordResponse, len(svcResp.Usage)),
	}
	if resp.Sources == nil {
		resp.Sources = []rag.Source{}
	}
	for i, rec := range svcResp.Usage {
		resp.Usage[i] = toUsageRecordResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toChatResponse(c storage.Chat) ChatResponse {
	kbIDs := c.KnowledgeBaseIDs
	if kbIDs == nil {
		kbIDs = []string{}
	}
	return ChatResponse{
		ID:               c.ID,
		Title:            c.Title,
		KnowledgeBaseIDs: kbIDs,
		CreatedAt:        c.CreatedAt,
		LastModified:     c.LastModified,
	}
}

func toMessageResponse(m storage.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toUsageRecordResponse(r usage.Record) UsageRecordResponse {
	return UsageRecordResponse{
		Operation:        string(r.Operation),
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		EmbeddingTokens:  r.EmbeddingTokens,
	}
}
