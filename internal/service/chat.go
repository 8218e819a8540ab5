package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService kbchat/internal/service ChatService

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"kbchat/internal/contextutil"
	"kbchat/internal/rag"
	"kbchat/internal/storage"
	"kbchat/internal/usage"
)

// CreateChatRequest represents a new chat in the domain layer.
type CreateChatRequest struct {
	Title            string
	KnowledgeBaseIDs []string
}

// SendMessageRequest represents a user turn in the domain layer.
type SendMessageRequest struct {
	Content string
}

// SendMessageResponse holds both persisted turns and what grounded the answer.
type SendMessageResponse struct {
	UserMessage      storage.Message
	AssistantMessage storage.Message
	Sources          []rag.Source
	Usage            []usage.Record
}

// ChatService provides chat functionality.
type ChatService interface {
	// CreateChat creates a chat bound to knowledge bases the user owns.
	CreateChat(ctx context.Context, userID string, req CreateChatRequest) (storage.Chat, error)
	// ListChats returns the user's chats, most recently modified first.
	ListChats(ctx context.Context, userID string) ([]storage.Chat, error)
	// ListMessages returns a chat's messages oldest first.
	ListMessages(ctx context.Context, userID, chatID string) ([]storage.Message, error)
	// DeleteChat removes a chat and its messages.
	DeleteChat(ctx context.Context, userID, chatID string) error
	// SendMessage stores the user's turn, answers it from the chat's enabled documents
	// and stores the answer.
	SendMessage(ctx context.Context, userID, chatID string, req SendMessageRequest) (SendMessageResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	chats          storage.ChatStore
	messages       storage.MessageStore
	documents      storage.DocumentStore
	knowledgeBases storage.KnowledgeBaseStore
	engine         rag.Engine
	now            func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(
	chats storage.ChatStore,
	messages storage.MessageStore,
	documents storage.DocumentStore,
	knowledgeBases storage.KnowledgeBaseStore,
	engine rag.Engine,
) ChatService {
	return &chatService{
		chats:          chats,
		messages:       messages,
		documents:      documents,
		knowledgeBases: knowledgeBases,
		engine:         engine,
		now:            time.Now,
	}
}

// CreateChat validates the title and knowledge base ownership, then stores the chat.
func (s *chatService) CreateChat(ctx context.Context, userID string, req CreateChatRequest) (storage.Chat, error) {
	logger := contextutil.LoggerFromContext(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return storage.Chat{}, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if len(req.KnowledgeBaseIDs) == 0 {
		return storage.Chat{}, &ValidationError{Field: "knowledge_base_ids", Message: "at least one knowledge base is required"}
	}

	kbIDs := make([]string, 0, len(req.KnowledgeBaseIDs))
	seen := make(map[string]bool, len(req.KnowledgeBaseIDs))
	for _, id := range req.KnowledgeBaseIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.knowledgeBases.GetByID(ctx, id, userID); err != nil {
			return storage.Chat{}, storeError(err, "knowledge base", id, "failed to load knowledge base")
		}
		kbIDs = append(kbIDs, id)
	}
	if len(kbIDs) == 0 {
		return storage.Chat{}, &ValidationError{Field: "knowledge_base_ids", Message: "at least one knowledge base is required"}
	}

	now := s.now().UTC()
	chat := storage.Chat{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            title,
		KnowledgeBaseIDs: kbIDs,
		CreatedAt:        now,
		LastModified:     now,
	}
	if err := s.chats.Create(ctx, &chat); err != nil {
		logger.ErrorContext(ctx, "failed to create chat", "error", err)
		return storage.Chat{}, WrapError(err, "failed to create chat")
	}

	logger.InfoContext(ctx, "chat created", "chat_id", chat.ID, "knowledge_bases", len(kbIDs))
	return chat, nil
}

// ListChats lists the user's chats.
func (s *chatService) ListChats(ctx context.Context, userID string) ([]storage.Chat, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, WrapError(err, "failed to list chats")
	}
	return chats, nil
}

// ListMessages lists a chat's messages after checking ownership.
func (s *chatService) ListMessages(ctx context.Context, userID, chatID string) ([]storage.Message, error) {
	if _, err := s.loadChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByChat(ctx, chatID, userID)
	if err != nil {
		return nil, WrapError(err, "failed to list messages")
	}
	return msgs, nil
}

// DeleteChat deletes messages first, then the chat.
func (s *chatService) DeleteChat(ctx context.Context, userID, chatID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := s.loadChat(ctx, userID, chatID); err != nil {
		return err
	}
	if err := s.messages.DeleteByChat(ctx, chatID, userID); err != nil {
		return WrapError(err, "failed to delete messages")
	}
	if err := s.chats.Delete(ctx, chatID, userID); err != nil {
		return storeError(err, "chat", chatID, "failed to delete chat")
	}

	logger.InfoContext(ctx, "chat deleted", "chat_id", chatID)
	return nil
}

// SendMessage answers one user turn.
// History is read before the new turn is stored so the query is never part of it.
func (s *chatService) SendMessage(ctx context.Context, userID, chatID string, req SendMessageRequest) (SendMessageResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	content := strings.TrimSpace(req.Content)
	if content == "" {
		logger.WarnContext(ctx, "empty message content", "chat_id", chatID)
		return SendMessageResponse{}, &ValidationError{Field: "content", Message: "cannot be empty"}
	}

	chat, err := s.loadChat(ctx, userID, chatID)
	if err != nil {
		return SendMessageResponse{}, err
	}

	prior, err := s.messages.ListByChat(ctx, chatID, userID)
	if err != nil {
		return SendMessageResponse{}, WrapError(err, "failed to load history")
	}

	docs, err := s.documents.ListEnabledForKnowledgeBases(ctx, userID, chat.KnowledgeBaseIDs)
	if err != nil {
		return SendMessageResponse{}, WrapError(err, "failed to resolve enabled documents")
	}
	if len(docs) == 0 {
		return SendMessageResponse{}, &ValidationError{Field: "knowledge_base_ids", Message: "chat has no enabled documents"}
	}
	docIDs := make([]string, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}

	userMsg := storage.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Role:      storage.RoleUser,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, &userMsg); err != nil {
		return SendMessageResponse{}, WrapError(err, "failed to save user message")
	}
	if err := s.chats.Touch(ctx, chatID, userID, userMsg.CreatedAt); err != nil {
		logger.WarnContext(ctx, "failed to update chat last_modified", "chat_id", chatID, "error", err)
	}

	answer, err := s.engine.Ask(ctx, rag.AskRequest{
		UserID:             userID,
		ChatID:             chatID,
		Query:              content,
		KnowledgeBaseIDs:   chat.KnowledgeBaseIDs,
		EnabledDocumentIDs: docIDs,
		History:            toTurns(prior),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer message", "chat_id", chatID, "error", err)
		return SendMessageResponse{}, WrapError(err, "failed to answer message")
	}

	assistantMsg := storage.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Role:      storage.RoleAssistant,
		Content:   answer.Answer,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, &assistantMsg); err != nil {
		return SendMessageResponse{}, WrapError(err, "failed to save assistant message")
	}

	logger.InfoContext(ctx, "message answered",
		"chat_id", chatID,
		"history_turns", len(prior),
		"enabled_documents", len(docIDs),
		"sources", len(answer.Sources),
	)

	return SendMessageResponse{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Sources:          answer.Sources,
		Usage:            answer.Usage,
	}, nil
}

func (s *chatService) loadChat(ctx context.Context, userID, chatID string) (*storage.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID, userID)
	if err != nil {
		return nil, storeError(err, "chat", chatID, "failed to load chat")
	}
	return chat, nil
}

func toTurns(msgs []storage.Message) []rag.Turn {
	turns := make([]rag.Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = rag.Turn{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
	}
	return turns
}
