package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa-server/pkg/apperror"
	"github.com/mesa-hq/mesa-server/pkg/logger"
)

// Store is the persistence surface the handlers depend on. It exists so the
// streaming pipeline can be exercised against an in-memory fake.
type Store interface {
	ListConversations(ctx context.Context, accountID string, limit, offset int) (*ListConversationsResult, error)
	GetConversation(ctx context.Context, accountID string, conversationID uuid.UUID) (*Conversation, error)
	GetConversationWithMessages(ctx context.Context, accountID string, conversationID uuid.UUID) (*Conversation, error)
	CreateConversation(ctx context.Context, accountID string, req CreateConversationRequest) (*Conversation, error)
	UpdateConversation(ctx context.Context, accountID string, conversationID uuid.UUID, req UpdateConversationRequest) (*Conversation, error)
	DeleteConversation(ctx context.Context, accountID string, conversationID uuid.UUID) error
	AddMessage(ctx context.Context, conversationID uuid.UUID, role, content string, meta *MessageMetadata) (*Message, error)
	History(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
}

// Service provides business logic for chat operations
type Service struct {
	repo *Repository
	log  *slog.Logger
}

// NewService creates a new chat service
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("chat.svc")),
	}
}

// ListConversations returns a page of the account's conversations
func (s *Service) ListConversations(ctx context.Context, accountID string, limit, offset int) (*ListConversationsResult, error) {
	return s.repo.ListConversations(ctx, accountID, limit, offset)
}

// GetConversation retrieves a conversation owned by the account
func (s *Service) GetConversation(ctx context.Context, accountID string, conversationID uuid.UUID) (*Conversation, error) {
	conv, err := s.repo.GetByID(ctx, accountID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.ErrNotFound.WithMessage("Conversation not found")
	}
	return conv, nil
}

// GetConversationWithMessages retrieves a conversation with all its messages
func (s *Service) GetConversationWithMessages(ctx context.Context, accountID string, conversationID uuid.UUID) (*Conversation, error) {
	conv, err := s.repo.GetByIDWithMessages(ctx, accountID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.ErrNotFound.WithMessage("Conversation not found")
	}
	return conv, nil
}

// CreateConversation creates a new conversation for the account
func (s *Service) CreateConversation(ctx context.Context, accountID string, req CreateConversationRequest) (*Conversation, error) {
	now := time.Now()
	conv := &Conversation{
		AccountID: accountID,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// UpdateConversation renames a conversation
func (s *Service) UpdateConversation(ctx context.Context, accountID string, conversationID uuid.UUID, req UpdateConversationRequest) (*Conversation, error) {
	conv, err := s.repo.GetByID(ctx, accountID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.ErrNotFound.WithMessage("Conversation not found")
	}

	conv.Title = req.Title
	conv.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, accountID, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// DeleteConversation deletes a conversation and all its messages
func (s *Service) DeleteConversation(ctx context.Context, accountID string, conversationID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, accountID, conversationID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.ErrNotFound.WithMessage("Conversation not found")
	}
	return nil
}

// AddMessage persists one message. Ownership is the caller's concern; the
// streaming handler verifies it before any write.
func (s *Service) AddMessage(ctx context.Context, conversationID uuid.UUID, role, content string, meta *MessageMetadata) (*Message, error) {
	msg := &Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}

	if meta != nil && meta.Chart != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			s.log.Warn("failed to encode message metadata", logger.Error(err))
		} else {
			msg.Metadata = raw
		}
	}

	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the last limit messages, oldest first
func (s *Service) History(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	return s.repo.GetConversationHistory(ctx, conversationID, limit)
}
