package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mesa-hq/mesa-server/pkg/apperror"
	"github.com/mesa-hq/mesa-server/pkg/logger"
	"github.com/mesa-hq/mesa-server/pkg/pgutils"
)

// Repository handles chat database operations
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new chat repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("chat.repo")),
	}
}

// ListConversations retrieves an account's conversations, most recent first
func (r *Repository) ListConversations(ctx context.Context, accountID string, limit, offset int) (*ListConversationsResult, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	total, err := r.db.NewSelect().
		Model((*Conversation)(nil)).
		Where("account_id = ?", accountID).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}

	conversations := []Conversation{}
	err = r.db.NewSelect().
		Model(&conversations).
		Where("account_id = ?", accountID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	return &ListConversationsResult{
		Conversations: conversations,
		Total:         total,
	}, nil
}

// GetByID retrieves a conversation owned by the account. Returns nil when the
// conversation does not exist or belongs to someone else.
func (r *Repository) GetByID(ctx context.Context, accountID string, conversationID uuid.UUID) (*Conversation, error) {
	var conv Conversation
	err := r.db.NewSelect().
		Model(&conv).
		Where("id = ?", conversationID).
		Where("account_id = ?", accountID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conv, nil
}

// GetByIDWithMessages retrieves a conversation with all its messages
func (r *Repository) GetByIDWithMessages(ctx context.Context, accountID string, conversationID uuid.UUID) (*Conversation, error) {
	var conv Conversation
	err := r.db.NewSelect().
		Model(&conv).
		Relation("Messages", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("conversation.id = ?", conversationID).
		Where("conversation.account_id = ?", accountID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation with messages: %w", err)
	}

	return &conv, nil
}

// Create creates a new conversation
func (r *Repository) Create(ctx context.Context, conv *Conversation) error {
	_, err := r.db.NewInsert().
		Model(conv).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if pgutils.IsForeignKeyViolation(err) {
			return apperror.ErrBadRequest.WithMessage("Referenced account not found")
		}
		r.log.Error("failed to create conversation", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	return nil
}

// Update updates a conversation
func (r *Repository) Update(ctx context.Context, accountID string, conv *Conversation) error {
	result, err := r.db.NewUpdate().
		Model(conv).
		WherePK().
		Where("account_id = ?", accountID).
		Returning("*").
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to update conversation", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperror.ErrNotFound.WithMessage("Conversation not found")
	}

	return nil
}

// Delete deletes a conversation (cascades to messages via FK)
func (r *Repository) Delete(ctx context.Context, accountID string, conversationID uuid.UUID) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*Conversation)(nil)).
		Where("id = ?", conversationID).
		Where("account_id = ?", accountID).
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to delete conversation", logger.Error(err))
		return false, apperror.ErrDatabase.WithInternal(err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// AddMessage adds a message to a conversation and bumps its updated_at
func (r *Repository) AddMessage(ctx context.Context, msg *Message) error {
	_, err := r.db.NewInsert().
		Model(msg).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if pgutils.IsForeignKeyViolation(err) {
			return apperror.ErrNotFound.WithMessage("Conversation not found")
		}
		r.log.Error("failed to add message", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	_, err = r.db.NewUpdate().
		Model((*Conversation)(nil)).
		Set("updated_at = NOW()").
		Where("id = ?", msg.ConversationID).
		Exec(ctx)

	if err != nil {
		r.log.Warn("failed to update conversation timestamp", logger.Error(err))
		// Don't fail the operation for this
	}

	return nil
}

// GetConversationHistory retrieves the last N messages for a conversation,
// returned oldest first.
func (r *Repository) GetConversationHistory(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	messages := []Message{}
	err := r.db.NewSelect().
		Model(&messages).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("get conversation history: %w", err)
	}

	// Reverse to chronological order (oldest first)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
