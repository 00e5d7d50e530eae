// Package chat implements the conversation API and the streaming analytics
// chat endpoint.
package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mesa-hq/mesa-server/domain/tools"
)

// Conversation represents a chat conversation from the conversations table
type Conversation struct {
	bun.BaseModel `bun:"table:conversations"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	AccountID string    `bun:"account_id,notnull" json:"accountId"`
	Title     string    `bun:"title,notnull" json:"title"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	// Relations (for eager loading)
	Messages []Message `bun:"rel:has-many,join:id=conversation_id" json:"messages,omitempty"`
}

// Message represents a chat message from the messages table
type Message struct {
	bun.BaseModel `bun:"table:messages"`

	ID             uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID       `bun:"conversation_id,type:uuid,notnull" json:"conversationId"`
	Role           string          `bun:"role,notnull" json:"role"` // user, ai
	Content        string          `bun:"content,notnull" json:"content"`
	Metadata       json.RawMessage `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	// Relation
	Conversation *Conversation `bun:"rel:belongs-to,join:conversation_id=id" json:"-"`
}

// MessageRole constants
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// MessageMetadata is the decoded shape of Message.Metadata. Chart is set on
// AI messages whose turn produced a chart.
type MessageMetadata struct {
	Chart *tools.ChartConfig `json:"chart,omitempty"`
}

// CreateConversationRequest is the request body for creating a conversation
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// UpdateConversationRequest is the request body for renaming a conversation
type UpdateConversationRequest struct {
	Title string `json:"title"`
}

// ListConversationsResult contains the result of listing conversations
type ListConversationsResult struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}

// StreamRequest is the request body for POST /api/chat/stream
type StreamRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}
