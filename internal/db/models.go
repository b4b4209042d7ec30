// Package db holds the relational schema and query surface backing the
// pipeline: document bookkeeping, agent configuration, conversation
// history, and user credit balances. Qdrant remains the vector search
// engine; these tables are the system of record the workers and API read
// and write through gorm.
package db

import "time"

type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	AgentID     string
	FileName    string
	StoragePath string
	Status      DocumentStatus `gorm:"default:pending"`
	CreatedAt   time.Time
}

// DocumentChunk is one row per chunk, embedding included for audit and
// potential re-upsert; similarity search itself runs against Qdrant.
type DocumentChunk struct {
	ID         uint      `gorm:"primaryKey"`
	DocumentID string    `gorm:"index"`
	UserID     string    `gorm:"index"`
	Content    string
	Embedding  []float32 `gorm:"serializer:json"`
	CreatedAt  time.Time
}

type AgentStatus string

const (
	AgentActive AgentStatus = "active"
	AgentPaused AgentStatus = "paused"
)

type AgentConfig struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index"`
	Name       string
	BasePrompt string
	Guardrails string
	Status     AgentStatus `gorm:"default:active"`
	CreatedAt  time.Time
}

type ConversationTurn struct {
	ID          uint   `gorm:"primaryKey"`
	AgentID     string `gorm:"index"`
	UserID      string `gorm:"index"`
	UserMessage string
	BotResponse string
	CreatedAt   time.Time
}

type UserAccount struct {
	ID        string `gorm:"primaryKey"`
	Email     string
	Credits   int
	Plan      string
	CreatedAt time.Time
}
