package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Store holds domain queries that don't fit the generic Repository shape:
// ordering, transactions, and atomic column updates.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

// FindAgentForUser returns userID's agent, preferring the earliest created
// when more than one exists.
func (s *Store) FindAgentForUser(ctx context.Context, userID string) (*AgentConfig, error) {
	var agents []AgentConfig
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("db: find agent for user: %w", err)
	}
	if len(agents) == 0 {
		return nil, nil
	}
	return &agents[0], nil
}

// RecentTurns returns the last `limit` turns for (agentID, userID) in
// chronological order, oldest first.
func (s *Store) RecentTurns(ctx context.Context, agentID, userID string, limit int) ([]ConversationTurn, error) {
	var turns []ConversationTurn
	q := s.db.WithContext(ctx).Where("agent_id = ? AND user_id = ?", agentID, userID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("db: recent turns: %w", err)
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].CreatedAt.Before(turns[j].CreatedAt) })
	return turns, nil
}

func (s *Store) LogTurn(ctx context.Context, turn ConversationTurn) error {
	turn.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(&turn).Error; err != nil {
		return fmt.Errorf("db: log turn: %w", err)
	}
	return nil
}

// DecrementCredit atomically decrements userID's credit balance if
// positive, reporting whether the decrement succeeded. The decrement is
// never rolled back if a later publish step fails.
func (s *Store) DecrementCredit(ctx context.Context, userID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&UserAccount{}).
		Where("id = ? AND credits > 0", userID).
		UpdateColumn("credits", gorm.Expr("credits - 1"))
	if res.Error != nil {
		return false, fmt.Errorf("db: decrement credit: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) SetDocumentStatus(ctx context.Context, documentID string, status DocumentStatus) error {
	if err := s.db.WithContext(ctx).Model(&Document{}).Where("id = ?", documentID).Update("status", status).Error; err != nil {
		return fmt.Errorf("db: set document status: %w", err)
	}
	return nil
}

// InsertChunks stores every chunk row and marks the document completed in a
// single transaction: a document reaches completed only if every chunk row
// is durably stored.
func (s *Store) InsertChunks(ctx context.Context, documentID string, chunks []DocumentChunk) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return fmt.Errorf("db: insert chunks: %w", err)
			}
		}
		if err := tx.Model(&Document{}).Where("id = ?", documentID).Update("status", DocumentCompleted).Error; err != nil {
			return fmt.Errorf("db: mark completed: %w", err)
		}
		return nil
	})
}

func (s *Store) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	doc.CreatedAt = time.Now()
	doc.Status = DocumentPending
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return doc, fmt.Errorf("db: create document: %w", err)
	}
	return doc, nil
}

func (s *Store) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	var docs []Document
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("db: list documents: %w", err)
	}
	return docs, nil
}

func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.db.WithContext(ctx).Delete(&Document{}, "id = ?", documentID).Error; err != nil {
		return fmt.Errorf("db: delete document: %w", err)
	}
	return nil
}
