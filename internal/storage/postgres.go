package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xaenox/faq-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) CreateConversation(ctx context.Context, userID, platform string) (*models.Conversation, error) {
	conv := &models.Conversation{
		ID:       uuid.New().String(),
		UserID:   userID,
		Platform: platform,
	}

	query := `
		INSERT INTO conversations (id, user_id, platform)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, conv.ID, userID, platform).
		Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %v", err)
	}

	return conv, nil
}

func (s *PostgresStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, user_id, platform, created_at, updated_at
		FROM conversations
		WHERE id = $1`

	conv := &models.Conversation{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&conv.ID, &conv.UserID, &conv.Platform, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying conversation: %v", err)
	}

	return conv, nil
}

func (s *PostgresStorage) ConversationExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking conversation: %v", err)
	}
	return exists, nil
}

func (s *PostgresStorage) AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}

	query := `
		INSERT INTO messages (id, conversation_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if err := tx.QueryRowContext(ctx, query, msg.ID, conversationID, role, content).Scan(&msg.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("error appending message: %v", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`, msg.CreatedAt, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error refreshing conversation: %v", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrConversationNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing message: %v", err)
	}

	return msg, nil
}

func (s *PostgresStorage) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	exists, err := s.ConversationExists(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	// Newest window first, then reversed into chronological order.
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent messages: %v", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *PostgresStorage) GetMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	exists, err := s.ConversationExists(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, seq
		LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading messages: %v", err)
	}
	return messages, nil
}

func (s *PostgresStorage) CreateFAQ(ctx context.Context, question, answer, keywords string) (*models.FAQEntry, error) {
	entry := &models.FAQEntry{
		ID:       uuid.New().String(),
		Question: question,
		Answer:   answer,
		Keywords: keywords,
	}

	query := `
		INSERT INTO faqs (id, question, answer, keywords)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, entry.ID, question, answer, keywords).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating faq: %v", err)
	}

	return entry, nil
}

func (s *PostgresStorage) GetFAQ(ctx context.Context, id string) (*models.FAQEntry, error) {
	query := `
		SELECT id, question, answer, keywords, created_at, updated_at
		FROM faqs
		WHERE id = $1`

	entry := &models.FAQEntry{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.Keywords, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFAQNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying faq: %v", err)
	}

	return entry, nil
}

func (s *PostgresStorage) ListFAQs(ctx context.Context, limit, offset int) ([]models.FAQEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, question, answer, keywords, created_at, updated_at
		FROM faqs
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing faqs: %v", err)
	}
	defer rows.Close()

	return scanFAQs(rows)
}

func (s *PostgresStorage) UpdateFAQ(ctx context.Context, id, question, answer, keywords string) (*models.FAQEntry, error) {
	query := `
		UPDATE faqs
		SET question = COALESCE(NULLIF($2, ''), question),
		    answer = COALESCE(NULLIF($3, ''), answer),
		    keywords = COALESCE(NULLIF($4, ''), keywords),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, question, answer, keywords, created_at, updated_at`

	entry := &models.FAQEntry{}
	err := s.db.QueryRowContext(ctx, query, id, question, answer, keywords).
		Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.Keywords, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFAQNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating faq: %v", err)
	}

	return entry, nil
}

func (s *PostgresStorage) DeleteFAQ(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting faq: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if affected == 0 {
		return ErrFAQNotFound
	}

	return nil
}

func (s *PostgresStorage) SearchFAQ(ctx context.Context, keywords []string) ([]models.FAQEntry, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	patterns := make([]string, len(keywords))
	for i, kw := range keywords {
		patterns[i] = "%" + kw + "%"
	}

	query := `
		SELECT id, question, answer, keywords, created_at, updated_at
		FROM faqs
		WHERE question ILIKE ANY($1) OR keywords ILIKE ANY($1)
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(patterns))
	if err != nil {
		return nil, fmt.Errorf("error searching faqs: %v", err)
	}
	defer rows.Close()

	return scanFAQs(rows)
}

func scanFAQs(rows *sql.Rows) ([]models.FAQEntry, error) {
	var entries []models.FAQEntry
	for rows.Next() {
		var entry models.FAQEntry
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.Keywords, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning faq: %v", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading faqs: %v", err)
	}
	return entries, nil
}

func (s *PostgresStorage) CreateFeedback(ctx context.Context, messageID string, helpful *bool, comment string) (*models.Feedback, error) {
	fb := &models.Feedback{
		ID:        uuid.New().String(),
		MessageID: messageID,
		Helpful:   helpful,
		Comment:   comment,
	}

	query := `
		INSERT INTO feedback (id, message_id, is_helpful, comment)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query, fb.ID, messageID, helpful, comment).Scan(&fb.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return nil, ErrDuplicateFeedback
		case "foreign_key_violation":
			return nil, ErrMessageNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error creating feedback: %v", err)
	}

	return fb, nil
}

func (s *PostgresStorage) FeedbackExists(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM feedback WHERE message_id = $1)`, messageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking feedback: %v", err)
	}
	return exists, nil
}

func (s *PostgresStorage) MessageExists(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM messages WHERE id = $1)`, messageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking message: %v", err)
	}
	return exists, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
