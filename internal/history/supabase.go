// Package history persists accepted generations to the user's saved history
// in Supabase.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/book-expert/audio-description-service/internal/core"
)

const defaultTable = "audio_descriptions"

// Static errors.
var (
	ErrURLRequired    = errors.New("supabase URL is required")
	ErrAPIKeyRequired = errors.New("supabase API key is required")
)

// Config holds the Supabase connection settings.
type Config struct {
	URL    string
	APIKey string
	Table  string
}

// SupabaseStore implements core.HistoryStore against a Supabase table.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

// row mirrors the audio_descriptions table schema.
type row struct {
	ID        string    `json:"id"`
	AudioURL  string    `json:"audio_url"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Voice     string    `json:"voice"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a history store for the configured Supabase project.
func New(cfg Config) (*SupabaseStore, error) {
	if cfg.URL == "" {
		return nil, ErrURLRequired
	}

	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	if cfg.Table == "" {
		cfg.Table = defaultTable
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseStore{
		client: client,
		table:  cfg.Table,
	}, nil
}

// Insert saves one generation to the user's history.
func (s *SupabaseStore) Insert(_ context.Context, record core.HistoryRecord) error {
	inserted := row{
		ID:        record.ID,
		AudioURL:  record.AudioURL,
		Text:      record.Text,
		Language:  record.Language,
		Voice:     record.Voice,
		UserID:    record.UserID,
		CreatedAt: record.CreatedAt,
	}

	var returned []row

	_, err := s.client.From(s.table).
		Insert(inserted, false, "", "representation", "").
		ExecuteTo(&returned)
	if err != nil {
		return fmt.Errorf("failed to insert history row for user '%s': %w", record.UserID, err)
	}

	return nil
}
