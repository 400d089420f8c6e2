// Package storage persists conversations as one JSON document per id. Every
// mutation is a whole-document read-modify-write with last-write-wins
// semantics; there is no optimistic concurrency, which is accepted for the
// single-user-session assumption this service makes.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"llm-quorum/internal/council"
)

// ErrNotFound reports an operation against a conversation id with no document
// behind it. Mutations on a missing conversation fail with it rather than
// silently doing nothing.
var ErrNotFound = errors.New("conversation not found")

// Message is one turn in a conversation: a user turn carries Content, an
// assistant turn carries the full three-stage council bundle.
type Message struct {
	Role    string             `json:"role"`
	Content string             `json:"content,omitempty"`
	Stage1  []council.Answer   `json:"stage1,omitempty"`
	Stage2  []council.Ranking  `json:"stage2,omitempty"`
	Stage3  *council.Synthesis `json:"stage3,omitempty"`
}

// Conversation is the stored document.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
}

// Summary is the metadata slice of a conversation used by list views.
type Summary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
}

// Store reads and writes conversation documents under one directory.
type Store struct {
	dir   string
	cache *listCache
}

// NewStore returns a store rooted at dir. List results are cached for
// cacheTTL; a non-positive TTL disables the cache.
func NewStore(dir string, cacheTTL time.Duration) *Store {
	return &Store{dir: dir, cache: newListCache(cacheTTL)}
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create writes a fresh empty conversation document.
func (s *Store) Create(id string) (*Conversation, error) {
	conv := &Conversation{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Title:     council.DefaultTitle,
		Messages:  []Message{},
	}
	if err := s.save(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get loads a conversation by id, or ErrNotFound.
func (s *Store) Get(id string) (*Conversation, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("read conversation %s: %w", id, err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (s *Store) save(conv *Conversation) error {
	if err := s.ensureDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation %s: %w", conv.ID, err)
	}
	if err := os.WriteFile(s.path(conv.ID), data, 0o644); err != nil {
		return fmt.Errorf("write conversation %s: %w", conv.ID, err)
	}
	s.cache.invalidate()
	return nil
}

// List returns metadata for every stored conversation, newest first.
// Unreadable or invalid files are skipped. Results are served from the TTL
// cache between writes.
func (s *Store) List() ([]Summary, error) {
	if cached, ok := s.cache.get(); ok {
		return cached, nil
	}

	if err := s.ensureDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			Title:        conv.Title,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	s.cache.set(summaries)
	return summaries, nil
}

// AppendUserMessage appends a user turn.
func (s *Store) AppendUserMessage(id, content string) error {
	conv, err := s.Get(id)
	if err != nil {
		return err
	}
	conv.Messages = append(conv.Messages, Message{Role: "user", Content: content})
	return s.save(conv)
}

// AppendAssistantMessage appends an assistant turn carrying all three stages
// of one council run.
func (s *Store) AppendAssistantMessage(id string, stage1 []council.Answer, stage2 []council.Ranking, stage3 council.Synthesis) error {
	conv, err := s.Get(id)
	if err != nil {
		return err
	}
	conv.Messages = append(conv.Messages, Message{
		Role:   "assistant",
		Stage1: stage1,
		Stage2: stage2,
		Stage3: &stage3,
	})
	return s.save(conv)
}

// SetTitle replaces the conversation title.
func (s *Store) SetTitle(id, title string) error {
	conv, err := s.Get(id)
	if err != nil {
		return err
	}
	conv.Title = title
	return s.save(conv)
}
