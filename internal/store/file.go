package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"chatrelay-backend/internal/models"
)

// FileUserStore keeps all user records in a single JSON object on
// disk, keyed by username. Every operation reads and rewrites the
// whole file. A process-local mutex serializes the read-modify-write
// cycle; concurrent processes sharing the file can still lose writes.
type FileUserStore struct {
	mu   sync.Mutex
	path string
}

func NewFileUserStore(dataDir string) (*FileUserStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileUserStore{path: filepath.Join(dataDir, "users.json")}, nil
}

func (s *FileUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := users[user.Username]; ok {
		return ErrUserExists
	}
	users[user.Username] = *user
	return s.save(users)
}

func (s *FileUserStore) Get(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	user, ok := users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *FileUserStore) load() (map[string]models.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.User{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	users := map[string]models.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return users, nil
}

func (s *FileUserStore) save(users map[string]models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// FileHistoryStore keeps every user's conversation in a single JSON
// object on disk, keyed by username. Same whole-file semantics as
// FileUserStore.
type FileHistoryStore struct {
	mu   sync.Mutex
	path string
}

func NewFileHistoryStore(dataDir string) (*FileHistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileHistoryStore{path: filepath.Join(dataDir, "history.json")}, nil
}

func (s *FileHistoryStore) Append(ctx context.Context, username string, turns ...models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all[username] = append(all[username], turns...)
	return s.save(all)
}

func (s *FileHistoryStore) Recent(ctx context.Context, username string, n int) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	turns := all[username]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *FileHistoryStore) Clear(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := all[username]; !ok {
		return nil
	}
	delete(all, username)
	return s.save(all)
}

func (s *FileHistoryStore) load() (map[string][]models.Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]models.Turn{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	all := map[string][]models.Turn{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return all, nil
}

func (s *FileHistoryStore) save(all map[string][]models.Turn) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
