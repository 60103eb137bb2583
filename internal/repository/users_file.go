package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"bloodlink-api/internal/models"

	"github.com/rs/zerolog/log"
)

// FileUserStore keeps the full user list in memory and writes it through to
// a JSON file on every mutation. The file is loaded once at construction;
// a missing file means an empty directory. A failed flush is logged and the
// in-memory state kept, so persistence is best-effort.
type FileUserStore struct {
	path string

	mu     sync.Mutex
	users  []models.User
	nextID int64
}

// NewFileUserStore loads the user list from path, or starts empty when the
// file does not exist yet.
func NewFileUserStore(path string) (*FileUserStore, error) {
	s := &FileUserStore{path: path, nextID: 1}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: read user file: %w", err)
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		return nil, fmt.Errorf("repository: parse user file: %w", err)
	}
	for _, u := range s.users {
		if id, err := strconv.ParseInt(u.ID, 10, 64); err == nil && id >= s.nextID {
			s.nextID = id + 1
		}
	}
	return s, nil
}

// FindByEmail looks a user up by email, case-insensitively.
func (s *FileUserStore) FindByEmail(_ context.Context, email string) (models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// FindByID looks a user up by its identifier.
func (s *FileUserStore) FindByID(_ context.Context, id string) (models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// Insert assigns the next identifier, appends the user and flushes the file.
func (s *FileUserStore) Insert(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.users = append(s.users, user)
	s.flush()
	return user, nil
}

// Update replaces the stored record matching user.ID and flushes the file.
func (s *FileUserStore) Update(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == user.ID {
			s.users[i] = user
			s.flush()
			return nil
		}
	}
	return fmt.Errorf("repository: user %s not found", user.ID)
}

// All returns a copy of the stored user list.
func (s *FileUserStore) All(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *FileUserStore) flush() {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("encode user file failed")
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("write user file failed")
	}
}
