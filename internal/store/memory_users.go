package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
)

type memoryUserStore struct {
	mu    sync.RWMutex
	users []models.User
}

func (s *memoryUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == email {
			return ErrDuplicateEmail
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	next := make([]models.User, 0, len(s.users)+1)
	next = append(next, s.users...)
	next = append(next, *user)
	s.users = next
	return nil
}

func (s *memoryUserStore) GetByID(id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for i := range s.users {
		if strings.ToLower(s.users[i].Email) == email {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUserStore) EmailExists(email string) (bool, error) {
	_, err := s.GetByEmail(email)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *memoryUserStore) UpdateProfile(id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.User, len(s.users))
	copy(next, s.users)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		if req.Name != nil {
			next[i].Name = *req.Name
		}
		if req.CompanyName != nil {
			next[i].CompanyName = models.NullString{}
			if *req.CompanyName != "" {
				next[i].CompanyName.Valid = true
				next[i].CompanyName.String = *req.CompanyName
			}
		}
		if req.Phone != nil {
			next[i].Phone = *req.Phone
		}
		next[i].UpdatedAt = time.Now()
		s.users = next
		user := next[i]
		return &user, nil
	}
	return nil, ErrNotFound
}

func (s *memoryUserStore) SetEmailVerified(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.User, len(s.users))
	copy(next, s.users)

	email = strings.ToLower(email)
	for i := range next {
		if strings.ToLower(next[i].Email) == email {
			next[i].EmailVerified = true
			next[i].UpdatedAt = time.Now()
			s.users = next
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryUserStore) UpdatePassword(id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.User, len(s.users))
	copy(next, s.users)

	for i := range next {
		if next[i].ID == id {
			next[i].PasswordHash = passwordHash
			next[i].UpdatedAt = time.Now()
			s.users = next
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryUserStore) RecordLogin(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.User, len(s.users))
	copy(next, s.users)

	for i := range next {
		if next[i].ID == id {
			next[i].LastLoginAt.Valid = true
			next[i].LastLoginAt.Time = time.Now()
			s.users = next
			return nil
		}
	}
	return ErrNotFound
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions []models.UserSession
}

func (s *memorySessionStore) Record(session *models.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session.CreatedAt = now
	session.LastActiveAt = now
	session.IsActive = true

	next := make([]models.UserSession, 0, len(s.sessions)+1)
	next = append(next, s.sessions...)
	next = append(next, *session)
	s.sessions = next
	return nil
}

func (s *memorySessionStore) ListByUser(userID uuid.UUID) ([]models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.UserSession{}
	for _, session := range s.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result, nil
}

func (s *memorySessionStore) Deactivate(id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.UserSession, len(s.sessions))
	copy(next, s.sessions)

	for i := range next {
		if next[i].ID == id && next[i].UserID == userID {
			next[i].IsActive = false
			s.sessions = next
			return nil
		}
	}
	return ErrNotFound
}
