package chat

import (
	"fmt"

	"github.com/pliu/courier/internal/models"
)

// AddContact records a directed contact edge from the actor to the named
// user. Idempotent; the reverse edge is never implied.
func (s *Service) AddContact(actorID int, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, wrapStoreErr(err, "user "+username)
	}
	if user.ID == actorID {
		return nil, fmt.Errorf("you cannot add yourself: %w", ErrBadRequest)
	}

	if err := s.store.AddContact(actorID, user.ID); err != nil {
		return nil, wrapStoreErr(err, "contact")
	}
	return user, nil
}

func (s *Service) ListContacts(actorID int) ([]models.User, error) {
	return s.store.GetContacts(actorID)
}

// FindUser resolves a username case-insensitively.
func (s *Service) FindUser(username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, wrapStoreErr(err, "user "+username)
	}
	return user, nil
}

func (s *Service) SearchUsers(query string) ([]models.User, error) {
	return s.store.SearchUsers(query)
}
