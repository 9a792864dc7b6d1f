package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ctopbusca/ctop-busca/config"
	"github.com/ctopbusca/ctop-busca/database/model"
	"github.com/ctopbusca/ctop-busca/database/repository"
	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/util/crypto"
)

var (
	ErrAlreadyExists    = errors.New("user already exists")
	ErrNotFound         = errors.New("user not found")
	ErrProtected        = errors.New("user cannot be removed")
	ErrEmptyCredential  = errors.New("username and password are required")
	ErrStoreUnavailable = repository.ErrStoreUnavailable
)

// CredentialService manages panel accounts. Passwords are kept only as
// bcrypt hashes.
type CredentialService struct {
	repo repository.UserRepository
	mu   sync.Mutex
}

func NewCredentialService(repo repository.UserRepository) *CredentialService {
	return &CredentialService{repo: repo}
}

// EnsureInitialized creates the store with the admin account when it does
// not exist yet. It reports whether the store was created.
func (s *CredentialService) EnsureInitialized() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.repo.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	password := config.GetAdminPassword()
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return false, err
	}
	if err := s.repo.Save([]model.User{{Username: config.AdminUsername, PasswordHash: hash}}); err != nil {
		return false, err
	}
	if password == config.DefaultAdminPassword {
		logger.Warningf("user store created with the default password for %s, change it now", config.AdminUsername)
	} else {
		logger.Noticef("user store created with account %s", config.AdminUsername)
	}
	return true, nil
}

// Load returns all users in store order. A missing or corrupt store yields
// ErrStoreUnavailable; it is never recreated here.
func (s *CredentialService) Load() ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *CredentialService) load() ([]model.User, error) {
	users, err := s.repo.Load()
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return users, nil
}

// List returns the usernames in store order.
func (s *CredentialService) List() ([]string, error) {
	users, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return names, nil
}

// Create adds a user. Both values are trimmed; usernames are compared
// case-sensitively.
func (s *CredentialService) Create(username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if indexOf(users, username) >= 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, username)
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	if err := s.repo.Save(append(users, model.User{Username: username, PasswordHash: hash})); err != nil {
		return err
	}
	logger.Infof("user %s created", username)
	return nil
}

// Delete removes a user. The admin account can never be removed.
func (s *CredentialService) Delete(username string) error {
	if username == config.AdminUsername {
		return fmt.Errorf("%w: %s", ErrProtected, username)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(users, username)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	kept := append(users[:i:i], users[i+1:]...)
	if err := s.repo.Save(kept); err != nil {
		return err
	}
	logger.Infof("user %s deleted", username)
	return nil
}

// ChangePassword replaces the password of an existing user.
func (s *CredentialService) ChangePassword(username, password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(users, username)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	users[i].PasswordHash = hash
	if err := s.repo.Save(users); err != nil {
		return err
	}
	logger.Infof("password of %s changed", username)
	return nil
}

// Verify reports whether password matches the stored hash of username.
// Unknown users, store errors and malformed hashes all yield false.
func (s *CredentialService) Verify(username, password string) bool {
	users, err := s.Load()
	if err != nil {
		logger.Warning("verify user:", err)
		return false
	}
	i := indexOf(users, username)
	if i < 0 {
		return false
	}
	if !crypto.IsBcryptHash(users[i].PasswordHash) {
		logger.Warningf("user %s has a malformed password hash", username)
		return false
	}
	return crypto.CheckPasswordHash(users[i].PasswordHash, password)
}

func indexOf(users []model.User, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
