package service

import (
	"errors"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"github.com/lib/pq"
)

var ErrEmailTaken = errors.New("email is already registered")

// UserService handles user-related business logic.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *UserService) Register(req model.RegisterRequest) (*model.User, error) {
	hashedPassword, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}
