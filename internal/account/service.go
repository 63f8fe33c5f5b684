package account

import (
	"context"
	"errors"

	"relaychat/internal/common"
	"relaychat/internal/dbmysql"
)

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*dbmysql.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, email string) (*dbmysql.User, error)
	ListUsers(ctx context.Context) ([]*dbmysql.User, error)
}

type accountService struct {
	repo AccountRepository
}

func NewAccountService(repo AccountRepository) AccountService {
	return &accountService{repo: repo}
}

func (s *accountService) Register(ctx context.Context, name, email, password string) (*dbmysql.User, error) {
	if err := common.ValidateName(name); err != nil {
		return nil, err
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.repo.CheckUserExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &dbmysql.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := common.CheckPassword(password, user.PasswordHash); err != nil {
		return "", ErrInvalidCredentials
	}

	return common.GenerateToken(user.Email)
}

func (s *accountService) GetProfile(ctx context.Context, email string) (*dbmysql.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *accountService) ListUsers(ctx context.Context) ([]*dbmysql.User, error) {
	return s.repo.ListUsers(ctx)
}
