package account

import (
	"context"

	"gorm.io/gorm"

	"relaychat/internal/dbmysql"
)

type AccountRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error)
	CheckUserExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]*dbmysql.User, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *accountRepository) GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *accountRepository) CheckUserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) ListUsers(ctx context.Context) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}
