package repositories

import "github.com/vsinha/vantax/pkg/domain/entities"

// UserRepository provides access to company users
type UserRepository interface {
	GetUser(companyID entities.CompanyID, id entities.UserID) (*entities.User, error)
	GetUserByEmail(companyID entities.CompanyID, email string) (*entities.User, error)
	GetUsers(companyID entities.CompanyID) ([]*entities.User, error)
	SaveUser(user *entities.User) error
	LoadUsers(users []*entities.User) error
}
