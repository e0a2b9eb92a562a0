package memory

import (
	"sync"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// UserRepository provides in-memory user storage, partitioned by company
type UserRepository struct {
	mu      sync.RWMutex
	tenants map[entities.CompanyID]*partition[entities.UserID, entities.User]
}

// NewUserRepository creates a new in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		tenants: make(map[entities.CompanyID]*partition[entities.UserID, entities.User]),
	}
}

// Verify interface compliance
var _ repositories.UserRepository = (*UserRepository)(nil)

// LoadUsers loads users into the repository
func (r *UserRepository) LoadUsers(users []*entities.User) error {
	for _, u := range users {
		if err := r.SaveUser(u); err != nil {
			return err
		}
	}
	return nil
}

// SaveUser inserts or replaces a user. Emails are unique within a company.
func (r *UserRepository) SaveUser(user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[user.CompanyID]
	if !ok {
		p = newPartition[entities.UserID, entities.User](8)
		r.tenants[user.CompanyID] = p
	}
	for i := range p.rows {
		if p.rows[i].Email == user.Email && p.rows[i].ID != user.ID {
			return perrors.Conflict("memory/UserRepository.SaveUser", "email %s already registered", user.Email)
		}
	}
	p.put(user.ID, *user)
	return nil
}

// GetUser returns a user by id within a company
func (r *UserRepository) GetUser(companyID entities.CompanyID, id entities.UserID) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.tenants[companyID]; ok {
		if u, ok := p.get(id); ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, perrors.NotFound("memory/UserRepository.GetUser", "user not found: %s", id)
}

// GetUserByEmail returns a user by email within a company
func (r *UserRepository) GetUserByEmail(companyID entities.CompanyID, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = entities.NormalizeEmail(email)
	if p, ok := r.tenants[companyID]; ok {
		for i := range p.rows {
			if p.rows[i].Email == email {
				cp := p.rows[i]
				return &cp, nil
			}
		}
	}
	return nil, perrors.NotFound("memory/UserRepository.GetUserByEmail", "user not found: %s", email)
}

// GetUsers returns all users of a company
func (r *UserRepository) GetUsers(companyID entities.CompanyID) ([]*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*entities.User
	if p, ok := r.tenants[companyID]; ok {
		for i := range p.rows {
			cp := p.rows[i]
			users = append(users, &cp)
		}
	}
	return users, nil
}
