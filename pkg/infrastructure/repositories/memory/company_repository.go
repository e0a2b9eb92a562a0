package memory

import (
	"sync"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// CompanyRepository provides in-memory tenant storage
type CompanyRepository struct {
	mu        sync.RWMutex
	companies *partition[entities.CompanyID, entities.Company]
	slugs     map[string]entities.CompanyID
}

// NewCompanyRepository creates a new in-memory company repository
func NewCompanyRepository(expectedCompanies int) *CompanyRepository {
	return &CompanyRepository{
		companies: newPartition[entities.CompanyID, entities.Company](expectedCompanies),
		slugs:     make(map[string]entities.CompanyID, expectedCompanies),
	}
}

// Verify interface compliance
var _ repositories.CompanyRepository = (*CompanyRepository)(nil)

// LoadCompanies loads companies into the repository
func (r *CompanyRepository) LoadCompanies(companies []*entities.Company) error {
	for _, c := range companies {
		if err := r.SaveCompany(c); err != nil {
			return err
		}
	}
	return nil
}

// SaveCompany inserts or replaces a company. Slugs are unique across tenants.
func (r *CompanyRepository) SaveCompany(company *entities.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.slugs[company.Slug]; ok && owner != company.ID {
		return perrors.Conflict("memory/CompanyRepository.SaveCompany", "company slug %s already in use", company.Slug)
	}
	if prev, ok := r.companies.get(company.ID); ok && prev.Slug != company.Slug {
		delete(r.slugs, prev.Slug)
	}
	r.companies.put(company.ID, *company)
	r.slugs[company.Slug] = company.ID
	return nil
}

// GetCompany returns a company by id
func (r *CompanyRepository) GetCompany(id entities.CompanyID) (*entities.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies.get(id)
	if !ok {
		return nil, perrors.NotFound("memory/CompanyRepository.GetCompany", "company not found: %s", id)
	}
	cp := *c
	return &cp, nil
}

// GetCompanyBySlug returns a company by its slug
func (r *CompanyRepository) GetCompanyBySlug(slug string) (*entities.Company, error) {
	r.mu.RLock()
	id, ok := r.slugs[slug]
	r.mu.RUnlock()
	if !ok {
		return nil, perrors.NotFound("memory/CompanyRepository.GetCompanyBySlug", "company not found: %s", slug)
	}
	return r.GetCompany(id)
}

// GetAllCompanies returns all companies in creation order
func (r *CompanyRepository) GetAllCompanies() ([]*entities.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	companies := make([]*entities.Company, 0, len(r.companies.rows))
	for i := range r.companies.rows {
		cp := r.companies.rows[i]
		companies = append(companies, &cp)
	}
	return companies, nil
}
