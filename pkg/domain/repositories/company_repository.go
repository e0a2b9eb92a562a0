package repositories

import "github.com/vsinha/vantax/pkg/domain/entities"

// CompanyRepository provides access to tenants
type CompanyRepository interface {
	GetCompany(id entities.CompanyID) (*entities.Company, error)
	GetCompanyBySlug(slug string) (*entities.Company, error)
	GetAllCompanies() ([]*entities.Company, error)
	SaveCompany(company *entities.Company) error
	LoadCompanies(companies []*entities.Company) error
}
