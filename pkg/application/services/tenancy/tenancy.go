package tenancy

import (
	"context"
	"strings"

	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// Service resolves tenants from the X-Company-ID header value
type Service struct {
	companies repositories.CompanyRepository
}

// NewService creates a tenancy service
func NewService(companies repositories.CompanyRepository) *Service {
	return &Service{companies: companies}
}

var _ services.TenantService = (*Service)(nil)

// Resolve finds a company by ID first and by slug second. Inactive
// companies resolve to EForbidden so they can still be told apart from
// unknown ones.
func (s *Service) Resolve(ctx context.Context, ref string) (*entities.Company, error) {
	const op = "tenancy/Resolve"

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &perrors.Error{Code: perrors.EInvalid, Op: op, Msg: "company is required"}
	}

	company, err := s.companies.GetCompany(entities.CompanyID(ref))
	if perrors.ErrorCode(err) == perrors.ENotFound {
		company, err = s.companies.GetCompanyBySlug(strings.ToLower(ref))
	}
	if err != nil {
		if perrors.ErrorCode(err) == perrors.ENotFound {
			return nil, perrors.NotFound(op, "company %s not found", ref)
		}
		return nil, err
	}

	if !company.Active {
		return nil, &perrors.Error{Code: perrors.EForbidden, Op: op, Msg: "company " + company.Slug + " is inactive"}
	}
	return company, nil
}

// List returns every active company, for the login picker
func (s *Service) List(ctx context.Context) ([]*entities.Company, error) {
	all, err := s.companies.GetAllCompanies()
	if err != nil {
		return nil, err
	}
	active := make([]*entities.Company, 0, len(all))
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}
