// Package icontext carries the authenticated caller through a request context.
package icontext

import (
	"context"

	"github.com/vsinha/vantax/pkg/domain/entities"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

type contextKey string

const (
	principalCtxKey = contextKey("vantax/principal/v1")
	companyCtxKey   = contextKey("vantax/company/v1")
)

// Principal is the verified caller of a tenant request
type Principal struct {
	UserID    entities.UserID
	CompanyID entities.CompanyID
	Role      entities.Role
}

// SetPrincipal sets the principal on context.
func SetPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// GetPrincipal retrieves the principal from context.
func GetPrincipal(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok {
		return Principal{}, &perrors.Error{
			Code: perrors.EUnauthorized,
			Msg:  "principal not found on context",
		}
	}
	return p, nil
}

// Actor returns the user behind the request, or "" for system work such as seeding.
func Actor(ctx context.Context) entities.UserID {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok {
		return ""
	}
	return p.UserID
}

// SetCompany sets the resolved tenant on context.
func SetCompany(ctx context.Context, c *entities.Company) context.Context {
	return context.WithValue(ctx, companyCtxKey, c)
}

// GetCompany retrieves the resolved tenant from context.
func GetCompany(ctx context.Context) (*entities.Company, error) {
	c, ok := ctx.Value(companyCtxKey).(*entities.Company)
	if !ok || c == nil {
		return nil, &perrors.Error{
			Code: perrors.EInternal,
			Msg:  "company not found on context",
		}
	}
	return c, nil
}
