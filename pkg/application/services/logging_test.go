package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubProducts struct {
	ProductService
	deleteErr error
}

func (s stubProducts) GetProduct(_ context.Context, companyID entities.CompanyID, id entities.ProductID) (*entities.Product, error) {
	return &entities.Product{ID: id, CompanyID: companyID}, nil
}

func (s stubProducts) DeleteProduct(context.Context, entities.CompanyID, entities.ProductID) error {
	return s.deleteErr
}

type stubAuth struct{ AuthService }

func (stubAuth) Login(context.Context, entities.CompanyID, string, string) (*dto.Token, error) {
	return nil, &perrors.Error{Code: perrors.EUnauthorized, Msg: "invalid email or password"}
}

func TestProductLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := context.Background()

	l := NewProductLogger(zap.New(core), stubProducts{deleteErr: perrors.Conflict("test", "product has orders")})
	p, err := l.GetProduct(ctx, "acme", "P-1")
	require.NoError(t, err)
	assert.Equal(t, entities.ProductID("P-1"), p.ID)
	assert.Error(t, l.DeleteProduct(ctx, "acme", "P-1"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "find product", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "acme", fields["company_id"])
	assert.Equal(t, "P-1", fields["product_id"])
	assert.Contains(t, fields, "took")

	assert.Equal(t, "failed to delete product", entries[1].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level, "client errors stay at debug")
}

func TestProductLoggerInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	l := NewProductLogger(zap.New(core), stubProducts{deleteErr: errors.New("disk on fire")})
	assert.Error(t, l.DeleteProduct(context.Background(), "acme", "P-1"))

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "disk on fire", entries[0].ContextMap()["error"])
}

func TestAuthLoggerOmitsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	l := NewAuthLogger(zap.New(core), stubAuth{})
	_, err := l.Login(context.Background(), "acme", "admin@acme.test", "hunter2")
	assert.Equal(t, perrors.EUnauthorized, perrors.ErrorCode(err))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "admin@acme.test", fields["email"])
	for k, v := range fields {
		assert.NotEqual(t, "hunter2", v, "field %s leaks the password", k)
	}
}
