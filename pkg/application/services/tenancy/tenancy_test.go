package tenancy

import (
	"context"
	"testing"

	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

func TestService_Resolve(t *testing.T) {
	repos := testdata.BuildTestRepositories()
	svc := NewService(repos.Companies)
	ctx := context.Background()

	tests := []struct {
		name     string
		ref      string
		wantID   string
		wantCode string
	}{
		{name: "by id", ref: "acme", wantID: "acme"},
		{name: "by slug ignores case", ref: " GLOBEX ", wantID: "globex"},
		{name: "unknown", ref: "initech", wantCode: perrors.ENotFound},
		{name: "inactive", ref: "dormant", wantCode: perrors.EForbidden},
		{name: "empty", ref: "", wantCode: perrors.EInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, err := svc.Resolve(ctx, tt.ref)
			if tt.wantCode != "" {
				if code := perrors.ErrorCode(err); code != tt.wantCode {
					t.Fatalf("Expected code %q, got %q (%v)", tt.wantCode, code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(company.ID) != tt.wantID {
				t.Errorf("Expected company %s, got %s", tt.wantID, company.ID)
			}
		})
	}
}

func TestService_ListSkipsInactive(t *testing.T) {
	svc := NewService(testdata.BuildTestRepositories().Companies)

	companies, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("Expected 2 active companies, got %d", len(companies))
	}
	for _, c := range companies {
		if c.ID == "dormant" {
			t.Error("Expected inactive company to be hidden")
		}
	}
}
