package http

import (
	"net/http"
	"strings"

	"github.com/vsinha/vantax/pkg/application/icontext"
	"github.com/vsinha/vantax/pkg/domain/entities"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// companySummary is the public directory entry shown on the login screen
type companySummary struct {
	ID       entities.CompanyID `json:"id"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	Industry string             `json:"industry"`
}

type loginRequest struct {
	Company  string `json:"company"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.b.Tenants.List(r.Context())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	out := make([]companySummary, 0, len(companies))
	for _, c := range companies {
		out = append(out, companySummary{ID: c.ID, Name: c.Name, Slug: c.Slug, Industry: c.Industry})
	}
	h.api.Respond(w, r, http.StatusOK, out)
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.api.DecodeJSON(r, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if strings.TrimSpace(req.Company) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.api.Err(w, r, &perrors.Error{Code: perrors.EInvalid, Msg: "company, email and password are required"})
		return
	}

	company, err := h.b.Tenants.Resolve(r.Context(), req.Company)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	token, err := h.b.Auth.Login(r.Context(), company.ID, req.Email, req.Password)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, token)
}

func (h *handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := icontext.GetPrincipal(r.Context())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	user, err := h.b.Auth.Me(r.Context(), p.CompanyID, p.UserID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, user)
}

// companyID is the tenant resolved by the Tenant middleware
func companyID(r *http.Request) (entities.CompanyID, error) {
	c, err := icontext.GetCompany(r.Context())
	if err != nil {
		return "", err
	}
	return c.ID, nil
}
