package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
)

func (h *handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := decodePage(q)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	status, err := enumParam(q, "status", entities.ParseProductStatus)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	filter := repositories.ProductFilter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Status:   status,
		Query:    q.Get("q"),
	}

	res, err := h.b.Products.ListProducts(r.Context(), cid, filter, page)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Products.GetProduct(r.Context(), cid, entities.ProductID(chi.URLParam(r, "productID")))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, p)
}

func (h *handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.ProductInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Products.CreateProduct(r.Context(), cid, in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusCreated, p)
}

func (h *handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.ProductInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Products.UpdateProduct(r.Context(), cid, entities.ProductID(chi.URLParam(r, "productID")), in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, p)
}

func (h *handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := h.b.Products.DeleteProduct(r.Context(), cid, entities.ProductID(chi.URLParam(r, "productID"))); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := decodePage(q)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	channel, err := enumParam(q, "channel", entities.ParseChannel)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	tier, err := enumParam(q, "tier", entities.ParseTier)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	filter := repositories.CustomerFilter{
		Channel: channel,
		Region:  q.Get("region"),
		Tier:    tier,
		Query:   q.Get("q"),
	}

	res, err := h.b.Customers.ListCustomers(r.Context(), cid, filter, page)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	c, err := h.b.Customers.GetCustomer(r.Context(), cid, entities.CustomerID(chi.URLParam(r, "customerID")))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, c)
}

func (h *handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.CustomerInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	c, err := h.b.Customers.CreateCustomer(r.Context(), cid, in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusCreated, c)
}

func (h *handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.CustomerInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	c, err := h.b.Customers.UpdateCustomer(r.Context(), cid, entities.CustomerID(chi.URLParam(r, "customerID")), in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, c)
}

func (h *handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := h.b.Customers.DeleteCustomer(r.Context(), cid, entities.CustomerID(chi.URLParam(r, "customerID"))); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusNoContent, nil)
}
