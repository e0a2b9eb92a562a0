package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
)

type askRequest struct {
	Question string `json:"question"`
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	from, to, err := decodeRange(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	d, err := h.b.Analytics.Dashboard(r.Context(), cid, from, to)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, d)
}

func (h *handler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	from, to, err := decodeRange(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	bucket := dto.Bucket(r.URL.Query().Get("bucket"))
	series, err := h.b.Analytics.RevenueSeries(r.Context(), cid, from, to, bucket)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, series)
}

func (h *handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	from, to, err := decodeRange(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	grid, err := h.b.Analytics.ActivityGrid(r.Context(), cid, from, to)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, grid)
}

func (h *handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	list, err := h.b.Insights.Generate(r.Context(), cid)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, struct {
		Insights []dto.Insight `json:"insights"`
	}{Insights: list})
}

func (h *handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var req askRequest
	if err := h.api.DecodeJSON(r, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	answer, err := h.b.Insights.Ask(r.Context(), cid, req.Question)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, answer)
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	horizon, err := intParam(r.URL.Query(), "horizon")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	f, err := h.b.Forecasts.ProductDemand(r.Context(), cid, entities.ProductID(chi.URLParam(r, "productID")), horizon)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, f)
}
