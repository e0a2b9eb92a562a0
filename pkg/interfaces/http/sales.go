package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

type promotionStatusRequest struct {
	Status *entities.PromotionStatus `json:"status"`
}

type spendRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type orderStatusRequest struct {
	Status *entities.OrderStatus `json:"status"`
}

// orderView adds the derived totals to an order
type orderView struct {
	*entities.Order
	Subtotal      decimal.Decimal   `json:"subtotal"`
	DiscountTotal decimal.Decimal   `json:"discount_total"`
	Total         decimal.Decimal   `json:"total"`
	Units         entities.Quantity `json:"units"`
}

func newOrderView(o *entities.Order) orderView {
	return orderView{
		Order:         o,
		Subtotal:      o.Subtotal(),
		DiscountTotal: o.DiscountTotal(),
		Total:         o.Total(),
		Units:         o.Units(),
	}
}

func missingStatus() error {
	return &perrors.Error{Code: perrors.EInvalid, Msg: "status is required"}
}

func (h *handler) handleListPromotions(w http.ResponseWriter, r *http.Request) {
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
	filter := repositories.PromotionFilter{}
	if filter.Status, err = enumParam(q, "status", entities.ParsePromotionStatus); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if filter.Type, err = enumParam(q, "type", entities.ParsePromotionType); err != nil {
		h.api.Err(w, r, err)
		return
	}
	activeOn, err := timeParam(q, "active_on", false)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if !activeOn.IsZero() {
		filter.ActiveOn = &activeOn
	}

	res, err := h.b.Promotions.ListPromotions(r.Context(), cid, filter, page)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *handler) handleGetPromotion(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Promotions.GetPromotion(r.Context(), cid, entities.PromotionID(chi.URLParam(r, "promotionID")))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, p)
}

func (h *handler) handleCreatePromotion(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.PromotionInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Promotions.CreatePromotion(r.Context(), cid, in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusCreated, p)
}

func (h *handler) handleUpdatePromotion(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.PromotionInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Promotions.UpdatePromotion(r.Context(), cid, entities.PromotionID(chi.URLParam(r, "promotionID")), in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, p)
}

func (h *handler) handlePromotionStatus(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var req promotionStatusRequest
	if err := h.api.DecodeJSON(r, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if req.Status == nil {
		h.api.Err(w, r, missingStatus())
		return
	}
	p, err := h.b.Promotions.Transition(r.Context(), cid, entities.PromotionID(chi.URLParam(r, "promotionID")), *req.Status)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, p)
}

func (h *handler) handlePromotionSpend(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var req spendRequest
	if err := h.api.DecodeJSON(r, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	p, err := h.b.Promotions.RecordSpend(r.Context(), cid, entities.PromotionID(chi.URLParam(r, "promotionID")), req.Amount)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, p)
}

func (h *handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
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
	filter := repositories.OrderFilter{
		CustomerID: entities.CustomerID(q.Get("customer_id")),
		ProductID:  entities.ProductID(q.Get("product_id")),
	}
	if filter.Status, err = enumParam(q, "status", entities.ParseOrderStatus); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if filter.From, filter.To, err = decodeRange(r); err != nil {
		h.api.Err(w, r, err)
		return
	}

	res, err := h.b.Orders.ListOrders(r.Context(), cid, filter, page)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	views := make([]orderView, 0, len(res.Items))
	for _, o := range res.Items {
		views = append(views, newOrderView(o))
	}
	h.api.Respond(w, r, http.StatusOK, dto.ListResult[orderView]{
		Items:  views,
		Total:  res.Total,
		Offset: res.Offset,
		Limit:  res.Limit,
	})
}

func (h *handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	o, err := h.b.Orders.GetOrder(r.Context(), cid, entities.OrderID(chi.URLParam(r, "orderID")))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newOrderView(o))
}

func (h *handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var in dto.OrderInput
	if err := h.api.DecodeJSON(r, &in); err != nil {
		h.api.Err(w, r, err)
		return
	}
	o, err := h.b.Orders.CreateOrder(r.Context(), cid, in)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+string(o.ID))
	h.api.Respond(w, r, http.StatusCreated, newOrderView(o))
}

func (h *handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var req orderStatusRequest
	if err := h.api.DecodeJSON(r, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if req.Status == nil {
		h.api.Err(w, r, missingStatus())
		return
	}
	o, err := h.b.Orders.UpdateStatus(r.Context(), cid, entities.OrderID(chi.URLParam(r, "orderID")), *req.Status)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newOrderView(o))
}

// bounds of the activity feed page
const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	q := r.URL.Query()
	limit, err := intParam(q, "limit")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	switch {
	case limit <= 0:
		limit = defaultEventsLimit
	case limit > maxEventsLimit:
		limit = maxEventsLimit
	}
	since, err := timeParam(q, "since", false)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	list, err := h.b.Events.List(r.Context(), cid, since, limit)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if list == nil {
		list = []entities.Event{}
	}
	h.api.Respond(w, r, http.StatusOK, struct {
		Events []entities.Event `json:"events"`
	}{Events: list})
}
