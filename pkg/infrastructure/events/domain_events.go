package events

import (
	"github.com/vsinha/vantax/pkg/domain/entities"
)

const (
	ProductCreatedEvent = "product.created"
	ProductUpdatedEvent = "product.updated"
	ProductDeletedEvent = "product.deleted"

	CustomerCreatedEvent = "customer.created"
	CustomerUpdatedEvent = "customer.updated"
	CustomerDeletedEvent = "customer.deleted"

	PromotionCreatedEvent       = "promotion.created"
	PromotionUpdatedEvent       = "promotion.updated"
	PromotionStatusChangedEvent = "promotion.status_changed"
	PromotionSpendRecordedEvent = "promotion.spend_recorded"

	OrderCreatedEvent       = "order.created"
	OrderStatusChangedEvent = "order.status_changed"

	UserLoggedInEvent = "auth.login"

	// AllEvents subscribes a handler to every event type
	AllEvents = "*"
)

// NewEvent builds an event; the bus stamps ID and OccurredAt on publish
func NewEvent(companyID entities.CompanyID, eventType, subject string, actor entities.UserID, data map[string]interface{}) entities.Event {
	return entities.Event{
		CompanyID: companyID,
		Type:      eventType,
		Subject:   subject,
		Actor:     actor,
		Data:      data,
	}
}

func NewProductEvent(eventType string, product *entities.Product, actor entities.UserID) entities.Event {
	return NewEvent(product.CompanyID, eventType, string(product.ID), actor, map[string]interface{}{
		"sku":  product.SKU,
		"name": product.Name,
	})
}

func NewCustomerEvent(eventType string, customer *entities.Customer, actor entities.UserID) entities.Event {
	return NewEvent(customer.CompanyID, eventType, string(customer.ID), actor, map[string]interface{}{
		"code": customer.Code,
		"name": customer.Name,
	})
}

func NewPromotionEvent(eventType string, promotion *entities.Promotion, actor entities.UserID) entities.Event {
	return NewEvent(promotion.CompanyID, eventType, string(promotion.ID), actor, map[string]interface{}{
		"name":   promotion.Name,
		"status": promotion.Status.String(),
		"spend":  promotion.Spend.String(),
		"budget": promotion.Budget.String(),
	})
}

func NewOrderEvent(eventType string, order *entities.Order, actor entities.UserID) entities.Event {
	return NewEvent(order.CompanyID, eventType, string(order.ID), actor, map[string]interface{}{
		"customer_id": string(order.CustomerID),
		"status":      order.Status.String(),
		"total":       order.Total().String(),
	})
}

func NewLoginEvent(user *entities.User) entities.Event {
	return NewEvent(user.CompanyID, UserLoggedInEvent, string(user.ID), user.ID, map[string]interface{}{
		"email": user.Email,
	})
}
