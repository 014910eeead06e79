package handlers

import (
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	opts     Options
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, opts Options) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		opts:     opts,
	}
}

// RegisterRoutes registers the order routes behind protect.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	router.Get("/orders", protect, h.HandleListOrders)
	router.Post("/orders", protect, h.HandleCreateOrder)
}

// AddressRequest is the shipping address of an order request.
type AddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"`
}

// LineItemRequest is one product of an order request.
type LineItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest represents the request body for placing an order.
// An empty products array is accepted.
type CreateOrderRequest struct {
	UserID          string            `json:"userId" validate:"required"`
	Products        []LineItemRequest `json:"products" validate:"required"`
	ShippingAddress *AddressRequest   `json:"shippingAddress" validate:"required"`
	PaymentMethod   string            `json:"paymentMethod" validate:"required"`
	TotalAmount     float64           `json:"totalAmount" validate:"required,gt=0"`
}

// HandleCreateOrder places a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(err)
	}
	if uid := authenticatedUser(c); uid != "" {
		req.UserID = uid
	}
	if err := h.validate.Struct(req); err != nil {
		return badInput(err)
	}

	items := make([]models.LineItem, 0, len(req.Products))
	for _, it := range req.Products {
		items = append(items, models.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order := &models.Order{
		UserID:   req.UserID,
		Products: items,
		ShippingAddress: models.Address{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   req.TotalAmount,
	}

	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	if err := h.service.PlaceOrder(ctx, order); err != nil {
		return err
	}

	h.opts.Metrics.OrderPlaced()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"orderId": order.ID,
		"status":  order.Status,
		"message": "Order placed successfully.",
	})
}

// HandleListOrders returns one page of a user's orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("userId"))
	if uid := authenticatedUser(c); uid != "" {
		userID = uid
	}
	if userID == "" {
		return ErrMissingParameters
	}

	page := h.opts.Paginator.Normalize(c.Query("page"), c.Query("limit"))

	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	orders, total, err := h.service.ListOrders(ctx, userID, page)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   page.Page,
		"limit":  page.Limit,
	})
}

// authenticatedUser returns the token subject when the route is protected.
func authenticatedUser(c *fiber.Ctx) string {
	uid, _ := c.Locals(middleware.LocalUserID).(string)
	return uid
}
