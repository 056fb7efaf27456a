package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/dukan/internal/config"
	"github.com/example/dukan/internal/middleware"
	"github.com/example/dukan/internal/models"
	"github.com/example/dukan/internal/queue"
	"github.com/example/dukan/internal/services"
	"github.com/example/dukan/internal/utils"
)

// OrderHandler manages customer order endpoints. Orders stay editable while
// their edit window is open and the status is still "new".
type OrderHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, telegram: telegram}
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	DeliveryAddress string             `json:"delivery_address"`
	Notes           string             `json:"notes"`
}

// CreateOrder places a new order. Prices and names are snapshotted from the
// catalog at placement time, and the edit window starts now.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return h.placeOrder(c, userID, req.Items, req.DeliveryAddress, req.Notes)
}

// placeOrder is the shared placement path for direct orders and reorders
// from a favorite template.
func (h *OrderHandler) placeOrder(c *fiber.Ctx, userID uuid.UUID, itemReqs []orderItemRequest, deliveryAddress, notes string) error {
	if len(itemReqs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order must contain at least one item")
	}

	items, subtotal, currency, err := h.buildItems(itemReqs)
	if err != nil {
		return err
	}

	now := time.Now()
	deadline := utils.EditDeadline(now, h.cfg.EditWindow)

	order := models.Order{
		UserID:          userID,
		OrderNumber:     generateOrderNumber(),
		Status:          models.OrderStatusNew,
		PlacedAt:        now,
		EditableUntil:   &deadline,
		Subtotal:        subtotal,
		TotalAmount:     subtotal,
		Currency:        currency,
		DeliveryAddress: deliveryAddress,
		Notes:           notes,
		Items:           items,
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	go h.dispatchOrderPlaced(order)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":             order.ID,
			"order_number":   order.OrderNumber,
			"status":         order.Status,
			"placed_at":      order.PlacedAt,
			"editable_until": order.EditableUntil,
			"total":          order.TotalAmount,
			"currency":       order.Currency,
		},
	})
}

// ListOrders returns the authenticated user's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Envelope(total),
	})
}

// GetOrder returns a single order owned by the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"data":     order,
		"editable": order.IsEditableNow(),
	})
}

type updateOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	DeliveryAddress *string            `json:"delivery_address"`
	Notes           *string            `json:"notes"`
}

// UpdateOrder replaces the items of an order still inside its edit window.
// A successful edit restarts the window.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return err
	}

	if err := requireEditable(order); err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) > 0 {
		items, subtotal, currency, err := h.buildItems(req.Items)
		if err != nil {
			return err
		}

		if err := h.db.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := h.db.Create(&items).Error; err != nil {
			return err
		}

		order.Items = items
		order.Subtotal = subtotal
		order.TotalAmount = subtotal
		order.Currency = currency
	}

	if req.DeliveryAddress != nil {
		order.DeliveryAddress = *req.DeliveryAddress
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	deadline := utils.EditDeadline(time.Now(), h.cfg.EditWindow)
	order.EditableUntil = &deadline

	if err := h.db.Omit("Items").Save(order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CancelOrder cancels an order still inside its edit window.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return err
	}

	if err := requireEditable(order); err != nil {
		return err
	}

	order.Status = models.OrderStatusCancelled
	order.EditableUntil = nil

	if err := h.db.Omit("Items").Save(order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// buildItems snapshots catalog products into order items. The currency comes
// from the catalog; a mixed-currency cart takes the first product's.
func (h *OrderHandler) buildItems(reqs []orderItemRequest) ([]models.OrderItem, float64, string, error) {
	var items []models.OrderItem
	var subtotal float64
	currency := "ILS"

	for i, r := range reqs {
		if r.Quantity <= 0 {
			return nil, 0, "", fiber.NewError(fiber.StatusBadRequest, "item quantity must be positive")
		}

		productID, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, 0, "", fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var product models.Product
		if err := h.db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, 0, "", fiber.NewError(fiber.StatusBadRequest, "unknown or inactive product")
			}
			return nil, 0, "", err
		}

		if i == 0 && product.Currency != "" {
			currency = product.Currency
		}

		lineTotal := product.UnitPrice * float64(r.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   &product.ID,
			ProductName: product.Name,
			Quantity:    r.Quantity,
			UnitPrice:   product.UnitPrice,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal
	}

	return items, subtotal, currency, nil
}

// dispatchOrderPlaced publishes the order event and notifies the admin chat.
// Failures are logged; the order is already committed.
func (h *OrderHandler) dispatchOrderPlaced(order models.Order) {
	var user models.User
	if err := h.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		log.Printf("[Order] lookup user for order %s failed: %v", order.OrderNumber, err)
	}

	if h.cfg.RabbitURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishOrderPlaced(ctx, h.cfg.RabbitURL, queue.OrderPlacedEvent{
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID.String(),
			Phone:       user.Phone,
			TotalAmount: order.TotalAmount,
			Currency:    order.Currency,
			PlacedAt:    order.PlacedAt,
		})
	}

	if h.telegram != nil {
		items := make([]services.OrderItemNotification, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, services.OrderItemNotification{
				Name:     item.ProductName,
				Quantity: item.Quantity,
			})
		}

		if err := h.telegram.NotifyNewOrder(services.OrderNotification{
			OrderNumber:   order.OrderNumber,
			CustomerName:  user.Name,
			CustomerPhone: user.Phone,
			Items:         items,
			TotalAmount:   order.TotalAmount,
			Currency:      order.Currency,
		}); err != nil {
			log.Printf("[Order] telegram notification failed: %v", err)
		}
	}
}

// ownedOrder loads the order from the :id param, scoped to the current user.
func (h *OrderHandler) ownedOrder(c *fiber.Ctx) (*models.Order, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, err
	}

	return &order, nil
}

// requireEditable enforces both gates: the order must still be "new" and the
// edit window must be open.
func requireEditable(order *models.Order) error {
	if order.Status != models.OrderStatusNew {
		return fiber.NewError(fiber.StatusConflict, "order is already being processed")
	}
	if !utils.CanEditAt(order.EditableUntil, time.Now()) {
		return fiber.NewError(fiber.StatusConflict, "order can no longer be edited")
	}
	return nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
