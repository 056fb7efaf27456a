package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/dukan/internal/middleware"
	"github.com/example/dukan/internal/models"
)

// FavoriteHandler manages saved order templates.
type FavoriteHandler struct {
	db     *gorm.DB
	orders *OrderHandler
}

// NewFavoriteHandler constructs FavoriteHandler.
func NewFavoriteHandler(db *gorm.DB, orders *OrderHandler) *FavoriteHandler {
	return &FavoriteHandler{db: db, orders: orders}
}

type saveFavoriteRequest struct {
	Name    string             `json:"name"`
	OrderID string             `json:"order_id"`
	Items   []orderItemRequest `json:"items"`
}

// SaveFavorite stores a named template, either from explicit items or from
// an existing order of the user.
func (h *FavoriteHandler) SaveFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req saveFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	favorite := models.FavoriteOrder{
		UserID: userID,
		Name:   req.Name,
	}

	switch {
	case req.OrderID != "":
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
		}

		var order models.Order
		if err := h.db.Preload("Items").
			First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "order not found")
			}
			return err
		}

		for _, item := range order.Items {
			favorite.Items = append(favorite.Items, models.FavoriteOrderItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
			})
		}
	case len(req.Items) > 0:
		for _, item := range req.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
			}
			if item.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "item quantity must be positive")
			}

			var product models.Product
			if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fiber.NewError(fiber.StatusBadRequest, "unknown product")
				}
				return err
			}

			favorite.Items = append(favorite.Items, models.FavoriteOrderItem{
				ProductID:   &product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
			})
		}
	default:
		return fiber.NewError(fiber.StatusBadRequest, "order_id or items required")
	}

	if err := h.db.Create(&favorite).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": favorite})
}

// ListFavorites returns the user's templates.
func (h *FavoriteHandler) ListFavorites(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var favorites []models.FavoriteOrder
	if err := h.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&favorites).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": favorites})
}

// DeleteFavorite removes a template and its items.
func (h *FavoriteHandler) DeleteFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var favorite models.FavoriteOrder
	if err := h.db.First(&favorite, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "favorite not found")
		}
		return err
	}

	if err := h.db.Where("favorite_order_id = ?", favorite.ID).
		Delete(&models.FavoriteOrderItem{}).Error; err != nil {
		return err
	}
	if err := h.db.Delete(&favorite).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

// OrderFromFavorite places a fresh order from a template. Prices are
// re-snapshotted from the current catalog, not the ones at save time.
func (h *FavoriteHandler) OrderFromFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var favorite models.FavoriteOrder
	if err := h.db.Preload("Items").
		First(&favorite, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "favorite not found")
		}
		return err
	}

	if len(favorite.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "favorite has no items")
	}

	itemReqs := make([]orderItemRequest, 0, len(favorite.Items))
	for _, item := range favorite.Items {
		if item.ProductID == nil {
			continue
		}
		itemReqs = append(itemReqs, orderItemRequest{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		})
	}

	return h.orders.placeOrder(c, userID, itemReqs, "", "")
}
