package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/dukan/internal/models"
	"github.com/example/dukan/internal/utils"
)

// AdminHandler manages the back-office endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var activeUsers int64
	if err := h.db.Model(&models.User{}).Where("is_active = ?", true).Count(&activeUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var todayRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ? AND placed_at >= ?", models.OrderStatusCancelled, midnight).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":      totalUsers,
			"active_users":     activeUsers,
			"total_orders":     totalOrders,
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
			"orders_by_status": ordersByStatus,
		},
	})
}

// ListAllOrders returns all orders with pagination, filtering, and user info.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(order_number) LIKE LOWER(?) OR LOWER(delivery_address) LIKE LOWER(?)",
			pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
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

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// Allowed back-office transitions. Cancelling is possible until the order is
// processed; a cancelled or processed order is final.
var statusTransitions = map[string][]string{
	models.OrderStatusNew:      {models.OrderStatusReceived, models.OrderStatusCancelled},
	models.OrderStatusReceived: {models.OrderStatusProcessed, models.OrderStatusCancelled},
}

// UpdateOrderStatus moves an order along its lifecycle. Leaving "new" closes
// the customer's edit window regardless of the remaining time.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	allowed := false
	for _, next := range statusTransitions[order.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fiber.NewError(fiber.StatusConflict, "invalid status transition")
	}

	updates := map[string]interface{}{
		"status":         req.Status,
		"editable_until": nil,
	}
	if err := h.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListAllUsers returns registered users with order counts and totals.
func (h *AdminHandler) ListAllUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(company_name) LIKE LOWER(?) OR phone LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	// Select specific fields to keep the password hash out of the scan.
	var users []models.User
	if err := query.Select("id, phone, name, email, company_name, address, is_admin, is_active, last_login, created_at, updated_at").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	type userStats struct {
		UserID     string  `json:"user_id"`
		OrderCount int64   `json:"order_count"`
		TotalSpent float64 `json:"total_spent"`
	}

	var stats []userStats
	h.db.Model(&models.Order{}).
		Select("user_id, count(*) as order_count, COALESCE(SUM(total_amount), 0) as total_spent").
		Where("status != ?", models.OrderStatusCancelled).
		Group("user_id").
		Scan(&stats)

	statsMap := make(map[string]userStats)
	for _, s := range stats {
		statsMap[s.UserID] = s
	}

	type userResponse struct {
		models.User
		OrderCount int64   `json:"order_count"`
		TotalSpent float64 `json:"total_spent"`
	}

	result := make([]userResponse, len(users))
	for i, u := range users {
		result[i] = userResponse{User: u}
		if s, ok := statsMap[u.ID.String()]; ok {
			result[i].OrderCount = s.OrderCount
			result[i].TotalSpent = s.TotalSpent
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result,
		"pagination": pg.Envelope(total),
	})
}

type setUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetUserActive activates or deactivates an account. Deactivated users fail
// the login-start check; customers with orders are never deleted.
func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req setUserActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result := h.db.Model(&models.User{}).Where("id = ?", id).Update("is_active", req.IsActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// RevenueReport returns daily order counts and revenue between from and to
// (YYYY-MM-DD query params, defaulting to the last 30 days).
func (h *AdminHandler) RevenueReport(c *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date")
		}
		to = parsed.AddDate(0, 0, 1)
	}

	type dailyRow struct {
		Day        string  `json:"day"`
		OrderCount int64   `json:"order_count"`
		Revenue    float64 `json:"revenue"`
	}

	var rows []dailyRow
	if err := h.db.Model(&models.Order{}).
		Select("DATE(placed_at) as day, count(*) as order_count, COALESCE(SUM(total_amount), 0) as revenue").
		Where("status != ? AND placed_at >= ? AND placed_at < ?", models.OrderStatusCancelled, from, to).
		Group("DATE(placed_at)").
		Order("day").
		Scan(&rows).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rows,
		"range": fiber.Map{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
		},
	})
}
