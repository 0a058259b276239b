package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type AdminController struct {
	DB  *gorm.DB
	Hub *kds.Hub
	Now func() time.Time
}

func NewAdminController(db *gorm.DB, hub *kds.Hub) *AdminController {
	return &AdminController{DB: db, Hub: hub, Now: time.Now}
}

type DashboardStats struct {
	TotalOrders       int64                        `json:"totalOrders"`
	TodayOrders       int64                        `json:"todayOrders"`
	OrdersByStatus    map[models.OrderStatus]int64 `json:"ordersByStatus"`
	TotalRevenue      float64                      `json:"totalRevenue"`
	TodayRevenue      float64                      `json:"todayRevenue"`
	UnpaidOrders      int64                        `json:"unpaidOrders"`
	AvailableTables   int64                        `json:"availableTables"`
	OccupiedTables    int64                        `json:"occupiedTables"`
	ConnectedDisplays int                          `json:"connectedDisplays"`
}

// GetDashboardStats summarizes orders, revenue of paid orders and table
// occupancy. Today starts at local midnight.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	db := ac.DB.WithContext(c.Request.Context())
	now := ac.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := DashboardStats{OrdersByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}
	for _, s := range models.OrderStatuses {
		stats.OrdersByStatus[s] = 0
	}

	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	for _, r := range rows {
		stats.OrdersByStatus[r.Status] = r.Count
		stats.TotalOrders += r.Count
	}

	if err := db.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&stats.TodayOrders).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if err := db.Model(&models.Order{}).
		Where("payment_status = ? AND status <> ?", models.PaymentStatusPending, models.OrderStatusCancelled).
		Count(&stats.UnpaidOrders).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	total, err := sumRevenue(db, time.Time{})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	today, err := sumRevenue(db, startOfDay)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	stats.TotalRevenue = utils.CurrencyFloat(total)
	stats.TodayRevenue = utils.CurrencyFloat(today)

	if err := db.Model(&models.Table{}).Where("is_available = ?", true).Count(&stats.AvailableTables).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if err := db.Model(&models.Table{}).Where("is_available = ?", false).Count(&stats.OccupiedTables).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if ac.Hub != nil {
		stats.ConnectedDisplays = ac.Hub.ClientCount()
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{"stats": stats})
}

// sumRevenue adds the final amounts of PAID orders created at or after since.
func sumRevenue(db *gorm.DB, since time.Time) (decimal.Decimal, error) {
	var amounts []float64
	q := db.Model(&models.Order{}).Where("payment_status = ?", models.PaymentStatusPaid)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if err := q.Pluck("final_amount", &amounts).Error; err != nil {
		return decimal.Zero, utils.InternalError(err)
	}

	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum, nil
}
