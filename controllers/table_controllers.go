package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type TableController struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

func NewTableController(db *gorm.DB, publisher events.Publisher) *TableController {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &TableController{DB: db, Publisher: publisher}
}

type tableRequest struct {
	Number      int    `json:"number" binding:"required,min=1"`
	Capacity    int    `json:"capacity" binding:"required,min=1,max=50"`
	IsAvailable *bool  `json:"isAvailable"`
	Location    string `json:"location" binding:"max=50"`
}

// CreateTable adds a table, available unless stated otherwise.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	table := models.Table{
		Number:      req.Number,
		Capacity:    req.Capacity,
		IsAvailable: true,
		Location:    strings.TrimSpace(req.Location),
	}
	if req.IsAvailable != nil {
		table.IsAvailable = *req.IsAvailable
	}

	if err := tc.DB.WithContext(c.Request.Context()).Create(&table).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			utils.RespondError(c, utils.ConflictError("Table number already exists"))
			return
		}
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	tc.publish(c, table)
	utils.InfoLogger.WithFields(logrus.Fields{
		"number":   table.Number,
		"capacity": table.Capacity,
	}).Info("table created")
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", gin.H{"table": table})
}

// GetAllTables lists tables, optionally only available ones with room for
// minCapacity guests.
func (tc *TableController) GetAllTables(c *gin.Context) {
	q := tc.DB.WithContext(c.Request.Context()).Order("number asc")
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, utils.ValidationError("Invalid available"))
			return
		}
		q = q.Where("is_available = ?", v)
	}
	if raw := c.Query("minCapacity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, utils.ValidationError("Invalid minCapacity"))
			return
		}
		q = q.Where("capacity >= ?", n)
	}

	var tables []models.Table
	if err := q.Find(&tables).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", gin.H{"tables": tables})
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req tableRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	var table models.Table
	if err := tc.DB.WithContext(c.Request.Context()).First(&table, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "Table not found"))
		return
	}
	table.Number = req.Number
	table.Capacity = req.Capacity
	table.Location = strings.TrimSpace(req.Location)
	if req.IsAvailable != nil {
		table.IsAvailable = *req.IsAvailable
	}
	if err := tc.DB.WithContext(c.Request.Context()).Save(&table).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			utils.RespondError(c, utils.ConflictError("Table number already exists"))
			return
		}
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	tc.publish(c, table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", gin.H{"table": table})
}

// UpdateTableAvailability marks a table free or occupied. Occupying a table
// counts as a reservation. Setting the current value is a no-op error.
func (tc *TableController) UpdateTableAvailability(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req availabilityRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	var table models.Table
	if err := tc.DB.WithContext(c.Request.Context()).First(&table, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "Table not found"))
		return
	}
	if table.IsAvailable == *req.IsAvailable {
		utils.RespondError(c, utils.NoOpError("Table availability is already "+strconv.FormatBool(table.IsAvailable)))
		return
	}

	updates := map[string]interface{}{"is_available": *req.IsAvailable}
	if !*req.IsAvailable {
		updates["reservation_count"] = gorm.Expr("reservation_count + 1")
	}
	if err := tc.DB.WithContext(c.Request.Context()).Model(&table).Updates(updates).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if err := tc.DB.WithContext(c.Request.Context()).First(&table, id).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	tc.publish(c, table)
	utils.InfoLogger.WithFields(logrus.Fields{
		"number":    table.Number,
		"available": table.IsAvailable,
	}).Info("table availability changed")
	utils.RespondJSON(c, http.StatusOK, "Table availability updated", gin.H{"table": table})
}

// DeleteTable refuses to delete a table referenced by an active order.
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var active int64
	err = tc.DB.WithContext(c.Request.Context()).Model(&models.Order{}).
		Where("table_id = ? AND status NOT IN ?", id, []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled}).
		Count(&active).Error
	if err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if active > 0 {
		utils.RespondError(c, utils.ConflictError("Table has active orders"))
		return
	}

	res := tc.DB.WithContext(c.Request.Context()).Delete(&models.Table{}, id)
	if res.Error != nil {
		utils.RespondError(c, utils.InternalError(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NotFoundError("Table not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}

func (tc *TableController) publish(c *gin.Context, table models.Table) {
	if err := tc.Publisher.Publish(c.Request.Context(), events.New(events.TableUpdated, table)); err != nil {
		utils.ErrorLogger.WithField("table_id", table.ID).Warnf("publish failed: %v", err)
	}
}
