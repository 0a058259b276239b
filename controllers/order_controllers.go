package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type OrderController struct {
	Orders   *services.OrderService
	Checkout *services.CheckoutService
}

func NewOrderController(orders *services.OrderService, checkout *services.CheckoutService) *OrderController {
	return &OrderController{Orders: orders, Checkout: checkout}
}

type checkoutRequest struct {
	TableID       *uint                `json:"tableId"`
	AddressID     *uint                `json:"addressId"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"omitempty,payment_method"`
	Notes         string               `json:"notes" binding:"max=1000"`
}

type updateStatusRequest struct {
	ID                 uint               `json:"id" binding:"required"`
	Status             models.OrderStatus `json:"status" binding:"required,order_status"`
	CancellationReason string             `json:"cancellationReason" binding:"max=255"`
}

type updatePaymentRequest struct {
	ID            uint                 `json:"id" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required,payment_method"`
}

// CreateOrder checks out the signed-in user's cart.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req checkoutRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	order, err := oc.Checkout.Checkout(c.Request.Context(), services.CheckoutRequest{
		UserID:        userID,
		TableID:       req.TableID,
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", gin.H{"order": order})
}

func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	filter, err := orderFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	filter.UserID = &userID

	orders, err := oc.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders retrieved", gin.H{"orders": orders})
}

// GetOrderByID returns an order to its owner or to staff. Other users get
// NotFound so order ids cannot be probed.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	userID, _ := middlewares.CurrentUserID(c)
	if order.UserID != userID && !middlewares.CurrentRole(c).IsStaff() {
		utils.RespondError(c, services.ErrOrderNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order retrieved", gin.H{"order": order})
}

// UpdateOrderStatus applies a status transition with its derived fields.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), req.ID, req.Status, req.CancellationReason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated to "+string(order.Status), gin.H{"order": order})
}

// UpdateOrderPayment settles an unpaid order.
func (oc *OrderController) UpdateOrderPayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.SettlePayment(c.Request.Context(), req.ID, req.PaymentMethod)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment recorded", gin.H{"order": order})
}

func (oc *OrderController) GetAllOrders(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, utils.ValidationError("Invalid userId"))
			return
		}
		userID := uint(id)
		filter.UserID = &userID
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders retrieved", gin.H{"orders": orders})
}

func (oc *OrderController) MarkItemReady(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.MarkItemReady(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order item ready", gin.H{"order": order})
}

// GetStationQueue lists the unready items a preparation station must work on.
func (oc *OrderController) GetStationQueue(c *gin.Context) {
	station := models.Station(strings.ToUpper(c.Param("station")))
	items, err := oc.Orders.KitchenQueue(c.Request.Context(), station)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Station queue", gin.H{"items": items})
}

func orderFilter(c *gin.Context) (services.OrderFilter, error) {
	filter := services.OrderFilter{
		Status: models.OrderStatus(strings.ToUpper(c.Query("status"))),
	}
	var err error
	if raw := c.Query("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			return filter, utils.ValidationError("Invalid limit")
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if filter.Offset, err = strconv.Atoi(raw); err != nil || filter.Offset < 0 {
			return filter, utils.ValidationError("Invalid offset")
		}
	}
	return filter, nil
}
