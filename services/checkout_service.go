package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	ErrEmptyCart        = utils.ValidationError("Cart is empty")
	ErrTableNotFound    = utils.NotFoundError("Table not found")
	ErrTableUnavailable = utils.ValidationError("Table is not available")
	ErrAddressNotFound  = utils.NotFoundError("Address not found")
)

type CheckoutRequest struct {
	UserID        uint
	TableID       *uint
	AddressID     *uint
	PaymentMethod models.PaymentMethod
	Notes         string
}

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	db     *gorm.DB
	carts  *CartService
	orders *OrderService
	Now    func() time.Time
}

// NewCheckoutService builds a checkout that publishes through the order
// service's publisher.
func NewCheckoutService(db *gorm.DB, carts *CartService, orders *OrderService) *CheckoutService {
	return &CheckoutService{db: db, carts: carts, orders: orders, Now: time.Now}
}

// NewOrderNumber returns a short unique human-facing order reference.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Checkout prices the available lines of the user's cart, creates a PENDING
// order with item snapshots and removes the ordered lines, all in one
// transaction. Unavailable lines stay in the cart.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.TableID != nil {
			var table models.Table
			if err := tx.First(&table, *req.TableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTableNotFound
				}
				return utils.InternalError(err)
			}
			if !table.IsAvailable {
				return ErrTableUnavailable
			}
		}
		if req.AddressID != nil {
			var count int64
			if err := tx.Model(&models.Address{}).
				Where("id = ? AND user_id = ?", *req.AddressID, req.UserID).
				Count(&count).Error; err != nil {
				return utils.InternalError(err)
			}
			if count == 0 {
				return ErrAddressNotFound
			}
		}

		cart, err := s.carts.loadCart(ctx, tx, UserOwner(req.UserID))
		if errors.Is(err, ErrCartNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}

		summary := SummarizeCart(LinesFromCart(cart))
		if len(summary.Items) == 0 {
			return ErrEmptyCart
		}

		now := s.Now()
		order := models.Order{
			OrderNumber:    NewOrderNumber(),
			UserID:         req.UserID,
			TableID:        req.TableID,
			AddressID:      req.AddressID,
			Status:         models.OrderStatusPending,
			PaymentStatus:  models.PaymentStatusPending,
			PaymentMethod:  method,
			TotalAmount:    summary.Subtotal,
			TaxAmount:      summary.TaxAmount,
			DiscountAmount: summary.DiscountAmount,
			FinalAmount:    summary.TotalAmount,
			Notes:          strings.TrimSpace(req.Notes),
			Version:        1,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return utils.InternalError(err)
		}

		items := make([]models.OrderItem, 0, len(summary.Items))
		lineIDs := make([]uint, 0, len(summary.Items))
		for _, line := range summary.Items {
			items = append(items, models.OrderItem{
				OrderID:             order.ID,
				MenuItemID:          line.MenuItemID,
				Name:                line.Name,
				Station:             line.Station,
				Quantity:            line.Quantity,
				UnitPrice:           line.UnitPrice,
				TotalPrice:          line.LineTotal,
				SpecialInstructions: line.SpecialInstructions,
			})
			lineIDs = append(lineIDs, line.CartItemID)
		}
		if err := tx.Create(&items).Error; err != nil {
			return utils.InternalError(err)
		}
		if err := tx.Where("id IN ?", lineIDs).Delete(&models.CartItem{}).Error; err != nil {
			return utils.InternalError(err)
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"final_amount": utils.FormatCurrency(order.FinalAmount),
	}).Info("order placed")
	s.orders.publish(ctx, events.OrderPlaced, order)
	return order, nil
}
