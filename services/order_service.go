package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

const (
	// PrepTimeEstimate is added to the transition time when an order starts preparing.
	PrepTimeEstimate          = 30 * time.Minute
	DefaultCancellationReason = "No reason provided"
)

// Errors returned by the order service.
var (
	ErrOrderNotFound        = utils.NotFoundError("Order not found")
	ErrOrderItemNotFound    = utils.NotFoundError("Order item not found")
	ErrInvalidStatus        = utils.ValidationError("Invalid order status")
	ErrSameStatus           = utils.NoOpError("Order already has the requested status")
	ErrInvalidPaymentMethod = utils.ValidationError("Invalid payment method")
	ErrAlreadyPaid          = utils.ConflictError("Order is already paid")
	ErrItemAlreadyReady     = utils.NoOpError("Order item is already ready")
	ErrConcurrentUpdate     = utils.ConflictError("Order was modified by another request, reload and retry")
)

// OrderService owns every mutation of an existing order: status
// transitions, payment settlement and item readiness.
type OrderService struct {
	db        *gorm.DB
	publisher events.Publisher
	Now       func() time.Time
}

func NewOrderService(db *gorm.DB, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{db: db, publisher: publisher, Now: time.Now}
}

// DeriveStatusUpdate returns the column updates for moving order to target
// at time now. status and updated_at are always included.
func DeriveStatusUpdate(order models.Order, target models.OrderStatus, reason string, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}

	switch target {
	case models.OrderStatusPreparing:
		updates["estimated_ready_time"] = now.Add(PrepTimeEstimate)
	case models.OrderStatusReady:
		updates["ready_at"] = now
	case models.OrderStatusServed:
		updates["served_at"] = now
	case models.OrderStatusCompleted:
		updates["completed_at"] = now
		if order.PaymentStatus == models.PaymentStatusPending {
			updates["payment_status"] = models.PaymentStatusPaid
		}
	case models.OrderStatusCancelled:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = DefaultCancellationReason
		}
		updates["cancelled_at"] = now
		updates["cancellation_reason"] = reason
		if order.PaymentStatus == models.PaymentStatusPaid {
			updates["payment_status"] = models.PaymentStatusRefunded
		}
	}
	return updates
}

// UpdateStatus moves an order to target. Any status may follow any other;
// requesting the current status fails with ErrSameStatus.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, target models.OrderStatus, reason string) (*models.Order, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.findOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	previous := order.Status

	if err := s.applyStatus(ctx, s.db, order, target, reason); err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       target,
	}).Info("order status changed")
	s.publish(ctx, events.OrderStatusChanged, updated)
	return updated, nil
}

// SettlePayment records the payment method and marks the order PAID.
func (s *OrderService) SettlePayment(ctx context.Context, orderID uint, method models.PaymentMethod) (*models.Order, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	order, err := s.findOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	updates := map[string]interface{}{
		"payment_method": method,
		"payment_status": models.PaymentStatusPaid,
		"updated_at":     s.Now(),
	}
	if err := s.conditionalUpdate(ctx, s.db, order, updates); err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"method":   method,
		"amount":   utils.FormatCurrency(updated.FinalAmount),
	}).Info("order payment settled")
	s.publish(ctx, events.OrderPaymentSettled, updated)
	return updated, nil
}

// MarkItemReady flags one order item as ready. When it was the last unready
// item of a CONFIRMED or PREPARING order, the order moves to READY.
func (s *OrderService) MarkItemReady(ctx context.Context, itemID uint) (*models.Order, error) {
	var orderID uint
	var transitioned bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderItemNotFound
			}
			return utils.InternalError(err)
		}
		orderID = item.OrderID

		// Concurrent readiness marks on one order serialize on the order row,
		// so the last of them sees every other item ready.
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, item.OrderID).Error; err != nil {
			return lookupOrderError(err)
		}

		now := s.Now()
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND is_ready = ?", item.ID, false).
			Updates(map[string]interface{}{
				"is_ready":   true,
				"ready_at":   now,
				"updated_at": now,
			})
		if res.Error != nil {
			return utils.InternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrItemAlreadyReady
		}

		var pending []uint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Model(&models.OrderItem{}).
			Where("order_id = ? AND is_ready = ?", item.OrderID, false).
			Pluck("id", &pending).Error; err != nil {
			return utils.InternalError(err)
		}
		if len(pending) > 0 {
			return nil
		}
		if order.Status != models.OrderStatusConfirmed && order.Status != models.OrderStatusPreparing {
			return nil
		}
		transitioned = true
		return s.applyStatus(ctx, tx, &order, models.OrderStatusReady, "")
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderItemReady, updated)
	if transitioned {
		utils.InfoLogger.WithField("order_id", orderID).Info("all items ready, order moved to READY")
		s.publish(ctx, events.OrderStatusChanged, updated)
	}
	return updated, nil
}

// GetOrder loads an order with its items, table and address.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Table").
		Preload("Address").
		First(&order, orderID).Error
	if err != nil {
		return nil, lookupOrderError(err)
	}
	order.FillDisplayFields()
	return &order, nil
}

type OrderFilter struct {
	UserID *uint
	Status models.OrderStatus
	Limit  int
	Offset int
}

// ListOrders returns orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var orders []models.Order
	if err := q.Order("created_at desc, id desc").Limit(limit).Offset(filter.Offset).Find(&orders).Error; err != nil {
		return nil, utils.InternalError(err)
	}
	for i := range orders {
		orders[i].FillDisplayFields()
	}
	return orders, nil
}

// KitchenQueue lists unready items of in-flight orders routed to station,
// oldest first.
func (s *OrderService) KitchenQueue(ctx context.Context, station models.Station) ([]models.OrderItem, error) {
	if !station.Valid() {
		return nil, utils.ValidationError("Invalid station")
	}

	var items []models.OrderItem
	err := s.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.station = ? AND order_items.is_ready = ?", station, false).
		Where("orders.status IN ?", []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusPreparing}).
		Order("order_items.created_at asc, order_items.id asc").
		Find(&items).Error
	if err != nil {
		return nil, utils.InternalError(err)
	}
	return items, nil
}

func (s *OrderService) applyStatus(ctx context.Context, db *gorm.DB, order *models.Order, target models.OrderStatus, reason string) error {
	if order.Status == target {
		return ErrSameStatus
	}
	updates := DeriveStatusUpdate(*order, target, reason, s.Now())
	return s.conditionalUpdate(ctx, db, order, updates)
}

// conditionalUpdate writes updates only if the row still carries the version
// that was read, bumping it. A lost race surfaces as ErrConcurrentUpdate.
func (s *OrderService) conditionalUpdate(ctx context.Context, db *gorm.DB, order *models.Order, updates map[string]interface{}) error {
	updates["version"] = order.Version + 1

	res := db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if res.Error != nil {
		return utils.InternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (s *OrderService) findOrder(ctx context.Context, db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return nil, lookupOrderError(err)
	}
	return &order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := s.publisher.Publish(ctx, events.New(eventType, order)); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":    eventType,
			"order_id": order.ID,
		}).Warnf("publish failed: %v", err)
	}
}

func lookupOrderError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return utils.InternalError(err)
}
