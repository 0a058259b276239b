package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

const (
	CartNotFoundMessage = "Cart not found"
	CartEmptyMessage    = "Cart is empty"
	CartSummaryMessage  = "Cart summary retrieved"
)

var (
	ErrCartNotFound        = utils.NotFoundError("Cart not found")
	ErrCartItemNotFound    = utils.NotFoundError("Cart item not found")
	ErrMenuItemNotFound    = utils.NotFoundError("Menu item not found")
	ErrMenuItemUnavailable = utils.ValidationError("Menu item is currently unavailable")
	ErrInvalidQuantity     = utils.ValidationError("Quantity must be at least 1")
	ErrNoCartOwner         = utils.ValidationError("No user or guest session to own a cart")
)

// CartOwner identifies whose cart a request operates on. A signed-in user
// always wins over the guest session.
type CartOwner struct {
	UserID  *uint
	GuestID string
}

func UserOwner(userID uint) CartOwner { return CartOwner{UserID: &userID} }

func GuestOwner(guestID string) CartOwner { return CartOwner{GuestID: guestID} }

func (o CartOwner) IsZero() bool { return o.UserID == nil && o.GuestID == "" }

func (o CartOwner) scope(db *gorm.DB) *gorm.DB {
	if o.UserID != nil {
		return db.Where("user_id = ?", *o.UserID)
	}
	return db.Where("guest_session_id = ?", o.GuestID)
}

func (o CartOwner) newCart() models.Cart {
	if o.UserID != nil {
		id := *o.UserID
		return models.Cart{UserID: &id}
	}
	guest := o.GuestID
	return models.Cart{GuestSessionID: &guest}
}

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart loads the owner's cart with items and their menu items.
func (s *CartService) GetCart(ctx context.Context, owner CartOwner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, ErrCartNotFound
	}
	return s.loadCart(ctx, s.db, owner)
}

// Summary prices the owner's cart. A missing or empty cart is not an error:
// the zero summary is returned with a message telling the two apart.
func (s *CartService) Summary(ctx context.Context, owner CartOwner) (*models.Cart, CartSummary, string, error) {
	cart, err := s.GetCart(ctx, owner)
	if errors.Is(err, ErrCartNotFound) {
		return nil, EmptySummary(), CartNotFoundMessage, nil
	}
	if err != nil {
		return nil, CartSummary{}, "", err
	}
	if len(cart.Items) == 0 {
		return cart, EmptySummary(), CartEmptyMessage, nil
	}
	return cart, SummarizeCart(LinesFromCart(cart)), CartSummaryMessage, nil
}

// AddItem puts quantity of a menu item in the owner's cart, creating the cart
// on first use. Adding an item already in the cart increases its quantity.
func (s *CartService) AddItem(ctx context.Context, owner CartOwner, menuItemID uint, quantity int, instructions string) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, ErrNoCartOwner
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menuItem models.MenuItem
		if err := tx.First(&menuItem, menuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMenuItemNotFound
			}
			return utils.InternalError(err)
		}
		if !menuItem.IsAvailable {
			return ErrMenuItemUnavailable
		}

		cart, err := s.findOrCreateCart(tx, owner)
		if err != nil {
			return err
		}

		var line models.CartItem
		err = tx.Where("cart_id = ? AND menu_item_id = ?", cart.ID, menuItemID).First(&line).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{"quantity": gorm.Expr("quantity + ?", quantity)}
			if strings.TrimSpace(instructions) != "" {
				updates["special_instructions"] = strings.TrimSpace(instructions)
			}
			if err := tx.Model(&line).Updates(updates).Error; err != nil {
				return utils.InternalError(err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.CartItem{
				CartID:              cart.ID,
				MenuItemID:          menuItemID,
				Quantity:            quantity,
				SpecialInstructions: strings.TrimSpace(instructions),
			}
			if err := tx.Create(&line).Error; err != nil {
				return utils.InternalError(err)
			}
		default:
			return utils.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"menu_item_id": menuItemID,
		"quantity":     quantity,
		"guest":        owner.UserID == nil,
	}).Info("item added to cart")
	return s.GetCart(ctx, owner)
}

// UpdateItem sets the quantity of a cart line, and its instructions when
// given.
func (s *CartService) UpdateItem(ctx context.Context, owner CartOwner, lineID uint, quantity int, instructions *string) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	line, err := s.ownedLine(ctx, owner, lineID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"quantity": quantity}
	if instructions != nil {
		updates["special_instructions"] = strings.TrimSpace(*instructions)
	}
	if err := s.db.WithContext(ctx).Model(line).Updates(updates).Error; err != nil {
		return nil, utils.InternalError(err)
	}
	return s.GetCart(ctx, owner)
}

func (s *CartService) RemoveItem(ctx context.Context, owner CartOwner, lineID uint) (*models.Cart, error) {
	line, err := s.ownedLine(ctx, owner, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(line).Error; err != nil {
		return nil, utils.InternalError(err)
	}
	return s.GetCart(ctx, owner)
}

// Clear removes every line from the owner's cart but keeps the cart.
func (s *CartService) Clear(ctx context.Context, owner CartOwner) error {
	cart, err := s.GetCart(ctx, owner)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return utils.InternalError(err)
	}
	return nil
}

// MergeGuestCart moves the guest cart's lines into the user's cart, summing
// quantities of items present in both, and deletes the guest cart.
func (s *CartService) MergeGuestCart(ctx context.Context, guestID string, userID uint) error {
	if guestID == "" {
		return nil
	}

	var moved int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guest, err := s.loadCart(ctx, tx, GuestOwner(guestID))
		if errors.Is(err, ErrCartNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if len(guest.Items) > 0 {
			userCart, err := s.findOrCreateCart(tx, UserOwner(userID))
			if err != nil {
				return err
			}
			for _, item := range guest.Items {
				merged := models.CartItem{
					CartID:              userCart.ID,
					MenuItemID:          item.MenuItemID,
					Quantity:            item.Quantity,
					SpecialInstructions: item.SpecialInstructions,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "cart_id"}, {Name: "menu_item_id"}},
					DoUpdates: clause.Assignments(map[string]interface{}{
						"quantity": gorm.Expr("cart_items.quantity + ?", item.Quantity),
					}),
				}).Create(&merged).Error
				if err != nil {
					return utils.InternalError(err)
				}
				moved++
			}
		}

		if err := tx.Where("cart_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return utils.InternalError(err)
		}
		if err := tx.Delete(&models.Cart{}, guest.ID).Error; err != nil {
			return utils.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if moved > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"user_id": userID,
			"lines":   moved,
		}).Info("guest cart merged")
	}
	return nil
}

func (s *CartService) loadCart(ctx context.Context, db *gorm.DB, owner CartOwner) (*models.Cart, error) {
	var cart models.Cart
	err := owner.scope(db.WithContext(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id asc") }).
		Preload("Items.MenuItem").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, utils.InternalError(err)
	}
	return &cart, nil
}

func (s *CartService) findOrCreateCart(tx *gorm.DB, owner CartOwner) (*models.Cart, error) {
	var cart models.Cart
	err := owner.scope(tx).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.InternalError(err)
	}

	cart = owner.newCart()
	if err := tx.Create(&cart).Error; err != nil {
		return nil, utils.InternalError(err)
	}
	return &cart, nil
}

// ownedLine loads a cart line only if it belongs to the owner's cart.
func (s *CartService) ownedLine(ctx context.Context, owner CartOwner, lineID uint) (*models.CartItem, error) {
	if owner.IsZero() {
		return nil, ErrCartItemNotFound
	}

	var line models.CartItem
	q := s.db.WithContext(ctx).Joins("JOIN carts ON carts.id = cart_items.cart_id")
	if owner.UserID != nil {
		q = q.Where("carts.user_id = ?", *owner.UserID)
	} else {
		q = q.Where("carts.guest_session_id = ?", owner.GuestID)
	}
	if err := q.Where("cart_items.id = ?", lineID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, utils.InternalError(err)
	}
	return &line, nil
}
