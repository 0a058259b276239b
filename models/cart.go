package models

import "time"

// Cart belongs either to a user or to a guest session, never both.
type Cart struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         *uint      `gorm:"uniqueIndex" json:"userId,omitempty"`
	GuestSessionID *string    `gorm:"type:varchar(64);uniqueIndex" json:"guestSessionId,omitempty"`
	Items          []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updatedAt"`
}

type CartItem struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CartID              uint      `gorm:"not null;uniqueIndex:idx_cart_menu_item" json:"cartId"`
	MenuItemID          uint      `gorm:"not null;uniqueIndex:idx_cart_menu_item" json:"menuItemId"`
	MenuItem            MenuItem  `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"menuItem"`
	Quantity            int       `gorm:"not null" json:"quantity"`
	SpecialInstructions string    `gorm:"type:text" json:"specialInstructions"`
	CreatedAt           time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"not null" json:"updatedAt"`
}
