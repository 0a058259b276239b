package models

import (
	"time"
)

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"orderId"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order               *Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID          uint       `gorm:"not null" json:"menuItemId"`
	MenuItem            *MenuItem  `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menuItem,omitempty"`
	Name                string     `gorm:"type:varchar(255);not null" json:"name"`
	Station             Station    `gorm:"type:varchar(20);not null;index" json:"station"`
	Quantity            int        `gorm:"not null" json:"quantity"`
	UnitPrice           float64    `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice          float64    `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	SpecialInstructions string     `gorm:"type:text" json:"specialInstructions"`
	IsReady             bool       `gorm:"not null;default:false" json:"isReady"`
	ReadyAt             *time.Time `json:"readyAt,omitempty"`
	CreatedAt           time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"not null" json:"updatedAt"`
}
