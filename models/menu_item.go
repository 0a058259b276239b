package models

import "time"

type MenuItem struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	CategoryID   uint         `gorm:"not null;index" json:"categoryId"`
	Category     MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	Price        float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable  bool         `gorm:"not null" json:"isAvailable"`
	Station      Station      `gorm:"type:varchar(20);not null;default:'KITCHEN'" json:"station"`
	IsVegetarian bool         `gorm:"not null;default:false" json:"isVegetarian"`
	IsVegan      bool         `gorm:"not null;default:false" json:"isVegan"`
	IsGlutenFree bool         `gorm:"not null;default:false" json:"isGlutenFree"`
	IsSpicy      bool         `gorm:"not null;default:false" json:"isSpicy"`
	CreatedAt    time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updatedAt"`
}
