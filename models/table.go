package models

import "time"

type Table struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Number           int       `gorm:"not null;uniqueIndex" json:"number"`
	Capacity         int       `gorm:"not null;default:2" json:"capacity"`
	IsAvailable      bool      `gorm:"not null" json:"isAvailable"`
	Location         string    `gorm:"type:varchar(50)" json:"location"`
	ReservationCount int       `gorm:"not null;default:0" json:"reservationCount"`
	CreatedAt        time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"not null" json:"updatedAt"`
}
