package models

import (
	"time"
)

type Order struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	OrderNumber        string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"orderNumber"`
	UserID             uint          `gorm:"not null;index" json:"userId"`
	User               *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TableID            *uint         `gorm:"index" json:"tableId,omitempty"`
	Table              *Table        `gorm:"foreignKey:TableID" json:"table,omitempty"`
	AddressID          *uint         `json:"addressId,omitempty"`
	Address            *Address      `gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL" json:"address,omitempty"`
	Status             OrderStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentStatus      PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"paymentStatus"`
	PaymentMethod      PaymentMethod `gorm:"type:varchar(20);not null;default:'CASH'" json:"paymentMethod"`
	TotalAmount        float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"totalAmount"`
	TaxAmount          float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"taxAmount"`
	DiscountAmount     float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"discountAmount"`
	FinalAmount        float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"finalAmount"`
	Notes              string        `gorm:"type:text" json:"notes"`
	EstimatedReadyTime *time.Time    `json:"estimatedReadyTime,omitempty"`
	ReadyAt            *time.Time    `json:"readyAt,omitempty"`
	ServedAt           *time.Time    `json:"servedAt,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	CancellationReason *string       `gorm:"type:varchar(255)" json:"cancellationReason,omitempty"`
	Version            int           `gorm:"not null;default:1" json:"version"`
	Items              []OrderItem   `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt          time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time     `gorm:"not null" json:"updatedAt"`

	ItemCount      int  `gorm:"-" json:"itemCount"`
	ReadyItemCount int  `gorm:"-" json:"readyItemCount"`
	IsTerminal     bool `gorm:"-" json:"isTerminal"`
}

// FillDisplayFields recomputes the derived, non-persisted fields from the
// loaded items and current status.
func (o *Order) FillDisplayFields() {
	o.ItemCount = 0
	o.ReadyItemCount = 0
	for _, item := range o.Items {
		o.ItemCount += item.Quantity
		if item.IsReady {
			o.ReadyItemCount += item.Quantity
		}
	}
	o.IsTerminal = o.Status.Terminal()
}
