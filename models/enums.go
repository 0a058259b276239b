package models

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle step is defined after s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodOnline,
	PaymentMethodWallet,
}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// Station is the preparation area a menu item is routed to.
type Station string

const (
	StationKitchen Station = "KITCHEN"
	StationBar     Station = "BAR"
	StationGrill   Station = "GRILL"
	StationDessert Station = "DESSERT"
)

var Stations = []Station{StationKitchen, StationBar, StationGrill, StationDessert}

func (s Station) Valid() bool {
	for _, v := range Stations {
		if s == v {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCashier  Role = "CASHIER"
	RoleWaiter   Role = "WAITER"
	RoleCustomer Role = "CUSTOMER"
)

var Roles = []Role{RoleAdmin, RoleCashier, RoleWaiter, RoleCustomer}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// IsStaff is true for every role that works a dashboard.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleCashier || r == RoleWaiter
}
