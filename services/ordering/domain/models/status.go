package models

import (
	"fmt"

	"github.com/dineqr/dineqr/services/ordering/domain"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusReceived  OrderStatus = "Received"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusServed    OrderStatus = "Served"
	StatusClosed    OrderStatus = "Closed"
)

// orderTransitions lists every legal single step. Closed is terminal and is
// reachable only from Received (quick bills) or Served.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusReceived:  {StatusPreparing, StatusClosed},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusServed},
	StatusServed:    {StatusClosed},
	StatusClosed:    nil,
}

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := orderTransitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidStatus, s)
	}
	return st, nil
}

// ParseKitchenStatus validates a status requested by kitchen staff, who may
// only set Preparing, Ready or Served.
func ParseKitchenStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.KitchenSettable() {
		return "", fmt.Errorf("%w: %q is not a kitchen status", domain.ErrInvalidStatus, s)
	}
	return st, nil
}

// KitchenSettable reports whether kitchen staff may request this status.
func (s OrderStatus) KitchenSettable() bool {
	return s == StatusPreparing || s == StatusReady || s == StatusServed
}

// IsOpen reports whether the order still accepts items.
func (s OrderStatus) IsOpen() bool {
	return s != StatusClosed
}

// CanTransitionTo reports whether next is a legal single step from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// AdditionStatus is the kitchen-side state of one addition record.
type AdditionStatus string

const (
	AdditionNew       AdditionStatus = "New"
	AdditionPreparing AdditionStatus = "Preparing"
)

// CanTransitionTo allows only New -> Preparing.
func (s AdditionStatus) CanTransitionTo(next AdditionStatus) bool {
	return s == AdditionNew && next == AdditionPreparing
}

func (s AdditionStatus) String() string {
	return string(s)
}
