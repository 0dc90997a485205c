package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
)

// Restaurant is the tenant. Ordering reads it for bill headers and public
// menu lookups by subdomain; only the profile fields are ever written.
type Restaurant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"-"`
}

const (
	maxProfileName    = 120
	maxProfileAddress = 255
	maxProfilePhone   = 20
	gstinLength       = 15
)

// RestaurantProfile is the editable part of a Restaurant, printed on every bill.
type RestaurantProfile struct {
	Name    string
	GSTIN   string
	Address string
	Phone   string
}

// Normalize trims every field and upper-cases the GSTIN.
func (p RestaurantProfile) Normalize() RestaurantProfile {
	return RestaurantProfile{
		Name:    strings.TrimSpace(p.Name),
		GSTIN:   strings.ToUpper(strings.TrimSpace(p.GSTIN)),
		Address: strings.TrimSpace(p.Address),
		Phone:   strings.TrimSpace(p.Phone),
	}
}

// Validate requires a name and bounds the other fields. An empty GSTIN is
// allowed for unregistered restaurants; otherwise it is 15 letters or digits.
func (p RestaurantProfile) Validate() error {
	switch {
	case p.Name == "" || len(p.Name) > maxProfileName:
		return fmt.Errorf("%w: name must be 1-%d characters", domain.ErrInvalidProfile, maxProfileName)
	case p.GSTIN != "" && !validGSTIN(p.GSTIN):
		return fmt.Errorf("%w: gstin %q", domain.ErrInvalidProfile, p.GSTIN)
	case len(p.Address) > maxProfileAddress:
		return fmt.Errorf("%w: address is longer than %d characters", domain.ErrInvalidProfile, maxProfileAddress)
	case len(p.Phone) > maxProfilePhone:
		return fmt.Errorf("%w: phone is longer than %d characters", domain.ErrInvalidProfile, maxProfilePhone)
	}
	return nil
}

func validGSTIN(s string) bool {
	if len(s) != gstinLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// RestaurantStats is the platform-wide view of one tenant.
type RestaurantStats struct {
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	Name         string      `json:"name"`
	Subdomain    string      `json:"subdomain"`
	OrderCount   int         `json:"order_count"`
	Revenue      money.Money `json:"revenue"`
}

// DailySales summarises one restaurant's orders for a calendar day.
// Revenue counts only Served and Closed orders.
type DailySales struct {
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	Date         string      `json:"date"`
	OrderCount   int         `json:"order_count"`
	Revenue      money.Money `json:"revenue"`
}
