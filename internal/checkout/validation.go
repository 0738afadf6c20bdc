package checkout

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed validation.go
var validationSource string

// UserValidation carries tier information for a validated user type.
type UserValidation struct {
	Valid            bool    `json:"valid"`
	UserType         string  `json:"user_type"`
	Tier             int     `json:"tier"`
	DiscountEligible bool    `json:"discount_eligible"`
	MaxDiscount      float64 `json:"max_discount"`
	Err              string  `json:"error,omitempty"`
}

type userTier struct {
	tier             int
	discountEligible bool
	maxDiscount      float64
}

var userTiers = map[string]userTier{
	"premium":  {tier: 3, discountEligible: true, maxDiscount: 0.25},
	"standard": {tier: 2, discountEligible: true, maxDiscount: 0.10},
	"guest":    {tier: 1, discountEligible: false, maxDiscount: 0.0},
}

// UserTypeListing is one advertised user type for listing endpoints.
type UserTypeListing struct {
	Type     string `json:"type"`
	Tier     int    `json:"tier"`
	Discount string `json:"discount"`
}

// UserTypeListings returns the known user types in tier order.
func UserTypeListings() []UserTypeListing {
	return []UserTypeListing{
		{Type: "premium", Tier: 3, Discount: "20%"},
		{Type: "standard", Tier: 2, Discount: "10%"},
		{Type: "guest", Tier: 1, Discount: "0%"},
	}
}

func validateUserType(userType string) UserValidation {
	normalized := strings.ToLower(strings.TrimSpace(userType))
	if tier, ok := userTiers[normalized]; ok {
		return UserValidation{
			Valid:            true,
			UserType:         normalized,
			Tier:             tier.tier,
			DiscountEligible: tier.discountEligible,
			MaxDiscount:      tier.maxDiscount,
		}
	}
	return UserValidation{
		UserType: normalized,
		Err:      fmt.Sprintf("Invalid user type: %s", userType),
	}
}

// PriceValidation applies the order value business rules to a price.
type PriceValidation struct {
	Valid         bool    `json:"valid"`
	OriginalPrice float64 `json:"original_price"`
	AdjustedPrice float64 `json:"adjusted_price,omitempty"`
	Warning       string  `json:"warning,omitempty"`
	Err           string  `json:"error,omitempty"`
}

func validatePrice(price float64) PriceValidation {
	if price <= 0 {
		return PriceValidation{
			OriginalPrice: price,
			Err:           "Price must be positive",
		}
	}
	if price > 1000000 {
		return PriceValidation{
			OriginalPrice: price,
			Err:           "Price exceeds maximum allowed (1,000,000)",
		}
	}
	if price < 10 {
		return PriceValidation{
			Valid:         true,
			OriginalPrice: price,
			AdjustedPrice: 10,
			Warning:       "Minimum order value applied (10)",
		}
	}
	return PriceValidation{
		Valid:         true,
		OriginalPrice: price,
		AdjustedPrice: price,
	}
}

// QuantityValidation clamps an order quantity to available stock.
type QuantityValidation struct {
	Valid     bool   `json:"valid"`
	Requested int    `json:"requested"`
	Approved  int    `json:"approved,omitempty"`
	Warning   string `json:"warning,omitempty"`
	Err       string `json:"error,omitempty"`
}

func validateQuantity(quantity, maxStock int) QuantityValidation {
	if quantity <= 0 {
		return QuantityValidation{
			Requested: quantity,
			Err:       "Quantity must be a positive integer",
		}
	}
	if quantity > maxStock {
		return QuantityValidation{
			Valid:     true,
			Requested: quantity,
			Approved:  maxStock,
			Warning:   fmt.Sprintf("Only %d items available, quantity adjusted", maxStock),
		}
	}
	return QuantityValidation{
		Valid:     true,
		Requested: quantity,
		Approved:  quantity,
	}
}
