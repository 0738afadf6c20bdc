package checkout

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
)

//go:embed pricing.go
var pricingSource string

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// BaseDiscount is the user-tier discount applied to a unit price.
type BaseDiscount struct {
	OriginalPrice   float64 `json:"original_price"`
	DiscountRate    float64 `json:"discount_rate"`
	DiscountAmount  float64 `json:"discount_amount"`
	DiscountedPrice float64 `json:"discounted_price"`
}

// Tier 3 gets 20% off, tier 2 gets 10%, everyone else pays full price.
func calculateBaseDiscount(price float64, userTier int) BaseDiscount {
	var rate float64
	switch userTier {
	case 3:
		rate = 0.20
	case 2:
		rate = 0.10
	}
	amount := price * rate
	return BaseDiscount{
		OriginalPrice:   price,
		DiscountRate:    rate,
		DiscountAmount:  round2(amount),
		DiscountedPrice: round2(price - amount),
	}
}

// VolumeDiscount is the quantity-banded discount on a line subtotal.
type VolumeDiscount struct {
	UnitPrice              float64 `json:"unit_price"`
	Quantity               int     `json:"quantity"`
	VolumeTier             string  `json:"volume_tier"`
	DiscountRate           float64 `json:"discount_rate"`
	SubtotalBeforeDiscount float64 `json:"subtotal_before_discount"`
	VolumeDiscount         float64 `json:"volume_discount"`
	SubtotalAfterDiscount  float64 `json:"subtotal_after_discount"`
}

func applyVolumeDiscount(price float64, quantity int) VolumeDiscount {
	var rate float64
	var tierName string
	switch {
	case quantity >= 100:
		rate, tierName = 0.20, "Bulk (100+)"
	case quantity >= 50:
		rate, tierName = 0.15, "Large (50+)"
	case quantity >= 25:
		rate, tierName = 0.10, "Medium (25+)"
	case quantity >= 10:
		rate, tierName = 0.05, "Small (10+)"
	default:
		rate, tierName = 0.0, "No volume discount"
	}

	totalBefore := price * float64(quantity)
	discount := totalBefore * rate
	return VolumeDiscount{
		UnitPrice:              price,
		Quantity:               quantity,
		VolumeTier:             tierName,
		DiscountRate:           rate,
		SubtotalBeforeDiscount: round2(totalBefore),
		VolumeDiscount:         round2(discount),
		SubtotalAfterDiscount:  round2(totalBefore - discount),
	}
}

// PromoResult is the outcome of applying a promotional code.
type PromoResult struct {
	OriginalPrice   float64 `json:"original_price"`
	PromoCode       string  `json:"promo_code"`
	Valid           bool    `json:"valid"`
	PromoType       string  `json:"promo_type,omitempty"`
	DiscountApplied float64 `json:"discount_applied"`
	FinalPrice      float64 `json:"final_price"`
	Bonus           string  `json:"bonus,omitempty"`
	Err             string  `json:"error,omitempty"`
}

const (
	promoTypePercent = "percent"
	promoTypeFixed   = "fixed"
	promoTypeBonus   = "bonus"
)

type promo struct {
	kind        string
	value       float64
	bonus       string
	minPurchase float64
	description string
}

var promoCodes = map[string]promo{
	"SAVE10":   {kind: promoTypePercent, value: 0.10, description: "10% off any order"},
	"SAVE20":   {kind: promoTypePercent, value: 0.20, minPurchase: 50, description: "20% off orders $50+"},
	"FLAT50":   {kind: promoTypeFixed, value: 50, minPurchase: 100, description: "$50 off orders $100+"},
	"FREESHIP": {kind: promoTypeBonus, bonus: "free_shipping", description: "Free shipping bonus"},
}

// PromoListing is one advertised promo code for listing endpoints.
type PromoListing struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PromoCodeListings returns all advertised promo codes in a fixed order.
func PromoCodeListings() []PromoListing {
	return []PromoListing{
		{Code: "SAVE10", Description: promoCodes["SAVE10"].description},
		{Code: "SAVE20", Description: promoCodes["SAVE20"].description},
		{Code: "FLAT50", Description: promoCodes["FLAT50"].description},
		{Code: "FREESHIP", Description: promoCodes["FREESHIP"].description},
	}
}

func applyPromoCode(price float64, promoCode string) PromoResult {
	code := strings.ToUpper(strings.TrimSpace(promoCode))
	entry, ok := promoCodes[code]
	if !ok {
		return PromoResult{
			OriginalPrice: price,
			PromoCode:     promoCode,
			Err:           "Invalid promo code",
			FinalPrice:    price,
		}
	}
	if price < entry.minPurchase {
		return PromoResult{
			OriginalPrice: price,
			PromoCode:     code,
			Err:           fmt.Sprintf("Minimum purchase of $%.0f required", entry.minPurchase),
			FinalPrice:    price,
		}
	}

	var discount float64
	switch entry.kind {
	case promoTypePercent:
		discount = price * entry.value
	case promoTypeFixed:
		// A fixed discount never drives the price negative.
		discount = math.Min(entry.value, price)
	}

	return PromoResult{
		OriginalPrice:   price,
		PromoCode:       code,
		Valid:           true,
		PromoType:       entry.kind,
		DiscountApplied: round2(discount),
		FinalPrice:      round2(price - discount),
		Bonus:           entry.bonus,
	}
}
