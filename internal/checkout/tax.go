package checkout

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed tax.go
var taxSource string

const defaultTaxState = "DEFAULT"

var taxRates = map[string]float64{
	"CA":            0.0725,
	"NY":            0.08,
	"TX":            0.0625,
	"FL":            0.06,
	"WA":            0.065,
	"OR":            0.0, // no sales tax
	defaultTaxState: 0.07,
}

// StateListing is one state tax entry for listing endpoints.
type StateListing struct {
	Code    string `json:"code"`
	TaxRate string `json:"tax_rate"`
}

// StateListings returns the known states (excluding the default rate)
// sorted by code.
func StateListings() []StateListing {
	listings := make([]StateListing, 0, len(taxRates)-1)
	for code, rate := range taxRates {
		if code == defaultTaxState {
			continue
		}
		listings = append(listings, StateListing{
			Code:    code,
			TaxRate: fmt.Sprintf("%.2f%%", rate*100),
		})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Code < listings[j].Code })
	return listings
}

// SalesTax is a state sales tax computation over a subtotal.
type SalesTax struct {
	Subtotal       float64 `json:"subtotal"`
	State          string  `json:"state"`
	TaxRate        float64 `json:"tax_rate"`
	TaxRatePercent string  `json:"tax_rate_percent"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalWithTax   float64 `json:"total_with_tax"`
}

// Unknown states fall back to the default 7% rate.
func calculateSalesTax(amount float64, state string) SalesTax {
	code := strings.ToUpper(strings.TrimSpace(state))
	if code == "" {
		code = defaultTaxState
	}
	rate, ok := taxRates[code]
	if !ok {
		rate = taxRates[defaultTaxState]
	}
	taxAmount := amount * rate
	return SalesTax{
		Subtotal:       round2(amount),
		State:          code,
		TaxRate:        rate,
		TaxRatePercent: fmt.Sprintf("%.2f%%", rate*100),
		TaxAmount:      round2(taxAmount),
		TotalWithTax:   round2(amount + taxAmount),
	}
}

// ShippingCost prices delivery for an order.
type ShippingCost struct {
	Subtotal     float64 `json:"subtotal"`
	WeightKG     float64 `json:"weight_kg"`
	Express      bool    `json:"express"`
	FreeShipping bool    `json:"free_shipping"`
	ShippingType string  `json:"shipping_type,omitempty"`
	BaseCost     float64 `json:"base_cost,omitempty"`
	ShippingCost float64 `json:"shipping_cost"`
	Reason       string  `json:"reason,omitempty"`
}

// Orders of $100 or more ship free; otherwise $5 base plus $1 per kg,
// doubled for express.
func calculateShippingCost(subtotal, weightKG float64, express bool) ShippingCost {
	if subtotal >= 100 {
		return ShippingCost{
			Subtotal:     round2(subtotal),
			WeightKG:     weightKG,
			Express:      express,
			FreeShipping: true,
			Reason:       "Free shipping for orders over $100",
		}
	}

	baseCost := 5.0 + weightKG*1.0
	cost := baseCost
	shippingType := "Standard (5-7 days)"
	if express {
		cost = baseCost * 2
		shippingType = "Express (2-day)"
	}
	return ShippingCost{
		Subtotal:     round2(subtotal),
		WeightKG:     weightKG,
		Express:      express,
		ShippingType: shippingType,
		BaseCost:     round2(baseCost),
		ShippingCost: round2(cost),
	}
}

// FinalTotal combines subtotal, tax, shipping, and an optional tip.
type FinalTotal struct {
	Subtotal   float64        `json:"subtotal"`
	Tax        float64        `json:"tax"`
	Shipping   float64        `json:"shipping"`
	TipPercent float64        `json:"tip_percent"`
	TipAmount  float64        `json:"tip_amount"`
	GrandTotal float64        `json:"grand_total"`
	Breakdown  TotalBreakdown `json:"breakdown"`
}

// TotalBreakdown itemizes the grand total by charge.
type TotalBreakdown struct {
	Products float64 `json:"products"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Tip      float64 `json:"tip"`
}

func calculateFinalTotal(subtotal, taxAmount, shippingCost, tipPercent float64) FinalTotal {
	var tipAmount float64
	if tipPercent > 0 {
		tipAmount = subtotal * (tipPercent / 100)
	}
	total := subtotal + taxAmount + shippingCost + tipAmount
	return FinalTotal{
		Subtotal:   round2(subtotal),
		Tax:        round2(taxAmount),
		Shipping:   round2(shippingCost),
		TipPercent: tipPercent,
		TipAmount:  round2(tipAmount),
		GrandTotal: round2(total),
		Breakdown: TotalBreakdown{
			Products: round2(subtotal),
			Tax:      round2(taxAmount),
			Shipping: round2(shippingCost),
			Tip:      round2(tipAmount),
		},
	}
}
