package checkout

import "context"

// CheckoutRequest carries the caller's order intent through the full
// pipeline.
type CheckoutRequest struct {
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	UserType        string `json:"user_type"`
	State           string `json:"state"`
	PromoCode       string `json:"promo_code,omitempty"`
	ExpressShipping bool   `json:"express_shipping,omitempty"`
}

// OrderProduct describes the purchased item inside an order summary.
type OrderProduct struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// OrderCustomer describes the buyer inside an order summary.
type OrderCustomer struct {
	Type  string `json:"type"`
	Tier  int    `json:"tier"`
	State string `json:"state"`
}

// OrderPricing itemizes every charge and discount of the order.
type OrderPricing struct {
	OriginalSubtotal float64 `json:"original_subtotal"`
	TierDiscount     float64 `json:"tier_discount"`
	VolumeDiscount   float64 `json:"volume_discount"`
	PromoDiscount    float64 `json:"promo_discount"`
	Subtotal         float64 `json:"subtotal"`
	Tax              float64 `json:"tax"`
	TaxRate          string  `json:"tax_rate"`
	Shipping         float64 `json:"shipping"`
	ShippingType     string  `json:"shipping_type"`
	GrandTotal       float64 `json:"grand_total"`
}

// OrderSummary is the successful outcome of the full checkout pipeline.
type OrderSummary struct {
	ReservationID string        `json:"reservation_id"`
	Product       OrderProduct  `json:"product"`
	Customer      OrderCustomer `json:"customer"`
	Pricing       OrderPricing  `json:"pricing"`
	PromoApplied  bool          `json:"promo_applied"`
	FreeShipping  bool          `json:"free_shipping"`
}

// CheckoutResult reports either the order summary or the first pipeline
// step that rejected the request.
type CheckoutResult struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Step         string        `json:"step,omitempty"`
	OrderSummary *OrderSummary `json:"order_summary,omitempty"`
}

// ProcessCheckout runs the complete order flow: user validation, product
// lookup, stock check, quantity clamp, reservation, tier/volume/promo
// discounts, tax, shipping, and the grand total. Each step is an
// instrumented call that leaves a trace record; the first rejection ends
// the pipeline with a step-named error.
func (s *Service) ProcessCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	userInfo, err := s.ValidateUserType(ctx, req.UserType)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !userInfo.Valid {
		return rejected(userInfo.Err, "Invalid user type", "user_validation"), nil
	}

	product, err := s.ProductDetails(ctx, req.ProductID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !product.Found {
		return rejected(product.Err, "Product not found", "product_lookup"), nil
	}

	stockCheck, err := s.CheckStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !stockCheck.Available {
		return rejected(stockCheck.Suggestion, "Out of stock", "stock_check"), nil
	}

	quantityValidation, err := s.ValidateQuantity(ctx, req.Quantity, stockCheck.CurrentStock)
	if err != nil {
		return CheckoutResult{}, err
	}
	approvedQuantity := quantityValidation.Approved

	reservation, err := s.ReserveStock(ctx, req.ProductID, approvedQuantity)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !reservation.Success {
		return rejected(reservation.Err, "Could not reserve stock", "reservation"), nil
	}

	baseDiscount, err := s.BaseDiscount(ctx, product.Price, userInfo.Tier)
	if err != nil {
		return CheckoutResult{}, err
	}

	volumeResult, err := s.VolumeDiscount(ctx, baseDiscount.DiscountedPrice, approvedQuantity)
	if err != nil {
		return CheckoutResult{}, err
	}
	subtotal := volumeResult.SubtotalAfterDiscount

	var promoDiscount float64
	var promoApplied bool
	if req.PromoCode != "" {
		promoResult, err := s.ApplyPromoCode(ctx, subtotal, req.PromoCode)
		if err != nil {
			return CheckoutResult{}, err
		}
		subtotal = promoResult.FinalPrice
		promoDiscount = promoResult.DiscountApplied
		promoApplied = promoResult.Valid
	}

	taxResult, err := s.SalesTax(ctx, subtotal, req.State)
	if err != nil {
		return CheckoutResult{}, err
	}

	shippingResult, err := s.ShippingCost(ctx, subtotal, reservation.TotalWeightKG, req.ExpressShipping)
	if err != nil {
		return CheckoutResult{}, err
	}

	finalResult, err := s.FinalTotal(ctx, subtotal, taxResult.TaxAmount, shippingResult.ShippingCost, 0)
	if err != nil {
		return CheckoutResult{}, err
	}

	shippingType := shippingResult.ShippingType
	if shippingResult.FreeShipping {
		shippingType = "Free"
	}

	return CheckoutResult{
		Success: true,
		OrderSummary: &OrderSummary{
			ReservationID: reservation.ReservationID,
			Product: OrderProduct{
				ID:        req.ProductID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  approvedQuantity,
			},
			Customer: OrderCustomer{
				Type:  userInfo.UserType,
				Tier:  userInfo.Tier,
				State: req.State,
			},
			Pricing: OrderPricing{
				OriginalSubtotal: round2(product.Price * float64(approvedQuantity)),
				TierDiscount:     round2(baseDiscount.DiscountAmount * float64(approvedQuantity)),
				VolumeDiscount:   volumeResult.VolumeDiscount,
				PromoDiscount:    promoDiscount,
				Subtotal:         subtotal,
				Tax:              taxResult.TaxAmount,
				TaxRate:          taxResult.TaxRatePercent,
				Shipping:         shippingResult.ShippingCost,
				ShippingType:     shippingType,
				GrandTotal:       finalResult.GrandTotal,
			},
			PromoApplied: promoApplied,
			FreeShipping: shippingResult.FreeShipping,
		},
	}, nil
}

// SimpleResult is the outcome of the short demo flow: tier discount plus
// default-rate tax, nothing else.
type SimpleResult struct {
	Success         bool    `json:"success"`
	OriginalPrice   float64 `json:"original_price"`
	UserType        string  `json:"user_type"`
	DiscountApplied float64 `json:"discount_applied"`
	Subtotal        float64 `json:"subtotal"`
	Tax             float64 `json:"tax"`
	FinalTotal      float64 `json:"final_total"`
}

// SimpleCheckout validates the user and price, applies the tier discount,
// and taxes the result at the default rate.
func (s *Service) SimpleCheckout(ctx context.Context, price float64, userType string) (SimpleResult, error) {
	userInfo, err := s.ValidateUserType(ctx, userType)
	if err != nil {
		return SimpleResult{}, err
	}

	priceValidation, err := s.ValidatePrice(ctx, price)
	if err != nil {
		return SimpleResult{}, err
	}
	validatedPrice := priceValidation.AdjustedPrice
	if validatedPrice == 0 {
		validatedPrice = price
	}

	discountResult, err := s.BaseDiscount(ctx, validatedPrice, userInfo.Tier)
	if err != nil {
		return SimpleResult{}, err
	}

	taxResult, err := s.SalesTax(ctx, discountResult.DiscountedPrice, defaultTaxState)
	if err != nil {
		return SimpleResult{}, err
	}

	return SimpleResult{
		Success:         true,
		OriginalPrice:   price,
		UserType:        userInfo.UserType,
		DiscountApplied: discountResult.DiscountAmount,
		Subtotal:        discountResult.DiscountedPrice,
		Tax:             taxResult.TaxAmount,
		FinalTotal:      taxResult.TotalWithTax,
	}, nil
}

func rejected(reason, fallback, step string) CheckoutResult {
	if reason == "" {
		reason = fallback
	}
	return CheckoutResult{Error: reason, Step: step}
}
