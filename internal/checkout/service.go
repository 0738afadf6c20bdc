// Package checkout implements the order pipelines whose execution the
// tracing layer captures: validation, inventory, pricing, tax, and
// shipping, plus the orchestrations that tie them together. Every business
// function is registered with the call interceptor at construction time so
// each invocation leaves one trace record behind.
package checkout

import (
	"context"

	"github.com/explainx/explainx/internal/trace"
)

// Service exposes the instrumented checkout callables. Construct one per
// process; per-request trace isolation comes from the Store carried by the
// call context, not from the Service.
type Service struct {
	validateUserType *trace.Wrapped
	validatePrice    *trace.Wrapped
	validateQuantity *trace.Wrapped
	productDetails   *trace.Wrapped
	checkStock       *trace.Wrapped
	reserveStock     *trace.Wrapped
	baseDiscount     *trace.Wrapped
	volumeDiscount   *trace.Wrapped
	promoCode        *trace.Wrapped
	salesTax         *trace.Wrapped
	shippingCost     *trace.Wrapped
	finalTotal       *trace.Wrapped
}

func NewService() *Service {
	return &Service{
		validateUserType: trace.Instrument(trace.FuncInfo{
			Name:     "validateUserType",
			Location: "internal/checkout/validation.go",
			Params:   []string{"user_type"},
			Source:   trace.FuncSource(validationSource, "validateUserType"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return validateUserType(in.String("user_type")), nil
		}),
		validatePrice: trace.Instrument(trace.FuncInfo{
			Name:     "validatePrice",
			Location: "internal/checkout/validation.go",
			Params:   []string{"price"},
			Source:   trace.FuncSource(validationSource, "validatePrice"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return validatePrice(in.Float("price")), nil
		}),
		validateQuantity: trace.Instrument(trace.FuncInfo{
			Name:     "validateQuantity",
			Location: "internal/checkout/validation.go",
			Params:   []string{"quantity", "max_stock"},
			Source:   trace.FuncSource(validationSource, "validateQuantity"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return validateQuantity(in.Int("quantity"), in.Int("max_stock")), nil
		}),
		productDetails: trace.Instrument(trace.FuncInfo{
			Name:     "productDetails",
			Location: "internal/checkout/inventory.go",
			Params:   []string{"product_id"},
			Source:   trace.FuncSource(inventorySource, "productDetails"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return productDetails(in.String("product_id")), nil
		}),
		checkStock: trace.Instrument(trace.FuncInfo{
			Name:     "checkStock",
			Location: "internal/checkout/inventory.go",
			Params:   []string{"product_id", "requested_quantity"},
			Source:   trace.FuncSource(inventorySource, "checkStock"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return checkStock(in.String("product_id"), in.Int("requested_quantity")), nil
		}),
		reserveStock: trace.Instrument(trace.FuncInfo{
			Name:     "reserveStock",
			Location: "internal/checkout/inventory.go",
			Params:   []string{"product_id", "quantity"},
			Source:   trace.FuncSource(inventorySource, "reserveStock"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return reserveStock(in.String("product_id"), in.Int("quantity")), nil
		}),
		baseDiscount: trace.Instrument(trace.FuncInfo{
			Name:     "calculateBaseDiscount",
			Location: "internal/checkout/pricing.go",
			Params:   []string{"price", "user_tier"},
			Source:   trace.FuncSource(pricingSource, "calculateBaseDiscount"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateBaseDiscount(in.Float("price"), in.Int("user_tier")), nil
		}),
		volumeDiscount: trace.Instrument(trace.FuncInfo{
			Name:     "applyVolumeDiscount",
			Location: "internal/checkout/pricing.go",
			Params:   []string{"price", "quantity"},
			Source:   trace.FuncSource(pricingSource, "applyVolumeDiscount"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return applyVolumeDiscount(in.Float("price"), in.Int("quantity")), nil
		}),
		promoCode: trace.Instrument(trace.FuncInfo{
			Name:     "applyPromoCode",
			Location: "internal/checkout/pricing.go",
			Params:   []string{"price", "promo_code"},
			Source:   trace.FuncSource(pricingSource, "applyPromoCode"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return applyPromoCode(in.Float("price"), in.String("promo_code")), nil
		}),
		salesTax: trace.Instrument(trace.FuncInfo{
			Name:     "calculateSalesTax",
			Location: "internal/checkout/tax.go",
			Params:   []string{"amount", "state"},
			Source:   trace.FuncSource(taxSource, "calculateSalesTax"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateSalesTax(in.Float("amount"), in.String("state")), nil
		}),
		shippingCost: trace.Instrument(trace.FuncInfo{
			Name:     "calculateShippingCost",
			Location: "internal/checkout/tax.go",
			Params:   []string{"subtotal", "weight_kg", "express"},
			Source:   trace.FuncSource(taxSource, "calculateShippingCost"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateShippingCost(in.Float("subtotal"), in.Float("weight_kg"), in.Bool("express")), nil
		}),
		finalTotal: trace.Instrument(trace.FuncInfo{
			Name:     "calculateFinalTotal",
			Location: "internal/checkout/tax.go",
			Params:   []string{"subtotal", "tax_amount", "shipping_cost", "tip_percent"},
			Source:   trace.FuncSource(taxSource, "calculateFinalTotal"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateFinalTotal(in.Float("subtotal"), in.Float("tax_amount"), in.Float("shipping_cost"), in.Float("tip_percent")), nil
		}),
	}
}

// ValidateUserType runs the instrumented user-type validation.
func (s *Service) ValidateUserType(ctx context.Context, userType string) (UserValidation, error) {
	out, err := s.validateUserType.Call(ctx, nil, map[string]any{"user_type": userType})
	if err != nil {
		return UserValidation{}, err
	}
	return out.(UserValidation), nil
}

// ValidatePrice runs the instrumented price validation.
func (s *Service) ValidatePrice(ctx context.Context, price float64) (PriceValidation, error) {
	out, err := s.validatePrice.Call(ctx, nil, map[string]any{"price": price})
	if err != nil {
		return PriceValidation{}, err
	}
	return out.(PriceValidation), nil
}

// ValidateQuantity runs the instrumented quantity validation.
func (s *Service) ValidateQuantity(ctx context.Context, quantity, maxStock int) (QuantityValidation, error) {
	out, err := s.validateQuantity.Call(ctx, nil, map[string]any{"quantity": quantity, "max_stock": maxStock})
	if err != nil {
		return QuantityValidation{}, err
	}
	return out.(QuantityValidation), nil
}

// ProductDetails runs the instrumented catalog lookup.
func (s *Service) ProductDetails(ctx context.Context, productID string) (ProductDetails, error) {
	out, err := s.productDetails.Call(ctx, nil, map[string]any{"product_id": productID})
	if err != nil {
		return ProductDetails{}, err
	}
	return out.(ProductDetails), nil
}

// CheckStock runs the instrumented availability check.
func (s *Service) CheckStock(ctx context.Context, productID string, requested int) (StockCheck, error) {
	out, err := s.checkStock.Call(ctx, nil, map[string]any{"product_id": productID, "requested_quantity": requested})
	if err != nil {
		return StockCheck{}, err
	}
	return out.(StockCheck), nil
}

// ReserveStock runs the instrumented stock reservation.
func (s *Service) ReserveStock(ctx context.Context, productID string, quantity int) (Reservation, error) {
	out, err := s.reserveStock.Call(ctx, nil, map[string]any{"product_id": productID, "quantity": quantity})
	if err != nil {
		return Reservation{}, err
	}
	return out.(Reservation), nil
}

// BaseDiscount runs the instrumented tier discount.
func (s *Service) BaseDiscount(ctx context.Context, price float64, userTier int) (BaseDiscount, error) {
	out, err := s.baseDiscount.Call(ctx, nil, map[string]any{"price": price, "user_tier": userTier})
	if err != nil {
		return BaseDiscount{}, err
	}
	return out.(BaseDiscount), nil
}

// VolumeDiscount runs the instrumented volume discount.
func (s *Service) VolumeDiscount(ctx context.Context, price float64, quantity int) (VolumeDiscount, error) {
	out, err := s.volumeDiscount.Call(ctx, nil, map[string]any{"price": price, "quantity": quantity})
	if err != nil {
		return VolumeDiscount{}, err
	}
	return out.(VolumeDiscount), nil
}

// ApplyPromoCode runs the instrumented promo application.
func (s *Service) ApplyPromoCode(ctx context.Context, price float64, promoCode string) (PromoResult, error) {
	out, err := s.promoCode.Call(ctx, nil, map[string]any{"price": price, "promo_code": promoCode})
	if err != nil {
		return PromoResult{}, err
	}
	return out.(PromoResult), nil
}

// SalesTax runs the instrumented tax computation.
func (s *Service) SalesTax(ctx context.Context, amount float64, state string) (SalesTax, error) {
	out, err := s.salesTax.Call(ctx, nil, map[string]any{"amount": amount, "state": state})
	if err != nil {
		return SalesTax{}, err
	}
	return out.(SalesTax), nil
}

// ShippingCost runs the instrumented shipping computation.
func (s *Service) ShippingCost(ctx context.Context, subtotal, weightKG float64, express bool) (ShippingCost, error) {
	out, err := s.shippingCost.Call(ctx, nil, map[string]any{"subtotal": subtotal, "weight_kg": weightKG, "express": express})
	if err != nil {
		return ShippingCost{}, err
	}
	return out.(ShippingCost), nil
}

// FinalTotal runs the instrumented grand-total computation.
func (s *Service) FinalTotal(ctx context.Context, subtotal, taxAmount, shippingCost, tipPercent float64) (FinalTotal, error) {
	out, err := s.finalTotal.Call(ctx, nil, map[string]any{
		"subtotal":      subtotal,
		"tax_amount":    taxAmount,
		"shipping_cost": shippingCost,
		"tip_percent":   tipPercent,
	})
	if err != nil {
		return FinalTotal{}, err
	}
	return out.(FinalTotal), nil
}
