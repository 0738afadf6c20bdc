package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/explainx/explainx/internal/trace"
)

func TestCheckStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		productID     string
		requested     int
		wantAvailable bool
		wantRemaining int
		wantShortage  int
		wantErr       string
	}{
		{
			name:          "laptop with plenty of stock",
			productID:     "LAPTOP-001",
			requested:     5,
			wantAvailable: true,
			wantRemaining: 20,
		},
		{
			name:          "lowercase id is normalized",
			productID:     " laptop-001 ",
			requested:     25,
			wantAvailable: true,
			wantRemaining: 0,
		},
		{
			name:         "shortage reported when over stock",
			productID:    "TABLET-001",
			requested:    45,
			wantShortage: 5,
		},
		{
			name:      "unknown product",
			productID: "TOASTER-001",
			requested: 1,
			wantErr:   "Product not found in inventory",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := checkStock(tt.productID, tt.requested)
			if got.Available != tt.wantAvailable {
				t.Fatalf("Available = %v, want %v", got.Available, tt.wantAvailable)
			}
			if got.RemainingAfter != tt.wantRemaining {
				t.Fatalf("RemainingAfter = %d, want %d", got.RemainingAfter, tt.wantRemaining)
			}
			if got.Shortage != tt.wantShortage {
				t.Fatalf("Shortage = %d, want %d", got.Shortage, tt.wantShortage)
			}
			if got.Err != tt.wantErr {
				t.Fatalf("Err = %q, want %q", got.Err, tt.wantErr)
			}
		})
	}
}

func TestCheckStockThroughInterceptor(t *testing.T) {
	t.Parallel()

	store := trace.NewStore()
	ctx := trace.WithStore(context.Background(), store)

	result, err := NewService().CheckStock(ctx, "LAPTOP-001", 5)
	if err != nil {
		t.Fatalf("CheckStock() error: %v", err)
	}
	if !result.Available || result.RemainingAfter != 20 {
		t.Fatalf("CheckStock() = %+v, want available with remaining_after 20", result)
	}

	records := store.Drain()
	if len(records) != 1 {
		t.Fatalf("store holds %d records, want 1", len(records))
	}
	record := records[0]
	if record.Function != "checkStock" {
		t.Fatalf("record.Function = %q", record.Function)
	}
	if got := record.Inputs.String("product_id"); got != "LAPTOP-001" {
		t.Fatalf("inputs product_id = %q", got)
	}
	if got := record.Inputs.Int("requested_quantity"); got != 5 {
		t.Fatalf("inputs requested_quantity = %d", got)
	}
	output, ok := record.Output.(StockCheck)
	if !ok {
		t.Fatalf("record.Output is %T, want StockCheck", record.Output)
	}
	if !output.Available {
		t.Fatal("recorded output not available")
	}
	if !strings.Contains(record.SourceText, "func checkStock(") {
		t.Fatalf("record.SourceText does not snapshot the function: %q", record.SourceText)
	}
}

func TestApplyPromoCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		price        float64
		code         string
		wantValid    bool
		wantDiscount float64
		wantFinal    float64
		wantErr      string
	}{
		{
			name:      "FLAT50 below minimum purchase",
			price:     80,
			code:      "FLAT50",
			wantFinal: 80,
			wantErr:   "Minimum purchase of $100 required",
		},
		{
			name:         "FLAT50 at minimum purchase",
			price:        100,
			code:         "FLAT50",
			wantValid:    true,
			wantDiscount: 50,
			wantFinal:    50,
		},
		{
			name:         "SAVE10 percent discount",
			price:        200,
			code:         "save10",
			wantValid:    true,
			wantDiscount: 20,
			wantFinal:    180,
		},
		{
			name:      "SAVE20 below minimum",
			price:     40,
			code:      "SAVE20",
			wantFinal: 40,
			wantErr:   "Minimum purchase of $50 required",
		},
		{
			name:      "FREESHIP leaves price untouched",
			price:     30,
			code:      "FREESHIP",
			wantValid: true,
			wantFinal: 30,
		},
		{
			name:      "unknown code",
			price:     100,
			code:      "NOPE",
			wantFinal: 100,
			wantErr:   "Invalid promo code",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := applyPromoCode(tt.price, tt.code)
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if got.DiscountApplied != tt.wantDiscount {
				t.Fatalf("DiscountApplied = %v, want %v", got.DiscountApplied, tt.wantDiscount)
			}
			if got.FinalPrice != tt.wantFinal {
				t.Fatalf("FinalPrice = %v, want %v", got.FinalPrice, tt.wantFinal)
			}
			if got.Err != tt.wantErr {
				t.Fatalf("Err = %q, want %q", got.Err, tt.wantErr)
			}
		})
	}
}

func TestCalculateBaseDiscount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		price    float64
		tier     int
		wantRate float64
	}{
		{name: "premium tier", price: 100, tier: 3, wantRate: 0.20},
		{name: "standard tier", price: 100, tier: 2, wantRate: 0.10},
		{name: "guest tier", price: 100, tier: 1, wantRate: 0},
		{name: "invalid tier", price: 100, tier: 0, wantRate: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := calculateBaseDiscount(tt.price, tt.tier)
			if got.DiscountRate != tt.wantRate {
				t.Fatalf("DiscountRate = %v, want %v", got.DiscountRate, tt.wantRate)
			}
			if want := round2(tt.price * (1 - tt.wantRate)); got.DiscountedPrice != want {
				t.Fatalf("DiscountedPrice = %v, want %v", got.DiscountedPrice, want)
			}
		})
	}
}

func TestApplyVolumeDiscount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		quantity int
		wantRate float64
		wantTier string
	}{
		{quantity: 5, wantRate: 0, wantTier: "No volume discount"},
		{quantity: 10, wantRate: 0.05, wantTier: "Small (10+)"},
		{quantity: 25, wantRate: 0.10, wantTier: "Medium (25+)"},
		{quantity: 50, wantRate: 0.15, wantTier: "Large (50+)"},
		{quantity: 100, wantRate: 0.20, wantTier: "Bulk (100+)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.wantTier, func(t *testing.T) {
			t.Parallel()

			got := applyVolumeDiscount(10, tt.quantity)
			if got.DiscountRate != tt.wantRate || got.VolumeTier != tt.wantTier {
				t.Fatalf("applyVolumeDiscount(10, %d) = rate %v tier %q, want rate %v tier %q",
					tt.quantity, got.DiscountRate, got.VolumeTier, tt.wantRate, tt.wantTier)
			}
		})
	}
}

func TestCalculateSalesTax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    string
		wantRate float64
	}{
		{state: "CA", wantRate: 0.0725},
		{state: "or", wantRate: 0},
		{state: "ZZ", wantRate: 0.07},
		{state: "", wantRate: 0.07},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("state "+tt.state, func(t *testing.T) {
			t.Parallel()

			got := calculateSalesTax(100, tt.state)
			if got.TaxRate != tt.wantRate {
				t.Fatalf("TaxRate = %v, want %v", got.TaxRate, tt.wantRate)
			}
			if want := round2(100 * (1 + tt.wantRate)); got.TotalWithTax != want {
				t.Fatalf("TotalWithTax = %v, want %v", got.TotalWithTax, want)
			}
		})
	}
}

func TestCalculateShippingCost(t *testing.T) {
	t.Parallel()

	free := calculateShippingCost(150, 2, false)
	if !free.FreeShipping || free.ShippingCost != 0 {
		t.Fatalf("shipping over threshold = %+v, want free", free)
	}

	standard := calculateShippingCost(50, 2, false)
	if standard.ShippingCost != 7 {
		t.Fatalf("standard shipping = %v, want 7 ($5 base + $1/kg)", standard.ShippingCost)
	}

	express := calculateShippingCost(50, 2, true)
	if express.ShippingCost != 14 {
		t.Fatalf("express shipping = %v, want 14 (2x base)", express.ShippingCost)
	}
	if express.ShippingType != "Express (2-day)" {
		t.Fatalf("express shipping type = %q", express.ShippingType)
	}
}

func TestValidateUserType(t *testing.T) {
	t.Parallel()

	premium := validateUserType(" Premium ")
	if !premium.Valid || premium.Tier != 3 || !premium.DiscountEligible {
		t.Fatalf("validateUserType(premium) = %+v", premium)
	}

	unknown := validateUserType("wizard")
	if unknown.Valid || unknown.Tier != 0 || unknown.Err == "" {
		t.Fatalf("validateUserType(wizard) = %+v", unknown)
	}
}

func TestValidatePrice(t *testing.T) {
	t.Parallel()

	if got := validatePrice(-5); got.Valid || got.Err != "Price must be positive" {
		t.Fatalf("validatePrice(-5) = %+v", got)
	}
	if got := validatePrice(2000000); got.Valid {
		t.Fatalf("validatePrice(2000000) = %+v, want invalid", got)
	}
	if got := validatePrice(4); !got.Valid || got.AdjustedPrice != 10 || got.Warning == "" {
		t.Fatalf("validatePrice(4) = %+v, want adjusted to minimum order value", got)
	}
	if got := validatePrice(99.5); !got.Valid || got.AdjustedPrice != 99.5 {
		t.Fatalf("validatePrice(99.5) = %+v", got)
	}
}

func TestProcessCheckoutFullFlow(t *testing.T) {
	t.Parallel()

	store := trace.NewStore()
	ctx := trace.WithStore(context.Background(), store)

	result, err := NewService().ProcessCheckout(ctx, CheckoutRequest{
		ProductID: "PHONE-001",
		Quantity:  2,
		UserType:  "premium",
		State:     "CA",
		PromoCode: "SAVE10",
	})
	if err != nil {
		t.Fatalf("ProcessCheckout() error: %v", err)
	}
	if !result.Success {
		t.Fatalf("ProcessCheckout() failed at step %q: %s", result.Step, result.Error)
	}

	summary := result.OrderSummary
	if summary.ReservationID != "RES-PHONE-001-2" {
		t.Fatalf("ReservationID = %q", summary.ReservationID)
	}
	if summary.Customer.Tier != 3 {
		t.Fatalf("Customer.Tier = %d, want 3", summary.Customer.Tier)
	}
	if !summary.PromoApplied {
		t.Fatal("PromoApplied = false, want SAVE10 applied")
	}
	// 899.99 → 719.99 after 20% tier discount; x2 = 1439.98 (no volume
	// band); SAVE10 → 1295.98; CA tax 7.25%; free shipping over $100.
	if got := summary.Pricing.Subtotal; got != 1295.98 {
		t.Fatalf("Pricing.Subtotal = %v, want 1295.98", got)
	}
	if !summary.FreeShipping {
		t.Fatal("FreeShipping = false, want free over $100")
	}
	if got := summary.Pricing.GrandTotal; got != round2(1295.98*1.0725) {
		t.Fatalf("Pricing.GrandTotal = %v", got)
	}

	// Eleven instrumented calls in pipeline order.
	records := store.Drain()
	wantOrder := []string{
		"validateUserType",
		"productDetails",
		"checkStock",
		"validateQuantity",
		"reserveStock",
		"calculateBaseDiscount",
		"applyVolumeDiscount",
		"applyPromoCode",
		"calculateSalesTax",
		"calculateShippingCost",
		"calculateFinalTotal",
	}
	if len(records) != len(wantOrder) {
		t.Fatalf("captured %d trace records, want %d", len(records), len(wantOrder))
	}
	for i, record := range records {
		if record.Function != wantOrder[i] {
			t.Fatalf("record %d = %q, want %q", i, record.Function, wantOrder[i])
		}
	}
}

func TestProcessCheckoutRejectsEarly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      CheckoutRequest
		wantStep string
	}{
		{
			name:     "unknown user type",
			req:      CheckoutRequest{ProductID: "PHONE-001", Quantity: 1, UserType: "wizard", State: "CA"},
			wantStep: "user_validation",
		},
		{
			name:     "unknown product",
			req:      CheckoutRequest{ProductID: "TOASTER-001", Quantity: 1, UserType: "guest", State: "CA"},
			wantStep: "product_lookup",
		},
		{
			name:     "insufficient stock",
			req:      CheckoutRequest{ProductID: "LAPTOP-001", Quantity: 500, UserType: "guest", State: "CA"},
			wantStep: "stock_check",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := trace.WithStore(context.Background(), trace.NewStore())
			result, err := NewService().ProcessCheckout(ctx, tt.req)
			if err != nil {
				t.Fatalf("ProcessCheckout() error: %v", err)
			}
			if result.Success || result.Step != tt.wantStep {
				t.Fatalf("result = %+v, want rejection at %q", result, tt.wantStep)
			}
		})
	}
}

func TestSimpleCheckout(t *testing.T) {
	t.Parallel()

	store := trace.NewStore()
	ctx := trace.WithStore(context.Background(), store)

	result, err := NewService().SimpleCheckout(ctx, 100, "premium")
	if err != nil {
		t.Fatalf("SimpleCheckout() error: %v", err)
	}
	if !result.Success {
		t.Fatal("SimpleCheckout() not successful")
	}
	if result.DiscountApplied != 20 || result.Subtotal != 80 {
		t.Fatalf("result = %+v, want 20%% tier discount on 100", result)
	}
	if want := round2(80 * 1.07); result.FinalTotal != want {
		t.Fatalf("FinalTotal = %v, want %v (default 7%% tax)", result.FinalTotal, want)
	}
	if got := store.Len(); got != 4 {
		t.Fatalf("captured %d trace records, want 4", got)
	}
}

func TestCatalogListings(t *testing.T) {
	t.Parallel()

	products := Products()
	if len(products) != 5 {
		t.Fatalf("Products() returned %d entries, want 5", len(products))
	}
	for i := 1; i < len(products); i++ {
		if products[i-1].ID >= products[i].ID {
			t.Fatalf("Products() not sorted: %q before %q", products[i-1].ID, products[i].ID)
		}
	}

	if got := len(PromoCodeListings()); got != 4 {
		t.Fatalf("PromoCodeListings() returned %d entries, want 4", got)
	}

	types := UserTypeListings()
	if len(types) != 3 || types[0].Type != "premium" || types[0].Tier != 3 {
		t.Fatalf("UserTypeListings() = %+v", types)
	}

	states := StateListings()
	if len(states) != 6 {
		t.Fatalf("StateListings() returned %d entries, want 6", len(states))
	}
	for _, state := range states {
		if state.Code == defaultTaxState {
			t.Fatal("StateListings() leaked the default rate entry")
		}
	}
}
