package checkout

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed inventory.go
var inventorySource string

// Product is one catalog entry in the simulated inventory.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Stock    int     `json:"stock"`
	Price    float64 `json:"price"`
	WeightKG float64 `json:"weight_kg"`
}

var inventory = map[string]Product{
	"LAPTOP-001":     {ID: "LAPTOP-001", Name: `Pro Laptop 15"`, Stock: 25, Price: 1299.99, WeightKG: 2.1},
	"PHONE-001":      {ID: "PHONE-001", Name: "Smart Phone X", Stock: 150, Price: 899.99, WeightKG: 0.2},
	"HEADPHONES-001": {ID: "HEADPHONES-001", Name: "Wireless Headphones", Stock: 75, Price: 249.99, WeightKG: 0.3},
	"TABLET-001":     {ID: "TABLET-001", Name: `Pro Tablet 12"`, Stock: 40, Price: 799.99, WeightKG: 0.6},
	"WATCH-001":      {ID: "WATCH-001", Name: "Smart Watch Pro", Stock: 200, Price: 399.99, WeightKG: 0.1},
}

// Products returns the catalog sorted by product ID for listing endpoints.
func Products() []Product {
	products := make([]Product, 0, len(inventory))
	for _, product := range inventory {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

// StockCheck reports whether a requested quantity is available. The
// populated fields depend on the branch taken: a miss carries only the
// error, a shortage carries the shortage and a suggestion, and an
// availability hit carries the remaining stock and unit economics.
type StockCheck struct {
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name,omitempty"`
	Found          bool    `json:"found"`
	Available      bool    `json:"available"`
	Requested      int     `json:"requested,omitempty"`
	CurrentStock   int     `json:"current_stock,omitempty"`
	RemainingAfter int     `json:"remaining_after"`
	Shortage       int     `json:"shortage,omitempty"`
	Suggestion     string  `json:"suggestion,omitempty"`
	UnitPrice      float64 `json:"unit_price,omitempty"`
	WeightKG       float64 `json:"weight_kg,omitempty"`
	Err            string  `json:"error,omitempty"`
}

func checkStock(productID string, requested int) StockCheck {
	id := strings.ToUpper(strings.TrimSpace(productID))
	product, ok := inventory[id]
	if !ok {
		return StockCheck{
			ProductID: id,
			Err:       "Product not found in inventory",
		}
	}
	if requested <= product.Stock {
		return StockCheck{
			ProductID:      id,
			ProductName:    product.Name,
			Found:          true,
			Available:      true,
			Requested:      requested,
			CurrentStock:   product.Stock,
			RemainingAfter: product.Stock - requested,
			UnitPrice:      product.Price,
			WeightKG:       product.WeightKG,
		}
	}
	return StockCheck{
		ProductID:    id,
		ProductName:  product.Name,
		Found:        true,
		Requested:    requested,
		CurrentStock: product.Stock,
		Shortage:     requested - product.Stock,
		Suggestion:   fmt.Sprintf("Maximum available: %d units", product.Stock),
	}
}

// Reservation is a simulated stock hold; a real system would lock
// inventory here.
type Reservation struct {
	Success          bool    `json:"success"`
	ReservationID    string  `json:"reservation_id,omitempty"`
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name,omitempty"`
	QuantityReserved int     `json:"quantity_reserved,omitempty"`
	Requested        int     `json:"requested,omitempty"`
	AvailableStock   int     `json:"available,omitempty"`
	UnitPrice        float64 `json:"unit_price,omitempty"`
	TotalWeightKG    float64 `json:"total_weight_kg,omitempty"`
	LineTotal        float64 `json:"line_total,omitempty"`
	ExpiryMinutes    int     `json:"expiry_minutes,omitempty"`
	Err              string  `json:"error,omitempty"`
}

func reserveStock(productID string, quantity int) Reservation {
	id := strings.ToUpper(strings.TrimSpace(productID))
	product, ok := inventory[id]
	if !ok {
		return Reservation{
			ProductID: id,
			Err:       "Product not found",
		}
	}
	if quantity > product.Stock {
		return Reservation{
			ProductID:      id,
			ProductName:    product.Name,
			Requested:      quantity,
			AvailableStock: product.Stock,
			Err:            "Insufficient stock",
		}
	}
	return Reservation{
		Success:          true,
		ReservationID:    fmt.Sprintf("RES-%s-%d", id, quantity),
		ProductID:        id,
		ProductName:      product.Name,
		QuantityReserved: quantity,
		UnitPrice:        product.Price,
		TotalWeightKG:    product.WeightKG * float64(quantity),
		LineTotal:        round2(product.Price * float64(quantity)),
		ExpiryMinutes:    15,
	}
}

// ProductDetails is the full catalog view of one product.
type ProductDetails struct {
	Found     bool    `json:"found"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Stock     int     `json:"stock,omitempty"`
	WeightKG  float64 `json:"weight_kg,omitempty"`
	InStock   bool    `json:"in_stock,omitempty"`
	Err       string  `json:"error,omitempty"`
}

func productDetails(productID string) ProductDetails {
	id := strings.ToUpper(strings.TrimSpace(productID))
	product, ok := inventory[id]
	if !ok {
		return ProductDetails{
			ProductID: id,
			Err:       "Product not found",
		}
	}
	return ProductDetails{
		Found:     true,
		ProductID: id,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		WeightKG:  product.WeightKG,
		InStock:   product.Stock > 0,
	}
}
