package api

import (
	"net/http"

	"github.com/explainx/explainx/internal/checkout"
)

// ProductsHandler lists the simulated inventory.
func ProductsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"products": checkout.Products(),
		})
	})
}

// PromoCodesHandler lists the advertised promo codes.
func PromoCodesHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"codes": checkout.PromoCodeListings(),
		})
	})
}

// UserTypesHandler lists the known user types and their discounts.
func UserTypesHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"types": checkout.UserTypeListings(),
		})
	})
}

// StatesHandler lists the states with known tax rates.
func StatesHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"states": checkout.StateListings(),
		})
	})
}
