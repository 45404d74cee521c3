/**
 * @description
 * This file sets up the HTTP router for the transfer-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TransferRoutes creates and returns a new router for the transfer service.
func TransferRoutes(h *TransferHandlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		// Transfer lifecycle
		r.Post("/transfers", h.CreateTransferHandler)
		r.Get("/transfers", h.ListTransfersHandler)
		r.Get("/transfers/{id}", h.GetTransferHandler)
		r.Get("/transfers/{id}/status", h.GetTransferStatusHandler)

		// Purchase flows (transfers with the type fixed by the route)
		r.Post("/purchases/crypto", h.CreateCryptoPurchaseHandler)
		r.Post("/purchases/bank", h.CreateBankPurchaseHandler)
		r.Get("/purchases", h.ListPurchasesHandler)

		// Fee quoting and payment destination discovery
		r.Get("/fees/quote", h.QuoteFeeHandler)
		r.Get("/fees/reverse-quote", h.ReverseQuoteFeeHandler)
		r.Get("/fees/payment-method", h.GetPaymentMethodHandler)

		// Admin-only surface
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/admin/transfers", h.ListAllTransfersHandler)
			r.Put("/transfers/{id}/status", h.UpdateTransferStatusHandler)
			r.Get("/admin/transfers/stats", h.GetTransferStatsHandler)

			r.Post("/admin/wallets", h.CreateWalletHandler)
			r.Get("/admin/wallets", h.ListWalletsHandler)
			r.Get("/admin/wallets/primary", h.GetPrimaryWalletHandler)
			r.Get("/admin/wallets/{id}", h.GetWalletHandler)
			r.Put("/admin/wallets/{id}", h.UpdateWalletHandler)
			r.Put("/admin/wallets/{id}/primary", h.SetPrimaryWalletHandler)
			r.Delete("/admin/wallets/{id}/primary", h.DemoteWalletHandler)
			r.Delete("/admin/wallets/{id}", h.DeleteWalletHandler)

			r.Post("/admin/bank-accounts", h.CreateBankAccountHandler)
			r.Get("/admin/bank-accounts", h.ListBankAccountsHandler)
			r.Get("/admin/bank-accounts/primary", h.GetPrimaryBankAccountHandler)
			r.Get("/admin/bank-accounts/{id}", h.GetBankAccountHandler)
			r.Put("/admin/bank-accounts/{id}", h.UpdateBankAccountHandler)
			r.Put("/admin/bank-accounts/{id}/primary", h.SetPrimaryBankAccountHandler)
			r.Delete("/admin/bank-accounts/{id}/primary", h.DemoteBankAccountHandler)
			r.Delete("/admin/bank-accounts/{id}", h.DeleteBankAccountHandler)
		})
	})

	return r
}
