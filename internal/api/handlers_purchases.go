/**
 * @description
 * HTTP handlers for the purchase endpoints. Purchases are transfer requests
 * with the purchase types fixed by the route and a required recipient wallet
 * the bought asset is delivered to; everything downstream (fees, status
 * lifecycle, events) is shared with plain transfers.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app via TransferHandlers: Shared business logic.
 */

package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/xfer/transfer-service/internal/domain"
)

// CreateCryptoPurchaseHandler creates a crypto_purchase transfer: the client
// pays crypto into the admin wallet and receives the purchased asset at their
// recipient wallet.
func (h *TransferHandlers) CreateCryptoPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	h.createPurchase(w, r, domain.TransferTypeCryptoPurchase)
}

// CreateBankPurchaseHandler creates a bank_purchase transfer: the client pays
// fiat into the admin bank account and receives crypto at their recipient
// wallet.
func (h *TransferHandlers) CreateBankPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	h.createPurchase(w, r, domain.TransferTypeBankPurchase)
}

func (h *TransferHandlers) createPurchase(w http.ResponseWriter, r *http.Request, purchaseType string) {
	user, ok := GetAuthUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	var req domain.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Type = purchaseType
	if req.RecipientWallet == nil || *req.RecipientWallet == "" {
		h.writeError(w, http.StatusBadRequest, "recipient_wallet is required for purchases")
		return
	}

	transfer, err := h.service.CreateTransfer(r.Context(), user.ID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_purchase outcome=failed user_id=%s type=%s err=%v", user.ID, purchaseType, err)
		h.writeCreateTransferError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, transfer)
}

// ListPurchasesHandler returns the caller's purchase-type transfers.
func (h *TransferHandlers) ListPurchasesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	opts, err := parseListOptions(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Type == "" {
		opts.Types = domain.PurchaseTypes()
	} else if opts.Type != domain.TransferTypeCryptoPurchase && opts.Type != domain.TransferTypeBankPurchase {
		h.writeError(w, http.StatusBadRequest, "type must be a purchase type")
		return
	}

	transfers, err := h.service.ListTransfers(r.Context(), user.ID, opts)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_purchases outcome=failed user_id=%s err=%v", user.ID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if transfers == nil {
		transfers = []domain.TransferRequest{}
	}
	h.writeJSON(w, http.StatusOK, transfers)
}
