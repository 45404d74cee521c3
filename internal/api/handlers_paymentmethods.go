/**
 * @description
 * HTTP handlers for managing admin payment-method instances: the company
 * wallets and bank accounts client transfers are attributed to. All routes in
 * this file sit behind the admin gate.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models, errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/xfer/transfer-service/internal/app"
	"github.com/xfer/transfer-service/internal/domain"
	"github.com/xfer/transfer-service/internal/store"
)

// CreateWalletHandler registers a new admin wallet.
func (h *TransferHandlers) CreateWalletHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet, err := h.service.CreateAdminWallet(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidPaymentMethod):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrWalletAddressExists):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("level=error component=api endpoint=create_wallet outcome=failed err=%v", err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, wallet)
}

// ListWalletsHandler lists admin wallets, primary first. active_only=true
// filters out deactivated instances.
func (h *TransferHandlers) ListWalletsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly := strings.EqualFold(r.URL.Query().Get("active_only"), "true")
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 50)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := parseOptionalInt(r.URL.Query().Get("offset"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	wallets, err := h.service.ListAdminWallets(r.Context(), activeOnly, limit, offset)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_wallets outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if wallets == nil {
		wallets = []domain.AdminWallet{}
	}
	h.writeJSON(w, http.StatusOK, wallets)
}

// GetWalletHandler fetches one admin wallet by id.
func (h *TransferHandlers) GetWalletHandler(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid wallet ID format")
		return
	}

	wallet, err := h.service.GetAdminWallet(r.Context(), walletID)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			h.writeError(w, http.StatusNotFound, "Wallet not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_wallet outcome=failed wallet_id=%s err=%v", walletID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, wallet)
}

// GetPrimaryWalletHandler returns the active primary wallet.
func (h *TransferHandlers) GetPrimaryWalletHandler(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.service.GetPrimaryAdminWallet(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoPrimaryWallet) {
			h.writeError(w, http.StatusNotFound, "No primary wallet configured")
			return
		}
		log.Printf("level=error component=api endpoint=get_primary_wallet outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, wallet)
}

// UpdateWalletHandler applies a partial update to an admin wallet.
func (h *TransferHandlers) UpdateWalletHandler(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid wallet ID format")
		return
	}

	var req domain.UpdateAdminWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet, err := h.service.UpdateAdminWallet(r.Context(), walletID, req)
	if err != nil {
		h.writePaymentMethodMutationError(w, "update_wallet", err)
		return
	}
	h.writeJSON(w, http.StatusOK, wallet)
}

// SetPrimaryWalletHandler promotes a wallet to primary.
func (h *TransferHandlers) SetPrimaryWalletHandler(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid wallet ID format")
		return
	}

	if err := h.service.SetPrimaryAdminWallet(r.Context(), walletID); err != nil {
		h.writePaymentMethodMutationError(w, "set_primary_wallet", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Primary wallet updated successfully"})
}

// DemoteWalletHandler unsets a wallet's primary flag, promoting an active
// sibling in its place.
func (h *TransferHandlers) DemoteWalletHandler(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid wallet ID format")
		return
	}

	if err := h.service.DemoteAdminWallet(r.Context(), walletID); err != nil {
		h.writePaymentMethodMutationError(w, "demote_wallet", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Wallet demoted successfully"})
}

// DeleteWalletHandler removes an admin wallet.
func (h *TransferHandlers) DeleteWalletHandler(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid wallet ID format")
		return
	}

	if err := h.service.DeleteAdminWallet(r.Context(), walletID); err != nil {
		h.writePaymentMethodMutationError(w, "delete_wallet", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Wallet deleted successfully"})
}

// CreateBankAccountHandler registers a new admin bank account.
func (h *TransferHandlers) CreateBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.CreateAdminBankAccount(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidPaymentMethod) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=create_bank_account outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

// ListBankAccountsHandler lists admin bank accounts, primary first.
func (h *TransferHandlers) ListBankAccountsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly := strings.EqualFold(r.URL.Query().Get("active_only"), "true")
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 50)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := parseOptionalInt(r.URL.Query().Get("offset"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	accounts, err := h.service.ListAdminBankAccounts(r.Context(), activeOnly, limit, offset)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_bank_accounts outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if accounts == nil {
		accounts = []domain.AdminBankAccount{}
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// GetBankAccountHandler fetches one admin bank account by id.
func (h *TransferHandlers) GetBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid bank account ID format")
		return
	}

	account, err := h.service.GetAdminBankAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrBankAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "Bank account not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_bank_account outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// GetPrimaryBankAccountHandler returns the active primary bank account.
func (h *TransferHandlers) GetPrimaryBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetPrimaryAdminBankAccount(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoPrimaryBankAccount) {
			h.writeError(w, http.StatusNotFound, "No primary bank account configured")
			return
		}
		log.Printf("level=error component=api endpoint=get_primary_bank_account outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// UpdateBankAccountHandler applies a partial update to an admin bank account.
func (h *TransferHandlers) UpdateBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid bank account ID format")
		return
	}

	var req domain.UpdateAdminBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.UpdateAdminBankAccount(r.Context(), accountID, req)
	if err != nil {
		h.writePaymentMethodMutationError(w, "update_bank_account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// SetPrimaryBankAccountHandler promotes a bank account to primary.
func (h *TransferHandlers) SetPrimaryBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid bank account ID format")
		return
	}

	if err := h.service.SetPrimaryAdminBankAccount(r.Context(), accountID); err != nil {
		h.writePaymentMethodMutationError(w, "set_primary_bank_account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Primary bank account updated successfully"})
}

// DemoteBankAccountHandler unsets a bank account's primary flag.
func (h *TransferHandlers) DemoteBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid bank account ID format")
		return
	}

	if err := h.service.DemoteAdminBankAccount(r.Context(), accountID); err != nil {
		h.writePaymentMethodMutationError(w, "demote_bank_account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Bank account demoted successfully"})
}

// DeleteBankAccountHandler removes an admin bank account.
func (h *TransferHandlers) DeleteBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid bank account ID format")
		return
	}

	if err := h.service.DeleteAdminBankAccount(r.Context(), accountID); err != nil {
		h.writePaymentMethodMutationError(w, "delete_bank_account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Bank account deleted successfully"})
}

func (h *TransferHandlers) writePaymentMethodMutationError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, store.ErrWalletNotFound):
		h.writeError(w, http.StatusNotFound, "Wallet not found or not active")
	case errors.Is(err, store.ErrBankAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Bank account not found or not active")
	case errors.Is(err, app.ErrInvalidPaymentMethod):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrWalletAddressExists):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrCannotUnsetSolePrimary), errors.Is(err, store.ErrCannotDeleteSolePrimary):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("level=error component=api endpoint=%s outcome=failed err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
