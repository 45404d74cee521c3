/**
 * @description
 * This file contains the HTTP handlers for the transfer-service's transfer and
 * fee endpoints. Handlers are responsible for parsing incoming requests,
 * calling the appropriate methods on the application service, and writing the
 * HTTP response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xfer/transfer-service/internal/app"
	"github.com/xfer/transfer-service/internal/domain"
	"github.com/xfer/transfer-service/internal/store"
)

// TransferHandlers holds the application service that handlers will use.
type TransferHandlers struct {
	service *app.Service
}

// NewTransferHandlers creates a new instance of TransferHandlers.
func NewTransferHandlers(service *app.Service) *TransferHandlers {
	return &TransferHandlers{service: service}
}

// CreateTransferHandler handles requests to create a new transfer request.
func (h *TransferHandlers) CreateTransferHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	var req domain.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_transfer outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	transfer, err := h.service.CreateTransfer(r.Context(), user.ID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_transfer outcome=failed user_id=%s err=%v", user.ID, err)
		h.writeCreateTransferError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, transfer)
}

func (h *TransferHandlers) writeCreateTransferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransferType),
		errors.Is(err, app.ErrAmountBelowMinimum),
		errors.Is(err, app.ErrAmountAboveMaximum),
		errors.Is(err, app.ErrAllocationExceedsNetAmount):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrWalletNotFound), errors.Is(err, store.ErrBankAccountNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNoPrimaryWallet), errors.Is(err, store.ErrNoPrimaryBankAccount):
		h.writeError(w, http.StatusServiceUnavailable, "No payment method is configured for this transfer type")
	default:
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListTransfersHandler returns the caller's transfers with optional type and
// status filters.
func (h *TransferHandlers) ListTransfersHandler(w http.ResponseWriter, r *http.Request) {
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

	transfers, err := h.service.ListTransfers(r.Context(), user.ID, opts)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transfers outcome=failed user_id=%s err=%v", user.ID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if transfers == nil {
		transfers = []domain.TransferRequest{}
	}
	h.writeJSON(w, http.StatusOK, transfers)
}

// ListAllTransfersHandler returns transfers across all users. Admin only.
func (h *TransferHandlers) ListAllTransfersHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transfers, err := h.service.ListAllTransfers(r.Context(), opts)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_all_transfers outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if transfers == nil {
		transfers = []domain.TransferRequest{}
	}
	h.writeJSON(w, http.StatusOK, transfers)
}

// GetTransferHandler fetches a single transfer. Non-admin callers only see
// their own transfers.
func (h *TransferHandlers) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transfer ID format")
		return
	}

	transfer, err := h.service.GetTransfer(r.Context(), transferID, user.ID, user.IsAdmin())
	if err != nil {
		if errors.Is(err, store.ErrTransferNotFound) {
			h.writeError(w, http.StatusNotFound, "Transfer not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_transfer outcome=failed transfer_id=%s err=%v", transferID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, transfer)
}

// GetTransferStatusHandler serves the lightweight status polling endpoint.
func (h *TransferHandlers) GetTransferStatusHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transfer ID format")
		return
	}

	projection, err := h.service.GetTransferStatus(r.Context(), transferID, user.ID, user.IsAdmin())
	if err != nil {
		if errors.Is(err, store.ErrTransferNotFound) {
			h.writeError(w, http.StatusNotFound, "Transfer not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_transfer_status outcome=failed transfer_id=%s err=%v", transferID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, projection)
}

// UpdateTransferStatusHandler applies a status transition. Admin only.
func (h *TransferHandlers) UpdateTransferStatusHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	transferID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transfer ID format")
		return
	}

	var req domain.UpdateTransferStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actorID := user.ID
	actor := domain.Actor{ID: &actorID, Name: user.Name}
	transfer, err := h.service.UpdateTransferStatus(r.Context(), transferID, actor, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=update_transfer_status outcome=failed transfer_id=%s admin_id=%s err=%v", transferID, user.ID, err)
		switch {
		case errors.Is(err, store.ErrTransferNotFound):
			h.writeError(w, http.StatusNotFound, "Transfer not found")
		case errors.Is(err, store.ErrTransferConflict):
			h.writeError(w, http.StatusConflict, "Transfer was changed by another request, retry with its current status")
		case errors.Is(err, domain.ErrInvalidStatus):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, transfer)
}

// GetTransferStatsHandler returns aggregate transfer statistics. Admin only.
func (h *TransferHandlers) GetTransferStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetTransferStats(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=get_transfer_stats outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// QuoteFeeHandler computes a forward fee quote for a prospective transfer.
// Query params: type (required), amount (required), wallet_id / bank_account_id (optional).
func (h *TransferHandlers) QuoteFeeHandler(w http.ResponseWriter, r *http.Request) {
	transferType := strings.TrimSpace(r.URL.Query().Get("type"))
	amount, err := parseDecimalQuery(r, "amount")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	methodID, err := parseMethodIDQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.service.QuoteFee(r.Context(), transferType, amount, methodID)
	if err != nil {
		h.writeQuoteError(w, "quote_fee", err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// ReverseQuoteFeeHandler computes the gross amount needed for a desired net.
// Query params: type (required), net_amount (required), wallet_id / bank_account_id (optional).
func (h *TransferHandlers) ReverseQuoteFeeHandler(w http.ResponseWriter, r *http.Request) {
	transferType := strings.TrimSpace(r.URL.Query().Get("type"))
	netAmount, err := parseDecimalQuery(r, "net_amount")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	methodID, err := parseMethodIDQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.service.ReverseQuoteFee(r.Context(), transferType, netAmount, methodID)
	if err != nil {
		h.writeQuoteError(w, "reverse_quote_fee", err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// GetPaymentMethodHandler returns the destination payment method for a
// transfer type along with its current fee.
func (h *TransferHandlers) GetPaymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	transferType := strings.TrimSpace(r.URL.Query().Get("type"))
	details, err := h.service.GetPaymentMethodDetails(r.Context(), transferType)
	if err != nil {
		h.writeQuoteError(w, "get_payment_method", err)
		return
	}
	h.writeJSON(w, http.StatusOK, details)
}

func (h *TransferHandlers) writeQuoteError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransferType):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrWalletNotFound), errors.Is(err, store.ErrBankAccountNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNoPrimaryWallet), errors.Is(err, store.ErrNoPrimaryBankAccount):
		h.writeError(w, http.StatusServiceUnavailable, "No payment method is configured for this transfer type")
	default:
		log.Printf("level=error component=api endpoint=%s outcome=failed err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseListOptions(r *http.Request) (domain.TransferListOptions, error) {
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 50)
	if err != nil {
		return domain.TransferListOptions{}, errors.New("invalid limit")
	}
	offset, err := parseOptionalInt(r.URL.Query().Get("offset"), 0)
	if err != nil {
		return domain.TransferListOptions{}, errors.New("invalid offset")
	}
	opts := domain.TransferListOptions{
		Limit:  limit,
		Offset: offset,
		Type:   strings.TrimSpace(r.URL.Query().Get("type")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if opts.Type != "" && !domain.IsValidTransferType(opts.Type) {
		return domain.TransferListOptions{}, fmt.Errorf("invalid transfer type %q", opts.Type)
	}
	if opts.Status != "" && !domain.IsValidStatus(opts.Status) {
		return domain.TransferListOptions{}, fmt.Errorf("invalid status %q", opts.Status)
	}
	return opts, nil
}

func parseOptionalInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return value, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func parseDecimalQuery(r *http.Request, name string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", name)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", name, raw)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", name)
	}
	return value, nil
}

func parseMethodIDQuery(r *http.Request) (*uuid.UUID, error) {
	for _, name := range []string{"wallet_id", "bank_account_id"} {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", name, raw)
		}
		return &id, nil
	}
	return nil, nil
}

// writeJSON is a helper for writing JSON responses.
func (h *TransferHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *TransferHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
