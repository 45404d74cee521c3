/**
 * @description
 * This file defines the core domain models for the transfer-service: the
 * transfer request record, its append-only status history, and the status
 * machine that moves a transfer through its lifecycle.
 *
 * @notes
 * - Monetary values use shopspring/decimal so that fee arithmetic matches the
 *   2-decimal round-half-away-from-zero behaviour required for reconciliation.
 * - The status history is an ordered list of immutable entries; the last entry
 *   always agrees with the record's current status field.
 */

package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer types recognised by the service.
const (
	TransferTypeCryptoToFiat   = "crypto-to-fiat"
	TransferTypeFiatToCrypto   = "fiat-to-crypto"
	TransferTypeCryptoPurchase = "crypto_purchase"
	TransferTypeBankPurchase   = "bank_purchase"
)

// Transfer lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

// SystemActorID is the changed_by sentinel recorded for automated transitions.
const SystemActorID = "system"

var (
	// ErrInvalidStatus is returned when a transition targets a status outside
	// the fixed enum. The check happens before any mutation.
	ErrInvalidStatus = errors.New("invalid transfer status")

	// ErrInvalidTransferType is returned for unrecognised transfer types.
	ErrInvalidTransferType = errors.New("invalid transfer type")
)

var validStatuses = map[string]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusOnHold:     {},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

var validTransferTypes = map[string]struct{}{
	TransferTypeCryptoToFiat:   {},
	TransferTypeFiatToCrypto:   {},
	TransferTypeCryptoPurchase: {},
	TransferTypeBankPurchase:   {},
}

// IsValidStatus reports whether s is a member of the status enum.
func IsValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}

// IsValidTransferType reports whether t is a recognised transfer type.
func IsValidTransferType(t string) bool {
	_, ok := validTransferTypes[t]
	return ok
}

// IsTerminalStatus reports whether s ends the normal lifecycle of a transfer.
// Terminal transitions trigger a notification event.
func IsTerminalStatus(s string) bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// WalletBackedType reports whether transfers of type t are attributed to an
// admin wallet (crypto flows in) as opposed to an admin bank account.
func WalletBackedType(t string) bool {
	return t == TransferTypeCryptoToFiat || t == TransferTypeCryptoPurchase
}

// StatusHistoryEntry is one immutable record of a status change. Entries are
// appended in order and never mutated or removed. FromStatus is nil only for
// the genesis entry written at creation time.
type StatusHistoryEntry struct {
	FromStatus    *string   `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Timestamp     time.Time `json:"timestamp"`
	ChangedBy     string    `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name"`
	Message       string    `json:"message"`
	AdminRemarks  *string   `json:"admin_remarks,omitempty"`
	InternalNotes *string   `json:"internal_notes,omitempty"`
}

// Actor identifies who is applying a status transition. A nil ID means the
// transition is automated (expiry sweep, migrations) and is recorded with the
// "system" sentinel instead of an admin id.
type Actor struct {
	ID   *uuid.UUID
	Name string
}

// SystemActor returns the actor used for automated transitions.
func SystemActor() Actor {
	return Actor{Name: "System"}
}

// ChangedBy returns the identifier recorded in history entries.
func (a Actor) ChangedBy() string {
	if a.ID == nil {
		return SystemActorID
	}
	return a.ID.String()
}

// IsSystem reports whether the actor is automated.
func (a Actor) IsSystem() bool {
	return a.ID == nil
}

// BankAccountAllocation routes a portion of a transfer's net amount to one
// destination bank account.
type BankAccountAllocation struct {
	AccountName    string          `json:"account_name"`
	AccountNumber  string          `json:"account_number"`
	BankName       string          `json:"bank_name"`
	RoutingNumber  string          `json:"routing_number"`
	TransferAmount decimal.Decimal `json:"transfer_amount"`
}

// TransferRequest is the central record for one crypto/fiat exchange order.
// It maps directly to the `transfer_requests` table.
type TransferRequest struct {
	ID           uuid.UUID `json:"id"`
	TransferCode string    `json:"transfer_code"`
	UserID       uuid.UUID `json:"user_id"`
	Type         string    `json:"type"`

	Amount         decimal.Decimal `json:"amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	AmountAfterFee decimal.Decimal `json:"amount_after_fee"`
	Currency       string          `json:"currency"`

	Status        string               `json:"status"`
	StatusMessage *string              `json:"status_message,omitempty"`
	StatusHistory []StatusHistoryEntry `json:"status_history"`

	RecipientWallet      *string                 `json:"recipient_wallet,omitempty"`
	DepositWalletAddress *string                 `json:"deposit_wallet_address,omitempty"`
	CryptoTxHash         *string                 `json:"crypto_tx_hash,omitempty"`
	AdminWalletID        *uuid.UUID              `json:"admin_wallet_id,omitempty"`
	AdminBankAccountID   *uuid.UUID              `json:"admin_bank_account_id,omitempty"`
	BankAccounts         []BankAccountAllocation `json:"bank_accounts,omitempty"`

	ProcessedBy *uuid.UUID `json:"processed_by,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// GenesisEntry builds the first history entry for a freshly created transfer.
func GenesisEntry(status string, at time.Time) StatusHistoryEntry {
	return StatusHistoryEntry{
		FromStatus:    nil,
		ToStatus:      status,
		Timestamp:     at,
		ChangedBy:     SystemActorID,
		ChangedByName: "System",
		Message:       "Transfer request created",
	}
}

// ApplyTransition moves the transfer to newStatus, appending a history entry
// and stamping processing metadata. It returns the appended entry, or nil when
// the transition is a no-op (newStatus equals the current status), in which
// case nothing is touched. An unknown status fails with ErrInvalidStatus
// before any mutation.
//
// No transition graph is enforced: any valid status may follow any other.
// Manual admin overrides (e.g. reopening a completed transfer) are allowed on
// purpose.
func (t *TransferRequest) ApplyTransition(newStatus string, actor Actor, message string, adminRemarks, internalNotes *string, now time.Time) (*StatusHistoryEntry, error) {
	if !IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}
	if newStatus == t.Status {
		return nil, nil
	}

	if message == "" {
		message = fmt.Sprintf("Status changed from %s to %s", t.Status, newStatus)
	}

	from := t.Status
	entry := StatusHistoryEntry{
		FromStatus:    &from,
		ToStatus:      newStatus,
		Timestamp:     now,
		ChangedBy:     actor.ChangedBy(),
		ChangedByName: actor.Name,
		Message:       message,
		AdminRemarks:  adminRemarks,
		InternalNotes: internalNotes,
	}

	t.StatusHistory = append(t.StatusHistory, entry)
	t.Status = newStatus
	t.StatusMessage = &entry.Message
	t.UpdatedAt = now
	if !actor.IsSystem() {
		t.ProcessedBy = actor.ID
	}
	if newStatus == StatusCompleted {
		completedAt := now
		t.CompletedAt = &completedAt
	}

	return &t.StatusHistory[len(t.StatusHistory)-1], nil
}

// GenerateTransferCode returns a human-facing transfer code in the format
// TX-XXXXXXXX (eight random digits). Uniqueness is enforced by the database.
func GenerateTransferCode() string {
	const digits = "0123456789"
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for id generation
		panic(fmt.Sprintf("transfer code generation: %v", err))
	}
	for i, b := range buf {
		buf[i] = digits[int(b)%len(digits)]
	}
	return "TX-" + string(buf)
}

// CreateTransferRequest is the DTO for incoming transfer creation requests.
type CreateTransferRequest struct {
	Type                 string                  `json:"type"`
	Amount               decimal.Decimal         `json:"amount"`
	Currency             string                  `json:"currency"`
	WalletID             *uuid.UUID              `json:"wallet_id,omitempty"`
	BankAccountID        *uuid.UUID              `json:"bank_account_id,omitempty"`
	RecipientWallet      *string                 `json:"recipient_wallet,omitempty"`
	DepositWalletAddress *string                 `json:"deposit_wallet_address,omitempty"`
	CryptoTxHash         *string                 `json:"crypto_tx_hash,omitempty"`
	BankAccounts         []BankAccountAllocation `json:"bank_accounts,omitempty"`
}

// UpdateTransferStatusRequest is the DTO for admin status updates.
type UpdateTransferStatusRequest struct {
	Status        string  `json:"status"`
	Message       *string `json:"message,omitempty"`
	AdminRemarks  *string `json:"admin_remarks,omitempty"`
	InternalNotes *string `json:"internal_notes,omitempty"`
}

// TransferListOptions controls filtering and pagination for transfer listings.
type TransferListOptions struct {
	Limit  int
	Offset int
	Type   string
	Status string

	// Types restricts the listing to a set of transfer types. Used by the
	// purchases listing; ignored when Type is set.
	Types []string
}

// PurchaseTypes returns the transfer types created through the purchase
// endpoints.
func PurchaseTypes() []string {
	return []string{TransferTypeCryptoPurchase, TransferTypeBankPurchase}
}

// TransferStatusProjection is the cached fast-path view served by the status
// polling endpoint.
type TransferStatusProjection struct {
	Status        string  `json:"status"`
	StatusMessage *string `json:"status_message,omitempty"`
}

// TransferStats aggregates transfer counts and volume for admin reporting.
type TransferStats struct {
	TotalRequests     int64           `json:"total_requests"`
	PendingRequests   int64           `json:"pending_requests"`
	CompletedRequests int64           `json:"completed_requests"`
	FailedRequests    int64           `json:"failed_requests"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	TotalFees         decimal.Decimal `json:"total_fees"`
}
