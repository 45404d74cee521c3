/**
 * @description
 * Domain models for the two kinds of admin payment-method instances: crypto
 * wallets and bank accounts. Each instance carries its own fee percentage and
 * the is_active/is_primary flags the resolver depends on.
 *
 * @notes
 * - Among active instances of a kind, exactly one is primary whenever any
 *   active instance exists. The store enforces this transactionally.
 * - Updates use explicit DTOs with pointer fields: only non-nil fields
 *   overwrite, which replaces the reflective exclude_unset patching the
 *   service replaces.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminWallet is a company-owned crypto wallet that receives client payments.
type AdminWallet struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Currency      string          `json:"currency"`
	Network       string          `json:"network"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
	IsActive      bool            `json:"is_active"`
	IsPrimary     bool            `json:"is_primary"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AdminBankAccount is a company-owned bank account that receives client
// payments for fiat flows.
type AdminBankAccount struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	BankName          string          `json:"bank_name"`
	AccountNumber     string          `json:"account_number"`
	RoutingNumber     *string         `json:"routing_number,omitempty"`
	AccountType       string          `json:"account_type"`
	AccountHolderName *string         `json:"account_holder_name,omitempty"`
	SwiftCode         *string         `json:"swift_code,omitempty"`
	IBAN              *string         `json:"iban,omitempty"`
	FeePercentage     decimal.Decimal `json:"fee_percentage"`
	IsActive          bool            `json:"is_active"`
	IsPrimary         bool            `json:"is_primary"`
	Notes             *string         `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateAdminWalletRequest is the DTO for registering a new admin wallet.
type CreateAdminWalletRequest struct {
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Currency      string          `json:"currency"`
	Network       string          `json:"network"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
	IsPrimary     bool            `json:"is_primary"`
	Notes         *string         `json:"notes,omitempty"`
}

// UpdateAdminWalletRequest carries the fields an admin may change. Only
// non-nil fields are applied.
type UpdateAdminWalletRequest struct {
	Name          *string          `json:"name,omitempty"`
	Address       *string          `json:"address,omitempty"`
	Currency      *string          `json:"currency,omitempty"`
	Network       *string          `json:"network,omitempty"`
	FeePercentage *decimal.Decimal `json:"fee_percentage,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	IsPrimary     *bool            `json:"is_primary,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// CreateAdminBankAccountRequest is the DTO for registering a new admin bank
// account.
type CreateAdminBankAccountRequest struct {
	Name              string          `json:"name"`
	BankName          string          `json:"bank_name"`
	AccountNumber     string          `json:"account_number"`
	RoutingNumber     *string         `json:"routing_number,omitempty"`
	AccountType       string          `json:"account_type"`
	AccountHolderName *string         `json:"account_holder_name,omitempty"`
	SwiftCode         *string         `json:"swift_code,omitempty"`
	IBAN              *string         `json:"iban,omitempty"`
	FeePercentage     decimal.Decimal `json:"fee_percentage"`
	IsPrimary         bool            `json:"is_primary"`
	Notes             *string         `json:"notes,omitempty"`
}

// UpdateAdminBankAccountRequest carries the fields an admin may change. Only
// non-nil fields are applied.
type UpdateAdminBankAccountRequest struct {
	Name              *string          `json:"name,omitempty"`
	BankName          *string          `json:"bank_name,omitempty"`
	AccountNumber     *string          `json:"account_number,omitempty"`
	RoutingNumber     *string          `json:"routing_number,omitempty"`
	AccountType       *string          `json:"account_type,omitempty"`
	AccountHolderName *string          `json:"account_holder_name,omitempty"`
	SwiftCode         *string          `json:"swift_code,omitempty"`
	IBAN              *string          `json:"iban,omitempty"`
	FeePercentage     *decimal.Decimal `json:"fee_percentage,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	IsPrimary         *bool            `json:"is_primary,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

// WalletSummary is the public-facing view of a wallet exposed in fee quotes.
type WalletSummary struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Currency      string          `json:"currency"`
	Network       string          `json:"network"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
	IsPrimary     bool            `json:"is_primary"`
}

// BankAccountSummary is the public-facing view of a bank account exposed in
// fee quotes.
type BankAccountSummary struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	BankName      string          `json:"bank_name"`
	AccountType   string          `json:"account_type"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
	IsPrimary     bool            `json:"is_primary"`
}

// Summary converts a wallet to its quote view.
func (w *AdminWallet) Summary() WalletSummary {
	return WalletSummary{
		ID:            w.ID,
		Name:          w.Name,
		Address:       w.Address,
		Currency:      w.Currency,
		Network:       w.Network,
		FeePercentage: w.FeePercentage,
		IsPrimary:     w.IsPrimary,
	}
}

// Summary converts a bank account to its quote view.
func (b *AdminBankAccount) Summary() BankAccountSummary {
	return BankAccountSummary{
		ID:            b.ID,
		Name:          b.Name,
		BankName:      b.BankName,
		AccountType:   b.AccountType,
		FeePercentage: b.FeePercentage,
		IsPrimary:     b.IsPrimary,
	}
}
