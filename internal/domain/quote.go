package domain

import "github.com/shopspring/decimal"

// FeeQuote is the forward fee calculation returned to clients before they
// commit to a transfer: for a gross amount, what fee applies and what lands.
type FeeQuote struct {
	TransferType  string              `json:"transfer_type"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	FeePercentage decimal.Decimal     `json:"fee_percentage"`
	FeeAmount     decimal.Decimal     `json:"fee_amount"`
	NetAmount     decimal.Decimal     `json:"net_amount"`
	Wallet        *WalletSummary      `json:"wallet,omitempty"`
	BankAccount   *BankAccountSummary `json:"bank_account,omitempty"`
}

// ReverseFeeQuote answers "what must I send so the recipient nets this
// amount": the gross total whose fee deduction yields NetAmount.
type ReverseFeeQuote struct {
	TransferType  string              `json:"transfer_type"`
	NetAmount     decimal.Decimal     `json:"net_amount"`
	Currency      string              `json:"currency"`
	FeePercentage decimal.Decimal     `json:"fee_percentage"`
	FeeAmount     decimal.Decimal     `json:"fee_amount"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Wallet        *WalletSummary      `json:"wallet,omitempty"`
	BankAccount   *BankAccountSummary `json:"bank_account,omitempty"`
}

// PaymentMethodDetails is the destination information returned for a transfer
// type: where the client should send funds, and at what fee.
type PaymentMethodDetails struct {
	TransferType  string              `json:"transfer_type"`
	FeePercentage decimal.Decimal     `json:"fee_percentage"`
	Wallet        *WalletSummary      `json:"wallet,omitempty"`
	BankAccount   *BankAccountSummary `json:"bank_account,omitempty"`
}
