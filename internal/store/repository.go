/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the transfer-service needs. Keeping the interface separate from the
 * PostgreSQL implementation lets the application service be tested against
 * lightweight stubs.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xfer/transfer-service/internal/domain"
)

// StatusTransitionParams captures one status change to persist. The status
// field and the history append are applied in a single statement so readers
// never observe them disagreeing.
type StatusTransitionParams struct {
	TransferID     uuid.UUID
	ExpectedStatus string // status the transition was computed against
	NewStatus      string
	StatusMessage  string
	ProcessedBy    *uuid.UUID // nil leaves the column untouched
	CompletedAt    *time.Time // set only when entering completed
	Entry          domain.StatusHistoryEntry
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Transfer methods
	CreateTransfer(ctx context.Context, t *domain.TransferRequest) error
	FindTransferByID(ctx context.Context, transferID uuid.UUID) (*domain.TransferRequest, error)
	FindTransferForUser(ctx context.Context, transferID, userID uuid.UUID) (*domain.TransferRequest, error)
	ListTransfersByUser(ctx context.Context, userID uuid.UUID, opts domain.TransferListOptions) ([]domain.TransferRequest, error)
	ListAllTransfers(ctx context.Context, opts domain.TransferListOptions) ([]domain.TransferRequest, error)
	ApplyStatusTransition(ctx context.Context, params StatusTransitionParams) error
	FindExpiredPendingTransfers(ctx context.Context, limit int) ([]domain.TransferRequest, error)
	GetTransferStats(ctx context.Context) (*domain.TransferStats, error)

	// Admin wallet methods
	CreateAdminWallet(ctx context.Context, w *domain.AdminWallet) error
	FindAdminWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error)
	FindActiveAdminWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error)
	FindPrimaryAdminWallet(ctx context.Context) (*domain.AdminWallet, error)
	ListAdminWallets(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminWallet, error)
	UpdateAdminWallet(ctx context.Context, walletID uuid.UUID, upd domain.UpdateAdminWalletRequest) (*domain.AdminWallet, error)
	SetPrimaryAdminWallet(ctx context.Context, walletID uuid.UUID) error
	DemoteAdminWallet(ctx context.Context, walletID uuid.UUID) error
	DeleteAdminWallet(ctx context.Context, walletID uuid.UUID) error

	// Admin bank account methods
	CreateAdminBankAccount(ctx context.Context, b *domain.AdminBankAccount) error
	FindAdminBankAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error)
	FindActiveAdminBankAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error)
	FindPrimaryAdminBankAccount(ctx context.Context) (*domain.AdminBankAccount, error)
	ListAdminBankAccounts(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminBankAccount, error)
	UpdateAdminBankAccount(ctx context.Context, accountID uuid.UUID, upd domain.UpdateAdminBankAccountRequest) (*domain.AdminBankAccount, error)
	SetPrimaryAdminBankAccount(ctx context.Context, accountID uuid.UUID) error
	DemoteAdminBankAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteAdminBankAccount(ctx context.Context, accountID uuid.UUID) error
}
