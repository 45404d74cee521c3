/**
 * @description
 * PostgreSQL implementation of the `Repository` interface for transfer
 * records. The status field and the JSONB history column always move together
 * in a single UPDATE, so a reader can never observe a transfer whose status
 * disagrees with the last entry of its history.
 *
 * @dependencies
 * - context, encoding/json, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver.
 * - github.com/shopspring/decimal: Monetary values.
 * - internal/domain: Domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xfer/transfer-service/internal/domain"
)

var (
	ErrTransferNotFound        = errors.New("transfer not found")
	ErrTransferConflict        = errors.New("transfer was changed concurrently")
	ErrDuplicateTransferCode   = errors.New("transfer code already exists")
	ErrWalletNotFound          = errors.New("wallet not found or not active")
	ErrBankAccountNotFound     = errors.New("bank account not found or not active")
	ErrNoPrimaryWallet         = errors.New("no primary wallet configured")
	ErrNoPrimaryBankAccount    = errors.New("no primary bank account configured")
	ErrWalletAddressExists     = errors.New("wallet with this address already exists")
	ErrCannotUnsetSolePrimary  = errors.New("cannot unset the only primary payment method")
	ErrCannotDeleteSolePrimary = errors.New("cannot delete the only active payment method")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transferColumns = `
	id, transfer_code, user_id, type,
	amount::text, fee_amount::text, amount_after_fee::text, currency,
	status, status_message, status_history,
	recipient_wallet, deposit_wallet_address, crypto_tx_hash,
	admin_wallet_id, admin_bank_account_id, bank_accounts,
	processed_by, created_at, updated_at, completed_at, expires_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*domain.TransferRequest, error) {
	var (
		t                            domain.TransferRequest
		amount, feeAmount, netAmount string
		historyJSON, accountsJSON    []byte
	)
	err := row.Scan(
		&t.ID, &t.TransferCode, &t.UserID, &t.Type,
		&amount, &feeAmount, &netAmount, &t.Currency,
		&t.Status, &t.StatusMessage, &historyJSON,
		&t.RecipientWallet, &t.DepositWalletAddress, &t.CryptoTxHash,
		&t.AdminWalletID, &t.AdminBankAccountID, &accountsJSON,
		&t.ProcessedBy, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt, &t.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if t.FeeAmount, err = decimal.NewFromString(feeAmount); err != nil {
		return nil, fmt.Errorf("parse fee_amount: %w", err)
	}
	if t.AmountAfterFee, err = decimal.NewFromString(netAmount); err != nil {
		return nil, fmt.Errorf("parse amount_after_fee: %w", err)
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &t.StatusHistory); err != nil {
			return nil, fmt.Errorf("parse status_history: %w", err)
		}
	}
	if len(accountsJSON) > 0 {
		if err := json.Unmarshal(accountsJSON, &t.BankAccounts); err != nil {
			return nil, fmt.Errorf("parse bank_accounts: %w", err)
		}
	}
	return &t, nil
}

// CreateTransfer inserts a transfer record and its genesis history entry in
// one statement, so the two are never observably split.
func (r *PostgresRepository) CreateTransfer(ctx context.Context, t *domain.TransferRequest) error {
	historyJSON, err := json.Marshal(t.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status_history: %w", err)
	}
	var accountsJSON []byte
	if len(t.BankAccounts) > 0 {
		if accountsJSON, err = json.Marshal(t.BankAccounts); err != nil {
			return fmt.Errorf("marshal bank_accounts: %w", err)
		}
	}

	query := `
		INSERT INTO transfer_requests (
			id, transfer_code, user_id, type,
			amount, fee_amount, amount_after_fee, currency,
			status, status_message, status_history,
			recipient_wallet, deposit_wallet_address, crypto_tx_hash,
			admin_wallet_id, admin_bank_account_id, bank_accounts,
			expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14,
			$15, $16, $17,
			$18, NOW(), NOW()
		)
		RETURNING created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		t.ID, t.TransferCode, t.UserID, t.Type,
		t.Amount.String(), t.FeeAmount.String(), t.AmountAfterFee.String(), t.Currency,
		t.Status, t.StatusMessage, historyJSON,
		t.RecipientWallet, t.DepositWalletAddress, t.CryptoTxHash,
		t.AdminWalletID, t.AdminBankAccountID, accountsJSON,
		t.ExpiresAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTransferCode
		}
		return err
	}
	return nil
}

// FindTransferByID retrieves a transfer regardless of owner (admin paths).
func (r *PostgresRepository) FindTransferByID(ctx context.Context, transferID uuid.UUID) (*domain.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE id = $1`
	t, err := scanTransfer(r.db.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return t, nil
}

// FindTransferForUser retrieves a transfer scoped to its owning user.
func (r *PostgresRepository) FindTransferForUser(ctx context.Context, transferID, userID uuid.UUID) (*domain.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE id = $1 AND user_id = $2`
	t, err := scanTransfer(r.db.QueryRow(ctx, query, transferID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) listTransfers(ctx context.Context, query string, args []any) ([]domain.TransferRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.TransferRequest
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

// ListTransfersByUser returns a user's transfers, newest first.
func (r *PostgresRepository) ListTransfersByUser(ctx context.Context, userID uuid.UUID, opts domain.TransferListOptions) ([]domain.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE user_id = $1`
	args := []any{userID}
	if opts.Type != "" {
		args = append(args, opts.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	} else if len(opts.Types) > 0 {
		args = append(args, opts.Types)
		query += fmt.Sprintf(" AND type = ANY($%d)", len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.listTransfers(ctx, query, args)
}

// ListAllTransfers returns transfers across all users (admin listing).
func (r *PostgresRepository) ListAllTransfers(ctx context.Context, opts domain.TransferListOptions) ([]domain.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE TRUE`
	var args []any
	if opts.Type != "" {
		args = append(args, opts.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	} else if len(opts.Types) > 0 {
		args = append(args, opts.Types)
		query += fmt.Sprintf(" AND type = ANY($%d)", len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.listTransfers(ctx, query, args)
}

// ApplyStatusTransition persists one status change. The status column, the
// processing metadata, and the history append happen in a single UPDATE,
// guarded on the status the transition was computed against so two concurrent
// transitions from the same old status cannot both append.
func (r *PostgresRepository) ApplyStatusTransition(ctx context.Context, params StatusTransitionParams) error {
	entryJSON, err := json.Marshal(params.Entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	query := `
		UPDATE transfer_requests
		SET status = $2,
		    status_message = $3,
		    processed_by = COALESCE($4, processed_by),
		    completed_at = COALESCE($5, completed_at),
		    status_history = COALESCE(status_history, '[]'::jsonb) || $6::jsonb,
		    updated_at = NOW()
		WHERE id = $1 AND status = $7`
	tag, err := r.db.Exec(ctx, query,
		params.TransferID, params.NewStatus, params.StatusMessage,
		params.ProcessedBy, params.CompletedAt, entryJSON, params.ExpectedStatus,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transfer_requests WHERE id = $1)`, params.TransferID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTransferNotFound
		}
		return ErrTransferConflict
	}
	return nil
}

// FindExpiredPendingTransfers returns pending transfers whose expiry window
// has passed. Used by the sweep job.
func (r *PostgresRepository) FindExpiredPendingTransfers(ctx context.Context, limit int) ([]domain.TransferRequest, error) {
	query := `SELECT ` + transferColumns + `
		FROM transfer_requests
		WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at < NOW()
		ORDER BY expires_at
		LIMIT $1`
	return r.listTransfers(ctx, query, []any{limit})
}

// GetTransferStats aggregates counts and volume for admin reporting.
func (r *PostgresRepository) GetTransferStats(ctx context.Context) (*domain.TransferStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COALESCE(SUM(amount), 0)::text,
			COALESCE(SUM(fee_amount), 0)::text
		FROM transfer_requests`

	var (
		stats             domain.TransferStats
		volume, totalFees string
	)
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalRequests, &stats.PendingRequests,
		&stats.CompletedRequests, &stats.FailedRequests,
		&volume, &totalFees,
	)
	if err != nil {
		return nil, err
	}
	if stats.TotalVolume, err = decimal.NewFromString(volume); err != nil {
		return nil, fmt.Errorf("parse total volume: %w", err)
	}
	if stats.TotalFees, err = decimal.NewFromString(totalFees); err != nil {
		return nil, fmt.Errorf("parse total fees: %w", err)
	}
	return &stats, nil
}
