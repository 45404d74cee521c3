/**
 * @description
 * PostgreSQL persistence for admin payment-method instances (crypto wallets
 * and bank accounts). All primary-flag mutations run inside a transaction
 * holding a per-kind advisory lock, so among active instances of a kind there
 * is always exactly one primary whenever any active instance exists:
 *   - the first active instance of a kind is promoted on creation,
 *   - setting a new primary demotes the old one in the same transaction,
 *   - unsetting or deleting the sole active instance's primary flag is
 *     rejected; when siblings exist a successor is promoted instead.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: Transactions and row locking.
 * - github.com/shopspring/decimal: Fee percentages.
 * - internal/domain: Payment-method models.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/xfer/transfer-service/internal/domain"
)

// Advisory lock keys serializing primary-flag mutations per kind. Row locks
// alone cannot prevent two concurrent mutations from missing each other's
// promotion under READ COMMITTED, so every primary-mutating transaction takes
// the kind's lock first.
const (
	walletPrimaryLockKey      = int64(0x78666572_0001)
	bankAccountPrimaryLockKey = int64(0x78666572_0002)
)

func acquirePrimaryLock(ctx context.Context, tx pgx.Tx, key int64) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key)
	return err
}

const adminWalletColumns = `
	id, name, address, currency, network, fee_percentage::text,
	is_active, is_primary, notes, created_at, updated_at
`

const adminBankAccountColumns = `
	id, name, bank_name, account_number, routing_number, account_type,
	account_holder_name, swift_code, iban, fee_percentage::text,
	is_active, is_primary, notes, created_at, updated_at
`

func scanAdminWallet(row rowScanner) (*domain.AdminWallet, error) {
	var (
		w      domain.AdminWallet
		feePct string
	)
	err := row.Scan(
		&w.ID, &w.Name, &w.Address, &w.Currency, &w.Network, &feePct,
		&w.IsActive, &w.IsPrimary, &w.Notes, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if w.FeePercentage, err = decimal.NewFromString(feePct); err != nil {
		return nil, fmt.Errorf("parse fee_percentage: %w", err)
	}
	return &w, nil
}

func scanAdminBankAccount(row rowScanner) (*domain.AdminBankAccount, error) {
	var (
		b      domain.AdminBankAccount
		feePct string
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.BankName, &b.AccountNumber, &b.RoutingNumber, &b.AccountType,
		&b.AccountHolderName, &b.SwiftCode, &b.IBAN, &feePct,
		&b.IsActive, &b.IsPrimary, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.FeePercentage, err = decimal.NewFromString(feePct); err != nil {
		return nil, fmt.Errorf("parse fee_percentage: %w", err)
	}
	return &b, nil
}

// --- Admin wallets ---

// CreateAdminWallet inserts a wallet. The first active wallet becomes primary
// automatically; an explicit is_primary demotes the current primary.
func (r *PostgresRepository) CreateAdminWallet(ctx context.Context, w *domain.AdminWallet) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, walletPrimaryLockKey); err != nil {
		return err
	}

	var activeCount int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM admin_wallets WHERE is_active = TRUE`).Scan(&activeCount)
	if err != nil {
		return err
	}
	becomePrimary, demoteOthers := createPrimaryOutcome(activeCount, w.IsPrimary)
	w.IsPrimary = becomePrimary
	if demoteOthers {
		if _, err := tx.Exec(ctx, `UPDATE admin_wallets SET is_primary = FALSE, updated_at = NOW() WHERE is_primary = TRUE`); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO admin_wallets (id, name, address, currency, network, fee_percentage, is_active, is_primary, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		w.ID, w.Name, w.Address, w.Currency, w.Network,
		w.FeePercentage.String(), w.IsPrimary, w.Notes,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrWalletAddressExists
		}
		return err
	}
	w.IsActive = true
	return tx.Commit(ctx)
}

// FindAdminWalletByID retrieves a wallet regardless of its active flag.
func (r *PostgresRepository) FindAdminWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error) {
	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets WHERE id = $1`
	w, err := scanAdminWallet(r.db.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

// FindActiveAdminWalletByID retrieves a wallet only if it is active. Used by
// the payment-method resolver, which must never attribute a transfer to a
// deactivated instance.
func (r *PostgresRepository) FindActiveAdminWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error) {
	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets WHERE id = $1 AND is_active = TRUE`
	w, err := scanAdminWallet(r.db.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

// FindPrimaryAdminWallet retrieves the active primary wallet.
func (r *PostgresRepository) FindPrimaryAdminWallet(ctx context.Context) (*domain.AdminWallet, error) {
	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets WHERE is_primary = TRUE AND is_active = TRUE`
	w, err := scanAdminWallet(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPrimaryWallet
		}
		return nil, err
	}
	return w, nil
}

// ListAdminWallets returns wallets, primary first, then newest.
func (r *PostgresRepository) ListAdminWallets(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminWallet, error) {
	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY is_primary DESC, created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []domain.AdminWallet
	for rows.Next() {
		w, err := scanAdminWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

// UpdateAdminWallet applies the non-nil fields of upd. Primary and active flag
// changes go through the same invariant checks as the dedicated operations.
func (r *PostgresRepository) UpdateAdminWallet(ctx context.Context, walletID uuid.UUID, upd domain.UpdateAdminWalletRequest) (*domain.AdminWallet, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, walletPrimaryLockKey); err != nil {
		return nil, err
	}

	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets WHERE id = $1 FOR UPDATE`
	w, err := scanAdminWallet(tx.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	if upd.Name != nil {
		w.Name = *upd.Name
	}
	if upd.Address != nil {
		w.Address = *upd.Address
	}
	if upd.Currency != nil {
		w.Currency = *upd.Currency
	}
	if upd.Network != nil {
		w.Network = *upd.Network
	}
	if upd.FeePercentage != nil {
		w.FeePercentage = *upd.FeePercentage
	}
	if upd.Notes != nil {
		w.Notes = upd.Notes
	}

	wasPrimary := w.IsPrimary
	if upd.IsActive != nil {
		w.IsActive = *upd.IsActive
	}
	if upd.IsPrimary != nil {
		w.IsPrimary = *upd.IsPrimary
	}

	switch {
	case w.IsPrimary && !wasPrimary:
		if !w.IsActive {
			return nil, ErrWalletNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE admin_wallets SET is_primary = FALSE, updated_at = NOW() WHERE is_primary = TRUE AND id <> $1`, walletID); err != nil {
			return nil, err
		}
	case wasPrimary && (!w.IsPrimary || !w.IsActive):
		// The primary is stepping down. A successor must exist unless the
		// wallet is also deactivating and no active sibling remains.
		promoted, err := promoteSuccessorWalletTx(ctx, tx, walletID)
		if err != nil {
			return nil, err
		}
		if err := stepDownOutcome(w.IsActive, promoted); err != nil {
			return nil, err
		}
		w.IsPrimary = false
	}

	updateQuery := `
		UPDATE admin_wallets
		SET name = $2, address = $3, currency = $4, network = $5,
		    fee_percentage = $6, is_active = $7, is_primary = $8, notes = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err = tx.QueryRow(ctx, updateQuery,
		w.ID, w.Name, w.Address, w.Currency, w.Network,
		w.FeePercentage.String(), w.IsActive, w.IsPrimary, w.Notes,
	).Scan(&w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrWalletAddressExists
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// SetPrimaryAdminWallet promotes an active wallet to primary, demoting the
// previous primary in the same transaction.
func (r *PostgresRepository) SetPrimaryAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, walletPrimaryLockKey); err != nil {
		return err
	}

	var isActive bool
	err = tx.QueryRow(ctx, `SELECT is_active FROM admin_wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWalletNotFound
		}
		return err
	}
	if !isActive {
		return ErrWalletNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE admin_wallets SET is_primary = FALSE, updated_at = NOW() WHERE is_primary = TRUE AND id <> $1`, walletID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE admin_wallets SET is_primary = TRUE, updated_at = NOW() WHERE id = $1`, walletID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DemoteAdminWallet removes the primary flag from a wallet, promoting an
// active sibling. Demoting the only active wallet is rejected, since the
// resolver would otherwise have no default for wallet-backed transfers.
func (r *PostgresRepository) DemoteAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, walletPrimaryLockKey); err != nil {
		return err
	}

	var isPrimary bool
	err = tx.QueryRow(ctx, `SELECT is_primary FROM admin_wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&isPrimary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWalletNotFound
		}
		return err
	}
	if !isPrimary {
		return tx.Commit(ctx)
	}

	promoted, err := promoteSuccessorWalletTx(ctx, tx, walletID)
	if err != nil {
		return err
	}
	if err := stepDownOutcome(true, promoted); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE admin_wallets SET is_primary = FALSE, updated_at = NOW() WHERE id = $1`, walletID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteAdminWallet removes a wallet. Deleting the primary promotes an active
// sibling; deleting the only active wallet is rejected.
func (r *PostgresRepository) DeleteAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, walletPrimaryLockKey); err != nil {
		return err
	}

	var isPrimary, isActive bool
	err = tx.QueryRow(ctx, `SELECT is_primary, is_active FROM admin_wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&isPrimary, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWalletNotFound
		}
		return err
	}

	if isPrimary {
		promoted, err := promoteSuccessorWalletTx(ctx, tx, walletID)
		if err != nil {
			return err
		}
		if err := deletePrimaryOutcome(promoted); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM admin_wallets WHERE id = $1`, walletID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// promoteSuccessorWalletTx flips the oldest active wallet other than excludeID
// to primary. Returns false when no candidate exists.
func promoteSuccessorWalletTx(ctx context.Context, tx pgx.Tx, excludeID uuid.UUID) (bool, error) {
	query := `
		UPDATE admin_wallets
		SET is_primary = TRUE, updated_at = NOW()
		WHERE id = (
			SELECT id FROM admin_wallets
			WHERE is_active = TRUE AND id <> $1
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE
		)`
	tag, err := tx.Exec(ctx, query, excludeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- Admin bank accounts ---

// CreateAdminBankAccount inserts a bank account with the same bootstrap and
// demotion rules as wallets.
func (r *PostgresRepository) CreateAdminBankAccount(ctx context.Context, b *domain.AdminBankAccount) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, bankAccountPrimaryLockKey); err != nil {
		return err
	}

	var activeCount int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM admin_bank_accounts WHERE is_active = TRUE`).Scan(&activeCount)
	if err != nil {
		return err
	}
	becomePrimary, demoteOthers := createPrimaryOutcome(activeCount, b.IsPrimary)
	b.IsPrimary = becomePrimary
	if demoteOthers {
		if _, err := tx.Exec(ctx, `UPDATE admin_bank_accounts SET is_primary = FALSE, updated_at = NOW() WHERE is_primary = TRUE`); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO admin_bank_accounts (
			id, name, bank_name, account_number, routing_number, account_type,
			account_holder_name, swift_code, iban, fee_percentage,
			is_active, is_primary, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		b.ID, b.Name, b.BankName, b.AccountNumber, b.RoutingNumber, b.AccountType,
		b.AccountHolderName, b.SwiftCode, b.IBAN, b.FeePercentage.String(),
		b.IsPrimary, b.Notes,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}
	b.IsActive = true
	return tx.Commit(ctx)
}

// FindAdminBankAccountByID retrieves a bank account regardless of its active flag.
func (r *PostgresRepository) FindAdminBankAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error) {
	query := `SELECT ` + adminBankAccountColumns + ` FROM admin_bank_accounts WHERE id = $1`
	b, err := scanAdminBankAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankAccountNotFound
		}
		return nil, err
	}
	return b, nil
}

// FindActiveAdminBankAccountByID retrieves a bank account only if it is active.
func (r *PostgresRepository) FindActiveAdminBankAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error) {
	query := `SELECT ` + adminBankAccountColumns + ` FROM admin_bank_accounts WHERE id = $1 AND is_active = TRUE`
	b, err := scanAdminBankAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankAccountNotFound
		}
		return nil, err
	}
	return b, nil
}

// FindPrimaryAdminBankAccount retrieves the active primary bank account.
func (r *PostgresRepository) FindPrimaryAdminBankAccount(ctx context.Context) (*domain.AdminBankAccount, error) {
	query := `SELECT ` + adminBankAccountColumns + ` FROM admin_bank_accounts WHERE is_primary = TRUE AND is_active = TRUE`
	b, err := scanAdminBankAccount(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPrimaryBankAccount
		}
		return nil, err
	}
	return b, nil
}

// ListAdminBankAccounts returns bank accounts, primary first, then newest.
func (r *PostgresRepository) ListAdminBankAccounts(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminBankAccount, error) {
	query := `SELECT ` + adminBankAccountColumns + ` FROM admin_bank_accounts`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY is_primary DESC, created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.AdminBankAccount
	for rows.Next() {
		b, err := scanAdminBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *b)
	}
	return accounts, rows.Err()
}

// UpdateAdminBankAccount applies the non-nil fields of upd with the same
// invariant handling as UpdateAdminWallet.
func (r *PostgresRepository) UpdateAdminBankAccount(ctx context.Context, accountID uuid.UUID, upd domain.UpdateAdminBankAccountRequest) (*domain.AdminBankAccount, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, bankAccountPrimaryLockKey); err != nil {
		return nil, err
	}

	query := `SELECT ` + adminBankAccountColumns + ` FROM admin_bank_accounts WHERE id = $1 FOR UPDATE`
	b, err := scanAdminBankAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankAccountNotFound
		}
		return nil, err
	}

	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.BankName != nil {
		b.BankName = *upd.BankName
	}
	if upd.AccountNumber != nil {
		b.AccountNumber = *upd.AccountNumber
	}
	if upd.RoutingNumber != nil {
		b.RoutingNumber = upd.RoutingNumber
	}
	if upd.AccountType != nil {
		b.AccountType = *upd.AccountType
	}
	if upd.AccountHolderName != nil {
		b.AccountHolderName = upd.AccountHolderName
	}
	if upd.SwiftCode != nil {
		b.SwiftCode = upd.SwiftCode
	}
	if upd.IBAN != nil {
		b.IBAN = upd.IBAN
	}
	if upd.FeePercentage != nil {
		b.FeePercentage = *upd.FeePercentage
	}
	if upd.Notes != nil {
		b.Notes = upd.Notes
	}

	wasPrimary := b.IsPrimary
	if upd.IsActive != nil {
		b.IsActive = *upd.IsActive
	}
	if upd.IsPrimary != nil {
		b.IsPrimary = *upd.IsPrimary
	}

	switch {
	case b.IsPrimary && !wasPrimary:
		if !b.IsActive {
			return nil, ErrBankAccountNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE admin_bank_accounts SET is_primary = FALSE, updated_at = NOW() WHERE is_primary = TRUE AND id <> $1`, accountID); err != nil {
			return nil, err
		}
	case wasPrimary && (!b.IsPrimary || !b.IsActive):
		promoted, err := promoteSuccessorBankAccountTx(ctx, tx, accountID)
		if err != nil {
			return nil, err
		}
		if err := stepDownOutcome(b.IsActive, promoted); err != nil {
			return nil, err
		}
		b.IsPrimary = false
	}

	updateQuery := `
		UPDATE admin_bank_accounts
		SET name = $2, bank_name = $3, account_number = $4, routing_number = $5,
		    account_type = $6, account_holder_name = $7, swift_code = $8, iban = $9,
		    fee_percentage = $10, is_active = $11, is_primary = $12, notes = $13,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err = tx.QueryRow(ctx, updateQuery,
		b.ID, b.Name, b.BankName, b.AccountNumber, b.RoutingNumber,
		b.AccountType, b.AccountHolderName, b.SwiftCode, b.IBAN,
		b.FeePercentage.String(), b.IsActive, b.IsPrimary, b.Notes,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// SetPrimaryAdminBankAccount promotes an active bank account to primary.
func (r *PostgresRepository) SetPrimaryAdminBankAccount(ctx context.Context, accountID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, bankAccountPrimaryLockKey); err != nil {
		return err
	}

	var isActive bool
	err = tx.QueryRow(ctx, `SELECT is_active FROM admin_bank_accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBankAccountNotFound
		}
		return err
	}
	if !isActive {
		return ErrBankAccountNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE admin_bank_accounts SET is_primary = FALSE, updated_at = NOW() WHERE is_primary = TRUE AND id <> $1`, accountID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE admin_bank_accounts SET is_primary = TRUE, updated_at = NOW() WHERE id = $1`, accountID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DemoteAdminBankAccount removes the primary flag, promoting a sibling.
func (r *PostgresRepository) DemoteAdminBankAccount(ctx context.Context, accountID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, bankAccountPrimaryLockKey); err != nil {
		return err
	}

	var isPrimary bool
	err = tx.QueryRow(ctx, `SELECT is_primary FROM admin_bank_accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&isPrimary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBankAccountNotFound
		}
		return err
	}
	if !isPrimary {
		return tx.Commit(ctx)
	}

	promoted, err := promoteSuccessorBankAccountTx(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if err := stepDownOutcome(true, promoted); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE admin_bank_accounts SET is_primary = FALSE, updated_at = NOW() WHERE id = $1`, accountID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteAdminBankAccount removes a bank account with the same primary
// handling as DeleteAdminWallet.
func (r *PostgresRepository) DeleteAdminBankAccount(ctx context.Context, accountID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := acquirePrimaryLock(ctx, tx, bankAccountPrimaryLockKey); err != nil {
		return err
	}

	var isPrimary, isActive bool
	err = tx.QueryRow(ctx, `SELECT is_primary, is_active FROM admin_bank_accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&isPrimary, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBankAccountNotFound
		}
		return err
	}

	if isPrimary {
		promoted, err := promoteSuccessorBankAccountTx(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if err := deletePrimaryOutcome(promoted); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM admin_bank_accounts WHERE id = $1`, accountID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// promoteSuccessorBankAccountTx flips the oldest active bank account other
// than excludeID to primary. Returns false when no candidate exists.
func promoteSuccessorBankAccountTx(ctx context.Context, tx pgx.Tx, excludeID uuid.UUID) (bool, error) {
	query := `
		UPDATE admin_bank_accounts
		SET is_primary = TRUE, updated_at = NOW()
		WHERE id = (
			SELECT id FROM admin_bank_accounts
			WHERE is_active = TRUE AND id <> $1
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE
		)`
	tag, err := tx.Exec(ctx, query, excludeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
