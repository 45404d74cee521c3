/**
 * @description
 * Admin payment-method management: registering, listing, updating, and
 * retiring the company wallets and bank accounts client transfers are
 * attributed to. The primary-flag invariant itself lives in the store's
 * transactions; this layer validates input and logs.
 *
 * @dependencies
 * - github.com/google/uuid: Identifiers.
 * - internal/domain, internal/store: Models and persistence.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/xfer/transfer-service/internal/domain"
)

// ErrInvalidPaymentMethod is returned for create/update payloads that fail
// field validation.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// CreateAdminWallet registers a company wallet. The first active wallet
// becomes primary regardless of the request flag.
func (s *Service) CreateAdminWallet(ctx context.Context, req domain.CreateAdminWalletRequest) (*domain.AdminWallet, error) {
	if req.Name == "" || req.Address == "" || req.Currency == "" {
		return nil, fmt.Errorf("%w: name, address and currency are required", ErrInvalidPaymentMethod)
	}
	if req.FeePercentage.IsNegative() {
		return nil, fmt.Errorf("%w: fee percentage cannot be negative", ErrInvalidPaymentMethod)
	}

	wallet := &domain.AdminWallet{
		ID:            uuid.New(),
		Name:          req.Name,
		Address:       req.Address,
		Currency:      req.Currency,
		Network:       req.Network,
		FeePercentage: req.FeePercentage,
		IsPrimary:     req.IsPrimary,
		Notes:         req.Notes,
	}
	if err := s.repo.CreateAdminWallet(ctx, wallet); err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"admin wallet created\" wallet_id=%s currency=%s primary=%v", wallet.ID, wallet.Currency, wallet.IsPrimary)
	return wallet, nil
}

// GetAdminWallet retrieves one wallet, active or not.
func (s *Service) GetAdminWallet(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error) {
	return s.repo.FindAdminWalletByID(ctx, walletID)
}

// ListAdminWallets lists wallets, primary first.
func (s *Service) ListAdminWallets(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminWallet, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAdminWallets(ctx, activeOnly, limit, offset)
}

// UpdateAdminWallet applies a partial update.
func (s *Service) UpdateAdminWallet(ctx context.Context, walletID uuid.UUID, upd domain.UpdateAdminWalletRequest) (*domain.AdminWallet, error) {
	if upd.FeePercentage != nil && upd.FeePercentage.IsNegative() {
		return nil, fmt.Errorf("%w: fee percentage cannot be negative", ErrInvalidPaymentMethod)
	}
	return s.repo.UpdateAdminWallet(ctx, walletID, upd)
}

// SetPrimaryAdminWallet promotes a wallet to primary.
func (s *Service) SetPrimaryAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	if err := s.repo.SetPrimaryAdminWallet(ctx, walletID); err != nil {
		return err
	}
	log.Printf("level=info component=service msg=\"primary wallet changed\" wallet_id=%s", walletID)
	return nil
}

// DemoteAdminWallet unsets a wallet's primary flag, promoting a sibling.
func (s *Service) DemoteAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	return s.repo.DemoteAdminWallet(ctx, walletID)
}

// DeleteAdminWallet removes a wallet permanently.
func (s *Service) DeleteAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	if err := s.repo.DeleteAdminWallet(ctx, walletID); err != nil {
		return err
	}
	log.Printf("level=info component=service msg=\"admin wallet deleted\" wallet_id=%s", walletID)
	return nil
}

// GetPrimaryAdminWallet returns the active primary wallet.
func (s *Service) GetPrimaryAdminWallet(ctx context.Context) (*domain.AdminWallet, error) {
	return s.repo.FindPrimaryAdminWallet(ctx)
}

// CreateAdminBankAccount registers a company bank account with the same
// bootstrap rule as wallets.
func (s *Service) CreateAdminBankAccount(ctx context.Context, req domain.CreateAdminBankAccountRequest) (*domain.AdminBankAccount, error) {
	if req.Name == "" || req.BankName == "" || req.AccountNumber == "" {
		return nil, fmt.Errorf("%w: name, bank name and account number are required", ErrInvalidPaymentMethod)
	}
	if req.FeePercentage.IsNegative() {
		return nil, fmt.Errorf("%w: fee percentage cannot be negative", ErrInvalidPaymentMethod)
	}
	if req.AccountType == "" {
		req.AccountType = "checking"
	}

	account := &domain.AdminBankAccount{
		ID:                uuid.New(),
		Name:              req.Name,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		RoutingNumber:     req.RoutingNumber,
		AccountType:       req.AccountType,
		AccountHolderName: req.AccountHolderName,
		SwiftCode:         req.SwiftCode,
		IBAN:              req.IBAN,
		FeePercentage:     req.FeePercentage,
		IsPrimary:         req.IsPrimary,
		Notes:             req.Notes,
	}
	if err := s.repo.CreateAdminBankAccount(ctx, account); err != nil {
		return nil, err
	}
	log.Printf("level=info component=service msg=\"admin bank account created\" account_id=%s bank=%s primary=%v", account.ID, account.BankName, account.IsPrimary)
	return account, nil
}

// GetAdminBankAccount retrieves one bank account, active or not.
func (s *Service) GetAdminBankAccount(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error) {
	return s.repo.FindAdminBankAccountByID(ctx, accountID)
}

// ListAdminBankAccounts lists bank accounts, primary first.
func (s *Service) ListAdminBankAccounts(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminBankAccount, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAdminBankAccounts(ctx, activeOnly, limit, offset)
}

// UpdateAdminBankAccount applies a partial update.
func (s *Service) UpdateAdminBankAccount(ctx context.Context, accountID uuid.UUID, upd domain.UpdateAdminBankAccountRequest) (*domain.AdminBankAccount, error) {
	if upd.FeePercentage != nil && upd.FeePercentage.IsNegative() {
		return nil, fmt.Errorf("%w: fee percentage cannot be negative", ErrInvalidPaymentMethod)
	}
	return s.repo.UpdateAdminBankAccount(ctx, accountID, upd)
}

// SetPrimaryAdminBankAccount promotes a bank account to primary.
func (s *Service) SetPrimaryAdminBankAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.SetPrimaryAdminBankAccount(ctx, accountID); err != nil {
		return err
	}
	log.Printf("level=info component=service msg=\"primary bank account changed\" account_id=%s", accountID)
	return nil
}

// DemoteAdminBankAccount unsets a bank account's primary flag.
func (s *Service) DemoteAdminBankAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.DemoteAdminBankAccount(ctx, accountID)
}

// DeleteAdminBankAccount removes a bank account permanently.
func (s *Service) DeleteAdminBankAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.DeleteAdminBankAccount(ctx, accountID); err != nil {
		return err
	}
	log.Printf("level=info component=service msg=\"admin bank account deleted\" account_id=%s", accountID)
	return nil
}

// GetPrimaryAdminBankAccount returns the active primary bank account.
func (s *Service) GetPrimaryAdminBankAccount(ctx context.Context) (*domain.AdminBankAccount, error) {
	return s.repo.FindPrimaryAdminBankAccount(ctx)
}
