package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/xfer/transfer-service/internal/domain"
	"github.com/xfer/transfer-service/internal/store"
)

type paymentMethodStubRepository struct {
	store.Repository

	createAdminWalletFn      func(ctx context.Context, w *domain.AdminWallet) error
	listAdminWalletsFn       func(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminWallet, error)
	deleteAdminWalletFn      func(ctx context.Context, walletID uuid.UUID) error
	createAdminBankAccountFn func(ctx context.Context, a *domain.AdminBankAccount) error
}

func (s *paymentMethodStubRepository) CreateAdminWallet(ctx context.Context, w *domain.AdminWallet) error {
	return s.createAdminWalletFn(ctx, w)
}

func (s *paymentMethodStubRepository) ListAdminWallets(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminWallet, error) {
	return s.listAdminWalletsFn(ctx, activeOnly, limit, offset)
}

func (s *paymentMethodStubRepository) DeleteAdminWallet(ctx context.Context, walletID uuid.UUID) error {
	return s.deleteAdminWalletFn(ctx, walletID)
}

func (s *paymentMethodStubRepository) CreateAdminBankAccount(ctx context.Context, a *domain.AdminBankAccount) error {
	return s.createAdminBankAccountFn(ctx, a)
}

func TestCreateAdminWallet_Validation(t *testing.T) {
	svc := newTestService(&paymentMethodStubRepository{}, newStubCache(), &stubPublisher{})

	_, err := svc.CreateAdminWallet(context.Background(), domain.CreateAdminWalletRequest{
		Address:  "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE",
		Currency: "USDT",
	})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod for missing name, got %v", err)
	}

	_, err = svc.CreateAdminWallet(context.Background(), domain.CreateAdminWalletRequest{
		Name:          "Treasury",
		Address:       "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE",
		Currency:      "USDT",
		FeePercentage: d("-1"),
	})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod for negative fee, got %v", err)
	}
}

func TestCreateAdminWallet_PersistsAndAssignsID(t *testing.T) {
	var persisted *domain.AdminWallet
	repo := &paymentMethodStubRepository{
		createAdminWalletFn: func(ctx context.Context, w *domain.AdminWallet) error {
			persisted = w
			return nil
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	wallet, err := svc.CreateAdminWallet(context.Background(), domain.CreateAdminWalletRequest{
		Name:          "Treasury",
		Address:       "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE",
		Currency:      "USDT",
		Network:       "TRC20",
		FeePercentage: d("1.5"),
	})
	if err != nil {
		t.Fatalf("CreateAdminWallet returned error: %v", err)
	}
	if persisted == nil || persisted.ID == uuid.Nil {
		t.Fatal("expected the wallet to be persisted with a generated id")
	}
	if wallet.Network != "TRC20" {
		t.Fatalf("expected network TRC20, got %q", wallet.Network)
	}
}

func TestListAdminWallets_ClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &paymentMethodStubRepository{
		listAdminWalletsFn: func(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.AdminWallet, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	if _, err := svc.ListAdminWallets(context.Background(), false, 500, -3); err != nil {
		t.Fatalf("ListAdminWallets returned error: %v", err)
	}
	if gotLimit != 50 || gotOffset != 0 {
		t.Fatalf("expected clamped limit=50 offset=0, got %d/%d", gotLimit, gotOffset)
	}
}

func TestUpdateAdminWallet_RejectsNegativeFee(t *testing.T) {
	svc := newTestService(&paymentMethodStubRepository{}, newStubCache(), &stubPublisher{})

	fee := d("-0.5")
	_, err := svc.UpdateAdminWallet(context.Background(), uuid.New(), domain.UpdateAdminWalletRequest{
		FeePercentage: &fee,
	})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestDeleteAdminWallet_PropagatesSolePrimaryError(t *testing.T) {
	repo := &paymentMethodStubRepository{
		deleteAdminWalletFn: func(ctx context.Context, walletID uuid.UUID) error {
			return store.ErrCannotDeleteSolePrimary
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	err := svc.DeleteAdminWallet(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrCannotDeleteSolePrimary) {
		t.Fatalf("expected ErrCannotDeleteSolePrimary, got %v", err)
	}
}

func TestCreateAdminBankAccount_DefaultsAccountType(t *testing.T) {
	var persisted *domain.AdminBankAccount
	repo := &paymentMethodStubRepository{
		createAdminBankAccountFn: func(ctx context.Context, a *domain.AdminBankAccount) error {
			persisted = a
			return nil
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	_, err := svc.CreateAdminBankAccount(context.Background(), domain.CreateAdminBankAccountRequest{
		Name:          "Operating",
		BankName:      "Chase",
		AccountNumber: "987654",
		FeePercentage: d("2.5"),
	})
	if err != nil {
		t.Fatalf("CreateAdminBankAccount returned error: %v", err)
	}
	if persisted.AccountType != "checking" {
		t.Fatalf("expected checking default, got %q", persisted.AccountType)
	}
}

func TestCreateAdminBankAccount_Validation(t *testing.T) {
	svc := newTestService(&paymentMethodStubRepository{}, newStubCache(), &stubPublisher{})

	_, err := svc.CreateAdminBankAccount(context.Background(), domain.CreateAdminBankAccountRequest{
		Name:     "Operating",
		BankName: "Chase",
	})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod for missing account number, got %v", err)
	}
}
