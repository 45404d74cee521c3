/**
 * @description
 * This file contains the core business logic for the transfer-service. The
 * `Service` struct orchestrates the transfer lifecycle: fee calculation,
 * payment-method attribution, record creation, and status transitions. It
 * coordinates the database repository, the Redis status cache, and the
 * message broker.
 *
 * Key features:
 * - Creates transfer records with the fee snapshot frozen at creation time.
 * - Applies status transitions through the domain status machine and persists
 *   both the status and its history entry atomically.
 * - Publishes lifecycle events to RabbitMQ for asynchronous consumers.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - github.com/shopspring/decimal: Monetary arithmetic.
 * - internal/domain, internal/fees, internal/store: Domain models, fee math, data access.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xfer/transfer-service/internal/domain"
	"github.com/xfer/transfer-service/internal/fees"
	"github.com/xfer/transfer-service/internal/store"
	"github.com/xfer/transfer-service/pkg/rabbitmq"
)

// EventsExchange is the topic exchange lifecycle events are published to.
const EventsExchange = "xfer.events"

var (
	// ErrAmountBelowMinimum is returned when a transfer amount is under the
	// configured floor.
	ErrAmountBelowMinimum = errors.New("transfer amount is below the minimum")

	// ErrAmountAboveMaximum is returned when a transfer amount exceeds the
	// configured ceiling.
	ErrAmountAboveMaximum = errors.New("transfer amount is above the maximum")

	// ErrAllocationExceedsNetAmount is returned when the destination bank
	// account allocations of a crypto-to-fiat transfer sum to more than the
	// amount remaining after the fee.
	ErrAllocationExceedsNetAmount = errors.New("bank account allocations exceed the amount after fee")
)

// Service provides the core business logic for transfers.
type Service struct {
	repo          store.Repository
	statusCache   StatusCache
	eventProducer rabbitmq.Publisher

	minAmount  decimal.Decimal
	maxAmount  decimal.Decimal
	pendingTTL time.Duration
}

// NewService creates a new transfer service instance. minAmount and maxAmount
// bound accepted transfer amounts; pendingTTL is how long a pending transfer
// may wait for payment before the sweep expires it.
func NewService(repo store.Repository, cache StatusCache, producer rabbitmq.Publisher, minAmount, maxAmount decimal.Decimal, pendingTTL time.Duration) *Service {
	return &Service{
		repo:          repo,
		statusCache:   cache,
		eventProducer: producer,
		minAmount:     minAmount,
		maxAmount:     maxAmount,
		pendingTTL:    pendingTTL,
	}
}

// CreateTransfer validates the request, resolves the payment-method instance,
// snapshots its fee percentage, and persists the new transfer in pending state
// with its genesis history entry.
func (s *Service) CreateTransfer(ctx context.Context, userID uuid.UUID, req domain.CreateTransferRequest) (*domain.TransferRequest, error) {
	if !domain.IsValidTransferType(req.Type) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTransferType, req.Type)
	}
	if req.Amount.LessThan(s.minAmount) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrAmountBelowMinimum, s.minAmount)
	}
	if req.Amount.GreaterThan(s.maxAmount) {
		return nil, fmt.Errorf("%w: maximum is %s", ErrAmountAboveMaximum, s.maxAmount)
	}

	transfer := &domain.TransferRequest{
		ID:     uuid.New(),
		UserID: userID,
		Type:   req.Type,
		Amount: req.Amount,
		Status: domain.StatusPending,

		RecipientWallet:      req.RecipientWallet,
		DepositWalletAddress: req.DepositWalletAddress,
		CryptoTxHash:         req.CryptoTxHash,
		BankAccounts:         req.BankAccounts,
	}

	// Resolve the admin payment-method instance and freeze its fee. Later fee
	// changes on the instance never touch existing transfers.
	var feePct decimal.Decimal
	if domain.WalletBackedType(req.Type) {
		wallet, err := s.resolveWallet(ctx, req.WalletID)
		if err != nil {
			return nil, err
		}
		transfer.AdminWalletID = &wallet.ID
		feePct = wallet.FeePercentage
		transfer.Currency = req.Currency
		if transfer.Currency == "" {
			transfer.Currency = wallet.Currency
		}
	} else {
		account, err := s.resolveBankAccount(ctx, req.BankAccountID)
		if err != nil {
			return nil, err
		}
		transfer.AdminBankAccountID = &account.ID
		feePct = account.FeePercentage
		transfer.Currency = req.Currency
		if transfer.Currency == "" {
			transfer.Currency = "USD"
		}
	}

	transfer.AmountAfterFee, transfer.FeeAmount = fees.AmountAfterFee(req.Amount, feePct)

	if len(req.BankAccounts) > 0 {
		total := decimal.Zero
		for _, alloc := range req.BankAccounts {
			total = total.Add(alloc.TransferAmount)
		}
		if total.GreaterThan(transfer.AmountAfterFee) {
			return nil, fmt.Errorf("%w: allocated %s, available %s", ErrAllocationExceedsNetAmount, total, transfer.AmountAfterFee)
		}
	}

	now := time.Now().UTC()
	genesis := domain.GenesisEntry(domain.StatusPending, now)
	transfer.StatusHistory = []domain.StatusHistoryEntry{genesis}
	transfer.StatusMessage = &genesis.Message
	if s.pendingTTL > 0 {
		expiresAt := now.Add(s.pendingTTL)
		transfer.ExpiresAt = &expiresAt
	}

	// Transfer codes are random; on the rare collision, regenerate and retry.
	for attempt := 0; ; attempt++ {
		transfer.TransferCode = domain.GenerateTransferCode()
		err := s.repo.CreateTransfer(ctx, transfer)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrDuplicateTransferCode) && attempt < 3 {
			continue
		}
		return nil, fmt.Errorf("failed to create transfer record: %w", err)
	}

	log.Printf("level=info component=service msg=\"transfer created\" transfer_id=%s code=%s type=%s amount=%s fee=%s net=%s",
		transfer.ID, transfer.TransferCode, transfer.Type, transfer.Amount, transfer.FeeAmount, transfer.AmountAfterFee)

	s.publishLifecycleEvent(ctx, "transfer.created", transfer, genesis.Message)
	return transfer, nil
}

// GetTransfer fetches a transfer. Non-admin callers only see their own.
func (s *Service) GetTransfer(ctx context.Context, transferID, userID uuid.UUID, isAdmin bool) (*domain.TransferRequest, error) {
	if isAdmin {
		return s.repo.FindTransferByID(ctx, transferID)
	}
	return s.repo.FindTransferForUser(ctx, transferID, userID)
}

// ListTransfers returns the caller's own transfers.
func (s *Service) ListTransfers(ctx context.Context, userID uuid.UUID, opts domain.TransferListOptions) ([]domain.TransferRequest, error) {
	normalizeListOptions(&opts)
	return s.repo.ListTransfersByUser(ctx, userID, opts)
}

// ListAllTransfers returns transfers across all users (admin only at the API).
func (s *Service) ListAllTransfers(ctx context.Context, opts domain.TransferListOptions) ([]domain.TransferRequest, error) {
	normalizeListOptions(&opts)
	return s.repo.ListAllTransfers(ctx, opts)
}

func normalizeListOptions(opts *domain.TransferListOptions) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
}

// GetTransferStatus serves the polling endpoint through the status cache.
// Cache misses fall back to the database and repopulate the cache.
func (s *Service) GetTransferStatus(ctx context.Context, transferID, userID uuid.UUID, isAdmin bool) (*domain.TransferStatusProjection, error) {
	if projection, ok := s.statusCache.GetStatus(ctx, transferID); ok {
		// Ownership still has to hold even on a cache hit; admins skip the
		// check, everyone else pays one indexed lookup.
		if isAdmin {
			return projection, nil
		}
		if _, err := s.repo.FindTransferForUser(ctx, transferID, userID); err != nil {
			return nil, err
		}
		return projection, nil
	}

	transfer, err := s.GetTransfer(ctx, transferID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	projection := domain.TransferStatusProjection{
		Status:        transfer.Status,
		StatusMessage: transfer.StatusMessage,
	}
	s.statusCache.SetStatus(ctx, transferID, projection)
	return &projection, nil
}

// UpdateTransferStatus applies one status transition on behalf of an actor.
// Same-status updates are a no-op and return the unchanged transfer. Every
// real transition invalidates the status cache; terminal transitions also
// emit a lifecycle event for the notification consumer.
func (s *Service) UpdateTransferStatus(ctx context.Context, transferID uuid.UUID, actor domain.Actor, req domain.UpdateTransferStatusRequest) (*domain.TransferRequest, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	message := ""
	if req.Message != nil {
		message = *req.Message
	}
	oldStatus := transfer.Status
	now := time.Now().UTC()
	entry, err := transfer.ApplyTransition(req.Status, actor, message, req.AdminRemarks, req.InternalNotes, now)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return transfer, nil
	}

	params := store.StatusTransitionParams{
		TransferID:     transferID,
		ExpectedStatus: oldStatus,
		NewStatus:      transfer.Status,
		StatusMessage:  entry.Message,
		Entry:          *entry,
	}
	if !actor.IsSystem() {
		params.ProcessedBy = actor.ID
	}
	if transfer.CompletedAt != nil && transfer.Status == domain.StatusCompleted {
		params.CompletedAt = transfer.CompletedAt
	}
	if err := s.repo.ApplyStatusTransition(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to persist status transition: %w", err)
	}

	s.statusCache.Invalidate(ctx, transferID)

	log.Printf("level=info component=service msg=\"transfer status changed\" transfer_id=%s from=%s to=%s changed_by=%s",
		transferID, *entry.FromStatus, entry.ToStatus, entry.ChangedBy)

	if domain.IsTerminalStatus(transfer.Status) {
		s.publishLifecycleEvent(ctx, "transfer.status."+transfer.Status, transfer, entry.Message)
	}
	return transfer, nil
}

// FailExpiredTransfers moves pending transfers past their expiry window to
// failed. Called by the sweep job; each expiry goes through the normal
// transition path under the system actor. Returns how many were failed.
func (s *Service) FailExpiredTransfers(ctx context.Context, limit int) (int, error) {
	expired, err := s.repo.FindExpiredPendingTransfers(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired transfers: %w", err)
	}

	failed := 0
	message := "Transfer expired: payment was not received in time"
	for i := range expired {
		_, err := s.UpdateTransferStatus(ctx, expired[i].ID, domain.SystemActor(), domain.UpdateTransferStatusRequest{
			Status:  domain.StatusFailed,
			Message: &message,
		})
		if err != nil {
			log.Printf("level=warn component=service msg=\"failed to expire transfer\" transfer_id=%s error=%q", expired[i].ID, err)
			continue
		}
		failed++
	}
	return failed, nil
}

// QuoteFee computes the forward fee quote for a prospective transfer: the fee
// deducted from amount and the resulting net.
func (s *Service) QuoteFee(ctx context.Context, transferType string, amount decimal.Decimal, methodID *uuid.UUID) (*domain.FeeQuote, error) {
	if !domain.IsValidTransferType(transferType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTransferType, transferType)
	}

	quote := &domain.FeeQuote{TransferType: transferType, Amount: amount, Currency: "USD"}
	if domain.WalletBackedType(transferType) {
		wallet, err := s.resolveWallet(ctx, methodID)
		if err != nil {
			return nil, err
		}
		summary := wallet.Summary()
		quote.Wallet = &summary
		quote.FeePercentage = wallet.FeePercentage
		quote.Currency = wallet.Currency
	} else {
		account, err := s.resolveBankAccount(ctx, methodID)
		if err != nil {
			return nil, err
		}
		summary := account.Summary()
		quote.BankAccount = &summary
		quote.FeePercentage = account.FeePercentage
	}

	quote.NetAmount, quote.FeeAmount = fees.AmountAfterFee(amount, quote.FeePercentage)
	return quote, nil
}

// ReverseQuoteFee computes the gross amount a sender must transfer so the
// recipient nets netAmount after the fee.
func (s *Service) ReverseQuoteFee(ctx context.Context, transferType string, netAmount decimal.Decimal, methodID *uuid.UUID) (*domain.ReverseFeeQuote, error) {
	if !domain.IsValidTransferType(transferType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTransferType, transferType)
	}

	quote := &domain.ReverseFeeQuote{TransferType: transferType, NetAmount: netAmount, Currency: "USD"}
	if domain.WalletBackedType(transferType) {
		wallet, err := s.resolveWallet(ctx, methodID)
		if err != nil {
			return nil, err
		}
		summary := wallet.Summary()
		quote.Wallet = &summary
		quote.FeePercentage = wallet.FeePercentage
		quote.Currency = wallet.Currency
	} else {
		account, err := s.resolveBankAccount(ctx, methodID)
		if err != nil {
			return nil, err
		}
		summary := account.Summary()
		quote.BankAccount = &summary
		quote.FeePercentage = account.FeePercentage
	}

	quote.TotalAmount, quote.FeeAmount = fees.AmountWithFee(netAmount, quote.FeePercentage)
	return quote, nil
}

// GetPaymentMethodDetails returns the destination instance clients should pay
// into for a transfer type, with its current fee percentage.
func (s *Service) GetPaymentMethodDetails(ctx context.Context, transferType string) (*domain.PaymentMethodDetails, error) {
	if !domain.IsValidTransferType(transferType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTransferType, transferType)
	}

	details := &domain.PaymentMethodDetails{TransferType: transferType}
	if domain.WalletBackedType(transferType) {
		wallet, err := s.repo.FindPrimaryAdminWallet(ctx)
		if err != nil {
			return nil, err
		}
		summary := wallet.Summary()
		details.Wallet = &summary
		details.FeePercentage = wallet.FeePercentage
	} else {
		account, err := s.repo.FindPrimaryAdminBankAccount(ctx)
		if err != nil {
			return nil, err
		}
		summary := account.Summary()
		details.BankAccount = &summary
		details.FeePercentage = account.FeePercentage
	}
	return details, nil
}

// GetTransferStats returns aggregate counts and volumes for admin reporting.
func (s *Service) GetTransferStats(ctx context.Context) (*domain.TransferStats, error) {
	return s.repo.GetTransferStats(ctx)
}

// resolveWallet picks the explicit wallet when walletID is set, otherwise the
// primary. Explicit choices must reference an active instance.
func (s *Service) resolveWallet(ctx context.Context, walletID *uuid.UUID) (*domain.AdminWallet, error) {
	if walletID != nil {
		return s.repo.FindActiveAdminWalletByID(ctx, *walletID)
	}
	return s.repo.FindPrimaryAdminWallet(ctx)
}

// resolveBankAccount mirrors resolveWallet for bank-backed transfer types.
func (s *Service) resolveBankAccount(ctx context.Context, accountID *uuid.UUID) (*domain.AdminBankAccount, error) {
	if accountID != nil {
		return s.repo.FindActiveAdminBankAccountByID(ctx, *accountID)
	}
	return s.repo.FindPrimaryAdminBankAccount(ctx)
}

// publishLifecycleEvent emits a lifecycle event. Publishing is best-effort:
// broker failures are logged, never surfaced to the caller.
func (s *Service) publishLifecycleEvent(ctx context.Context, eventType string, t *domain.TransferRequest, message string) {
	if s.eventProducer == nil {
		return
	}
	event := domain.TransferLifecycleEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		TransferID:   t.ID,
		TransferCode: t.TransferCode,
		UserID:       t.UserID,
		TransferType: t.Type,
		Status:       t.Status,
		Amount:       t.Amount,
		FeeAmount:    t.FeeAmount,
		NetAmount:    t.AmountAfterFee,
		Currency:     t.Currency,
		Message:      message,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.eventProducer.Publish(ctx, EventsExchange, eventType, event); err != nil {
		log.Printf("level=warn component=service msg=\"failed to publish lifecycle event\" transfer_id=%s event=%s error=%q", t.ID, eventType, err)
	}
}
