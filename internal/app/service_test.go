package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xfer/transfer-service/internal/domain"
	"github.com/xfer/transfer-service/internal/store"
)

// stubRepository embeds the Repository interface so each test only overrides
// the methods it needs; calling anything else panics loudly.
type stubRepository struct {
	store.Repository

	createTransferFn            func(ctx context.Context, t *domain.TransferRequest) error
	findTransferByIDFn          func(ctx context.Context, transferID uuid.UUID) (*domain.TransferRequest, error)
	findTransferForUserFn       func(ctx context.Context, transferID, userID uuid.UUID) (*domain.TransferRequest, error)
	applyStatusTransitionFn     func(ctx context.Context, params store.StatusTransitionParams) error
	findExpiredPendingFn        func(ctx context.Context, limit int) ([]domain.TransferRequest, error)
	findPrimaryWalletFn         func(ctx context.Context) (*domain.AdminWallet, error)
	findActiveWalletByIDFn      func(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error)
	findPrimaryBankAccountFn    func(ctx context.Context) (*domain.AdminBankAccount, error)
	findActiveBankAccByIDFn     func(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error)
}

func (s *stubRepository) CreateTransfer(ctx context.Context, t *domain.TransferRequest) error {
	return s.createTransferFn(ctx, t)
}

func (s *stubRepository) FindTransferByID(ctx context.Context, transferID uuid.UUID) (*domain.TransferRequest, error) {
	return s.findTransferByIDFn(ctx, transferID)
}

func (s *stubRepository) FindTransferForUser(ctx context.Context, transferID, userID uuid.UUID) (*domain.TransferRequest, error) {
	return s.findTransferForUserFn(ctx, transferID, userID)
}

func (s *stubRepository) ApplyStatusTransition(ctx context.Context, params store.StatusTransitionParams) error {
	return s.applyStatusTransitionFn(ctx, params)
}

func (s *stubRepository) FindExpiredPendingTransfers(ctx context.Context, limit int) ([]domain.TransferRequest, error) {
	return s.findExpiredPendingFn(ctx, limit)
}

func (s *stubRepository) FindPrimaryAdminWallet(ctx context.Context) (*domain.AdminWallet, error) {
	return s.findPrimaryWalletFn(ctx)
}

func (s *stubRepository) FindActiveAdminWalletByID(ctx context.Context, walletID uuid.UUID) (*domain.AdminWallet, error) {
	return s.findActiveWalletByIDFn(ctx, walletID)
}

func (s *stubRepository) FindPrimaryAdminBankAccount(ctx context.Context) (*domain.AdminBankAccount, error) {
	return s.findPrimaryBankAccountFn(ctx)
}

func (s *stubRepository) FindActiveAdminBankAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.AdminBankAccount, error) {
	return s.findActiveBankAccByIDFn(ctx, accountID)
}

// stubCache records cache interactions.
type stubCache struct {
	entries      map[uuid.UUID]domain.TransferStatusProjection
	sets         int
	invalidated  []uuid.UUID
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[uuid.UUID]domain.TransferStatusProjection{}}
}

func (c *stubCache) GetStatus(ctx context.Context, transferID uuid.UUID) (*domain.TransferStatusProjection, bool) {
	p, ok := c.entries[transferID]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *stubCache) SetStatus(ctx context.Context, transferID uuid.UUID, projection domain.TransferStatusProjection) {
	c.entries[transferID] = projection
	c.sets++
}

func (c *stubCache) Invalidate(ctx context.Context, transferID uuid.UUID) {
	delete(c.entries, transferID)
	c.invalidated = append(c.invalidated, transferID)
}

// stubPublisher records published events and can simulate broker failures.
type stubPublisher struct {
	published []publishedEvent
	fail      bool
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

func (p *stubPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, publishedEvent{exchange, routingKey, body})
	return nil
}

func (p *stubPublisher) Close() {}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func primaryWallet() *domain.AdminWallet {
	return &domain.AdminWallet{
		ID:            uuid.New(),
		Name:          "Treasury USDT",
		Address:       "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE",
		Currency:      "USDT",
		Network:       "TRC20",
		FeePercentage: d("1.5"),
		IsActive:      true,
		IsPrimary:     true,
	}
}

func newTestService(repo store.Repository, cache StatusCache, pub *stubPublisher) *Service {
	return NewService(repo, cache, pub, d("10"), d("1000000"), 24*time.Hour)
}

func TestCreateTransfer_HappyPath(t *testing.T) {
	wallet := primaryWallet()
	var persisted *domain.TransferRequest
	repo := &stubRepository{
		findPrimaryWalletFn: func(ctx context.Context) (*domain.AdminWallet, error) { return wallet, nil },
		createTransferFn: func(ctx context.Context, tr *domain.TransferRequest) error {
			persisted = tr
			return nil
		},
	}
	pub := &stubPublisher{}
	svc := newTestService(repo, newStubCache(), pub)

	userID := uuid.New()
	transfer, err := svc.CreateTransfer(context.Background(), userID, domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("1000"),
	})
	if err != nil {
		t.Fatalf("CreateTransfer returned error: %v", err)
	}
	if persisted == nil {
		t.Fatal("expected the transfer to be persisted")
	}
	if !transfer.FeeAmount.Equal(d("15")) {
		t.Fatalf("expected fee 15, got %s", transfer.FeeAmount)
	}
	if !transfer.AmountAfterFee.Equal(d("985")) {
		t.Fatalf("expected net 985, got %s", transfer.AmountAfterFee)
	}
	if transfer.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %q", transfer.Status)
	}
	if transfer.Currency != "USDT" {
		t.Fatalf("expected wallet currency default, got %q", transfer.Currency)
	}
	if transfer.AdminWalletID == nil || *transfer.AdminWalletID != wallet.ID {
		t.Fatal("expected attribution to the primary wallet")
	}
	if len(transfer.StatusHistory) != 1 || transfer.StatusHistory[0].FromStatus != nil {
		t.Fatal("expected exactly the genesis history entry")
	}
	if transfer.ExpiresAt == nil {
		t.Fatal("expected an expiry deadline on a pending transfer")
	}
	if len(pub.published) != 1 || pub.published[0].routingKey != "transfer.created" {
		t.Fatalf("expected one transfer.created event, got %+v", pub.published)
	}
}

func TestCreateTransfer_AmountBounds(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	_, err := svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("5"),
	})
	if !errors.Is(err, ErrAmountBelowMinimum) {
		t.Fatalf("expected ErrAmountBelowMinimum, got %v", err)
	}

	_, err = svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("2000000"),
	})
	if !errors.Is(err, ErrAmountAboveMaximum) {
		t.Fatalf("expected ErrAmountAboveMaximum, got %v", err)
	}
}

func TestCreateTransfer_InvalidType(t *testing.T) {
	svc := newTestService(&stubRepository{}, newStubCache(), &stubPublisher{})

	_, err := svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   "wire",
		Amount: d("100"),
	})
	if !errors.Is(err, domain.ErrInvalidTransferType) {
		t.Fatalf("expected ErrInvalidTransferType, got %v", err)
	}
}

func TestCreateTransfer_NoPrimaryWalletPropagates(t *testing.T) {
	repo := &stubRepository{
		findPrimaryWalletFn: func(ctx context.Context) (*domain.AdminWallet, error) {
			return nil, store.ErrNoPrimaryWallet
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	_, err := svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("100"),
	})
	if !errors.Is(err, store.ErrNoPrimaryWallet) {
		t.Fatalf("expected ErrNoPrimaryWallet, got %v", err)
	}
}

func TestCreateTransfer_AllocationValidation(t *testing.T) {
	wallet := primaryWallet()
	repo := &stubRepository{
		findPrimaryWalletFn: func(ctx context.Context) (*domain.AdminWallet, error) { return wallet, nil },
		createTransferFn:    func(ctx context.Context, tr *domain.TransferRequest) error { return nil },
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	// 1000 at 1.5% nets 985; allocating 990 must fail.
	_, err := svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("1000"),
		BankAccounts: []domain.BankAccountAllocation{
			{AccountName: "Main", AccountNumber: "1", BankName: "Chase", TransferAmount: d("990")},
		},
	})
	if !errors.Is(err, ErrAllocationExceedsNetAmount) {
		t.Fatalf("expected ErrAllocationExceedsNetAmount, got %v", err)
	}

	// Allocating exactly the net amount is fine.
	_, err = svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("1000"),
		BankAccounts: []domain.BankAccountAllocation{
			{AccountName: "Main", AccountNumber: "1", BankName: "Chase", TransferAmount: d("500")},
			{AccountName: "Savings", AccountNumber: "2", BankName: "Chase", TransferAmount: d("485")},
		},
	})
	if err != nil {
		t.Fatalf("allocation equal to net amount should be accepted: %v", err)
	}
}

func TestCreateTransfer_BankBackedDefaultsUSD(t *testing.T) {
	account := &domain.AdminBankAccount{
		ID:            uuid.New(),
		Name:          "Operating",
		BankName:      "Chase",
		AccountNumber: "987654",
		AccountType:   "checking",
		FeePercentage: d("2.5"),
		IsActive:      true,
		IsPrimary:     true,
	}
	repo := &stubRepository{
		findPrimaryBankAccountFn: func(ctx context.Context) (*domain.AdminBankAccount, error) { return account, nil },
		createTransferFn:         func(ctx context.Context, tr *domain.TransferRequest) error { return nil },
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	transfer, err := svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeFiatToCrypto,
		Amount: d("200"),
	})
	if err != nil {
		t.Fatalf("CreateTransfer returned error: %v", err)
	}
	if transfer.Currency != "USD" {
		t.Fatalf("expected USD default for bank flows, got %q", transfer.Currency)
	}
	if transfer.AdminBankAccountID == nil || *transfer.AdminBankAccountID != account.ID {
		t.Fatal("expected attribution to the primary bank account")
	}
	if !transfer.FeeAmount.Equal(d("5")) {
		t.Fatalf("expected fee 5.00, got %s", transfer.FeeAmount)
	}
}

func TestCreateTransfer_PublishFailureIsSwallowed(t *testing.T) {
	wallet := primaryWallet()
	repo := &stubRepository{
		findPrimaryWalletFn: func(ctx context.Context) (*domain.AdminWallet, error) { return wallet, nil },
		createTransferFn:    func(ctx context.Context, tr *domain.TransferRequest) error { return nil },
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{fail: true})

	_, err := svc.CreateTransfer(context.Background(), uuid.New(), domain.CreateTransferRequest{
		Type:   domain.TransferTypeCryptoToFiat,
		Amount: d("100"),
	})
	if err != nil {
		t.Fatalf("broker failure must not fail the transfer: %v", err)
	}
}

func TestUpdateTransferStatus_PersistsAndInvalidatesCache(t *testing.T) {
	transferID := uuid.New()
	adminID := uuid.New()
	existing := &domain.TransferRequest{
		ID:     transferID,
		Status: domain.StatusPending,
		StatusHistory: []domain.StatusHistoryEntry{
			domain.GenesisEntry(domain.StatusPending, time.Now().UTC()),
		},
	}

	var captured store.StatusTransitionParams
	repo := &stubRepository{
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			return existing, nil
		},
		applyStatusTransitionFn: func(ctx context.Context, params store.StatusTransitionParams) error {
			captured = params
			return nil
		},
	}
	cache := newStubCache()
	pub := &stubPublisher{}
	svc := newTestService(repo, cache, pub)

	actor := domain.Actor{ID: &adminID, Name: "Ops Admin"}
	updated, err := svc.UpdateTransferStatus(context.Background(), transferID, actor, domain.UpdateTransferStatusRequest{
		Status: domain.StatusProcessing,
	})
	if err != nil {
		t.Fatalf("UpdateTransferStatus returned error: %v", err)
	}
	if updated.Status != domain.StatusProcessing {
		t.Fatalf("expected processing, got %q", updated.Status)
	}
	if captured.NewStatus != domain.StatusProcessing {
		t.Fatalf("expected persisted status processing, got %q", captured.NewStatus)
	}
	if captured.ExpectedStatus != domain.StatusPending {
		t.Fatalf("expected transition guarded on pending, got %q", captured.ExpectedStatus)
	}
	if captured.ProcessedBy == nil || *captured.ProcessedBy != adminID {
		t.Fatal("expected processed_by to carry the admin id")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != transferID {
		t.Fatalf("expected one cache invalidation for %s, got %v", transferID, cache.invalidated)
	}
	if len(pub.published) != 0 {
		t.Fatalf("non-terminal transitions must not publish events, got %+v", pub.published)
	}
}

func TestUpdateTransferStatus_TerminalStatusPublishes(t *testing.T) {
	transferID := uuid.New()
	adminID := uuid.New()
	existing := &domain.TransferRequest{ID: transferID, Status: domain.StatusProcessing}
	var captured store.StatusTransitionParams
	repo := &stubRepository{
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			return existing, nil
		},
		applyStatusTransitionFn: func(ctx context.Context, params store.StatusTransitionParams) error {
			captured = params
			return nil
		},
	}
	pub := &stubPublisher{}
	svc := newTestService(repo, newStubCache(), pub)

	_, err := svc.UpdateTransferStatus(context.Background(), transferID, domain.Actor{ID: &adminID}, domain.UpdateTransferStatusRequest{
		Status: domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("UpdateTransferStatus returned error: %v", err)
	}
	if captured.CompletedAt == nil {
		t.Fatal("expected completed_at to be stamped")
	}
	if len(pub.published) != 1 || pub.published[0].routingKey != "transfer.status.completed" {
		t.Fatalf("expected one transfer.status.completed event, got %+v", pub.published)
	}
}

func TestUpdateTransferStatus_ConcurrentChangeSurfacesConflict(t *testing.T) {
	transferID := uuid.New()
	adminID := uuid.New()
	repo := &stubRepository{
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			return &domain.TransferRequest{ID: transferID, Status: domain.StatusPending}, nil
		},
		applyStatusTransitionFn: func(ctx context.Context, params store.StatusTransitionParams) error {
			return store.ErrTransferConflict
		},
	}
	cache := newStubCache()
	pub := &stubPublisher{}
	svc := newTestService(repo, cache, pub)

	_, err := svc.UpdateTransferStatus(context.Background(), transferID, domain.Actor{ID: &adminID}, domain.UpdateTransferStatusRequest{
		Status: domain.StatusCompleted,
	})
	if !errors.Is(err, store.ErrTransferConflict) {
		t.Fatalf("expected ErrTransferConflict, got %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Fatal("a lost-race transition must not invalidate the cache")
	}
	if len(pub.published) != 0 {
		t.Fatalf("a lost-race transition must not publish events, got %+v", pub.published)
	}
}

func TestUpdateTransferStatus_NoOpSkipsPersistence(t *testing.T) {
	transferID := uuid.New()
	existing := &domain.TransferRequest{ID: transferID, Status: domain.StatusPending}
	repo := &stubRepository{
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			return existing, nil
		},
		applyStatusTransitionFn: func(ctx context.Context, params store.StatusTransitionParams) error {
			t.Fatal("no-op transition must not hit the store")
			return nil
		},
	}
	cache := newStubCache()
	svc := newTestService(repo, cache, &stubPublisher{})

	adminID := uuid.New()
	_, err := svc.UpdateTransferStatus(context.Background(), transferID, domain.Actor{ID: &adminID}, domain.UpdateTransferStatusRequest{
		Status: domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("UpdateTransferStatus returned error: %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Fatal("no-op transition must not invalidate the cache")
	}
}

func TestUpdateTransferStatus_SystemActorOmitsProcessedBy(t *testing.T) {
	transferID := uuid.New()
	existing := &domain.TransferRequest{ID: transferID, Status: domain.StatusPending}
	var captured store.StatusTransitionParams
	repo := &stubRepository{
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			return existing, nil
		},
		applyStatusTransitionFn: func(ctx context.Context, params store.StatusTransitionParams) error {
			captured = params
			return nil
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	_, err := svc.UpdateTransferStatus(context.Background(), transferID, domain.SystemActor(), domain.UpdateTransferStatusRequest{
		Status: domain.StatusFailed,
	})
	if err != nil {
		t.Fatalf("UpdateTransferStatus returned error: %v", err)
	}
	if captured.ProcessedBy != nil {
		t.Fatal("system transitions must leave processed_by untouched")
	}
	if captured.Entry.ChangedBy != domain.SystemActorID {
		t.Fatalf("expected system changed_by, got %q", captured.Entry.ChangedBy)
	}
}

func TestUpdateTransferStatus_InvalidStatus(t *testing.T) {
	transferID := uuid.New()
	repo := &stubRepository{
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			return &domain.TransferRequest{ID: transferID, Status: domain.StatusPending}, nil
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	adminID := uuid.New()
	_, err := svc.UpdateTransferStatus(context.Background(), transferID, domain.Actor{ID: &adminID}, domain.UpdateTransferStatusRequest{
		Status: "vanished",
	})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestGetTransferStatus_CacheMissPopulates(t *testing.T) {
	transferID := uuid.New()
	userID := uuid.New()
	message := "Transfer request created"
	repo := &stubRepository{
		findTransferForUserFn: func(ctx context.Context, id, uid uuid.UUID) (*domain.TransferRequest, error) {
			return &domain.TransferRequest{ID: id, UserID: uid, Status: domain.StatusPending, StatusMessage: &message}, nil
		},
	}
	cache := newStubCache()
	svc := newTestService(repo, cache, &stubPublisher{})

	projection, err := svc.GetTransferStatus(context.Background(), transferID, userID, false)
	if err != nil {
		t.Fatalf("GetTransferStatus returned error: %v", err)
	}
	if projection.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %q", projection.Status)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}
}

func TestGetTransferStatus_CacheHitStillChecksOwnership(t *testing.T) {
	transferID := uuid.New()
	cache := newStubCache()
	cache.entries[transferID] = domain.TransferStatusProjection{Status: domain.StatusProcessing}

	repo := &stubRepository{
		findTransferForUserFn: func(ctx context.Context, id, uid uuid.UUID) (*domain.TransferRequest, error) {
			return nil, store.ErrTransferNotFound
		},
	}
	svc := newTestService(repo, cache, &stubPublisher{})

	_, err := svc.GetTransferStatus(context.Background(), transferID, uuid.New(), false)
	if !errors.Is(err, store.ErrTransferNotFound) {
		t.Fatalf("expected ErrTransferNotFound for foreign transfer, got %v", err)
	}
}

func TestFailExpiredTransfers(t *testing.T) {
	expired := []domain.TransferRequest{
		{ID: uuid.New(), Status: domain.StatusPending},
		{ID: uuid.New(), Status: domain.StatusPending},
	}
	var transitions []store.StatusTransitionParams
	repo := &stubRepository{
		findExpiredPendingFn: func(ctx context.Context, limit int) ([]domain.TransferRequest, error) {
			return expired, nil
		},
		findTransferByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.TransferRequest, error) {
			for i := range expired {
				if expired[i].ID == id {
					return &expired[i], nil
				}
			}
			return nil, store.ErrTransferNotFound
		},
		applyStatusTransitionFn: func(ctx context.Context, params store.StatusTransitionParams) error {
			transitions = append(transitions, params)
			return nil
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	failed, err := svc.FailExpiredTransfers(context.Background(), 100)
	if err != nil {
		t.Fatalf("FailExpiredTransfers returned error: %v", err)
	}
	if failed != 2 {
		t.Fatalf("expected 2 failed transfers, got %d", failed)
	}
	for _, params := range transitions {
		if params.NewStatus != domain.StatusFailed {
			t.Fatalf("expected failed status, got %q", params.NewStatus)
		}
		if params.ProcessedBy != nil {
			t.Fatal("sweep transitions must not stamp processed_by")
		}
	}
}

func TestQuoteFee_ForwardAndReverse(t *testing.T) {
	wallet := primaryWallet()
	repo := &stubRepository{
		findPrimaryWalletFn: func(ctx context.Context) (*domain.AdminWallet, error) { return wallet, nil },
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	quote, err := svc.QuoteFee(context.Background(), domain.TransferTypeCryptoToFiat, d("1000"), nil)
	if err != nil {
		t.Fatalf("QuoteFee returned error: %v", err)
	}
	if !quote.FeeAmount.Equal(d("15")) || !quote.NetAmount.Equal(d("985")) {
		t.Fatalf("expected fee 15 / net 985, got %s / %s", quote.FeeAmount, quote.NetAmount)
	}
	if quote.Wallet == nil || quote.Wallet.ID != wallet.ID {
		t.Fatal("expected the wallet summary on the quote")
	}

	reverse, err := svc.ReverseQuoteFee(context.Background(), domain.TransferTypeCryptoToFiat, d("985"), nil)
	if err != nil {
		t.Fatalf("ReverseQuoteFee returned error: %v", err)
	}
	if !reverse.TotalAmount.Equal(d("1000")) {
		t.Fatalf("expected total 1000, got %s", reverse.TotalAmount)
	}
	if !reverse.FeeAmount.Equal(d("15")) {
		t.Fatalf("expected fee 15, got %s", reverse.FeeAmount)
	}
}

func TestQuoteFee_ExplicitWalletMustBeActive(t *testing.T) {
	walletID := uuid.New()
	repo := &stubRepository{
		findActiveWalletByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.AdminWallet, error) {
			return nil, store.ErrWalletNotFound
		},
	}
	svc := newTestService(repo, newStubCache(), &stubPublisher{})

	_, err := svc.QuoteFee(context.Background(), domain.TransferTypeCryptoToFiat, d("100"), &walletID)
	if !errors.Is(err, store.ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}
