package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newPendingTransfer(t *testing.T) *TransferRequest {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	genesis := GenesisEntry(StatusPending, now)
	return &TransferRequest{
		ID:             uuid.New(),
		TransferCode:   "TX-12345678",
		UserID:         uuid.New(),
		Type:           TransferTypeCryptoToFiat,
		Amount:         decimal.NewFromInt(1000),
		FeeAmount:      decimal.NewFromInt(15),
		AmountAfterFee: decimal.NewFromInt(985),
		Currency:       "USDT",
		Status:         StatusPending,
		StatusMessage:  &genesis.Message,
		StatusHistory:  []StatusHistoryEntry{genesis},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func adminActor() Actor {
	id := uuid.New()
	return Actor{ID: &id, Name: "Ops Admin"}
}

func TestApplyTransition_AppendsHistoryEntry(t *testing.T) {
	transfer := newPendingTransfer(t)
	actor := adminActor()
	now := time.Now().UTC()

	entry, err := transfer.ApplyTransition(StatusProcessing, actor, "Payment received", nil, nil, now)
	if err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if entry == nil {
		t.Fatal("expected a history entry for a real transition")
	}
	if transfer.Status != StatusProcessing {
		t.Fatalf("expected status processing, got %q", transfer.Status)
	}
	if len(transfer.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(transfer.StatusHistory))
	}
	if entry.FromStatus == nil || *entry.FromStatus != StatusPending {
		t.Fatalf("expected from_status pending, got %v", entry.FromStatus)
	}
	if entry.ToStatus != StatusProcessing {
		t.Fatalf("expected to_status processing, got %q", entry.ToStatus)
	}
	if entry.Message != "Payment received" {
		t.Fatalf("expected supplied message, got %q", entry.Message)
	}
	if entry.ChangedBy != actor.ID.String() {
		t.Fatalf("expected changed_by %s, got %s", actor.ID, entry.ChangedBy)
	}
	if transfer.ProcessedBy == nil || *transfer.ProcessedBy != *actor.ID {
		t.Fatal("expected processed_by to record the admin")
	}
	if transfer.StatusMessage == nil || *transfer.StatusMessage != "Payment received" {
		t.Fatal("expected status message to track the entry message")
	}
}

func TestApplyTransition_SameStatusIsNoOp(t *testing.T) {
	transfer := newPendingTransfer(t)
	before := len(transfer.StatusHistory)

	entry, err := transfer.ApplyTransition(StatusPending, adminActor(), "noise", nil, nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if entry != nil {
		t.Fatal("expected nil entry for a same-status transition")
	}
	if len(transfer.StatusHistory) != before {
		t.Fatal("no-op transition must not append history")
	}
	if transfer.ProcessedBy != nil {
		t.Fatal("no-op transition must not stamp processed_by")
	}
}

func TestApplyTransition_InvalidStatusRejectedBeforeMutation(t *testing.T) {
	transfer := newPendingTransfer(t)

	_, err := transfer.ApplyTransition("exploded", adminActor(), "", nil, nil, time.Now().UTC())
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if transfer.Status != StatusPending {
		t.Fatalf("status must be untouched on rejection, got %q", transfer.Status)
	}
	if len(transfer.StatusHistory) != 1 {
		t.Fatal("history must be untouched on rejection")
	}
}

func TestApplyTransition_DefaultMessage(t *testing.T) {
	transfer := newPendingTransfer(t)

	entry, err := transfer.ApplyTransition(StatusOnHold, adminActor(), "", nil, nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if entry.Message != "Status changed from pending to on_hold" {
		t.Fatalf("unexpected default message: %q", entry.Message)
	}
}

func TestApplyTransition_CompletedStampsCompletedAt(t *testing.T) {
	transfer := newPendingTransfer(t)
	now := time.Now().UTC()

	if _, err := transfer.ApplyTransition(StatusCompleted, adminActor(), "", nil, nil, now); err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if transfer.CompletedAt == nil || !transfer.CompletedAt.Equal(now) {
		t.Fatalf("expected completed_at %s, got %v", now, transfer.CompletedAt)
	}
}

func TestApplyTransition_ReopeningCompletedIsAllowed(t *testing.T) {
	transfer := newPendingTransfer(t)
	now := time.Now().UTC()

	if _, err := transfer.ApplyTransition(StatusCompleted, adminActor(), "", nil, nil, now); err != nil {
		t.Fatalf("transition to completed failed: %v", err)
	}
	entry, err := transfer.ApplyTransition(StatusPending, adminActor(), "Manual correction", nil, nil, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("reopening a completed transfer should be allowed: %v", err)
	}
	if entry == nil || entry.ToStatus != StatusPending {
		t.Fatal("expected a pending entry after reopening")
	}
}

func TestApplyTransition_SystemActorLeavesProcessedBy(t *testing.T) {
	transfer := newPendingTransfer(t)

	entry, err := transfer.ApplyTransition(StatusFailed, SystemActor(), "Transfer expired", nil, nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if entry.ChangedBy != SystemActorID {
		t.Fatalf("expected changed_by %q, got %q", SystemActorID, entry.ChangedBy)
	}
	if transfer.ProcessedBy != nil {
		t.Fatal("system transitions must not stamp processed_by")
	}
}

func TestApplyTransition_CarriesAdminRemarksAndInternalNotes(t *testing.T) {
	transfer := newPendingTransfer(t)
	remarks := "Verified on-chain"
	notes := "tx hash checked against explorer"

	entry, err := transfer.ApplyTransition(StatusProcessing, adminActor(), "", &remarks, &notes, time.Now().UTC())
	if err != nil {
		t.Fatalf("ApplyTransition returned error: %v", err)
	}
	if entry.AdminRemarks == nil || *entry.AdminRemarks != remarks {
		t.Fatal("expected admin remarks on the entry")
	}
	if entry.InternalNotes == nil || *entry.InternalNotes != notes {
		t.Fatal("expected internal notes on the entry")
	}
}

func TestGenesisEntry(t *testing.T) {
	now := time.Now().UTC()
	entry := GenesisEntry(StatusPending, now)

	if entry.FromStatus != nil {
		t.Fatal("genesis entry must have nil from_status")
	}
	if entry.ToStatus != StatusPending {
		t.Fatalf("expected to_status pending, got %q", entry.ToStatus)
	}
	if entry.ChangedBy != SystemActorID {
		t.Fatalf("expected changed_by %q, got %q", SystemActorID, entry.ChangedBy)
	}
}

func TestGenerateTransferCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateTransferCode()
		if !strings.HasPrefix(code, "TX-") {
			t.Fatalf("expected TX- prefix, got %q", code)
		}
		if len(code) != 11 {
			t.Fatalf("expected 11 characters, got %q", code)
		}
		for _, c := range code[3:] {
			if c < '0' || c > '9' {
				t.Fatalf("expected digits after prefix, got %q", code)
			}
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	terminal := []string{StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded}
	for _, s := range terminal {
		if !IsTerminalStatus(s) {
			t.Fatalf("expected %q to be terminal", s)
		}
	}
	for _, s := range []string{StatusPending, StatusProcessing, StatusOnHold} {
		if IsTerminalStatus(s) {
			t.Fatalf("expected %q to be non-terminal", s)
		}
	}
}

func TestWalletBackedType(t *testing.T) {
	if !WalletBackedType(TransferTypeCryptoToFiat) || !WalletBackedType(TransferTypeCryptoPurchase) {
		t.Fatal("crypto flows must be wallet backed")
	}
	if WalletBackedType(TransferTypeFiatToCrypto) || WalletBackedType(TransferTypeBankPurchase) {
		t.Fatal("fiat flows must be bank backed")
	}
}
