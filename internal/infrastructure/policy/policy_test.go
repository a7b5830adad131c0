package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
)

func TestLoadDefaultsOnEmptyPath(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	receipt := &domain.PendingAdjustment{
		VoucherType:     "receipt",
		AmountDelta:     decimal.NewFromInt(100),
		TransactionDate: time.Now(),
	}

	if !p.SignedDelta(receipt).Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("expected receipt to settle on the credit side, got %s", p.SignedDelta(receipt))
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")

	content := "creditVouchers:\n  - purchase\n  - credit_note\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	creditNote := &domain.PendingAdjustment{VoucherType: "credit_note", AmountDelta: decimal.NewFromInt(50)}
	if !p.SignedDelta(creditNote).Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("expected credit_note on the credit side, got %s", p.SignedDelta(creditNote))
	}

	// receipt is no longer a credit voucher under the custom policy
	receipt := &domain.PendingAdjustment{VoucherType: "receipt", AmountDelta: decimal.NewFromInt(50)}
	if !p.SignedDelta(receipt).Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected receipt on the debit side, got %s", p.SignedDelta(receipt))
	}
}

func TestLoadRejectsEmptyPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")

	if err := os.WriteFile(path, []byte("creditVouchers: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty policy")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
