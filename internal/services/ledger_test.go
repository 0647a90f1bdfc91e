package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"campaign/internal/models"
)

func newTestLedger(t *testing.T, variants []models.PrizeVariant, inv *VoucherInventory) *AwardLedger {
	t.Helper()
	catalog, err := NewPrizeCatalog(variants, &sequenceSource{vals: []int{0}})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	ledger := NewAwardLedger(catalog, inv)
	ledger.now = func() time.Time { return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) }
	return ledger
}

func testProfile(id string) models.SessionProfile {
	return models.SessionProfile{
		ID:           id,
		Name:         "Alice",
		Email:        "alice@example.com",
		Phone:        "+971500000000",
		LocationID:   "loc1",
		LocationName: "Dubai Mall",
		Country:      "UAE",
	}
}

func TestAwardLedger_Grant(t *testing.T) {
	t.Run("Test one grant per profile", func(t *testing.T) {
		ledger := newTestLedger(t, []models.PrizeVariant{
			{ID: "sticker", Name: "Twix Sticker", Category: models.CategorySticker, Weight: 1, RemainingStock: 10},
		}, nil)

		first, err := ledger.Grant(testProfile("p1"))
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if first.Result.PrizeID != "sticker" || first.Result.ID == "" {
			t.Errorf("Unexpected result %+v", first.Result)
		}

		second, err := ledger.Grant(testProfile("p1"))
		if !errors.Is(err, ErrDuplicatePlay) {
			t.Fatalf("Expected ErrDuplicatePlay, but got %v", err)
		}
		if second.Result.ID != first.Result.ID {
			t.Errorf("Expected the recorded entry back, but got %+v", second.Result)
		}
		if n := len(ledger.Entries()); n != 1 {
			t.Errorf("Expected 1 entry, but got %d", n)
		}
		if stock := ledger.catalog.Variants()[0].RemainingStock; stock != 9 {
			t.Errorf("Expected the duplicate to draw nothing (stock 9), but got %d", stock)
		}
	})

	t.Run("Test exhausted catalog records nothing", func(t *testing.T) {
		ledger := newTestLedger(t, []models.PrizeVariant{
			{ID: "sticker", Category: models.CategorySticker, Weight: 1, RemainingStock: 0},
		}, nil)
		if _, err := ledger.Grant(testProfile("p1")); !errors.Is(err, ErrExhaustedCatalog) {
			t.Fatalf("Expected ErrExhaustedCatalog, but got %v", err)
		}
		if _, ok := ledger.Lookup("p1"); ok {
			t.Error("Expected no entry after a failed draw")
		}
	})

	t.Run("Test voucher prize claims a voucher", func(t *testing.T) {
		inv := NewVoucherInventory()
		if _, err := ingestCSV(t, inv, "Country,Location,VoucherType,RedeemCode,Quantity\nUAE,Dubai Mall,netflix,NF,2\n"); err != nil {
			t.Fatal(err)
		}
		ledger := newTestLedger(t, []models.PrizeVariant{
			{ID: "prize1", Name: "Netflix Voucher", Category: models.CategoryStreamingA, Weight: 1, RemainingStock: 5},
		}, inv)

		entry, err := ledger.Grant(testProfile("p1"))
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if !strings.HasPrefix(entry.VoucherCode, "NF-") {
			t.Fatalf("Expected a claimed NF code, but got %q", entry.VoucherCode)
		}
		v, _ := inv.Get(entry.VoucherCode)
		if !v.IsRedeemed || v.RedeemedBySessionID != "p1" {
			t.Errorf("Expected voucher redeemed by p1, but got %+v", v)
		}
	})

	t.Run("Test voucher prize without inventory still records the award", func(t *testing.T) {
		ledger := newTestLedger(t, []models.PrizeVariant{
			{ID: "prize3", Category: models.CategoryVoucher, Weight: 1, RemainingStock: 5},
		}, NewVoucherInventory())
		entry, err := ledger.Grant(testProfile("p1"))
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if entry.VoucherCode != "" {
			t.Errorf("Expected no voucher code, but got %q", entry.VoucherCode)
		}
	})

	t.Run("Test stickers never claim vouchers", func(t *testing.T) {
		inv := NewVoucherInventory()
		if _, err := ingestCSV(t, inv, "Country,Location,VoucherType,RedeemCode,Quantity\nUAE,Dubai Mall,sticker,ST,1\n"); err != nil {
			t.Fatal(err)
		}
		ledger := newTestLedger(t, []models.PrizeVariant{
			{ID: "prize4", Category: models.CategorySticker, Weight: 1, RemainingStock: 5},
		}, inv)
		entry, _ := ledger.Grant(testProfile("p1"))
		if entry.VoucherCode != "" {
			t.Errorf("Expected no voucher code, but got %q", entry.VoucherCode)
		}
		if _, redeemed := inv.Counts(); redeemed != 0 {
			t.Errorf("Expected no redemptions, but got %d", redeemed)
		}
	})
}

func TestAwardLedger_LookupAndEntries(t *testing.T) {
	ledger := newTestLedger(t, []models.PrizeVariant{
		{ID: "sticker", Category: models.CategorySticker, Weight: 1, RemainingStock: 10},
	}, nil)
	for _, id := range []string{"p1", "p2", "p3"} {
		if _, err := ledger.Grant(testProfile(id)); err != nil {
			t.Fatal(err)
		}
	}

	entry, ok := ledger.Lookup("p2")
	if !ok || entry.Profile.ID != "p2" {
		t.Errorf("Expected p2's entry, but got %+v (ok=%v)", entry, ok)
	}
	if _, ok := ledger.Lookup("nobody"); ok {
		t.Error("Expected no entry for an unknown profile")
	}

	entries := ledger.Entries()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, but got %d", len(entries))
	}
	for i, id := range []string{"p1", "p2", "p3"} {
		if entries[i].Profile.ID != id {
			t.Errorf("entry %d: Expected %s, but got %s", i, id, entries[i].Profile.ID)
		}
	}
}
