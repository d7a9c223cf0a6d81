package card_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/svpay/svpay-api/internal/domain/card"
	"github.com/svpay/svpay-api/internal/pkg/database"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func newTestService(t *testing.T) *card.Service {
	t.Helper()
	return card.NewService(card.NewRepository(setupTestDB(t)))
}

func TestCreateCardLogsInitialTransaction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB:CC", "Alice", 3)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected generated card id")
	}
	if c.Balance != 3 {
		t.Fatalf("expected balance 3, got %d", c.Balance)
	}

	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].Type != card.TransactionTypeInitial || txs[0].Amount != 3 {
		t.Fatalf("expected initial transaction with amount 3, got %s %d", txs[0].Type, txs[0].Amount)
	}
}

func TestCreateCardDuplicateUID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	original, err := svc.CreateCard(ctx, "AA:BB", "Alice", 5)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	if _, err := svc.CreateCard(ctx, "AA:BB", "Bob", 0); !errors.Is(err, card.ErrDuplicateUID) {
		t.Fatalf("expected ErrDuplicateUID, got %v", err)
	}

	// Original card and its transactions stay untouched
	got, err := svc.GetCard(ctx, original.ID)
	if err != nil {
		t.Fatalf("get card failed: %v", err)
	}
	if got.Name != "Alice" || got.Balance != 5 {
		t.Fatalf("original card modified: %+v", got)
	}
	txs, err := svc.ListTransactions(ctx, original.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

func TestUseCardScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 0)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	if _, err := svc.AddBalance(ctx, c.ID, 5); err != nil {
		t.Fatalf("add balance failed: %v", err)
	}

	for _, want := range []int64{4, 3, 2} {
		used, err := svc.UseCard(ctx, "AA:BB")
		if err != nil {
			t.Fatalf("use card failed: %v", err)
		}
		if used.Balance != want {
			t.Fatalf("expected remaining balance %d, got %d", want, used.Balance)
		}
	}

	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(txs))
	}

	// Newest first: use, use, use, add_balance, initial
	wantTypes := []card.TransactionType{
		card.TransactionTypeUse,
		card.TransactionTypeUse,
		card.TransactionTypeUse,
		card.TransactionTypeAddBalance,
		card.TransactionTypeInitial,
	}
	for i, tx := range txs {
		if tx.Type != wantTypes[i] {
			t.Fatalf("transaction %d: expected type %s, got %s", i, wantTypes[i], tx.Type)
		}
	}
}

func TestUseCardInsufficientBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 0)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	if _, err := svc.UseCard(ctx, "AA:BB"); !errors.Is(err, card.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Failed use produces no transaction
	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected only the initial transaction, got %d", len(txs))
	}
}

func TestUseCardUnknownUID(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UseCard(context.Background(), "no-such-card"); !errors.Is(err, card.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentUseNeverOverdraws(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 1)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UseCard(ctx, "AA:BB")
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, card.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if success != 1 {
		t.Fatalf("expected exactly 1 successful use, got %d", success)
	}

	got, err := svc.GetCard(ctx, c.ID)
	if err != nil {
		t.Fatalf("get card failed: %v", err)
	}
	if got.Balance != 0 {
		t.Fatalf("expected balance 0, got %d", got.Balance)
	}
}

func TestUpdateCardLogsZeroDiff(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 10)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	same := int64(10)
	if _, err := svc.UpdateCard(ctx, c.ID, nil, &same); err != nil {
		t.Fatalf("update card failed: %v", err)
	}

	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Type != card.TransactionTypeManualUpdate || txs[0].Amount != 0 {
		t.Fatalf("expected manual_update with amount 0, got %s %d", txs[0].Type, txs[0].Amount)
	}
}

func TestUpdateCardNameOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 10)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	name := "Bob"
	updated, err := svc.UpdateCard(ctx, c.ID, &name, nil)
	if err != nil {
		t.Fatalf("update card failed: %v", err)
	}
	if updated.Name != "Bob" || updated.Balance != 10 {
		t.Fatalf("unexpected card after rename: %+v", updated)
	}

	// A pure rename must not produce a transaction
	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

func TestUpdateCardNotFound(t *testing.T) {
	svc := newTestService(t)

	name := "ghost"
	if _, err := svc.UpdateCard(context.Background(), 9999, &name, nil); !errors.Is(err, card.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddBalanceNegativeAmount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 2)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	// Administrative corrections may drive the balance negative
	updated, err := svc.AddBalance(ctx, c.ID, -5)
	if err != nil {
		t.Fatalf("add balance failed: %v", err)
	}
	if updated.Balance != -3 {
		t.Fatalf("expected balance -3, got %d", updated.Balance)
	}
}

func TestBalanceEqualsTransactionSum(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 7)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	if _, err := svc.AddBalance(ctx, c.ID, 5); err != nil {
		t.Fatalf("add balance failed: %v", err)
	}
	newBalance := int64(20)
	if _, err := svc.UpdateCard(ctx, c.ID, nil, &newBalance); err != nil {
		t.Fatalf("update card failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := svc.UseCard(ctx, "AA:BB"); err != nil {
			t.Fatalf("use card failed: %v", err)
		}
	}
	if _, err := svc.AddBalance(ctx, c.ID, -2); err != nil {
		t.Fatalf("add balance failed: %v", err)
	}

	got, err := svc.GetCard(ctx, c.ID)
	if err != nil {
		t.Fatalf("get card failed: %v", err)
	}

	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	var sum int64
	for _, tx := range txs {
		sum += tx.Amount
	}
	if sum != got.Balance {
		t.Fatalf("transaction sum %d does not reproduce balance %d", sum, got.Balance)
	}
}

func TestDeleteCardRemovesTransactions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 5)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	if _, err := svc.UseCard(ctx, "AA:BB"); err != nil {
		t.Fatalf("use card failed: %v", err)
	}

	if err := svc.DeleteCard(ctx, c.ID); err != nil {
		t.Fatalf("delete card failed: %v", err)
	}

	if _, err := svc.GetCard(ctx, c.ID); !errors.Is(err, card.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	txs, err := svc.ListTransactions(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no transactions after delete, got %d", len(txs))
	}
}

func TestDeleteCardNotFound(t *testing.T) {
	svc := newTestService(t)

	if err := svc.DeleteCard(context.Background(), 9999); !errors.Is(err, card.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCardsSearch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCard(ctx, "AA:BB", "Alice", 0); err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	if _, err := svc.CreateCard(ctx, "CC:DD", "Bob", 0); err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	all, err := svc.ListCards(ctx, "")
	if err != nil {
		t.Fatalf("list cards failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(all))
	}

	byName, err := svc.ListCards(ctx, "Ali")
	if err != nil {
		t.Fatalf("list cards failed: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Alice" {
		t.Fatalf("expected only Alice, got %+v", byName)
	}

	byUID, err := svc.ListCards(ctx, "CC:")
	if err != nil {
		t.Fatalf("list cards failed: %v", err)
	}
	if len(byUID) != 1 || byUID[0].RFIDUID != "CC:DD" {
		t.Fatalf("expected only CC:DD, got %+v", byUID)
	}
}

func TestListTransactionsLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCard(ctx, "AA:BB", "Alice", 10)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.UseCard(ctx, "AA:BB"); err != nil {
			t.Fatalf("use card failed: %v", err)
		}
	}

	txs, err := svc.ListTransactions(ctx, c.ID, 3)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	for _, tx := range txs {
		if tx.Type != card.TransactionTypeUse {
			t.Fatalf("expected newest-first use transactions, got %s", tx.Type)
		}
	}
}
