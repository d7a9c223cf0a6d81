package card

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/svpay/svpay-api/internal/pkg/database"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Every balance write pairs with exactly one transactions row, inside one
// database transaction. Reads of the current balance happen in the same
// transaction as the write, so concurrent mutations cannot lose updates.

func (r *Repository) Create(ctx context.Context, rfidUID, name string, initialBalance int64) (*Card, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO cards (rfid_uid, name, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, rfidUID, name, initialBalance, now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateUID
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := r.insertTransaction(ctx, tx, id, initialBalance, TransactionTypeInitial, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Card{
		ID:        id,
		RFIDUID:   rfidUID,
		Name:      name,
		Balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Repository) List(ctx context.Context, search string) ([]Card, error) {
	cards := []Card{}

	if search != "" {
		pattern := "%" + search + "%"
		err := r.db.SelectContext(ctx, &cards, `
			SELECT id, rfid_uid, name, balance, created_at, updated_at
			FROM cards
			WHERE name LIKE ? OR rfid_uid LIKE ?
			ORDER BY updated_at DESC
		`, pattern, pattern)
		return cards, err
	}

	err := r.db.SelectContext(ctx, &cards, `
		SELECT id, rfid_uid, name, balance, created_at, updated_at
		FROM cards
		ORDER BY updated_at DESC
	`)
	return cards, err
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Card, error) {
	var c Card
	err := r.db.GetContext(ctx, &c, `
		SELECT id, rfid_uid, name, balance, created_at, updated_at
		FROM cards WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetByUID(ctx context.Context, rfidUID string) (*Card, error) {
	var c Card
	err := r.db.GetContext(ctx, &c, `
		SELECT id, rfid_uid, name, balance, created_at, updated_at
		FROM cards WHERE rfid_uid = ?
	`, rfidUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Update applies the present fields. A balance edit always logs a
// manual_update transaction carrying the reconciling delta, even when the
// delta is zero. One updated_at refresh covers both sub-updates.
func (r *Repository) Update(ctx context.Context, id int64, name *string, balance *int64) (*Card, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := r.getCard(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	newName := existing.Name
	if name != nil {
		newName = *name
	}
	newBalance := existing.Balance
	if balance != nil {
		newBalance = *balance
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE cards SET name = ?, balance = ?, updated_at = ? WHERE id = ?
	`, newName, newBalance, now, id)
	if err != nil {
		return nil, err
	}

	if balance != nil {
		diff := newBalance - existing.Balance
		if err := r.insertTransaction(ctx, tx, id, diff, TransactionTypeManualUpdate, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	existing.Name = newName
	existing.Balance = newBalance
	existing.UpdatedAt = now
	return existing, nil
}

// AddBalance credits (or, for negative amounts, corrects) the card balance.
// No lower-bound check: this is the administrative path.
func (r *Repository) AddBalance(ctx context.Context, id int64, amount int64) (*Card, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := r.getCard(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newBalance := existing.Balance + amount

	if err := r.updateBalance(ctx, tx, id, newBalance, now); err != nil {
		return nil, err
	}
	if err := r.insertTransaction(ctx, tx, id, amount, TransactionTypeAddBalance, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	existing.Balance = newBalance
	existing.UpdatedAt = now
	return existing, nil
}

// Use debits one unit from the card identified by UID. The balance check
// and the decrement run in the same transaction, so two concurrent uses of
// a balance-1 card cannot both pass the gate.
func (r *Repository) Use(ctx context.Context, rfidUID string) (*Card, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing Card
	err = tx.GetContext(ctx, &existing, `
		SELECT id, rfid_uid, name, balance, created_at, updated_at
		FROM cards WHERE rfid_uid = ?
	`, rfidUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if existing.Balance <= 0 {
		return nil, ErrInsufficientBalance
	}

	now := time.Now().UTC()
	newBalance := existing.Balance - 1

	if err := r.updateBalance(ctx, tx, existing.ID, newBalance, now); err != nil {
		return nil, err
	}
	if err := r.insertTransaction(ctx, tx, existing.ID, -1, TransactionTypeUse, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	existing.Balance = newBalance
	existing.UpdatedAt = now
	return &existing, nil
}

// Delete removes the card and all transactions referencing it. Storage is
// not assumed to cascade, so the transaction rows go first.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := r.getCard(ctx, tx, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE card_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// ListTransactions returns the newest transactions for a card. An unknown
// card yields an empty slice, not an error.
func (r *Repository) ListTransactions(ctx context.Context, cardID int64, limit int) ([]Transaction, error) {
	txs := []Transaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, card_id, amount, transaction_type, timestamp
		FROM transactions
		WHERE card_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, cardID, limit)
	return txs, err
}

func (r *Repository) getCard(ctx context.Context, tx *sqlx.Tx, id int64) (*Card, error) {
	var c Card
	err := tx.GetContext(ctx, &c, `
		SELECT id, rfid_uid, name, balance, created_at, updated_at
		FROM cards WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, id, balance int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE cards SET balance = ?, updated_at = ? WHERE id = ?
	`, balance, now, id)
	return err
}

func (r *Repository) insertTransaction(ctx context.Context, tx *sqlx.Tx, cardID, amount int64, txType TransactionType, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (card_id, amount, transaction_type, timestamp)
		VALUES (?, ?, ?, ?)
	`, cardID, amount, string(txType), now)
	return err
}
