package card

import "time"

type TransactionType string

const (
	TransactionTypeInitial      TransactionType = "initial"
	TransactionTypeManualUpdate TransactionType = "manual_update"
	TransactionTypeAddBalance   TransactionType = "add_balance"
	TransactionTypeUse          TransactionType = "use"
)

// Card represents a physical RFID token and its remaining balance of uses.
type Card struct {
	ID        int64     `db:"id" json:"id"`
	RFIDUID   string    `db:"rfid_uid" json:"rfid_uid"`
	Name      string    `db:"name" json:"name"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is an immutable log entry recording one balance-affecting
// event. Amount is a signed delta, not an absolute balance.
type Transaction struct {
	ID        int64           `db:"id" json:"id"`
	CardID    int64           `db:"card_id" json:"card_id"`
	Amount    int64           `db:"amount" json:"amount"`
	Type      TransactionType `db:"transaction_type" json:"transaction_type"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
}
