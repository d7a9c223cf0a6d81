package card

// CreateRequest for POST /cards
type CreateRequest struct {
	RFIDUID string `json:"rfid_uid" validate:"required,max=64"`
	Name    string `json:"name" validate:"required,max=100"`
	Balance int64  `json:"balance"`
}

// UpdateRequest for PUT /cards/{id}; nil fields are left untouched
type UpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Balance *int64  `json:"balance"`
}

// AddBalanceRequest for POST /cards/{id}/add-balance
type AddBalanceRequest struct {
	Amount int64 `json:"amount"`
}

// UseResponse returned to the embedded reader
type UseResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	RemainingBalance int64  `json:"remaining_balance"`
}

// DeleteResponse for DELETE /cards/{id}
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
