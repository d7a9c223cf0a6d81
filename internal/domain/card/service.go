package card

import (
	"context"

	"github.com/rs/zerolog/log"
)

const defaultTransactionLimit = 50

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCard(ctx context.Context, rfidUID, name string, initialBalance int64) (*Card, error) {
	c, err := s.repo.Create(ctx, rfidUID, name, initialBalance)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("card_id", c.ID).Str("rfid_uid", c.RFIDUID).Int64("balance", c.Balance).Msg("card created")
	return c, nil
}

func (s *Service) ListCards(ctx context.Context, search string) ([]Card, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) GetCard(ctx context.Context, id int64) (*Card, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetCardByUID(ctx context.Context, rfidUID string) (*Card, error) {
	return s.repo.GetByUID(ctx, rfidUID)
}

func (s *Service) UpdateCard(ctx context.Context, id int64, name *string, balance *int64) (*Card, error) {
	c, err := s.repo.Update(ctx, id, name, balance)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		log.Info().Int64("card_id", c.ID).Int64("balance", c.Balance).Msg("card balance edited")
	}
	return c, nil
}

func (s *Service) AddBalance(ctx context.Context, id int64, amount int64) (*Card, error) {
	c, err := s.repo.AddBalance(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("card_id", c.ID).Int64("amount", amount).Int64("balance", c.Balance).Msg("balance added")
	return c, nil
}

func (s *Service) UseCard(ctx context.Context, rfidUID string) (*Card, error) {
	c, err := s.repo.Use(ctx, rfidUID)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("card_id", c.ID).Str("rfid_uid", c.RFIDUID).Int64("remaining", c.Balance).Msg("card used")
	return c, nil
}

func (s *Service) DeleteCard(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("card_id", id).Msg("card deleted")
	return nil
}

func (s *Service) ListTransactions(ctx context.Context, cardID int64, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	return s.repo.ListTransactions(ctx, cardID, limit)
}
