package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

// Balance reads an operator's credit position. Superadmin balances are
// flagged unlimited so callers can render the tier instead of the number.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (CreditBalance, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return CreditBalance{}, err
	}
	return CreditBalance{
		Unlimited: account.Role.UnlimitedCredits(),
		Amount:    account.Credits,
	}, nil
}

// Credit grants credits to an account. Amounts must be positive; the grant
// itself has no ceiling.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", domain.ErrInvalidInput)
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.accounts.AddCredits(ctx, accountID, amount); err != nil {
		return err
	}
	s.enqueueAudit(ctx, "credits.issued", accountID.String(), map[string]any{
		"account_id": accountID.String(),
		"amount":     amount,
	})
	return nil
}

// Debit spends credits from an account. Unlimited-tier accounts always
// succeed without touching the stored balance. For finite accounts the
// store performs the floor check and the decrement in one statement, so
// two concurrent debits that together exceed the balance resolve with
// exactly one winner.
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", domain.ErrInvalidInput)
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role.UnlimitedCredits() {
		return nil
	}
	return s.accounts.DebitCredits(ctx, accountID, amount)
}

// Transfer moves credits between two operator accounts. Both ends are
// validated before any mutation; the source debit runs first so a failed
// transfer can never create credits out of thin air. An unlimited-tier
// source funds the destination without being decremented.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", domain.ErrInvalidInput)
	}
	if fromID == toID {
		return fmt.Errorf("%w: cannot transfer to the same account", domain.ErrInvalidInput)
	}
	from, err := s.accounts.GetByID(ctx, fromID)
	if err != nil {
		return err
	}
	if _, err := s.accounts.GetByID(ctx, toID); err != nil {
		return err
	}

	if !from.Role.UnlimitedCredits() {
		if err := s.accounts.DebitCredits(ctx, fromID, amount); err != nil {
			return err
		}
	}
	if err := s.accounts.AddCredits(ctx, toID, amount); err != nil {
		return err
	}
	s.enqueueAudit(ctx, "credits.transferred", fromID.String(), map[string]any{
		"from_account_id": fromID.String(),
		"to_account_id":   toID.String(),
		"amount":          amount,
	})
	return nil
}
