package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 50

func (s *Store) SaveMovement(ctx context.Context, movement domain.Movement) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.movements[movement.MovementID]; exists {
			return apperrors.Duplicatef("movement with ID %s already exists", movement.MovementID)
		}
		movement.Links = nil
		st.movements[movement.MovementID] = movement
		return nil
	})
}

func (s *Store) UpdateMovement(ctx context.Context, movement domain.Movement) error {
	return s.write(ctx, func(st *state) error {
		if _, exists := st.movements[movement.MovementID]; !exists {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movement.MovementID)
		}
		movement.Links = nil
		st.movements[movement.MovementID] = movement
		return nil
	})
}

func (s *Store) FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	var out *domain.Movement
	err := s.read(ctx, func(st *state) error {
		m, ok := st.movements[movementID]
		if !ok {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		out = &m
		return nil
	})
	return out, err
}

func (s *Store) FindMovementForUpdate(ctx context.Context, movementID string) (*domain.Movement, error) {
	return s.FindMovementByID(ctx, movementID)
}

func (s *Store) FindActiveMovementByKey(ctx context.Context, key domain.NaturalKey) (*domain.Movement, error) {
	var out *domain.Movement
	err := s.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.IsDeleted() || !key.Matches(m) {
				continue
			}
			if out == nil || m.CreatedAt.Before(out.CreatedAt) {
				found := m
				out = &found
			}
		}
		if out == nil {
			return fmt.Errorf("%w: movement for %s %s", apperrors.ErrNotFound, key.Source, key.DocumentID)
		}
		return nil
	})
	return out, err
}

func matchesFilter(m domain.Movement, f domain.MovementFilter) bool {
	if m.IsDeleted() {
		return false
	}
	if f.DateFrom != nil && m.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.Date.After(*f.DateTo) {
		return false
	}
	if f.AccountID != nil && m.SourceAccountID != *f.AccountID &&
		(m.DestinationAccountID == nil || *m.DestinationAccountID != *f.AccountID) {
		return false
	}
	if f.CategoryID != nil && (m.CategoryID == nil || *m.CategoryID != *f.CategoryID) {
		return false
	}
	if f.OperationType != nil && m.OperationType != *f.OperationType {
		return false
	}
	if f.Status != nil && m.Status != *f.Status {
		return false
	}
	if f.Origin != nil && m.Origin != *f.Origin {
		return false
	}
	if f.InvoiceID != nil && (m.InvoiceID == nil || *m.InvoiceID != *f.InvoiceID) {
		return false
	}
	return true
}

func (s *Store) ListMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) ([]domain.Movement, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var (
		hasCursor           bool
		curDate, curCreated time.Time
		curID               string
	)
	if filter.NextToken != nil && *filter.NextToken != "" {
		var err error
		curDate, curCreated, curID, err = pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("invalid nextToken: %v", err)
		}
		hasCursor = true
	}

	var matched []domain.Movement
	err := s.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.AziendaID != aziendaID || !matchesFilter(m, filter) {
				continue
			}
			if hasCursor && !pagination.After(m.Date, m.CreatedAt, m.MovementID, curDate, curCreated, curID) {
				continue
			}
			matched = append(matched, m)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		return pagination.After(b.Date, b.CreatedAt, b.MovementID, a.Date, a.CreatedAt, a.MovementID)
	})

	var next *string
	if len(matched) > limit {
		last := matched[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt, last.MovementID)
		next = &token
		matched = matched[:limit]
	}
	return matched, next, nil
}

func (s *Store) SummarizeMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) (domain.MovementSummary, error) {
	summary := domain.MovementSummary{Income: decimal.Zero, Expense: decimal.Zero}
	err := s.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.AziendaID != aziendaID || m.Status != domain.Definitive || !matchesFilter(m, filter) {
				continue
			}
			src, ok := st.accounts[m.SourceAccountID]
			if !ok || !src.AccountType.IsLiquidity() {
				continue
			}
			switch m.OperationType {
			case domain.Income:
				summary.Income = summary.Income.Add(m.Amount)
			case domain.Expense:
				summary.Expense = summary.Expense.Add(m.Amount)
			}
		}
		return nil
	})
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, err
}

func (s *Store) CountMovementsByAccount(ctx context.Context, accountID string, includeDeleted bool) (int, error) {
	count := 0
	err := s.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.IsDeleted() && !includeDeleted {
				continue
			}
			if m.SourceAccountID == accountID || (m.DestinationAccountID != nil && *m.DestinationAccountID == accountID) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (s *Store) CountMovementsByCategory(ctx context.Context, categoryID string) (int, error) {
	count := 0
	err := s.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.CategoryID != nil && *m.CategoryID == categoryID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (s *Store) ListLinksByMovement(ctx context.Context, movementID string) ([]domain.DocumentLink, error) {
	var out []domain.DocumentLink
	err := s.read(ctx, func(st *state) error {
		out = append(out, st.links[movementID]...)
		return nil
	})
	return out, err
}

func (s *Store) ReplaceLinks(ctx context.Context, movementID string, links []domain.DocumentLink) error {
	return s.write(ctx, func(st *state) error {
		if len(links) == 0 {
			delete(st.links, movementID)
			return nil
		}
		stored := make([]domain.DocumentLink, len(links))
		for i, l := range links {
			l.MovementID = movementID
			stored[i] = l
		}
		st.links[movementID] = stored
		return nil
	})
}

func (s *Store) SumLinkedAmount(ctx context.Context, docType domain.DocumentType, documentID string, excludeMovementID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := s.read(ctx, func(st *state) error {
		for movementID, links := range st.links {
			if movementID == excludeMovementID {
				continue
			}
			if m, ok := st.movements[movementID]; !ok || m.IsDeleted() {
				continue
			}
			for _, l := range links {
				if l.DocumentType == docType && l.DocumentID == documentID {
					sum = sum.Add(l.Amount)
				}
			}
		}
		return nil
	})
	return sum, err
}

func (s *Store) SaveAllocations(ctx context.Context, allocations []domain.BatchAllocation) error {
	return s.write(ctx, func(st *state) error {
		for _, a := range allocations {
			if _, exists := st.allocations[a.AllocationID]; exists {
				return apperrors.Duplicatef("allocation with ID %s already exists", a.AllocationID)
			}
		}
		for _, a := range allocations {
			st.allocations[a.AllocationID] = a
		}
		return nil
	})
}

func (s *Store) ListAllocationsByMovement(ctx context.Context, movementID string) ([]domain.BatchAllocation, error) {
	var out []domain.BatchAllocation
	err := s.read(ctx, func(st *state) error {
		for _, a := range st.allocations {
			if a.MovementID != nil && *a.MovementID == movementID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BatchID < out[j].BatchID })
	return out, err
}

func (s *Store) SoftDeleteAllocationsByMovement(ctx context.Context, movementID string, now time.Time) error {
	return s.write(ctx, func(st *state) error {
		for id, a := range st.allocations {
			if a.MovementID != nil && *a.MovementID == movementID && !a.IsDeleted() {
				a.MarkDeleted(now)
				st.allocations[id] = a
			}
		}
		return nil
	})
}
