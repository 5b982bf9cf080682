package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/google/uuid"
)

// movementService is the Prima Nota engine. Every public operation runs in one
// transaction; balance and link effects exist only while a movement is
// definitive and not deleted, and are always reversed before being re-applied.
type movementService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	movementRepo   portsrepo.MovementRepositoryFacade
	accountRepo    portsrepo.AccountReader
	categoryRepo   portsrepo.CategoryReader
	linkRepo       portsrepo.DocumentLinkRepository
	allocationRepo portsrepo.AllocationRepository
	balances       portssvc.AccountBalanceSvc
	links          portssvc.DocumentLinkSvcFacade
}

// NewMovementService creates the movement engine.
func NewMovementService(repos portsrepo.RepositoryProvider, balances portssvc.AccountBalanceSvc, links portssvc.DocumentLinkSvcFacade) portssvc.MovementSvcFacade {
	return &movementService{
		txManager:      repos.TxManager,
		movementRepo:   repos.MovementRepo,
		accountRepo:    repos.AccountRepo,
		categoryRepo:   repos.CategoryRepo,
		linkRepo:       repos.LinkRepo,
		allocationRepo: repos.AllocationRepo,
		balances:       balances,
		links:          links,
	}
}

var _ portssvc.MovementSvcFacade = (*movementService)(nil)

func (s *movementService) apply(ctx context.Context, m domain.Movement, links []domain.DocumentLink, userID string) error {
	if !m.IsApplied() {
		return nil
	}
	if err := s.balances.ApplyBalanceChanges(ctx, m.BalanceEffects(), userID); err != nil {
		return err
	}
	return s.links.ApplyLinks(ctx, links, portssvc.LinkApply)
}

func (s *movementService) reverse(ctx context.Context, m domain.Movement, links []domain.DocumentLink, userID string) error {
	if !m.IsApplied() {
		return nil
	}
	if err := s.balances.ApplyBalanceChanges(ctx, m.ReversalEffects(), userID); err != nil {
		return err
	}
	return s.links.ApplyLinks(ctx, links, portssvc.LinkReverse)
}

// loadAccount fetches an account of the azienda usable by a movement.
func (s *movementService) loadAccount(ctx context.Context, aziendaID, accountID, role string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s account %s", apperrors.ErrNotFound, role, accountID)
		}
		return nil, err
	}
	if acc.AziendaID != aziendaID {
		return nil, fmt.Errorf("%w: %s account %s", apperrors.ErrNotFound, role, accountID)
	}
	if !acc.IsActive {
		return nil, apperrors.Validationf("%s account %q is inactive", role, acc.Name)
	}
	return acc, nil
}

// validate checks a movement before it is stored. Manual movements must post
// from a cash or bank account.
func (s *movementService) validate(ctx context.Context, m *domain.Movement) error {
	if !m.OperationType.IsValid() {
		return apperrors.Validationf("unknown operation type %q", m.OperationType)
	}
	if !m.Status.IsValid() {
		return apperrors.Validationf("unknown status %q", m.Status)
	}
	if !m.Origin.IsValid() {
		return apperrors.Validationf("unknown origin %q", m.Origin)
	}
	if m.Amount.IsNegative() {
		return apperrors.Validationf("amount must be >= 0")
	}
	if m.Date.IsZero() {
		return apperrors.Validationf("date is required")
	}
	manual := !m.IsAutomatic()

	source, err := s.loadAccount(ctx, m.AziendaID, m.SourceAccountID, "source")
	if err != nil {
		return err
	}
	if manual && !source.AccountType.IsLiquidity() {
		return apperrors.Validationf("manual movements must use a cash or bank account, %q is %s", source.Name, source.AccountType)
	}

	if m.OperationType == domain.Transfer {
		if m.DestinationAccountID == nil || *m.DestinationAccountID == "" {
			return apperrors.Validationf("a transfer requires a destination account")
		}
		if *m.DestinationAccountID == m.SourceAccountID {
			return apperrors.Validationf("source and destination accounts must differ")
		}
		dest, err := s.loadAccount(ctx, m.AziendaID, *m.DestinationAccountID, "destination")
		if err != nil {
			return err
		}
		if manual && !dest.AccountType.IsLiquidity() {
			return apperrors.Validationf("manual transfers must move money between cash or bank accounts, %q is %s", dest.Name, dest.AccountType)
		}
	} else if m.DestinationAccountID != nil {
		return apperrors.Validationf("only transfers have a destination account")
	}

	if m.CategoryID != nil {
		c, err := s.categoryRepo.FindCategoryByID(ctx, *m.CategoryID)
		if err != nil {
			return err
		}
		if !c.VisibleTo(m.AziendaID) {
			return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, *m.CategoryID)
		}
		if c.OperationType != m.OperationType {
			return apperrors.Validationf("category %q is for %s movements", c.Name, c.OperationType)
		}
		if !c.IsActive {
			return apperrors.Validationf("category %q is inactive", c.Name)
		}
	}
	return nil
}

// create validates, stores and applies a new movement inside the context transaction.
func (s *movementService) create(ctx context.Context, m domain.Movement, links []domain.DocumentLink, userID string) (*domain.Movement, error) {
	m.Amount = m.Amount.Round(2)
	m.Date = dayOf(m.Date)
	m.State = domain.StateActive
	m.DeletedAt = nil
	if err := s.validate(ctx, &m); err != nil {
		return nil, err
	}
	for i := range links {
		links[i].MovementID = m.MovementID
	}
	if err := s.links.ValidateLinks(ctx, m.AziendaID, m.MovementID, links); err != nil {
		return nil, err
	}
	if err := s.movementRepo.SaveMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}
	if len(links) > 0 {
		if err := s.linkRepo.ReplaceLinks(ctx, m.MovementID, links); err != nil {
			return nil, fmt.Errorf("failed to save movement links: %w", err)
		}
	}
	if err := s.apply(ctx, m, links, userID); err != nil {
		return nil, err
	}
	m.Links = links
	return &m, nil
}

// loadActive fetches a live movement of the azienda, locked for update.
func (s *movementService) loadActive(ctx context.Context, aziendaID, movementID string) (*domain.Movement, error) {
	m, err := s.movementRepo.FindMovementForUpdate(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m.AziendaID != aziendaID || m.IsDeleted() {
		return nil, fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
	}
	return m, nil
}

func (s *movementService) CreateMovement(ctx context.Context, aziendaID string, req dto.CreateMovementRequest, userID string) (*domain.Movement, error) {
	origin := req.Origin
	if origin == "" {
		origin = domain.OriginManual
	}
	if origin == domain.OriginAutomatic {
		return nil, apperrors.Validationf("automatic movements are produced by document sync only")
	}
	if origin == domain.OriginManual && req.OperationType == domain.Transfer {
		origin = domain.OriginTransfer
	}
	status := req.Status
	if status == "" {
		status = domain.Definitive
	}

	now := time.Now().UTC()
	m := domain.Movement{
		MovementID:           uuid.NewString(),
		AziendaID:            aziendaID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: emptyToNil(req.DestinationAccountID),
		CategoryID:           emptyToNil(req.CategoryID),
		OperationType:        req.OperationType,
		Status:               status,
		Origin:               origin,
		Date:                 req.Date,
		Description:          req.Description,
		Amount:               req.Amount,
		Counterpart:          req.Counterpart,
		Note:                 req.Note,
		InvoiceID:            emptyToNil(req.InvoiceID),
		PaymentID:            emptyToNil(req.PaymentID),
		BatchID:              emptyToNil(req.BatchID),
		EquipmentID:          emptyToNil(req.EquipmentID),
		ContractID:           emptyToNil(req.ContractID),
		AuditFields:          newAuditFields(userID, now),
	}
	links := dto.ToDocumentLinks(m.MovementID, req.Links)

	var created *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.create(ctx, m, links, userID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create movement", m.MovementID)
		return nil, err
	}
	s.LogInfo(ctx, "Movement created",
		slog.String("movement_id", created.MovementID),
		slog.String("azienda_id", aziendaID),
		slog.String("status", string(created.Status)))
	return created, nil
}

func (s *movementService) UpdateMovement(ctx context.Context, aziendaID string, movementID string, req dto.UpdateMovementRequest, userID string) (*domain.Movement, error) {
	var updated *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.loadActive(ctx, aziendaID, movementID)
		if err != nil {
			return err
		}
		if current.IsAutomatic() && touchesProtectedFields(*current, req) {
			return apperrors.Permissionf("accounts, amount and operation type of automatic movements cannot be changed")
		}
		currentLinks, err := s.linkRepo.ListLinksByMovement(ctx, movementID)
		if err != nil {
			return err
		}

		next := *current
		applyPatch(&next, req)
		nextLinks := currentLinks
		if req.Links != nil {
			nextLinks = dto.ToDocumentLinks(movementID, *req.Links)
		}
		touch(&next.AuditFields, userID, time.Now().UTC())

		updated, err = s.replace(ctx, *current, currentLinks, next, nextLinks, userID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update movement", movementID)
		return nil, err
	}
	s.LogInfo(ctx, "Movement updated", slog.String("movement_id", movementID))
	return updated, nil
}

// replace swaps current for next: the old effects are reversed, the new values
// validated and stored, and the new effects applied, all in the context transaction.
func (s *movementService) replace(ctx context.Context, current domain.Movement, currentLinks []domain.DocumentLink, next domain.Movement, nextLinks []domain.DocumentLink, userID string) (*domain.Movement, error) {
	if err := s.reverse(ctx, current, currentLinks, userID); err != nil {
		return nil, err
	}
	next.Amount = next.Amount.Round(2)
	next.Date = dayOf(next.Date)
	if err := s.validate(ctx, &next); err != nil {
		return nil, err
	}
	if err := s.links.ValidateLinks(ctx, next.AziendaID, next.MovementID, nextLinks); err != nil {
		return nil, err
	}
	if err := s.movementRepo.UpdateMovement(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to update movement: %w", err)
	}
	if err := s.linkRepo.ReplaceLinks(ctx, next.MovementID, nextLinks); err != nil {
		return nil, fmt.Errorf("failed to replace movement links: %w", err)
	}
	if err := s.apply(ctx, next, nextLinks, userID); err != nil {
		return nil, err
	}
	next.Links = nextLinks
	return &next, nil
}

func touchesProtectedFields(m domain.Movement, req dto.UpdateMovementRequest) bool {
	switch {
	case req.SourceAccountID != nil && *req.SourceAccountID != m.SourceAccountID:
		return true
	case req.DestinationAccountID != nil && !sameStrPtr(emptyToNil(req.DestinationAccountID), m.DestinationAccountID):
		return true
	case req.Amount != nil && !req.Amount.Round(2).Equal(m.Amount):
		return true
	case req.OperationType != nil && *req.OperationType != m.OperationType:
		return true
	}
	return false
}

func applyPatch(m *domain.Movement, req dto.UpdateMovementRequest) {
	if req.SourceAccountID != nil {
		m.SourceAccountID = *req.SourceAccountID
	}
	if req.DestinationAccountID != nil {
		m.DestinationAccountID = emptyToNil(req.DestinationAccountID)
	}
	if req.CategoryID != nil {
		m.CategoryID = emptyToNil(req.CategoryID)
	}
	if req.OperationType != nil {
		m.OperationType = *req.OperationType
		if m.Origin == domain.OriginManual && m.OperationType == domain.Transfer {
			m.Origin = domain.OriginTransfer
		} else if m.Origin == domain.OriginTransfer && m.OperationType != domain.Transfer {
			m.Origin = domain.OriginManual
		}
	}
	if req.Date != nil {
		m.Date = *req.Date
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Amount != nil {
		m.Amount = *req.Amount
	}
	if req.Counterpart != nil {
		m.Counterpart = *req.Counterpart
	}
	if req.Note != nil {
		m.Note = *req.Note
	}
	if req.BatchID != nil {
		m.BatchID = emptyToNil(req.BatchID)
	}
	if req.EquipmentID != nil {
		m.EquipmentID = emptyToNil(req.EquipmentID)
	}
}

func (s *movementService) DeleteMovement(ctx context.Context, aziendaID string, movementID string, userID string) error {
	deleted := false
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.movementRepo.FindMovementForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m.AziendaID != aziendaID {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		if m.IsDeleted() {
			return nil
		}
		deleted = true
		return s.delete(ctx, *m, userID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete movement", movementID)
		return err
	}
	if deleted {
		s.LogInfo(ctx, "Movement deleted", slog.String("movement_id", movementID))
	}
	return nil
}

// delete reverses a live movement, drops its links, soft-deletes its allocations
// and finally the movement itself.
func (s *movementService) delete(ctx context.Context, m domain.Movement, userID string) error {
	links, err := s.linkRepo.ListLinksByMovement(ctx, m.MovementID)
	if err != nil {
		return err
	}
	if err := s.reverse(ctx, m, links, userID); err != nil {
		return err
	}
	if err := s.linkRepo.ReplaceLinks(ctx, m.MovementID, nil); err != nil {
		return fmt.Errorf("failed to drop movement links: %w", err)
	}
	now := time.Now().UTC()
	if err := s.allocationRepo.SoftDeleteAllocationsByMovement(ctx, m.MovementID, now); err != nil {
		return fmt.Errorf("failed to delete batch allocations: %w", err)
	}
	m.MarkDeleted(now)
	touch(&m.AuditFields, userID, now)
	if err := s.movementRepo.UpdateMovement(ctx, m); err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}
	return nil
}

func (s *movementService) ConfirmMovement(ctx context.Context, aziendaID string, movementID string, userID string) (*domain.Movement, error) {
	var confirmed *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.loadActive(ctx, aziendaID, movementID)
		if err != nil {
			return err
		}
		links, err := s.linkRepo.ListLinksByMovement(ctx, movementID)
		if err != nil {
			return err
		}
		m.Links = links
		confirmed = m
		if m.Status == domain.Definitive {
			return nil
		}

		m.Status = domain.Definitive
		touch(&m.AuditFields, userID, time.Now().UTC())
		if err := s.validate(ctx, m); err != nil {
			return err
		}
		if err := s.links.ValidateLinks(ctx, aziendaID, movementID, links); err != nil {
			return err
		}
		if err := s.movementRepo.UpdateMovement(ctx, *m); err != nil {
			return fmt.Errorf("failed to confirm movement: %w", err)
		}
		return s.apply(ctx, *m, links, userID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to confirm movement", movementID)
		return nil, err
	}
	s.LogInfo(ctx, "Movement confirmed", slog.String("movement_id", movementID))
	return confirmed, nil
}

func (s *movementService) SetMovementLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink, userID string) (*domain.Movement, error) {
	var out *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		stored, err := s.links.SetLinks(ctx, aziendaID, movementID, links)
		if err != nil {
			return err
		}
		m, err := s.loadActive(ctx, aziendaID, movementID)
		if err != nil {
			return err
		}
		touch(&m.AuditFields, userID, time.Now().UTC())
		if err := s.movementRepo.UpdateMovement(ctx, *m); err != nil {
			return err
		}
		m.Links = stored
		out = m
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to set movement links", movementID)
		return nil, err
	}
	return out, nil
}

func (s *movementService) GetMovement(ctx context.Context, aziendaID string, movementID string) (*domain.Movement, error) {
	m, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m.AziendaID != aziendaID || m.IsDeleted() {
		return nil, fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
	}
	links, err := s.linkRepo.ListLinksByMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	m.Links = links
	return m, nil
}

func (s *movementService) ListMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) (*domain.MovementPage, error) {
	movements, next, err := s.movementRepo.ListMovements(ctx, aziendaID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list movements", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	summary, err := s.movementRepo.SummarizeMovements(ctx, aziendaID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarize movements", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	if movements == nil {
		movements = []domain.Movement{}
	}
	return &domain.MovementPage{Movements: movements, Summary: summary, NextToken: next}, nil
}

// Upsert keeps exactly one live movement per natural key. An existing leg gets
// the document-driven fields (accounts, amount, date, counterpart, links)
// refreshed; user-editable fields (description, note, category) are kept once set.
func (s *movementService) Upsert(ctx context.Context, key domain.NaturalKey, payload domain.Movement, userID string) (*domain.Movement, error) {
	var result *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.movementRepo.FindActiveMovementByKey(ctx, key)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if err != nil {
			existing = nil
		}

		if payload.Amount.Round(2).IsZero() {
			if existing != nil {
				return s.delete(ctx, *existing, userID)
			}
			return nil
		}

		payload.AziendaID = key.AziendaID
		payload.OperationType = key.OperationType
		payload.AccountRole = key.AccountRole
		payload.Origin = domain.OriginAutomatic
		if payload.Status == "" {
			payload.Status = domain.Definitive
		}
		links := payload.Links
		payload.Links = nil

		if existing == nil {
			payload.MovementID = uuid.NewString()
			payload.AuditFields = newAuditFields(userID, time.Now().UTC())
			result, err = s.create(ctx, payload, links, userID)
			return err
		}

		currentLinks, err := s.linkRepo.ListLinksByMovement(ctx, existing.MovementID)
		if err != nil {
			return err
		}
		next := *existing
		next.SourceAccountID = payload.SourceAccountID
		next.DestinationAccountID = payload.DestinationAccountID
		next.Amount = payload.Amount.Round(2)
		next.Date = dayOf(payload.Date)
		next.Counterpart = payload.Counterpart
		next.InvoiceID = payload.InvoiceID
		next.PaymentID = payload.PaymentID
		next.ContractID = payload.ContractID
		if next.CategoryID == nil {
			next.CategoryID = payload.CategoryID
		}
		if next.Description == "" {
			next.Description = payload.Description
		}

		if unchanged(*existing, next) && sameLinks(currentLinks, links) {
			existing.Links = currentLinks
			result = existing
			return nil
		}
		for i := range links {
			links[i].MovementID = next.MovementID
		}
		touch(&next.AuditFields, userID, time.Now().UTC())
		result, err = s.replace(ctx, *existing, currentLinks, next, links, userID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to upsert automatic movement", key.DocumentID)
		return nil, err
	}
	return result, nil
}

func unchanged(a, b domain.Movement) bool {
	return a.SourceAccountID == b.SourceAccountID &&
		sameStrPtr(a.DestinationAccountID, b.DestinationAccountID) &&
		sameStrPtr(a.CategoryID, b.CategoryID) &&
		a.Amount.Equal(b.Amount) &&
		a.Date.Equal(b.Date) &&
		a.Description == b.Description &&
		a.Counterpart == b.Counterpart &&
		sameStrPtr(a.InvoiceID, b.InvoiceID) &&
		sameStrPtr(a.PaymentID, b.PaymentID) &&
		sameStrPtr(a.ContractID, b.ContractID)
}

func sameLinks(a, b []domain.DocumentLink) bool {
	if len(a) != len(b) {
		return false
	}
	_, ta := totalsByDocument(a)
	_, tb := totalsByDocument(b)
	if len(ta) != len(tb) {
		return false
	}
	for ref, amount := range ta {
		if other, ok := tb[ref]; !ok || !other.Equal(amount) {
			return false
		}
	}
	return true
}

func (s *movementService) RecordAutomatic(ctx context.Context, movement domain.Movement, userID string) (*domain.Movement, error) {
	movement.MovementID = uuid.NewString()
	movement.Origin = domain.OriginAutomatic
	if movement.Status == "" {
		movement.Status = domain.Definitive
	}
	movement.AuditFields = newAuditFields(userID, time.Now().UTC())
	links := movement.Links
	movement.Links = nil

	var created *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.create(ctx, movement, links, userID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to record automatic movement", movement.MovementID)
		return nil, err
	}
	return created, nil
}

// logFailure logs unexpected errors; domain rejections are the caller's business.
func (s *movementService) logFailure(ctx context.Context, err error, msg, id string) {
	if isDomainError(err) {
		s.LogDebug(ctx, msg, slog.String("id", id), slog.String("reason", err.Error()))
		return
	}
	s.LogError(ctx, err, msg, slog.String("id", id))
}
