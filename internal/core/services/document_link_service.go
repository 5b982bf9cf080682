package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type documentLinkService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	movementRepo portsrepo.MovementReader
	linkRepo     portsrepo.DocumentLinkRepository
	documentRepo portsrepo.DocumentRepository
}

// NewDocumentLinkService creates the service that keeps invoice paid amounts in
// step with the movements linked to them.
func NewDocumentLinkService(txManager portsrepo.TransactionManager, movementRepo portsrepo.MovementReader, linkRepo portsrepo.DocumentLinkRepository, documentRepo portsrepo.DocumentRepository) portssvc.DocumentLinkSvcFacade {
	return &documentLinkService{
		txManager:    txManager,
		movementRepo: movementRepo,
		linkRepo:     linkRepo,
		documentRepo: documentRepo,
	}
}

var _ portssvc.DocumentLinkSvcFacade = (*documentLinkService)(nil)

type docRef struct {
	docType domain.DocumentType
	id      string
}

// totalsByDocument sums link amounts per document, in a stable order so row
// locks are always taken in the same sequence.
func totalsByDocument(links []domain.DocumentLink) ([]docRef, map[docRef]decimal.Decimal) {
	totals := make(map[docRef]decimal.Decimal, len(links))
	var refs []docRef
	for _, l := range links {
		ref := docRef{docType: l.DocumentType, id: l.DocumentID}
		if _, seen := totals[ref]; !seen {
			refs = append(refs, ref)
		}
		totals[ref] = totals[ref].Add(l.Amount)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].docType != refs[j].docType {
			return refs[i].docType < refs[j].docType
		}
		return refs[i].id < refs[j].id
	})
	return refs, totals
}

func (s *documentLinkService) ValidateLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink) error {
	for _, l := range links {
		if !l.DocumentType.IsValid() {
			return apperrors.Validationf("unknown document type %q", l.DocumentType)
		}
		if l.DocumentID == "" {
			return apperrors.Validationf("document id is required")
		}
		if l.Amount.IsNegative() {
			return apperrors.Validationf("linked amount must be >= 0 for document %s", l.DocumentID)
		}
	}

	refs, totals := totalsByDocument(links)
	for _, ref := range refs {
		inv, err := s.documentRepo.FindInvoiceByID(ctx, ref.id)
		if err != nil {
			return err
		}
		if inv.AziendaID != aziendaID {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, ref.id)
		}
		others, err := s.linkRepo.SumLinkedAmount(ctx, ref.docType, ref.id, movementID)
		if err != nil {
			return fmt.Errorf("failed to sum links of invoice %s: %w", ref.id, err)
		}
		if others.Add(totals[ref]).GreaterThan(inv.GrossTotal) {
			return apperrors.Validationf("links to invoice %s total %s, above its gross total %s",
				inv.Number, others.Add(totals[ref]).StringFixed(2), inv.GrossTotal.StringFixed(2))
		}
	}
	return nil
}

func (s *documentLinkService) ApplyLinks(ctx context.Context, links []domain.DocumentLink, direction portssvc.LinkDirection) error {
	refs, totals := totalsByDocument(links)
	sign := decimal.NewFromInt(int64(direction))
	for _, ref := range refs {
		inv, err := s.documentRepo.FindInvoiceForUpdate(ctx, ref.id)
		if err != nil {
			return err
		}
		next := inv.WithPaid(totals[ref].Mul(sign))
		if err := s.documentRepo.UpdateInvoicePayment(ctx, inv.InvoiceID, next.PaidAmount, next.Status); err != nil {
			return fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceID, err)
		}
		s.LogDebug(ctx, "Invoice paid amount updated",
			slog.String("invoice_id", inv.InvoiceID),
			slog.String("paid", next.PaidAmount.StringFixed(2)),
			slog.String("status", string(next.Status)))
	}
	return nil
}

func (s *documentLinkService) SetLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink) ([]domain.DocumentLink, error) {
	replacement := make([]domain.DocumentLink, len(links))
	for i, l := range links {
		l.MovementID = movementID
		replacement[i] = l
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.movementRepo.FindMovementForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m.AziendaID != aziendaID || m.IsDeleted() {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		if err := s.ValidateLinks(ctx, aziendaID, movementID, replacement); err != nil {
			return err
		}
		current, err := s.linkRepo.ListLinksByMovement(ctx, movementID)
		if err != nil {
			return err
		}
		if m.IsApplied() {
			if err := s.ApplyLinks(ctx, current, portssvc.LinkReverse); err != nil {
				return err
			}
		}
		if err := s.linkRepo.ReplaceLinks(ctx, movementID, replacement); err != nil {
			return err
		}
		if m.IsApplied() {
			return s.ApplyLinks(ctx, replacement, portssvc.LinkApply)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to set movement links", slog.String("movement_id", movementID))
		}
		return nil, err
	}
	return replacement, nil
}

func (s *documentLinkService) GetOpenDocuments(ctx context.Context, aziendaID string) ([]domain.OpenDocument, error) {
	invoices, err := s.documentRepo.ListOpenInvoices(ctx, aziendaID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list open invoices", slog.String("azienda_id", aziendaID))
		return nil, err
	}
	docs := make([]domain.OpenDocument, 0, len(invoices))
	for _, inv := range invoices {
		docs = append(docs, domain.OpenDocument{
			DocumentID:     inv.InvoiceID,
			Kind:           inv.Direction,
			Number:         inv.Number,
			Counterpart:    inv.Counterpart,
			ResidualAmount: inv.Residual(),
			DueDate:        inv.DueDate,
		})
	}
	return docs, nil
}
