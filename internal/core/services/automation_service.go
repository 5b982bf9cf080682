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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultSyncChunkSize is the number of invoices committed together by SyncAll.
const DefaultSyncChunkSize = 50

type automationService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	documentRepo   portsrepo.DocumentRepository
	accountRepo    portsrepo.AccountReader
	allocationRepo portsrepo.AllocationRepository
	accounts       portssvc.AccountBootstrapSvc
	categories     portssvc.CategorySvcFacade
	movements      portssvc.MovementUpserter
	preferences    portssvc.PreferencesSvcFacade
	distributor    portssvc.PartitaDistributorSvc
	chunkSize      int
}

// AutomationServiceDeps groups the collaborators of the automation service.
type AutomationServiceDeps struct {
	Repos       portsrepo.RepositoryProvider
	Accounts    portssvc.AccountBootstrapSvc
	Categories  portssvc.CategorySvcFacade
	Movements   portssvc.MovementUpserter
	Preferences portssvc.PreferencesSvcFacade
	Distributor portssvc.PartitaDistributorSvc
	ChunkSize   int
}

// NewAutomationService creates the service that derives ledger movements from
// invoices, payments and soccida settlements.
func NewAutomationService(deps AutomationServiceDeps) portssvc.AutomationSvcFacade {
	chunk := deps.ChunkSize
	if chunk <= 0 {
		chunk = DefaultSyncChunkSize
	}
	return &automationService{
		txManager:      deps.Repos.TxManager,
		documentRepo:   deps.Repos.DocumentRepo,
		accountRepo:    deps.Repos.AccountRepo,
		allocationRepo: deps.Repos.AllocationRepo,
		accounts:       deps.Accounts,
		categories:     deps.Categories,
		movements:      deps.Movements,
		preferences:    deps.Preferences,
		distributor:    deps.Distributor,
		chunkSize:      chunk,
	}
}

var _ portssvc.AutomationSvcFacade = (*automationService)(nil)

// invoiceLeg describes one automatic posting derived from an invoice.
type invoiceLeg struct {
	role   domain.AccountRole
	amount decimal.Decimal
}

func invoiceLegs(inv domain.Invoice) []invoiceLeg {
	if inv.Direction == domain.Income {
		return []invoiceLeg{
			{role: domain.RoleSales, amount: inv.NetAmount},
			{role: domain.RoleSalesVAT, amount: inv.VATAmount},
			{role: domain.RoleReceivables, amount: inv.GrossTotal},
		}
	}
	return []invoiceLeg{
		{role: domain.RolePurchases, amount: inv.NetAmount},
		{role: domain.RolePurchasesVAT, amount: inv.VATAmount},
		{role: domain.RolePayables, amount: inv.GrossTotal},
	}
}

func invoiceDescription(inv domain.Invoice) string {
	desc := "Fattura " + inv.Number
	if inv.Counterpart != "" {
		desc += " - " + inv.Counterpart
	}
	return desc
}

func (s *automationService) SyncForInvoice(ctx context.Context, aziendaID string, invoiceID string, userID string) ([]domain.Movement, error) {
	var legs []domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.documentRepo.FindInvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.AziendaID != aziendaID {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
		}
		legs, err = s.syncInvoice(ctx, *inv, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to sync invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.LogInfo(ctx, "Invoice synced", slog.String("invoice_id", invoiceID), slog.Int("legs", len(legs)))
	return legs, nil
}

// syncInvoice upserts every leg of inv. A leg whose amount is zero, or whose
// account cannot be resolved for an optional role, is removed.
func (s *automationService) syncInvoice(ctx context.Context, inv domain.Invoice, userID string) ([]domain.Movement, error) {
	if inv.Direction != domain.Income && inv.Direction != domain.Expense {
		return nil, apperrors.Validationf("invoice %s has unknown direction %q", inv.InvoiceID, inv.Direction)
	}
	if _, err := s.accounts.EnsureBootstrap(ctx, inv.AziendaID, userID); err != nil {
		return nil, err
	}
	bindings, err := s.preferences.Resolve(ctx, inv.AziendaID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.ResolveCategory(ctx, inv.AziendaID, inv.Direction, inv.CategoryHint, nil)
	if err != nil {
		return nil, err
	}

	var out []domain.Movement
	for i, leg := range invoiceLegs(inv) {
		accountID := bindings.ForRole(leg.role)
		amount := leg.amount.Round(2)
		isVAT := leg.role == domain.RoleSalesVAT || leg.role == domain.RolePurchasesVAT
		if accountID == "" {
			if !isVAT {
				return nil, apperrors.Validationf("no account bound to %s", leg.role)
			}
			amount = decimal.Zero
		}

		payload := domain.Movement{
			SourceAccountID: accountID,
			Status:          domain.Definitive,
			Date:            inv.IssueDate,
			Description:     invoiceDescription(inv),
			Amount:          amount,
			Counterpart:     inv.Counterpart,
			InvoiceID:       strPtr(inv.InvoiceID),
			ContractID:      inv.ContractID,
		}
		if i == 0 && category != nil {
			payload.CategoryID = strPtr(category.CategoryID)
		}
		key := domain.NaturalKey{
			AziendaID:     inv.AziendaID,
			Source:        domain.SourceInvoice,
			DocumentID:    inv.InvoiceID,
			OperationType: inv.Direction,
			AccountRole:   leg.role,
		}
		m, err := s.movements.Upsert(ctx, key, payload, userID)
		if err != nil {
			return nil, fmt.Errorf("%s leg: %w", leg.role, err)
		}
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *automationService) SyncForPayment(ctx context.Context, aziendaID string, paymentID string, userID string) (*domain.Movement, error) {
	var result *domain.Movement
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.documentRepo.FindPaymentByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.AziendaID != aziendaID {
			return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		result, err = s.syncPayment(ctx, *p, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to sync payment", slog.String("payment_id", paymentID))
		return nil, err
	}
	s.LogInfo(ctx, "Payment synced", slog.String("payment_id", paymentID))
	return result, nil
}

func (s *automationService) syncPayment(ctx context.Context, p domain.Payment, userID string) (*domain.Movement, error) {
	if p.Direction != domain.Income && p.Direction != domain.Expense {
		return nil, apperrors.Validationf("payment %s has unknown direction %q", p.PaymentID, p.Direction)
	}
	if _, err := s.accounts.EnsureBootstrap(ctx, p.AziendaID, userID); err != nil {
		return nil, err
	}
	bindings, err := s.preferences.Resolve(ctx, p.AziendaID)
	if err != nil {
		return nil, err
	}

	liquidityID := bindings.Collection
	if p.Direction == domain.Expense {
		liquidityID = bindings.Payment
	}
	if p.AccountID != nil && *p.AccountID != "" {
		liquidityID = *p.AccountID
	}
	if liquidityID == "" {
		return nil, apperrors.Validationf("no cash or bank account available for payment %s", p.PaymentID)
	}
	liquidity, err := s.accountRepo.FindAccountByID(ctx, liquidityID)
	if err != nil {
		return nil, err
	}
	if liquidity.AziendaID != p.AziendaID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, liquidityID)
	}
	if !liquidity.AccountType.IsLiquidity() {
		return nil, apperrors.Validationf("payments must use a cash or bank account, %q is %s", liquidity.Name, liquidity.AccountType)
	}

	transferKey := domain.NaturalKey{AziendaID: p.AziendaID, Source: domain.SourcePayment, DocumentID: p.PaymentID, OperationType: domain.Transfer, AccountRole: domain.RoleSettlement}
	plainKey := domain.NaturalKey{AziendaID: p.AziendaID, Source: domain.SourcePayment, DocumentID: p.PaymentID, OperationType: p.Direction, AccountRole: domain.RoleCash}

	payload := domain.Movement{
		Status:      domain.Definitive,
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount.Round(2),
		PaymentID:   strPtr(p.PaymentID),
	}

	if p.InvoiceID == nil || *p.InvoiceID == "" {
		if _, err := s.movements.Upsert(ctx, transferKey, domain.Movement{Amount: decimal.Zero}, userID); err != nil {
			return nil, err
		}
		category, err := s.categories.ResolveCategory(ctx, p.AziendaID, p.Direction, p.Description, nil)
		if err != nil {
			return nil, err
		}
		if category != nil {
			payload.CategoryID = strPtr(category.CategoryID)
		}
		payload.SourceAccountID = liquidity.AccountID
		return s.movements.Upsert(ctx, plainKey, payload, userID)
	}

	inv, err := s.documentRepo.FindInvoiceByID(ctx, *p.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.AziendaID != p.AziendaID {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, *p.InvoiceID)
	}
	if inv.Direction != p.Direction {
		return nil, apperrors.Validationf("payment %s is %s but invoice %s is %s", p.PaymentID, p.Direction, inv.InvoiceID, inv.Direction)
	}
	if _, err := s.movements.Upsert(ctx, plainKey, domain.Movement{Amount: decimal.Zero}, userID); err != nil {
		return nil, err
	}

	if p.Direction == domain.Income {
		if bindings.Receivables == "" {
			return nil, apperrors.Validationf("no account bound to %s", domain.RoleReceivables)
		}
		payload.SourceAccountID = bindings.Receivables
		payload.DestinationAccountID = strPtr(liquidity.AccountID)
	} else {
		if bindings.Payables == "" {
			return nil, apperrors.Validationf("no account bound to %s", domain.RolePayables)
		}
		payload.SourceAccountID = liquidity.AccountID
		payload.DestinationAccountID = strPtr(bindings.Payables)
	}
	if liquidity.TransferStrategy == domain.TransferManual {
		payload.Status = domain.Provisional
	}
	if payload.Description == "" {
		payload.Description = "Giroconto " + invoiceDescription(*inv)
	}
	payload.Counterpart = inv.Counterpart
	payload.InvoiceID = strPtr(inv.InvoiceID)
	payload.ContractID = inv.ContractID
	payload.Links = []domain.DocumentLink{{
		DocumentType: domain.DocumentInvoice,
		DocumentID:   inv.InvoiceID,
		Amount:       payload.Amount,
	}}
	return s.movements.Upsert(ctx, transferKey, payload, userID)
}

func (s *automationService) SyncForContractSettlement(ctx context.Context, aziendaID string, contractID string, amount decimal.Decimal, date time.Time, batchIDs []string, final bool, userID string) (*portssvc.SettlementResult, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.Validationf("settlement amount must be > 0")
	}

	var result *portssvc.SettlementResult
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		contract, err := s.documentRepo.FindContractByID(ctx, contractID)
		if err != nil {
			return err
		}
		if contract.AziendaID != aziendaID {
			return fmt.Errorf("%w: contract %s", apperrors.ErrNotFound, contractID)
		}
		if !contract.Monetized {
			return apperrors.Validationf("contract %s is not monetized", contractID)
		}

		batches, err := s.contractBatches(ctx, aziendaID, contractID, batchIDs)
		if err != nil {
			return err
		}

		advances, err := s.accounts.EnsureContractAdvancesAccount(ctx, aziendaID, userID)
		if err != nil {
			return err
		}
		category, err := s.categories.ResolveCategory(ctx, aziendaID, domain.Income, "soccida", nil)
		if err != nil {
			return err
		}

		movement := domain.Movement{
			AziendaID:       aziendaID,
			SourceAccountID: advances.AccountID,
			OperationType:   domain.Income,
			Status:          domain.Definitive,
			Date:            date,
			Description:     "Liquidazione soccida " + contract.CounterpartyName,
			Amount:          amount,
			Counterpart:     contract.CounterpartyName,
			ContractID:      strPtr(contract.ContractID),
			AccountRole:     domain.RoleContractAdvances,
		}
		if category != nil {
			movement.CategoryID = strPtr(category.CategoryID)
		}
		created, err := s.movements.RecordAutomatic(ctx, movement, userID)
		if err != nil {
			return err
		}
		result = &portssvc.SettlementResult{Movement: *created}

		if len(batches) == 0 {
			return nil
		}
		targets := make([]domain.DistributionTarget, len(batches))
		for i, b := range batches {
			targets[i] = domain.DistributionTarget{BatchID: b.BatchID, Weight: decimal.NewFromInt(int64(b.HeadCount))}
		}
		shares, err := s.distributor.Distribute(amount, targets)
		if err != nil {
			return err
		}
		allocations := make([]domain.BatchAllocation, len(shares))
		for i, sh := range shares {
			allocations[i] = domain.BatchAllocation{
				AllocationID: uuid.NewString(),
				MovementID:   strPtr(created.MovementID),
				BatchID:      sh.BatchID,
				Amount:       sh.Amount,
				Weight:       sh.Weight,
				Lifecycle:    domain.Lifecycle{State: domain.StateActive},
			}
		}
		if err := s.allocationRepo.SaveAllocations(ctx, allocations); err != nil {
			return fmt.Errorf("failed to save batch allocations: %w", err)
		}
		result.Allocations = allocations

		if final {
			ids := make([]string, len(batches))
			for i, b := range batches {
				ids[i] = b.BatchID
			}
			if err := s.documentRepo.CloseBatches(ctx, ids); err != nil {
				return fmt.Errorf("failed to close batches: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to settle contract", slog.String("contract_id", contractID))
		return nil, err
	}
	s.LogInfo(ctx, "Contract settled",
		slog.String("contract_id", contractID),
		slog.String("amount", amount.StringFixed(2)),
		slog.Int("allocations", len(result.Allocations)),
		slog.Bool("final", final))
	return result, nil
}

// contractBatches loads the requested batches, all of which must belong to the contract.
func (s *automationService) contractBatches(ctx context.Context, aziendaID, contractID string, batchIDs []string) ([]domain.Batch, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	batches, err := s.documentRepo.FindBatchesByIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]domain.Batch, len(batches))
	for _, b := range batches {
		found[b.BatchID] = b
	}
	out := make([]domain.Batch, 0, len(batchIDs))
	for _, id := range batchIDs {
		b, ok := found[id]
		if !ok || b.AziendaID != aziendaID {
			return nil, fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, id)
		}
		if b.ContractID == nil || *b.ContractID != contractID {
			return nil, apperrors.Validationf("batch %s does not belong to contract %s", id, contractID)
		}
		if b.Closed {
			return nil, apperrors.Validationf("batch %s is already closed", id)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *automationService) SyncAll(ctx context.Context, aziendaID *string, userID string) (*domain.SyncReport, error) {
	report := &domain.SyncReport{Errors: []domain.SyncError{}}
	afterID := ""
	for {
		var chunk []domain.Invoice
		err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			chunk, err = s.documentRepo.ListInvoices(ctx, aziendaID, afterID, s.chunkSize)
			if err != nil {
				return err
			}
			for _, inv := range chunk {
				report.Record(s.syncOne(ctx, inv, userID))
			}
			return nil
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to sync invoice chunk", slog.String("after_id", afterID))
			return nil, err
		}
		report.Total += len(chunk)
		if len(chunk) < s.chunkSize {
			break
		}
		afterID = chunk[len(chunk)-1].InvoiceID
	}

	s.LogInfo(ctx, "Invoice sync finished",
		slog.Int("total", report.Total),
		slog.Int("processed", report.Processed),
		slog.Int("failed", len(report.Errors)))
	return report, nil
}

// syncOne syncs a single invoice in its own savepoint, so a failure only rolls
// back that invoice.
func (s *automationService) syncOne(ctx context.Context, inv domain.Invoice, userID string) domain.SyncOutcome {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.syncInvoice(ctx, inv, userID)
		return err
	})
	if err != nil {
		level := slog.LevelWarn
		if !isDomainError(err) {
			level = slog.LevelError
		}
		s.GetLogger(ctx).Log(ctx, level, "Invoice skipped during sync",
			slog.String("invoice_id", inv.InvoiceID),
			slog.String("error", err.Error()))
	}
	return domain.SyncOutcome{DocumentID: inv.InvoiceID, Err: err}
}

func isDomainError(err error) bool {
	for _, known := range []error{apperrors.ErrValidation, apperrors.ErrPermission, apperrors.ErrNotFound, apperrors.ErrConflict} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
