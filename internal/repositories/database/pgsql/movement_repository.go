package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	"github.com/SscSPs/prima_nota/internal/models"
	"github.com/SscSPs/prima_nota/internal/utils/mapping"
	"github.com/SscSPs/prima_nota/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 50

const movementColumns = `movement_id, azienda_id, source_account_id, destination_account_id, category_id,
	operation_type, status, origin, date, description, amount, counterpart, note,
	invoice_id, payment_id, batch_id, equipment_id, contract_id, account_role,
	state, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxMovementRepository struct {
	BaseRepository
}

func newPgxMovementRepository(pool *pgxpool.Pool) *PgxMovementRepository {
	return &PgxMovementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)
	_ portsrepo.DocumentLinkRepository   = (*PgxMovementRepository)(nil)
	_ portsrepo.AllocationRepository     = (*PgxMovementRepository)(nil)
)

func (r *PgxMovementRepository) SaveMovement(ctx context.Context, movement domain.Movement) error {
	m := mapping.ToModelMovement(movement)
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);`,
		m.MovementID, m.AziendaID, m.SourceAccountID, m.DestinationAccountID, m.CategoryID,
		m.OperationType, m.Status, m.Origin, m.Date, m.Description, m.Amount, m.Counterpart, m.Note,
		m.InvoiceID, m.PaymentID, m.BatchID, m.EquipmentID, m.ContractID, m.AccountRole,
		m.State, m.DeletedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "movement "+m.MovementID)
	}
	return nil
}

func (r *PgxMovementRepository) UpdateMovement(ctx context.Context, movement domain.Movement) error {
	m := mapping.ToModelMovement(movement)
	tag, err := r.DB(ctx).Exec(ctx, `
		UPDATE movements
		SET source_account_id = $2, destination_account_id = $3, category_id = $4, operation_type = $5,
		    status = $6, origin = $7, date = $8, description = $9, amount = $10, counterpart = $11, note = $12,
		    invoice_id = $13, payment_id = $14, batch_id = $15, equipment_id = $16, contract_id = $17,
		    account_role = $18, state = $19, deleted_at = $20, last_updated_at = $21, last_updated_by = $22
		WHERE movement_id = $1;`,
		m.MovementID, m.SourceAccountID, m.DestinationAccountID, m.CategoryID, m.OperationType,
		m.Status, m.Origin, m.Date, m.Description, m.Amount, m.Counterpart, m.Note,
		m.InvoiceID, m.PaymentID, m.BatchID, m.EquipmentID, m.ContractID,
		m.AccountRole, m.State, m.DeletedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "movement "+m.MovementID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, m.MovementID)
	}
	return nil
}

func (r *PgxMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	return r.findOne(ctx, `SELECT `+movementColumns+` FROM movements WHERE movement_id = $1;`, movementID)
}

func (r *PgxMovementRepository) FindMovementForUpdate(ctx context.Context, movementID string) (*domain.Movement, error) {
	return r.findOne(ctx, `SELECT `+movementColumns+` FROM movements WHERE movement_id = $1 FOR UPDATE;`, movementID)
}

func (r *PgxMovementRepository) findOne(ctx context.Context, query string, movementID string) (*domain.Movement, error) {
	m, err := collectOne[models.Movement](r.DB(ctx).Query(ctx, query, movementID))
	if err != nil {
		return nil, notFound(err, "movement "+movementID)
	}
	mov := mapping.ToDomainMovement(m)
	return &mov, nil
}

// FindActiveMovementByKey returns the oldest active leg for the key. Invoice legs
// never carry a payment reference.
func (r *PgxMovementRepository) FindActiveMovementByKey(ctx context.Context, key domain.NaturalKey) (*domain.Movement, error) {
	docClause := `invoice_id = $2 AND payment_id IS NULL`
	if key.Source == domain.SourcePayment {
		docClause = `payment_id = $2`
	}
	m, err := collectOne[models.Movement](r.DB(ctx).Query(ctx, `
		SELECT `+movementColumns+`
		FROM movements
		WHERE azienda_id = $1 AND `+docClause+` AND operation_type = $3 AND account_role = $4 AND state = 'active'
		ORDER BY created_at
		LIMIT 1;`,
		key.AziendaID, key.DocumentID, string(key.OperationType), string(key.AccountRole),
	))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("movement for %s %s", key.Source, key.DocumentID))
	}
	mov := mapping.ToDomainMovement(m)
	return &mov, nil
}

// filterClause renders the WHERE conditions shared by listing and summary.
// Column names are qualified with alias.
func filterClause(alias string, aziendaID string, f domain.MovementFilter) (string, []any) {
	col := func(name string) string { return alias + "." + name }
	args := []any{aziendaID}
	conds := []string{col("azienda_id") + " = $1", col("state") + " = 'active'"}
	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, "$"+strconv.Itoa(len(args))))
	}

	if f.DateFrom != nil {
		add(col("date")+" >= %s::date", *f.DateFrom)
	}
	if f.DateTo != nil {
		add(col("date")+" <= %s::date", *f.DateTo)
	}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, "("+col("source_account_id")+" = "+p+" OR "+col("destination_account_id")+" = "+p+")")
	}
	if f.CategoryID != nil {
		add(col("category_id")+" = %s", *f.CategoryID)
	}
	if f.OperationType != nil {
		add(col("operation_type")+" = %s", string(*f.OperationType))
	}
	if f.Status != nil {
		add(col("status")+" = %s", string(*f.Status))
	}
	if f.Origin != nil {
		add(col("origin")+" = %s", string(*f.Origin))
	}
	if f.InvoiceID != nil {
		add(col("invoice_id")+" = %s", *f.InvoiceID)
	}
	return strings.Join(conds, " AND "), args
}

// ListMovements pages with a keyset cursor over (date, created_at, movement_id), all descending.
func (r *PgxMovementRepository) ListMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) ([]domain.Movement, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	where, args := filterClause("m", aziendaID, filter)
	if filter.NextToken != nil && *filter.NextToken != "" {
		curDate, curCreated, curID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("invalid nextToken: %v", err)
		}
		n := len(args)
		where += fmt.Sprintf(" AND (m.date, m.created_at, m.movement_id) < ($%d::date, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, curDate, curCreated, curID)
	}
	args = append(args, fetchLimit)

	query := `SELECT ` + prefixed("m", movementColumns) + `
		FROM movements m
		WHERE ` + where + `
		ORDER BY m.date DESC, m.created_at DESC, m.movement_id DESC
		LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := collect[models.Movement](r.DB(ctx).Query(ctx, query, args...))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list movements for azienda %s: %w", aziendaID, err)
	}

	var next *string
	if len(rows) > limit {
		last := rows[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt, last.MovementID)
		next = &token
		rows = rows[:limit]
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainMovement), next, nil
}

// prefixed qualifies every column of a column list with alias.
func prefixed(alias string, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func (r *PgxMovementRepository) SummarizeMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) (domain.MovementSummary, error) {
	where, args := filterClause("m", aziendaID, filter)
	query := `
		SELECT COALESCE(SUM(m.amount) FILTER (WHERE m.operation_type = 'income'), 0),
		       COALESCE(SUM(m.amount) FILTER (WHERE m.operation_type = 'expense'), 0)
		FROM movements m
		JOIN accounts a ON a.account_id = m.source_account_id
		WHERE ` + where + ` AND m.status = 'definitive' AND a.account_type IN ('cash', 'bank');`

	var summary domain.MovementSummary
	if err := r.DB(ctx).QueryRow(ctx, query, args...).Scan(&summary.Income, &summary.Expense); err != nil {
		return domain.MovementSummary{}, fmt.Errorf("failed to summarize movements for azienda %s: %w", aziendaID, err)
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, nil
}

func (r *PgxMovementRepository) CountMovementsByAccount(ctx context.Context, accountID string, includeDeleted bool) (int, error) {
	var n int
	err := r.DB(ctx).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM movements
		WHERE (source_account_id = $1 OR destination_account_id = $1) AND ($2 OR state = 'active');`,
		accountID, includeDeleted,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count movements of account %s: %w", accountID, err)
	}
	return n, nil
}

func (r *PgxMovementRepository) CountMovementsByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	if err := r.DB(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE category_id = $1;`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movements of category %s: %w", categoryID, err)
	}
	return n, nil
}

func (r *PgxMovementRepository) ListLinksByMovement(ctx context.Context, movementID string) ([]domain.DocumentLink, error) {
	rows, err := collect[models.DocumentLink](r.DB(ctx).Query(ctx, `
		SELECT movement_id, document_type, document_id, amount
		FROM document_links
		WHERE movement_id = $1
		ORDER BY document_type, document_id;`, movementID))
	if err != nil {
		return nil, fmt.Errorf("failed to list links of movement %s: %w", movementID, err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainDocumentLink), nil
}

func (r *PgxMovementRepository) ReplaceLinks(ctx context.Context, movementID string, links []domain.DocumentLink) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM document_links WHERE movement_id = $1;`, movementID)
	for _, l := range links {
		batch.Queue(`
			INSERT INTO document_links (movement_id, document_type, document_id, amount)
			VALUES ($1, $2, $3, $4);`,
			movementID, string(l.DocumentType), l.DocumentID, l.Amount,
		)
	}
	if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "links of movement "+movementID)
	}
	return nil
}

func (r *PgxMovementRepository) SumLinkedAmount(ctx context.Context, docType domain.DocumentType, documentID string, excludeMovementID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.DB(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(l.amount), 0)
		FROM document_links l
		JOIN movements m ON m.movement_id = l.movement_id
		WHERE l.document_type = $1 AND l.document_id = $2 AND l.movement_id <> $3 AND m.state = 'active';`,
		string(docType), documentID, excludeMovementID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum links to %s %s: %w", docType, documentID, err)
	}
	return sum, nil
}

func (r *PgxMovementRepository) SaveAllocations(ctx context.Context, allocations []domain.BatchAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range allocations {
		m := mapping.ToModelBatchAllocation(a)
		batch.Queue(`
			INSERT INTO batch_allocations (allocation_id, movement_id, batch_id, amount, weight, state, deleted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			m.AllocationID, m.MovementID, m.BatchID, m.Amount, m.Weight, m.State, m.DeletedAt,
		)
	}
	if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "batch allocations")
	}
	return nil
}

func (r *PgxMovementRepository) ListAllocationsByMovement(ctx context.Context, movementID string) ([]domain.BatchAllocation, error) {
	rows, err := collect[models.BatchAllocation](r.DB(ctx).Query(ctx, `
		SELECT allocation_id, movement_id, batch_id, amount, weight, state, deleted_at
		FROM batch_allocations
		WHERE movement_id = $1
		ORDER BY batch_id;`, movementID))
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations of movement %s: %w", movementID, err)
	}
	return mapping.ToDomainSlice(rows, mapping.ToDomainBatchAllocation), nil
}

func (r *PgxMovementRepository) SoftDeleteAllocationsByMovement(ctx context.Context, movementID string, now time.Time) error {
	_, err := r.DB(ctx).Exec(ctx, `
		UPDATE batch_allocations
		SET state = 'deleted', deleted_at = $2
		WHERE movement_id = $1 AND state = 'active';`, movementID, now)
	if err != nil {
		return mapWriteError(err, "allocations of movement "+movementID)
	}
	return nil
}
