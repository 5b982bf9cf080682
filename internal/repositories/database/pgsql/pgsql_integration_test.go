//go:build integration

package pgsql_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/core/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/SscSPs/prima_nota/internal/platform/config"
	"github.com/SscSPs/prima_nota/internal/repositories/database/pgsql"
	"github.com/SscSPs/prima_nota/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PgsqlIntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repos     portsrepo.RepositoryProvider
	svc       *portssvc.ServiceContainer
	aziendaID string
	userID    string
}

func TestPgsqlIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PgsqlIntegrationTestSuite))
}

func (s *PgsqlIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("primanota"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	migrations, err := filepath.Abs("../../../../migrations")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(dsn, "file://"+migrations, slog.Default()))

	s.pool, err = database.NewPgxPool(s.ctx, dsn, true)
	s.Require().NoError(err)
	s.repos = pgsql.NewRepositoryProvider(s.pool)
	s.svc = services.NewServiceContainer(&config.Config{SyncChunkSize: 10}, s.repos)
}

func (s *PgsqlIntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *PgsqlIntegrationTestSuite) SetupTest() {
	s.aziendaID = uuid.NewString()
	s.userID = uuid.NewString()
	s.Require().NoError(s.svc.Setup.EnsureDefaultSetup(s.ctx, s.aziendaID, s.userID))
}

func (s *PgsqlIntegrationTestSuite) account(name string) domain.Account {
	accounts, err := s.svc.Account.ListAccounts(s.ctx, s.aziendaID)
	s.Require().NoError(err)
	for _, a := range accounts {
		if a.Name == name {
			return a
		}
	}
	s.FailNowf("account not found", "no account named %q", name)
	return domain.Account{}
}

func (s *PgsqlIntegrationTestSuite) seedInvoice(gross, net, vat string) string {
	id := uuid.NewString()
	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO invoices (invoice_id, azienda_id, number, direction, counterpart, gross_total, net_amount, vat_amount, issue_date, category_hint)
		VALUES ($1, $2, 'FT-1', 'income', 'Rossi', $3, $4, $5, '2024-02-10', 'vendita animali');`,
		id, s.aziendaID, gross, net, vat)
	s.Require().NoError(err)
	return id
}

// --- Test Cases ---

func (s *PgsqlIntegrationTestSuite) TestSetupIsIdempotent() {
	before, err := s.svc.Account.ListAccounts(s.ctx, s.aziendaID)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Setup.EnsureDefaultSetup(s.ctx, s.aziendaID, s.userID))
	after, err := s.svc.Account.ListAccounts(s.ctx, s.aziendaID)
	s.Require().NoError(err)
	s.Len(after, len(before))

	prefs, err := s.svc.Preferences.GetPreferences(s.ctx, s.aziendaID)
	s.Require().NoError(err)
	s.Require().NotNil(prefs.DefaultCollectionAccountID)
	s.Equal(s.account("Cassa").AccountID, *prefs.DefaultCollectionAccountID)
}

func (s *PgsqlIntegrationTestSuite) TestMovementLifecycle() {
	cash := s.account("Cassa")
	m, err := s.svc.Movement.CreateMovement(s.ctx, s.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Income,
		Date:            time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description:     "incasso",
		Amount:          decimal.RequireFromString("100.005"),
	}, s.userID)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("100.01").Equal(m.Amount))
	s.True(decimal.RequireFromString("100.01").Equal(s.account("Cassa").Balance))

	_, err = s.svc.Movement.UpdateMovement(s.ctx, s.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		Amount: ptr(decimal.RequireFromString("40")),
	}, s.userID)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("40").Equal(s.account("Cassa").Balance))

	s.Require().NoError(s.svc.Movement.DeleteMovement(s.ctx, s.aziendaID, m.MovementID, s.userID))
	s.Require().NoError(s.svc.Movement.DeleteMovement(s.ctx, s.aziendaID, m.MovementID, s.userID))
	s.True(s.account("Cassa").Balance.IsZero())
}

func (s *PgsqlIntegrationTestSuite) TestPaginationIsStable() {
	cash := s.account("Cassa")
	for i := 0; i < 5; i++ {
		_, err := s.svc.Movement.CreateMovement(s.ctx, s.aziendaID, dto.CreateMovementRequest{
			SourceAccountID: cash.AccountID,
			OperationType:   domain.Expense,
			Date:            time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Description:     "spesa",
			Amount:          decimal.NewFromInt(int64(i + 1)),
		}, s.userID)
		s.Require().NoError(err)
	}

	seen := map[string]bool{}
	var token *string
	for pages := 0; pages < 5; pages++ {
		page, err := s.svc.Movement.ListMovements(s.ctx, s.aziendaID, domain.MovementFilter{Limit: 2, NextToken: token})
		s.Require().NoError(err)
		for _, m := range page.Movements {
			s.False(seen[m.MovementID], "movement %s listed twice", m.MovementID)
			seen[m.MovementID] = true
		}
		s.True(decimal.RequireFromString("15").Equal(page.Summary.Expense))
		if page.NextToken == nil {
			break
		}
		token = page.NextToken
	}
	s.Len(seen, 5)
}

func (s *PgsqlIntegrationTestSuite) TestInvoiceSyncIsIdempotent() {
	invoiceID := s.seedInvoice("122.00", "100.00", "22.00")

	first, err := s.svc.Automation.SyncForInvoice(s.ctx, s.aziendaID, invoiceID, s.userID)
	s.Require().NoError(err)
	s.Len(first, 3)
	second, err := s.svc.Automation.SyncForInvoice(s.ctx, s.aziendaID, invoiceID, s.userID)
	s.Require().NoError(err)
	s.Len(second, 3)

	page, err := s.svc.Movement.ListMovements(s.ctx, s.aziendaID, domain.MovementFilter{InvoiceID: &invoiceID})
	s.Require().NoError(err)
	s.Len(page.Movements, 3)
	s.True(decimal.RequireFromString("122").Equal(s.account("Crediti verso clienti").Balance))
}

func (s *PgsqlIntegrationTestSuite) TestNestedTransactionRollsBackToSavepoint() {
	cash := s.account("Cassa")
	errBoom := errors.New("boom")

	err := s.repos.TxManager.WithinTx(s.ctx, func(ctx context.Context) error {
		if _, err := s.svc.Movement.CreateMovement(ctx, s.aziendaID, dto.CreateMovementRequest{
			SourceAccountID: cash.AccountID,
			OperationType:   domain.Income,
			Date:            time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Description:     "kept",
			Amount:          decimal.NewFromInt(10),
		}, s.userID); err != nil {
			return err
		}
		inner := s.repos.TxManager.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := s.svc.Movement.CreateMovement(ctx, s.aziendaID, dto.CreateMovementRequest{
				SourceAccountID: cash.AccountID,
				OperationType:   domain.Income,
				Date:            time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
				Description:     "discarded",
				Amount:          decimal.NewFromInt(5),
			}, s.userID); err != nil {
				return err
			}
			return errBoom
		})
		s.ErrorIs(inner, errBoom)
		return nil
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(10).Equal(s.account("Cassa").Balance))
}

func (s *PgsqlIntegrationTestSuite) TestAccountInUseCannotBeDeleted() {
	bank, err := s.svc.Account.CreateAccount(s.ctx, s.aziendaID, dto.CreateAccountRequest{
		Name:        "Banca",
		AccountType: domain.Bank,
	}, s.userID)
	s.Require().NoError(err)
	_, err = s.svc.Movement.CreateMovement(s.ctx, s.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: bank.AccountID,
		OperationType:   domain.Income,
		Date:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.NewFromInt(1),
	}, s.userID)
	s.Require().NoError(err)

	err = s.svc.Account.DeleteAccount(s.ctx, s.aziendaID, bank.AccountID)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func ptr[T any](v T) *T {
	return &v
}
