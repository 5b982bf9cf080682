package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/prima_nota/internal/core/domain"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/core/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/SscSPs/prima_nota/internal/platform/config"
	"github.com/SscSPs/prima_nota/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ledgerSuite runs the real services against the in-memory store, with one
// azienda already set up.
type ledgerSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	svc       *portssvc.ServiceContainer
	aziendaID string
	userID    string
}

func (s *ledgerSuite) SetupTest() {
	repos, store := memory.NewRepositoryProvider()
	s.ctx = context.Background()
	s.store = store
	s.svc = services.NewServiceContainer(&config.Config{SyncChunkSize: 2}, repos)
	s.aziendaID = uuid.NewString()
	s.userID = uuid.NewString()
	s.Require().NoError(s.svc.Setup.EnsureDefaultSetup(s.ctx, s.aziendaID, s.userID))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func (s *ledgerSuite) equalAmount(expected string, actual decimal.Decimal, msgAndArgs ...any) {
	s.T().Helper()
	s.Truef(dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

// accountNamed returns the azienda's account with the given name.
func (s *ledgerSuite) accountNamed(name string) domain.Account {
	s.T().Helper()
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

func (s *ledgerSuite) cash() domain.Account {
	return s.accountNamed("Cassa")
}

func (s *ledgerSuite) balanceOf(accountID string) decimal.Decimal {
	s.T().Helper()
	acc, err := s.svc.Account.GetAccount(s.ctx, s.aziendaID, accountID)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *ledgerSuite) newAccount(name string, accountType domain.AccountType, opening string) domain.Account {
	s.T().Helper()
	acc, err := s.svc.Account.CreateAccount(s.ctx, s.aziendaID, dto.CreateAccountRequest{
		Name:           name,
		AccountType:    accountType,
		OpeningBalance: dec(opening),
	}, s.userID)
	s.Require().NoError(err)
	return *acc
}

func (s *ledgerSuite) categoryByCode(code string) domain.Category {
	s.T().Helper()
	categories, err := s.svc.Category.ListCategories(s.ctx, s.aziendaID, nil)
	s.Require().NoError(err)
	for _, c := range categories {
		if c.Code == code {
			return c
		}
	}
	s.FailNowf("category not found", "no category with code %q", code)
	return domain.Category{}
}

func (s *ledgerSuite) income(accountID, amount string) *domain.Movement {
	s.T().Helper()
	m, err := s.svc.Movement.CreateMovement(s.ctx, s.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: accountID,
		OperationType:   domain.Income,
		Date:            day(2024, time.March, 1),
		Description:     "incasso",
		Amount:          dec(amount),
	}, s.userID)
	s.Require().NoError(err)
	return m
}

func (s *ledgerSuite) seedInvoice(direction domain.OperationType, gross, net, vat string) domain.Invoice {
	inv := domain.Invoice{
		InvoiceID:    uuid.NewString(),
		AziendaID:    s.aziendaID,
		Number:       "FT-" + uuid.NewString()[:4],
		Direction:    direction,
		Counterpart:  "Allevamenti Rossi",
		GrossTotal:   dec(gross),
		NetAmount:    dec(net),
		VATAmount:    dec(vat),
		PaidAmount:   decimal.Zero,
		Status:       domain.StatusDue,
		IssueDate:    day(2024, time.February, 10),
		CategoryHint: "vendita animali",
	}
	s.store.PutInvoice(s.ctx, inv)
	return inv
}

func (s *ledgerSuite) invoice(id string) domain.Invoice {
	s.T().Helper()
	inv, err := s.store.FindInvoiceByID(s.ctx, id)
	s.Require().NoError(err)
	return *inv
}

// allMovements lists every live movement of the azienda.
func (s *ledgerSuite) allMovements(filter domain.MovementFilter) []domain.Movement {
	s.T().Helper()
	filter.Limit = 500
	page, err := s.svc.Movement.ListMovements(s.ctx, s.aziendaID, filter)
	s.Require().NoError(err)
	s.Require().Nil(page.NextToken)
	return page.Movements
}

// assertBalancesConsistent checks that every account balance equals its
// opening balance plus the effects of the applied movements.
func (s *ledgerSuite) assertBalancesConsistent() {
	s.T().Helper()
	expected := map[string]decimal.Decimal{}
	accounts, err := s.svc.Account.ListAccounts(s.ctx, s.aziendaID)
	s.Require().NoError(err)
	for _, a := range accounts {
		expected[a.AccountID] = a.OpeningBalance
	}
	for _, m := range s.allMovements(domain.MovementFilter{}) {
		if !m.IsApplied() {
			continue
		}
		for id, delta := range m.BalanceEffects() {
			expected[id] = expected[id].Add(delta)
		}
	}
	for _, a := range accounts {
		s.Truef(expected[a.AccountID].Equal(a.Balance), "account %q: balance %s, expected %s", a.Name, a.Balance, expected[a.AccountID])
	}
}
