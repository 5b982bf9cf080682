package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MovementServiceTestSuite struct {
	ledgerSuite
}

func TestMovementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MovementServiceTestSuite))
}

// --- Test Cases ---

func (suite *MovementServiceTestSuite) TestIncomeLifecycle_UpdatesBalance() {
	bank := suite.newAccount("Banca", domain.Bank, "500.00")

	m := suite.income(bank.AccountID, "1000.00")
	suite.Equal(domain.Definitive, m.Status)
	suite.Equal(domain.OriginManual, m.Origin)
	suite.equalAmount("1500.00", suite.balanceOf(bank.AccountID))

	_, err := suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		Amount: ptr(dec("700.00")),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.equalAmount("1200.00", suite.balanceOf(bank.AccountID))

	suite.Require().NoError(suite.svc.Movement.DeleteMovement(suite.ctx, suite.aziendaID, m.MovementID, suite.userID))
	suite.equalAmount("500.00", suite.balanceOf(bank.AccountID))
	suite.assertBalancesConsistent()
}

func (suite *MovementServiceTestSuite) TestCreateDeleteCreate_MatchesSingleCreate() {
	cash := suite.cash()
	bank := suite.newAccount("Banca", domain.Bank, "200.00")

	requests := []dto.CreateMovementRequest{
		{
			SourceAccountID: bank.AccountID,
			OperationType:   domain.Income,
			Status:          domain.Definitive,
			Date:            day(2024, time.May, 2),
			Amount:          dec("120.00"),
		},
		{
			SourceAccountID:      bank.AccountID,
			DestinationAccountID: ptr(cash.AccountID),
			OperationType:        domain.Transfer,
			Status:               domain.Definitive,
			Date:                 day(2024, time.May, 3),
			Amount:               dec("75.50"),
		},
	}

	for _, req := range requests {
		first, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, req, suite.userID)
		suite.Require().NoError(err)
		cashOnce, bankOnce := suite.balanceOf(cash.AccountID), suite.balanceOf(bank.AccountID)

		suite.Require().NoError(suite.svc.Movement.DeleteMovement(suite.ctx, suite.aziendaID, first.MovementID, suite.userID))
		_, err = suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, req, suite.userID)
		suite.Require().NoError(err)

		suite.True(cashOnce.Equal(suite.balanceOf(cash.AccountID)), "cash after %s", req.OperationType)
		suite.True(bankOnce.Equal(suite.balanceOf(bank.AccountID)), "bank after %s", req.OperationType)
		suite.assertBalancesConsistent()
	}

	suite.equalAmount("244.50", suite.balanceOf(bank.AccountID))
	suite.equalAmount("75.50", suite.balanceOf(cash.AccountID))
}

func (suite *MovementServiceTestSuite) TestExpenseAndTransfer_BalanceEffects() {
	cash := suite.cash()
	bank := suite.newAccount("Banca", domain.Bank, "0")
	suite.income(cash.AccountID, "100.00")

	_, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Expense,
		Date:            day(2024, time.March, 2),
		Amount:          dec("30.00"),
	}, suite.userID)
	suite.Require().NoError(err)

	transfer, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID:      cash.AccountID,
		DestinationAccountID: ptr(bank.AccountID),
		OperationType:        domain.Transfer,
		Date:                 day(2024, time.March, 3),
		Amount:               dec("50.00"),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.OriginTransfer, transfer.Origin)

	suite.equalAmount("20.00", suite.balanceOf(cash.AccountID))
	suite.equalAmount("50.00", suite.balanceOf(bank.AccountID))
	suite.assertBalancesConsistent()
}

func (suite *MovementServiceTestSuite) TestCreateMovement_RoundsAmountAndDate() {
	cash := suite.cash()
	m, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Income,
		Date:            time.Date(2024, time.April, 5, 17, 45, 0, 0, time.UTC),
		Amount:          dec("10.005"),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.equalAmount("10.01", m.Amount)
	suite.Equal(day(2024, time.April, 5), m.Date)
}

func (suite *MovementServiceTestSuite) TestProvisional_AppliedOnlyOnConfirm() {
	cash := suite.cash()
	m, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Income,
		Status:          domain.Provisional,
		Date:            day(2024, time.March, 1),
		Amount:          dec("200.00"),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.equalAmount("0", suite.balanceOf(cash.AccountID))

	confirmed, err := suite.svc.Movement.ConfirmMovement(suite.ctx, suite.aziendaID, m.MovementID, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.Definitive, confirmed.Status)
	suite.equalAmount("200.00", suite.balanceOf(cash.AccountID))

	again, err := suite.svc.Movement.ConfirmMovement(suite.ctx, suite.aziendaID, m.MovementID, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.Definitive, again.Status)
	suite.equalAmount("200.00", suite.balanceOf(cash.AccountID))
	suite.assertBalancesConsistent()
}

func (suite *MovementServiceTestSuite) TestUpdateMovement_MovesEffectsBetweenAccounts() {
	cash := suite.cash()
	bank := suite.newAccount("Banca", domain.Bank, "10.00")
	m := suite.income(cash.AccountID, "40.00")

	updated, err := suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		SourceAccountID: ptr(bank.AccountID),
		OperationType:   ptr(domain.Expense),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.Expense, updated.OperationType)

	suite.equalAmount("0", suite.balanceOf(cash.AccountID))
	suite.equalAmount("-30.00", suite.balanceOf(bank.AccountID))

	_, err = suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		SourceAccountID: ptr(cash.AccountID),
		OperationType:   ptr(domain.Income),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.equalAmount("40.00", suite.balanceOf(cash.AccountID))
	suite.equalAmount("10.00", suite.balanceOf(bank.AccountID))
	suite.assertBalancesConsistent()
}

func (suite *MovementServiceTestSuite) TestUpdateMovement_FailureLeavesStateUnchanged() {
	cash := suite.cash()
	m := suite.income(cash.AccountID, "100.00")
	expenseCategory := suite.categoryByCode("MANGIMI")

	_, err := suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		Amount:     ptr(dec("999.00")),
		CategoryID: ptr(expenseCategory.CategoryID),
	}, suite.userID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.equalAmount("100.00", suite.balanceOf(cash.AccountID))
	stored, err := suite.svc.Movement.GetMovement(suite.ctx, suite.aziendaID, m.MovementID)
	suite.Require().NoError(err)
	suite.equalAmount("100.00", stored.Amount)
	suite.Nil(stored.CategoryID)
}

func (suite *MovementServiceTestSuite) TestUpdateMovement_ClearsCategory() {
	cash := suite.cash()
	category := suite.categoryByCode("VEND_ANIM")
	m, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		CategoryID:      ptr(category.CategoryID),
		OperationType:   domain.Income,
		Date:            day(2024, time.March, 1),
		Amount:          dec("5.00"),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Require().NotNil(m.CategoryID)

	updated, err := suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		CategoryID: ptr(""),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Nil(updated.CategoryID)
}

func (suite *MovementServiceTestSuite) TestCreateMovement_ValidationErrors() {
	cash := suite.cash()
	bank := suite.newAccount("Banca", domain.Bank, "0")
	sales := suite.accountNamed("Vendite")
	inactive := suite.newAccount("Vecchio conto", domain.Bank, "0")
	_, err := suite.svc.Account.UpdateAccount(suite.ctx, suite.aziendaID, inactive.AccountID, dto.UpdateAccountRequest{IsActive: ptr(false)}, suite.userID)
	suite.Require().NoError(err)

	base := dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Income,
		Date:            day(2024, time.March, 1),
		Amount:          dec("1.00"),
	}

	testCases := []struct {
		name   string
		mutate func(r *dto.CreateMovementRequest)
		want   error
	}{
		{"system source account", func(r *dto.CreateMovementRequest) { r.SourceAccountID = sales.AccountID }, apperrors.ErrValidation},
		{"income with destination", func(r *dto.CreateMovementRequest) { r.DestinationAccountID = ptr(bank.AccountID) }, apperrors.ErrValidation},
		{"transfer without destination", func(r *dto.CreateMovementRequest) { r.OperationType = domain.Transfer }, apperrors.ErrValidation},
		{"transfer to same account", func(r *dto.CreateMovementRequest) {
			r.OperationType = domain.Transfer
			r.DestinationAccountID = ptr(cash.AccountID)
		}, apperrors.ErrValidation},
		{"transfer to system account", func(r *dto.CreateMovementRequest) {
			r.OperationType = domain.Transfer
			r.DestinationAccountID = ptr(sales.AccountID)
		}, apperrors.ErrValidation},
		{"inactive account", func(r *dto.CreateMovementRequest) { r.SourceAccountID = inactive.AccountID }, apperrors.ErrValidation},
		{"negative amount", func(r *dto.CreateMovementRequest) { r.Amount = dec("-1") }, apperrors.ErrValidation},
		{"automatic origin", func(r *dto.CreateMovementRequest) { r.Origin = domain.OriginAutomatic }, apperrors.ErrValidation},
		{"category of another operation type", func(r *dto.CreateMovementRequest) {
			r.CategoryID = ptr(suite.categoryByCode("MANGIMI").CategoryID)
		}, apperrors.ErrValidation},
		{"unknown account", func(r *dto.CreateMovementRequest) { r.SourceAccountID = uuid.NewString() }, apperrors.ErrNotFound},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			req := base
			tc.mutate(&req)
			m, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, req, suite.userID)
			suite.Require().Error(err)
			suite.ErrorIs(err, tc.want)
			suite.Nil(m)
		})
	}
	suite.equalAmount("0", suite.balanceOf(cash.AccountID))
	suite.Empty(suite.allMovements(domain.MovementFilter{}))
}

func (suite *MovementServiceTestSuite) TestMovementsAreScopedToAzienda() {
	m := suite.income(suite.cash().AccountID, "10.00")

	other := uuid.NewString()
	_, err := suite.svc.Movement.GetMovement(suite.ctx, other, m.MovementID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	err = suite.svc.Movement.DeleteMovement(suite.ctx, other, m.MovementID, suite.userID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.svc.Movement.CreateMovement(suite.ctx, other, dto.CreateMovementRequest{
		SourceAccountID: suite.cash().AccountID,
		OperationType:   domain.Income,
		Date:            day(2024, time.March, 1),
		Amount:          dec("1.00"),
	}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *MovementServiceTestSuite) TestDeleteMovement_IsIdempotent() {
	cash := suite.cash()
	m := suite.income(cash.AccountID, "25.00")

	suite.Require().NoError(suite.svc.Movement.DeleteMovement(suite.ctx, suite.aziendaID, m.MovementID, suite.userID))
	suite.Require().NoError(suite.svc.Movement.DeleteMovement(suite.ctx, suite.aziendaID, m.MovementID, suite.userID))
	suite.equalAmount("0", suite.balanceOf(cash.AccountID))

	_, err := suite.svc.Movement.GetMovement(suite.ctx, suite.aziendaID, m.MovementID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.svc.Movement.ConfirmMovement(suite.ctx, suite.aziendaID, m.MovementID, suite.userID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *MovementServiceTestSuite) TestAutomaticMovement_ProtectedFields() {
	sales := suite.accountNamed("Vendite")
	key := domain.NaturalKey{
		AziendaID:     suite.aziendaID,
		Source:        domain.SourceInvoice,
		DocumentID:    uuid.NewString(),
		OperationType: domain.Income,
		AccountRole:   domain.RoleSales,
	}
	m, err := suite.svc.Movement.Upsert(suite.ctx, key, domain.Movement{
		SourceAccountID: sales.AccountID,
		Date:            day(2024, time.January, 31),
		Amount:          dec("80.00"),
		InvoiceID:       ptr(key.DocumentID),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.OriginAutomatic, m.Origin)

	_, err = suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		Amount: ptr(dec("81.00")),
	}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrPermission)

	_, err = suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		SourceAccountID: ptr(suite.cash().AccountID),
	}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrPermission)

	updated, err := suite.svc.Movement.UpdateMovement(suite.ctx, suite.aziendaID, m.MovementID, dto.UpdateMovementRequest{
		Description: ptr("rivista a mano"),
		Note:        ptr("ok"),
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Equal("rivista a mano", updated.Description)
	suite.equalAmount("80.00", suite.balanceOf(sales.AccountID))
}

func (suite *MovementServiceTestSuite) TestUpsert_UpdatesInPlaceAndZeroDeletes() {
	sales := suite.accountNamed("Vendite")
	key := domain.NaturalKey{
		AziendaID:     suite.aziendaID,
		Source:        domain.SourceInvoice,
		DocumentID:    uuid.NewString(),
		OperationType: domain.Income,
		AccountRole:   domain.RoleSales,
	}
	payload := domain.Movement{
		SourceAccountID: sales.AccountID,
		Date:            day(2024, time.January, 31),
		Amount:          dec("100.00"),
		InvoiceID:       ptr(key.DocumentID),
	}

	first, err := suite.svc.Movement.Upsert(suite.ctx, key, payload, suite.userID)
	suite.Require().NoError(err)

	payload.Amount = dec("120.00")
	second, err := suite.svc.Movement.Upsert(suite.ctx, key, payload, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(first.MovementID, second.MovementID)
	suite.equalAmount("120.00", suite.balanceOf(sales.AccountID))
	suite.Len(suite.allMovements(domain.MovementFilter{}), 1)

	payload.Amount = dec("0")
	gone, err := suite.svc.Movement.Upsert(suite.ctx, key, payload, suite.userID)
	suite.Require().NoError(err)
	suite.Nil(gone)
	suite.equalAmount("0", suite.balanceOf(sales.AccountID))
	suite.Empty(suite.allMovements(domain.MovementFilter{}))
}

func (suite *MovementServiceTestSuite) TestListMovements_PaginationAndSummary() {
	cash := suite.cash()
	for i, amount := range []string{"10.00", "20.00", "30.00"} {
		_, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
			SourceAccountID: cash.AccountID,
			OperationType:   domain.Income,
			Date:            day(2024, time.May, i+1),
			Amount:          dec(amount),
		}, suite.userID)
		suite.Require().NoError(err)
	}
	_, err := suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Expense,
		Date:            day(2024, time.May, 10),
		Amount:          dec("15.00"),
	}, suite.userID)
	suite.Require().NoError(err)
	_, err = suite.svc.Movement.CreateMovement(suite.ctx, suite.aziendaID, dto.CreateMovementRequest{
		SourceAccountID: cash.AccountID,
		OperationType:   domain.Income,
		Status:          domain.Provisional,
		Date:            day(2024, time.May, 11),
		Amount:          dec("500.00"),
	}, suite.userID)
	suite.Require().NoError(err)

	page, err := suite.svc.Movement.ListMovements(suite.ctx, suite.aziendaID, domain.MovementFilter{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(page.Movements, 2)
	suite.Require().NotNil(page.NextToken)
	suite.Equal(day(2024, time.May, 11), page.Movements[0].Date)
	suite.Equal(day(2024, time.May, 10), page.Movements[1].Date)
	suite.equalAmount("60.00", page.Summary.Income)
	suite.equalAmount("15.00", page.Summary.Expense)
	suite.equalAmount("45.00", page.Summary.Balance)

	seen := len(page.Movements)
	for page.NextToken != nil {
		page, err = suite.svc.Movement.ListMovements(suite.ctx, suite.aziendaID, domain.MovementFilter{Limit: 2, NextToken: page.NextToken})
		suite.Require().NoError(err)
		seen += len(page.Movements)
	}
	suite.Equal(5, seen)

	from := day(2024, time.May, 2)
	to := day(2024, time.May, 3)
	filtered, err := suite.svc.Movement.ListMovements(suite.ctx, suite.aziendaID, domain.MovementFilter{DateFrom: &from, DateTo: &to})
	suite.Require().NoError(err)
	suite.Len(filtered.Movements, 2)
	suite.equalAmount("50.00", filtered.Summary.Income)
}

func (suite *MovementServiceTestSuite) TestListMovements_InvalidToken() {
	_, err := suite.svc.Movement.ListMovements(suite.ctx, suite.aziendaID, domain.MovementFilter{NextToken: ptr("not-a-token")})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MovementServiceTestSuite) TestSummary_ExcludesSystemAccounts() {
	inv := suite.seedInvoice(domain.Income, "1210.00", "1000.00", "210.00")
	_, err := suite.svc.Automation.SyncForInvoice(suite.ctx, suite.aziendaID, inv.InvoiceID, suite.userID)
	suite.Require().NoError(err)
	suite.income(suite.cash().AccountID, "5.00")

	page, err := suite.svc.Movement.ListMovements(suite.ctx, suite.aziendaID, domain.MovementFilter{})
	suite.Require().NoError(err)
	suite.Len(page.Movements, 4)
	suite.equalAmount("5.00", page.Summary.Income)
}
