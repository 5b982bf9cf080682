package services_test

import (
	"testing"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PreferencesServiceTestSuite struct {
	ledgerSuite
}

func TestPreferencesServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PreferencesServiceTestSuite))
}

// --- Test Cases ---

func (suite *PreferencesServiceTestSuite) TestResolve_DefaultsAfterSetup() {
	b, err := suite.svc.Preferences.Resolve(suite.ctx, suite.aziendaID)
	suite.Require().NoError(err)

	suite.Equal(suite.accountNamed("Vendite").AccountID, b.Sales)
	suite.Equal(suite.accountNamed("IVA su vendite").AccountID, b.SalesVAT)
	suite.Equal(suite.accountNamed("Crediti verso clienti").AccountID, b.Receivables)
	suite.Equal(suite.accountNamed("Acquisti").AccountID, b.Purchases)
	suite.Equal(suite.accountNamed("IVA su acquisti").AccountID, b.PurchasesVAT)
	suite.Equal(suite.accountNamed("Debiti verso fornitori").AccountID, b.Payables)
	suite.Equal(suite.cash().AccountID, b.Collection)
	suite.Equal(suite.cash().AccountID, b.Payment)
}

func (suite *PreferencesServiceTestSuite) TestSetPreferences_BindsAndClears() {
	bank := suite.newAccount("Banca", domain.Bank, "0")

	prefs, err := suite.svc.Preferences.SetPreferences(suite.ctx, suite.aziendaID, dto.UpdatePreferencesRequest{
		DefaultPaymentAccountID: ptr(bank.AccountID),
	})
	suite.Require().NoError(err)
	suite.Equal(bank.AccountID, *prefs.DefaultPaymentAccountID)
	suite.Require().NotNil(prefs.DefaultCollectionAccountID)

	b, err := suite.svc.Preferences.Resolve(suite.ctx, suite.aziendaID)
	suite.Require().NoError(err)
	suite.Equal(bank.AccountID, b.Payment)
	suite.Equal(suite.cash().AccountID, b.Collection)

	prefs, err = suite.svc.Preferences.SetPreferences(suite.ctx, suite.aziendaID, dto.UpdatePreferencesRequest{
		DefaultCollectionAccountID: ptr(""),
		DefaultPaymentAccountID:    ptr(""),
	})
	suite.Require().NoError(err)
	suite.Nil(prefs.DefaultCollectionAccountID)
	suite.Nil(prefs.DefaultPaymentAccountID)

	// without preferences cash accounts come before bank accounts
	b, err = suite.svc.Preferences.Resolve(suite.ctx, suite.aziendaID)
	suite.Require().NoError(err)
	suite.Equal(suite.cash().AccountID, b.Collection)
	suite.Equal(suite.cash().AccountID, b.Payment)
}

func (suite *PreferencesServiceTestSuite) TestSetPreferences_Rejections() {
	_, err := suite.svc.Preferences.SetPreferences(suite.ctx, suite.aziendaID, dto.UpdatePreferencesRequest{
		DefaultCollectionAccountID: ptr(suite.accountNamed("Vendite").AccountID),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.Preferences.SetPreferences(suite.ctx, suite.aziendaID, dto.UpdatePreferencesRequest{
		ReceivablesAccountID: ptr(uuid.NewString()),
	})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PreferencesServiceTestSuite) TestResolve_CustomReceivablesAccount() {
	custom := domain.Account{
		AccountID:   uuid.NewString(),
		AziendaID:   suite.aziendaID,
		Name:        "Crediti diversi",
		AccountType: domain.Other,
		IsActive:    true,
	}
	suite.Require().NoError(suite.store.SaveAccount(suite.ctx, custom))

	_, err := suite.svc.Preferences.SetPreferences(suite.ctx, suite.aziendaID, dto.UpdatePreferencesRequest{
		ReceivablesAccountID: ptr(custom.AccountID),
	})
	suite.Require().NoError(err)

	inv := suite.seedInvoice(domain.Income, "10.00", "10.00", "0")
	_, err = suite.svc.Automation.SyncForInvoice(suite.ctx, suite.aziendaID, inv.InvoiceID, suite.userID)
	suite.Require().NoError(err)
	suite.equalAmount("10.00", suite.balanceOf(custom.AccountID))
	suite.equalAmount("0", suite.balanceOf(suite.accountNamed("Crediti verso clienti").AccountID))

	// referenced accounts survive the cleanup
	deleted, err := suite.svc.Account.CleanupUnusedAuxiliaryAccounts(suite.ctx, suite.aziendaID)
	suite.Require().NoError(err)
	suite.Empty(deleted)
}

func (suite *PreferencesServiceTestSuite) TestGetPreferences_EmptyForNewAzienda() {
	other := uuid.NewString()
	prefs, err := suite.svc.Preferences.GetPreferences(suite.ctx, other)
	suite.Require().NoError(err)
	suite.Equal(other, prefs.AziendaID)
	suite.Empty(prefs.ReferencedAccountIDs())

	b, err := suite.svc.Preferences.Resolve(suite.ctx, other)
	suite.Require().NoError(err)
	suite.Empty(b.Sales)
	suite.Empty(b.Collection)
}
