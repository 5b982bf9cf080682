package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/prima_nota/internal/apperrors"
	"github.com/SscSPs/prima_nota/internal/core/domain"
	portssvc "github.com/SscSPs/prima_nota/internal/core/ports/services"
	"github.com/SscSPs/prima_nota/internal/dto"
	"github.com/SscSPs/prima_nota/internal/handlers"
	"github.com/SscSPs/prima_nota/internal/middleware"
	"github.com/SscSPs/prima_nota/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock MovementService ---
type MockMovementService struct {
	mock.Mock
}

func (m *MockMovementService) GetMovement(ctx context.Context, aziendaID string, movementID string) (*domain.Movement, error) {
	args := m.Called(ctx, aziendaID, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) ListMovements(ctx context.Context, aziendaID string, filter domain.MovementFilter) (*domain.MovementPage, error) {
	args := m.Called(ctx, aziendaID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovementPage), args.Error(1)
}
func (m *MockMovementService) CreateMovement(ctx context.Context, aziendaID string, req dto.CreateMovementRequest, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, aziendaID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) UpdateMovement(ctx context.Context, aziendaID string, movementID string, req dto.UpdateMovementRequest, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, aziendaID, movementID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) DeleteMovement(ctx context.Context, aziendaID string, movementID string, userID string) error {
	args := m.Called(ctx, aziendaID, movementID, userID)
	return args.Error(0)
}
func (m *MockMovementService) ConfirmMovement(ctx context.Context, aziendaID string, movementID string, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, aziendaID, movementID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) SetMovementLinks(ctx context.Context, aziendaID string, movementID string, links []domain.DocumentLink, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, aziendaID, movementID, links, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) Upsert(ctx context.Context, key domain.NaturalKey, payload domain.Movement, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, key, payload, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) RecordAutomatic(ctx context.Context, movement domain.Movement, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, movement, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.MovementSvcFacade = (*MockMovementService)(nil)

// --- Mock AutomationService ---
type MockAutomationService struct {
	mock.Mock
}

func (m *MockAutomationService) SyncForInvoice(ctx context.Context, aziendaID string, invoiceID string, userID string) ([]domain.Movement, error) {
	args := m.Called(ctx, aziendaID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}
func (m *MockAutomationService) SyncForPayment(ctx context.Context, aziendaID string, paymentID string, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, aziendaID, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockAutomationService) SyncForContractSettlement(ctx context.Context, aziendaID string, contractID string, amount decimal.Decimal, date time.Time, batchIDs []string, final bool, userID string) (*portssvc.SettlementResult, error) {
	args := m.Called(ctx, aziendaID, contractID, amount, date, batchIDs, final, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.SettlementResult), args.Error(1)
}
func (m *MockAutomationService) SyncAll(ctx context.Context, aziendaID *string, userID string) (*domain.SyncReport, error) {
	args := m.Called(ctx, aziendaID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncReport), args.Error(1)
}

var _ portssvc.AutomationSvcFacade = (*MockAutomationService)(nil)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	cfg                   *config.Config
	mockMovementService   *MockMovementService
	mockAutomationService *MockAutomationService
	userID                string
	aziendaID             string
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterValidators())

	suite.cfg = &config.Config{
		JWTSecret: "test-secret-key-that-is-long-enough",
		JWTIssuer: "prima-nota-test",
	}
	suite.userID = uuid.NewString()
	suite.aziendaID = uuid.NewString()
	suite.mockMovementService = new(MockMovementService)
	suite.mockAutomationService = new(MockAutomationService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, suite.cfg, &portssvc.ServiceContainer{
		Movement:   suite.mockMovementService,
		Automation: suite.mockAutomationService,
	})
}

func (suite *HandlerTestSuite) generateTestToken() string {
	token, err := middleware.IssueToken(suite.cfg.JWTSecret, suite.cfg.JWTIssuer, suite.userID, suite.aziendaID, time.Hour)
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *HandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken())
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) TestHealth_NoAuthRequired() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestCreateMovement_Success() {
	accountID := uuid.NewString()
	expected := &domain.Movement{
		MovementID:      uuid.NewString(),
		AziendaID:       suite.aziendaID,
		SourceAccountID: accountID,
		OperationType:   domain.Income,
		Status:          domain.Definitive,
		Origin:          domain.OriginManual,
		Amount:          decimal.RequireFromString("120.50"),
	}

	suite.mockMovementService.On("CreateMovement",
		mock.Anything,
		suite.aziendaID,
		mock.MatchedBy(func(r dto.CreateMovementRequest) bool {
			return r.SourceAccountID == accountID && r.Amount.Equal(decimal.RequireFromString("120.50"))
		}),
		suite.userID,
	).Return(expected, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/movements", map[string]any{
		"sourceAccountID": accountID,
		"operationType":   "income",
		"date":            "2026-03-01T00:00:00Z",
		"amount":          "120.50",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var body domain.Movement
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(expected.MovementID, body.MovementID)
	suite.True(body.Amount.Equal(expected.Amount))
	suite.mockMovementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateMovement_RejectsNegativeAmount() {
	w := suite.do(http.MethodPost, "/api/v1/movements", map[string]any{
		"sourceAccountID": uuid.NewString(),
		"operationType":   "expense",
		"date":            "2026-03-01T00:00:00Z",
		"amount":          "-5",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockMovementService.AssertNotCalled(suite.T(), "CreateMovement")
}

func (suite *HandlerTestSuite) TestCreateMovement_RejectsUnknownOperationType() {
	w := suite.do(http.MethodPost, "/api/v1/movements", map[string]any{
		"sourceAccountID": uuid.NewString(),
		"operationType":   "gift",
		"date":            "2026-03-01T00:00:00Z",
		"amount":          "5",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockMovementService.AssertNotCalled(suite.T(), "CreateMovement")
}

func (suite *HandlerTestSuite) TestCreateMovement_ServiceErrorsMapToStatus() {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.Validationf("destination required"), http.StatusBadRequest},
		{"duplicate", apperrors.Duplicatef("already exists"), http.StatusBadRequest},
		{"permission", apperrors.Permissionf("system account"), http.StatusForbidden},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"conflict", apperrors.Conflictf("in use"), http.StatusConflict},
		{"internal", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.mockMovementService.On("CreateMovement", mock.Anything, suite.aziendaID, mock.Anything, suite.userID).
				Return(nil, tc.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/movements", map[string]any{
				"sourceAccountID": uuid.NewString(),
				"operationType":   "expense",
				"date":            "2026-03-01T00:00:00Z",
				"amount":          "5",
			})

			suite.Equal(tc.status, w.Code)
			var body map[string]string
			suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
			if tc.status == http.StatusInternalServerError {
				suite.Equal("Failed to create movement", body["error"])
			} else {
				suite.Contains(body["error"], tc.err.Error())
			}
		})
	}
}

func (suite *HandlerTestSuite) TestListMovements_PassesFilter() {
	page := &domain.MovementPage{
		Movements: []domain.Movement{{MovementID: uuid.NewString()}},
		NextToken: func() *string { s := "next"; return &s }(),
	}
	suite.mockMovementService.On("ListMovements",
		mock.Anything,
		suite.aziendaID,
		mock.MatchedBy(func(f domain.MovementFilter) bool {
			return f.Limit == 10 &&
				f.Status != nil && *f.Status == domain.Provisional &&
				f.DateFrom != nil && f.DateFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		}),
	).Return(page, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/movements?limit=10&status=provisional&dateFrom=2026-01-01", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListMovementsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Movements, 1)
	suite.Require().NotNil(body.NextToken)
	suite.Equal("next", *body.NextToken)
	suite.mockMovementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestListMovements_RejectsOversizedLimit() {
	w := suite.do(http.MethodGet, "/api/v1/movements?limit=1000", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockMovementService.AssertNotCalled(suite.T(), "ListMovements")
}

func (suite *HandlerTestSuite) TestGetMovement_NotFound() {
	movementID := uuid.NewString()
	suite.mockMovementService.On("GetMovement", mock.Anything, suite.aziendaID, movementID).
		Return(nil, apperrors.NewNotFoundError("movement "+movementID)).Once()

	w := suite.do(http.MethodGet, "/api/v1/movements/"+movementID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockMovementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestDeleteMovement_NoContent() {
	movementID := uuid.NewString()
	suite.mockMovementService.On("DeleteMovement", mock.Anything, suite.aziendaID, movementID, suite.userID).
		Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/movements/"+movementID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockMovementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestSetMovementLinks_ConvertsLinks() {
	movementID := uuid.NewString()
	invoiceID := uuid.NewString()
	suite.mockMovementService.On("SetMovementLinks",
		mock.Anything,
		suite.aziendaID,
		movementID,
		mock.MatchedBy(func(links []domain.DocumentLink) bool {
			return len(links) == 1 && links[0].MovementID == movementID &&
				links[0].DocumentID == invoiceID && links[0].Amount.Equal(decimal.NewFromInt(40))
		}),
		suite.userID,
	).Return(&domain.Movement{MovementID: movementID}, nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/movements/"+movementID+"/links", map[string]any{
		"links": []map[string]any{{"documentType": "invoice", "documentID": invoiceID, "amount": "40"}},
	})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockMovementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestMissingToken_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/movements", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockMovementService.AssertNotCalled(suite.T(), "ListMovements")
}

func (suite *HandlerTestSuite) TestTokenWithoutAzienda_Unauthorized() {
	token, err := middleware.IssueToken(suite.cfg.JWTSecret, suite.cfg.JWTIssuer, suite.userID, "", time.Hour)
	suite.Require().NoError(err)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/movements", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestSyncAll_DefaultsToCallerAzienda() {
	report := &domain.SyncReport{Processed: 2, Total: 3, Errors: []domain.SyncError{{DocumentID: "inv-3", Message: "boom"}}}
	suite.mockAutomationService.On("SyncAll",
		mock.Anything,
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == suite.aziendaID }),
		suite.userID,
	).Return(report, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/sync", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body domain.SyncReport
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(2, body.Processed)
	suite.Equal(3, body.Total)
	suite.Len(body.Errors, 1)
	suite.mockAutomationService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestSyncAll_AllAziende() {
	suite.mockAutomationService.On("SyncAll", mock.Anything, (*string)(nil), suite.userID).
		Return(&domain.SyncReport{}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/sync", dto.SyncAllRequest{AllAziende: true})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAutomationService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestSyncPayment_NoMovement() {
	paymentID := uuid.NewString()
	suite.mockAutomationService.On("SyncForPayment", mock.Anything, suite.aziendaID, paymentID, suite.userID).
		Return(nil, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/sync/payments/"+paymentID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestSettleContract_Created() {
	contractID := uuid.NewString()
	batchIDs := []string{"b1", "b2"}
	result := &portssvc.SettlementResult{
		Movement: domain.Movement{MovementID: uuid.NewString(), ContractID: &contractID},
		Allocations: []domain.BatchAllocation{
			{BatchID: "b1", Amount: decimal.RequireFromString("33.34")},
			{BatchID: "b2", Amount: decimal.RequireFromString("66.66")},
		},
	}
	suite.mockAutomationService.On("SyncForContractSettlement",
		mock.Anything, suite.aziendaID, contractID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(100)) }),
		mock.AnythingOfType("time.Time"), batchIDs, true, suite.userID,
	).Return(result, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/sync/contracts/"+contractID+"/settlement", map[string]any{
		"amount":   "100",
		"date":     "2026-06-30T00:00:00Z",
		"batchIDs": batchIDs,
		"final":    true,
	})

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.SettlementResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Allocations, 2)
	suite.mockAutomationService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
