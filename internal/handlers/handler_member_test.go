package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/SscSPs/spa_ledger/internal/dto"
	"github.com/SscSPs/spa_ledger/internal/handlers"
	"github.com/SscSPs/spa_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockLedgerService) SearchMembers(ctx context.Context, term string) ([]domain.Member, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockLedgerService) QueryMemberTransactions(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) DescribeMember(ctx context.Context, memberID string) (*domain.MemberSummary, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MemberSummary), args.Error(1)
}
func (m *MockLedgerService) CreateMember(ctx context.Context, memberID, name string, enrollmentDate time.Time, initialBalance decimal.Decimal) (*domain.Member, error) {
	args := m.Called(ctx, memberID, name, enrollmentDate, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockLedgerService) UpdateMemberProfile(ctx context.Context, memberID, name string, enrollmentDate time.Time) (*domain.Member, error) {
	args := m.Called(ctx, memberID, name, enrollmentDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockLedgerService) DeleteMember(ctx context.Context, memberID string) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}
func (m *MockLedgerService) ApplyTransaction(ctx context.Context, ownerID string, amount decimal.Decimal, signatureRef, notes string) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, amount, signatureRef, notes)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) OverrideBalance(ctx context.Context, memberID string, balance decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID, balance)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) ReconcileMember(ctx context.Context, memberID string, repair bool) (*domain.BalanceDrift, error) {
	args := m.Called(ctx, memberID, repair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceDrift), args.Error(1)
}
func (m *MockLedgerService) ReconcileAll(ctx context.Context, repair bool) ([]domain.BalanceDrift, error) {
	args := m.Called(ctx, repair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceDrift), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock SignatureService ---
type MockSignatureService struct {
	mock.Mock
}

func (m *MockSignatureService) UploadSignature(ctx context.Context, ownerID string, payload []byte) (string, error) {
	args := m.Called(ctx, ownerID, payload)
	return args.String(0), args.Error(1)
}
func (m *MockSignatureService) GetSignature(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var _ portssvc.SignatureSvc = (*MockSignatureService)(nil)

// --- Test Suite Setup ---

type MemberHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockLedger    *MockLedgerService
	mockSignature *MockSignatureService
}

func (suite *MemberHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockLedger = new(MockLedgerService)
	suite.mockSignature = new(MockSignatureService)

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers.RegisterRoutes(suite.router, &portssvc.ServiceContainer{
		Ledger:    suite.mockLedger,
		Signature: suite.mockSignature,
	})
}

func (suite *MemberHandlerTestSuite) TearDownTest() {
	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockSignature.AssertExpectations(suite.T())
}

func (suite *MemberHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleMember(balance string) *domain.Member {
	return &domain.Member{
		MemberID:       "M1",
		Name:           "Alice",
		EnrollmentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Balance:        decimal.RequireFromString(balance),
		CreatedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// --- Test Cases ---

func (suite *MemberHandlerTestSuite) TestCreateMember_Success() {
	enrolled := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	suite.mockLedger.On("CreateMember", mock.Anything, "M1", "Alice", enrolled, decimal.RequireFromString("100")).
		Return(sampleMember("100"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/members", map[string]any{
		"memberID": "M1", "name": "Alice", "enrollmentDate": "2024-03-01", "initialBalance": "100",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.MemberResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("M1", resp.MemberID)
	suite.Equal("2024-03-01", resp.EnrollmentDate)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("100")))
}

func (suite *MemberHandlerTestSuite) TestCreateMember_Duplicate() {
	suite.mockLedger.On("CreateMember", mock.Anything, "M1", "Alice", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicateMember).Once()

	w := suite.do(http.MethodPost, "/api/v1/members", map[string]any{
		"memberID": "M1", "name": "Alice", "enrollmentDate": "2024-03-01",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *MemberHandlerTestSuite) TestCreateMember_BadRequest() {
	for name, body := range map[string]map[string]any{
		"missing name":  {"memberID": "M1", "enrollmentDate": "2024-03-01"},
		"bad date":      {"memberID": "M1", "name": "Alice", "enrollmentDate": "01/03/2024"},
		"slash in id":   {"memberID": "M/1", "name": "Alice", "enrollmentDate": "2024-03-01"},
		"amount string": {"memberID": "M1", "name": "Alice", "enrollmentDate": "2024-03-01", "initialBalance": "ten"},
	} {
		w := suite.do(http.MethodPost, "/api/v1/members", body)
		suite.Equal(http.StatusBadRequest, w.Code, name)
	}
}

func (suite *MemberHandlerTestSuite) TestGetMember_NotFound() {
	suite.mockLedger.On("GetMember", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/members/ghost", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *MemberHandlerTestSuite) TestSearchMembers() {
	suite.mockLedger.On("SearchMembers", mock.Anything, "ali").Return([]domain.Member{*sampleMember("5")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/members?q=ali", nil)
	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.MemberResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)
}

func (suite *MemberHandlerTestSuite) TestApplyTransaction_Success() {
	sig := domain.SignatureKey("M1", "abc")
	suite.mockLedger.On("ApplyTransaction", mock.Anything, "M1", decimal.RequireFromString("-30"), sig, "massage").
		Return(decimal.RequireFromString("70"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/members/M1/transactions", map[string]any{
		"amount": -30, "signatureRef": sig, "notes": "massage",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balance.Equal(decimal.RequireFromString("70")))
}

func (suite *MemberHandlerTestSuite) TestApplyTransaction_ZeroAmountRejectedAtBinding() {
	w := suite.do(http.MethodPost, "/api/v1/members/M1/transactions", map[string]any{"amount": 0})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/members/M1/transactions", map[string]any{"notes": "no amount"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *MemberHandlerTestSuite) TestApplyTransaction_ErrorMapping() {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.ErrUnknownMember, http.StatusNotFound},
		{apperrors.StoreError("put", errors.New("throttled")), http.StatusServiceUnavailable},
		{apperrors.ErrZeroAmount, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		suite.mockLedger.On("ApplyTransaction", mock.Anything, "M1", mock.Anything, "", "").
			Return(decimal.Zero, tt.err).Once()
		w := suite.do(http.MethodPost, "/api/v1/members/M1/transactions", map[string]any{"amount": "5"})
		suite.Equal(tt.want, w.Code, tt.err.Error())
	}
}

func (suite *MemberHandlerTestSuite) TestListTransactions() {
	txns := []domain.Transaction{
		{TransactionID: "t1", OwnerID: "M1", Amount: decimal.RequireFromString("100"), Timestamp: "2024-06-01T09:00:00Z"},
		{TransactionID: "t2", OwnerID: "M1", Amount: decimal.RequireFromString("-30"), Timestamp: "2024-06-01T10:00:00Z"},
	}
	suite.mockLedger.On("QueryMemberTransactions", mock.Anything, "M1").Return(txns, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/members/M1/transactions", nil)
	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 2)
	suite.True(resp.Total.Equal(decimal.RequireFromString("70")))
	suite.Empty(resp.NextToken)
}

func (suite *MemberHandlerTestSuite) TestListTransactions_Paged() {
	txns := []domain.Transaction{
		{TransactionID: "t1", OwnerID: "M1", Amount: decimal.RequireFromString("100"), Timestamp: "2024-06-01T09:00:00Z"},
		{TransactionID: "t2", OwnerID: "M1", Amount: decimal.RequireFromString("-30"), Timestamp: "2024-06-01T10:00:00Z"},
	}
	suite.mockLedger.On("QueryMemberTransactions", mock.Anything, "M1").Return(txns, nil)

	w := suite.do(http.MethodGet, "/api/v1/members/M1/transactions?limit=1", nil)
	suite.Equal(http.StatusOK, w.Code)
	var first dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &first))
	suite.Require().Len(first.Transactions, 1)
	suite.Equal("t1", first.Transactions[0].TransactionID)
	suite.True(first.Total.Equal(decimal.RequireFromString("70")))
	suite.NotEmpty(first.NextToken)

	w = suite.do(http.MethodGet, "/api/v1/members/M1/transactions?limit=1&nextToken="+first.NextToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	var second dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &second))
	suite.Require().Len(second.Transactions, 1)
	suite.Equal("t2", second.Transactions[0].TransactionID)
	suite.Empty(second.NextToken)

	w = suite.do(http.MethodGet, "/api/v1/members/M1/transactions?limit=0", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *MemberHandlerTestSuite) TestDeleteMember_RequiresConfirmation() {
	summary := &domain.MemberSummary{Member: *sampleMember("70"), TransactionCount: 2}
	suite.mockLedger.On("DescribeMember", mock.Anything, "M1").Return(summary, nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/members/M1", nil)

	suite.Equal(http.StatusConflict, w.Code)
	var resp dto.MemberSummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("M1", resp.MemberID)
	suite.Equal("Alice", resp.Name)
	suite.Equal(2, resp.TransactionCount)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("70")))
	suite.mockLedger.AssertNotCalled(suite.T(), "DeleteMember", mock.Anything, mock.Anything)
}

func (suite *MemberHandlerTestSuite) TestDeleteMember_Confirmed() {
	suite.mockLedger.On("DeleteMember", mock.Anything, "M1").Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/members/M1?confirm=M1", nil)
	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *MemberHandlerTestSuite) TestDeleteMember_PartialCascade() {
	cascadeErr := &apperrors.PartialCascadeError{MemberID: "M1", Deleted: 1, Remaining: 2, Err: errors.New("throttled")}
	suite.mockLedger.On("DeleteMember", mock.Anything, "M1").Return(cascadeErr).Once()

	w := suite.do(http.MethodDelete, "/api/v1/members/M1?confirm=M1", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.EqualValues(2, resp["remaining"])
}

func (suite *MemberHandlerTestSuite) TestOverrideBalance() {
	suite.mockLedger.On("OverrideBalance", mock.Anything, "M1", decimal.RequireFromString("40")).
		Return(decimal.RequireFromString("40"), nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/members/M1/balance?confirm=M1", map[string]any{"balance": "40"})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *MemberHandlerTestSuite) TestReconcile() {
	drift := &domain.BalanceDrift{
		MemberID:      "M1",
		StoredBalance: decimal.RequireFromString("100"),
		LedgerBalance: decimal.RequireFromString("70"),
		Repaired:      true,
	}
	suite.mockLedger.On("ReconcileMember", mock.Anything, "M1", true).Return(drift, nil).Once()
	suite.mockLedger.On("ReconcileAll", mock.Anything, false).Return([]domain.BalanceDrift{*drift}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/members/M1/reconcile?repair=true", nil)
	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceDriftResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.InSync)
	suite.True(resp.Difference.Equal(decimal.RequireFromString("-30")))

	w = suite.do(http.MethodPost, "/api/v1/reconcile", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *MemberHandlerTestSuite) TestSignatures() {
	key := domain.SignatureKey("M1", "abc")
	image := "data:image/png;base64,iVBORw0KGgo="
	suite.mockSignature.On("UploadSignature", mock.Anything, "M1", []byte(image)).Return(key, nil).Once()
	suite.mockSignature.On("GetSignature", mock.Anything, key).Return([]byte("\x89PNG\r\n\x1a\n"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/members/M1/signatures", map[string]any{"image": image})
	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.UploadSignatureResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(key, resp.Key)

	w = suite.do(http.MethodGet, "/api/v1/signatures/"+key, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(domain.SignatureContentType, w.Header().Get("Content-Type"))
}

func TestMemberHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MemberHandlerTestSuite))
}
