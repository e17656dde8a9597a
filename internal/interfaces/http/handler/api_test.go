package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/erp/cashbook/internal/interfaces/http/middleware"
	"github.com/erp/cashbook/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	engine       *gin.Engine
	transactions *MockTransactionService
	exporter     *MockExporter
	accounts     *MockAccountService
	trigger      *MockTrigger
	runs         *MockRunRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	api := &testAPI{
		transactions: new(MockTransactionService),
		exporter:     new(MockExporter),
		accounts:     new(MockAccountService),
		trigger:      new(MockTrigger),
		runs:         new(MockRunRepository),
	}

	handlers := Handlers{
		System:         NewSystemHandler(stubPinger{}, "test"),
		Institution:    NewInstitutionHandler(),
		Transaction:    NewTransactionHandler(api.transactions, api.exporter),
		Account:        NewAccountHandler(api.accounts),
		Reconciliation: NewReconciliationHandler(api.trigger, api.runs),
	}

	api.engine = gin.New()
	api.engine.Use(middleware.RequestID())
	r := router.NewRouter(api.engine)
	for _, group := range handlers.Groups() {
		r.Register(group)
	}
	r.Setup()

	t.Cleanup(func() {
		api.transactions.AssertExpectations(t)
		api.exporter.AssertExpectations(t)
		api.accounts.AssertExpectations(t)
		api.trigger.AssertExpectations(t)
		api.runs.AssertExpectations(t)
	})
	return api
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope; data is decoded into out when non-nil
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}
