package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/services"
)

func newTestAPI(t *testing.T) (*API, sqlmock.Sqlmock, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db := &database.DB{DB: sqlDB}
	calcService := services.NewCalculationService(db, nil, logger)
	fileService := services.NewFileService(db, nil, calcService, logger)
	reviewService := services.NewReviewService(db, calcService, logger)
	reportService := services.NewReportService(db, calcService, nil, nil, logger)

	apiHandler := NewAPI(
		database.NewCompanyRepository(db, logger),
		fileService,
		reviewService,
		calcService,
		reportService,
		nil,
		logger,
	)
	return apiHandler, mock, func() { sqlDB.Close() }
}

func performRequest(apiHandler *API, method, path string, body interface{}, register func(*gin.Engine, *API)) *httptest.ResponseRecorder {
	router := gin.New()
	register(router, apiHandler)

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func nowTime() time.Time { return time.Now().UTC() }

func TestCreateCompany_CNPJInvalidoRetorna400(t *testing.T) {
	apiHandler, _, cleanup := newTestAPI(t)
	defer cleanup()

	w := performRequest(apiHandler, http.MethodPost, "/v1/companies", map[string]string{
		"name": "Farmácia Boa Saúde LTDA",
		"cnpj": "123",
	}, func(r *gin.Engine, a *API) {
		r.POST("/v1/companies", a.CreateCompany)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestCreateCompany_CNPJDuplicadoRetorna409(t *testing.T) {
	apiHandler, mock, cleanup := newTestAPI(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "name", "cnpj", "email", "created_at", "updated_at"}).
		AddRow(uuid.New(), "Farmácia Boa Saúde LTDA", "12345678000195", "", nowTime(), nowTime())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, cnpj, email, created_at, updated_at")).
		WithArgs("12345678000195").
		WillReturnRows(rows)

	w := performRequest(apiHandler, http.MethodPost, "/v1/companies", map[string]string{
		"name": "Farmácia Boa Saúde LTDA",
		"cnpj": "12.345.678/0001-95",
	}, func(r *gin.Engine, a *API) {
		r.POST("/v1/companies", a.CreateCompany)
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCompany_SucessoRetorna201(t *testing.T) {
	apiHandler, mock, cleanup := newTestAPI(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, cnpj, email, created_at, updated_at")).
		WithArgs("12345678000195").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cnpj", "email", "created_at", "updated_at"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(apiHandler, http.MethodPost, "/v1/companies", map[string]string{
		"name": "Farmácia Boa Saúde LTDA",
		"cnpj": "12.345.678/0001-95",
	}, func(r *gin.Engine, a *API) {
		r.POST("/v1/companies", a.CreateCompany)
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp["id"])
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCompany_IDInvalidoRetorna400(t *testing.T) {
	apiHandler, _, cleanup := newTestAPI(t)
	defer cleanup()

	w := performRequest(apiHandler, http.MethodGet, "/v1/companies/nao-e-uuid", nil, func(r *gin.Engine, a *API) {
		r.GET("/v1/companies/:id", a.GetCompany)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReclassify_SemWorkflowRetorna503(t *testing.T) {
	apiHandler, _, cleanup := newTestAPI(t)
	defer cleanup()

	w := performRequest(apiHandler, http.MethodPost, "/v1/companies/"+uuid.NewString()+"/reclassify", nil, func(r *gin.Engine, a *API) {
		r.POST("/v1/companies/:id/reclassify", a.Reclassify)
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSaveCalculationInputs_MesInvalidoRetorna400(t *testing.T) {
	apiHandler, _, cleanup := newTestAPI(t)
	defer cleanup()

	body := map[string]interface{}{
		"inputs": []map[string]interface{}{
			{"competence_month": "2024-13", "rbt12": 500000.0, "das_paid": 3000.0, "anexo": "anexo1"},
		},
	}

	w := performRequest(apiHandler, http.MethodPut, "/v1/companies/"+uuid.NewString()+"/calculations", body, func(r *gin.Engine, a *API) {
		r.PUT("/v1/companies/:id/calculations", a.SaveCalculationInputs)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "competence_month")
}
