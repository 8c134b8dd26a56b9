package database

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

func newMockRepo(t *testing.T) (*InvoiceRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	repo := NewInvoiceRepository(&DB{db}, logger)
	return repo, mock, func() { db.Close() }
}

func TestInvoiceRepository_Create_InsereNotaEItensNaTransacao(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	invoiceID := uuid.New()
	itemID := uuid.New()
	invoice := &models.Invoice{
		ID:         invoiceID,
		CompanyID:  uuid.New(),
		AccessKey:  "35240312345678000195550010000001231000001239",
		IssueDate:  "2024-03-15",
		TotalValue: 55.50,
		SourceFile: "nota.xml",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Items: []models.InvoiceItem{
			{ID: itemID, InvoiceID: invoiceID, LineNo: 1, NCMCode: "30049099", CFOP: "5102", TotalValue: 55.50, IsMonofasico: true, ClassificationConfidence: 1.0},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(invoice)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_Create_RollbackQuandoItemFalha(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	invoiceID := uuid.New()
	invoice := &models.Invoice{
		ID:        invoiceID,
		CompanyID: uuid.New(),
		Items: []models.InvoiceItem{
			{ID: uuid.New(), InvoiceID: invoiceID, LineNo: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_items")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(invoice)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_GetByAccessKey_NilQuandoNaoExiste(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	companyID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM invoices")).
		WithArgs(companyID, "chave").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	invoice, err := repo.GetByAccessKey(companyID, "chave")
	assert.NoError(t, err)
	assert.Nil(t, invoice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_ApplyReview_AtualizaVereditoELimpaBloqueio(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	itemID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoice_items")).
		WithArgs(true, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyReview(itemID, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_AcceptPendingReview_ContaItensFechados(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	companyID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoice_items")).
		WithArgs(companyID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	accepted, err := repo.AcceptPendingReview(companyID)
	assert.NoError(t, err)
	assert.Equal(t, 3, accepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_ApplyReview_ErroQuandoItemNaoExiste(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	itemID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoice_items")).
		WithArgs(false, itemID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyReview(itemID, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
