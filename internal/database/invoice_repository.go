package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// InvoiceRepository cuida das operações de banco para notas fiscais e itens
type InvoiceRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewInvoiceRepository cria uma nova instância do repositório
func NewInvoiceRepository(db *DB, logger *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create grava uma nota com seus itens na mesma transação
func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO invoices (
				id, company_id, access_key, issue_date, total_value, source_file,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := tx.Exec(query,
			invoice.ID, invoice.CompanyID, invoice.AccessKey, invoice.IssueDate,
			invoice.TotalValue, invoice.SourceFile, invoice.CreatedAt, invoice.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting invoice: %w", err)
		}

		for _, item := range invoice.Items {
			itemQuery := `
				INSERT INTO invoice_items (
					id, invoice_id, line_no, product_code, ncm_code, cfop,
					cst_pis, cst_cofins, description, total_value,
					is_monofasico, classification_confidence, classification_rule,
					needs_human_review, manual_override, human_reviewed,
					cfop_valid_for_credit, cfop_validation_message, credit_blocked_reason
				) VALUES (
					$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
					$11, $12, $13, $14, $15, $16, $17, $18, $19
				)
			`

			_, err := tx.Exec(itemQuery,
				item.ID, item.InvoiceID, item.LineNo, item.ProductCode, item.NCMCode, item.CFOP,
				item.CSTPIS, item.CSTCOFINS, item.Description, item.TotalValue,
				item.IsMonofasico, item.ClassificationConfidence, item.ClassificationRule,
				item.NeedsHumanReview, item.ManualOverride, item.HumanReviewed,
				item.CFOPValidForCredit, item.CFOPValidationMessage, item.CreditBlockedReason,
			)
			if err != nil {
				return fmt.Errorf("error inserting invoice item: %w", err)
			}
		}

		return nil
	})
}

// GetByAccessKey busca uma nota da empresa pela chave de acesso (nil quando
// não existe, para o tratamento de duplicatas no upload)
func (r *InvoiceRepository) GetByAccessKey(companyID uuid.UUID, accessKey string) (*models.Invoice, error) {
	query := `
		SELECT id FROM invoices WHERE company_id = $1 AND access_key = $2
	`

	var id uuid.UUID
	err := r.db.QueryRowWithTimeout(query, companyID, accessKey).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying invoice by access key: %w", err)
	}

	return r.GetByID(id)
}

// GetByID busca uma nota por ID com seus itens
func (r *InvoiceRepository) GetByID(id uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT id, company_id, access_key, issue_date, total_value, source_file,
			   created_at, updated_at
		FROM invoices
		WHERE id = $1
	`

	var invoice models.Invoice
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&invoice.ID, &invoice.CompanyID, &invoice.AccessKey, &invoice.IssueDate,
		&invoice.TotalValue, &invoice.SourceFile, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invoice not found: %s", id)
		}
		return nil, fmt.Errorf("error querying invoice: %w", err)
	}

	items, err := r.GetItemsByInvoiceID(id)
	if err != nil {
		r.logger.Warnf("Error getting items for invoice %s: %v", id, err)
	}
	invoice.Items = items

	return &invoice, nil
}

// GetItemsByInvoiceID busca os itens de uma nota
func (r *InvoiceRepository) GetItemsByInvoiceID(invoiceID uuid.UUID) ([]models.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, line_no, product_code, ncm_code, cfop,
			   cst_pis, cst_cofins, description, total_value,
			   is_monofasico, classification_confidence, classification_rule,
			   needs_human_review, manual_override, human_reviewed,
			   cfop_valid_for_credit, cfop_validation_message, credit_blocked_reason
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_no
	`

	rows, err := r.db.QueryWithTimeout(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("error querying invoice items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetByCompany retorna todas as notas da empresa com itens, ordenadas por
// data de emissão
func (r *InvoiceRepository) GetByCompany(companyID uuid.UUID) ([]models.Invoice, error) {
	query := `
		SELECT id, company_id, access_key, issue_date, total_value, source_file,
			   created_at, updated_at
		FROM invoices
		WHERE company_id = $1
		ORDER BY issue_date, access_key
	`

	rows, err := r.db.QueryWithTimeout(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var invoice models.Invoice
		err := rows.Scan(
			&invoice.ID, &invoice.CompanyID, &invoice.AccessKey, &invoice.IssueDate,
			&invoice.TotalValue, &invoice.SourceFile, &invoice.CreatedAt, &invoice.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	for i := range invoices {
		items, err := r.GetItemsByInvoiceID(invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}

	return invoices, nil
}

// GetItemsNeedingReview retorna os itens da empresa pendentes de revisão
func (r *InvoiceRepository) GetItemsNeedingReview(companyID uuid.UUID) ([]models.InvoiceItem, error) {
	query := `
		SELECT it.id, it.invoice_id, it.line_no, it.product_code, it.ncm_code, it.cfop,
			   it.cst_pis, it.cst_cofins, it.description, it.total_value,
			   it.is_monofasico, it.classification_confidence, it.classification_rule,
			   it.needs_human_review, it.manual_override, it.human_reviewed,
			   it.cfop_valid_for_credit, it.cfop_validation_message, it.credit_blocked_reason
		FROM invoice_items it
		JOIN invoices i ON it.invoice_id = i.id
		WHERE i.company_id = $1 AND it.needs_human_review = true AND it.human_reviewed = false
		ORDER BY i.issue_date, it.line_no
	`

	rows, err := r.db.QueryWithTimeout(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("error querying items needing review: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ApplyReview grava a decisão de revisão humana de um item
func (r *InvoiceRepository) ApplyReview(itemID uuid.UUID, isMonofasico bool) error {
	query := `
		UPDATE invoice_items
		SET is_monofasico = $1,
			manual_override = true,
			human_reviewed = true,
			needs_human_review = false,
			credit_blocked_reason = NULL
		WHERE id = $2
	`

	result, err := r.db.ExecWithTimeout(query, isMonofasico, itemID)
	if err != nil {
		return fmt.Errorf("error applying item review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invoice item not found: %s", itemID)
	}

	return nil
}

// AcceptPendingReview fecha a fila de revisão da empresa: os itens ainda
// pendentes são marcados como revisados mantendo o veredito automático
func (r *InvoiceRepository) AcceptPendingReview(companyID uuid.UUID) (int, error) {
	query := `
		UPDATE invoice_items
		SET human_reviewed = true,
			needs_human_review = false
		FROM invoices
		WHERE invoice_items.invoice_id = invoices.id
			AND invoices.company_id = $1
			AND invoice_items.needs_human_review = true
			AND invoice_items.human_reviewed = false
	`

	result, err := r.db.ExecWithTimeout(query, companyID)
	if err != nil {
		return 0, fmt.Errorf("error accepting pending reviews: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// UpdateItemClassification regrava os campos de classificação de um item
// (usado na reclassificação em lote)
func (r *InvoiceRepository) UpdateItemClassification(item *models.InvoiceItem) error {
	query := `
		UPDATE invoice_items
		SET is_monofasico = $1,
			classification_confidence = $2,
			classification_rule = $3,
			needs_human_review = $4,
			cfop_valid_for_credit = $5,
			cfop_validation_message = $6,
			credit_blocked_reason = $7
		WHERE id = $8 AND manual_override = false
	`

	_, err := r.db.ExecWithTimeout(query,
		item.IsMonofasico, item.ClassificationConfidence, item.ClassificationRule,
		item.NeedsHumanReview, item.CFOPValidForCredit, item.CFOPValidationMessage,
		item.CreditBlockedReason, item.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating item classification: %w", err)
	}

	return nil
}

// CountByCompany conta notas e itens pendentes de revisão da empresa
func (r *InvoiceRepository) CountByCompany(companyID uuid.UUID) (invoices int, pendingReview int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM invoices WHERE company_id = $1),
			(SELECT COUNT(*) FROM invoice_items it
				JOIN invoices i ON it.invoice_id = i.id
				WHERE i.company_id = $1 AND it.needs_human_review = true AND it.human_reviewed = false)
	`

	err = r.db.QueryRowWithTimeout(query, companyID).Scan(&invoices, &pendingReview)
	if err != nil {
		return 0, 0, fmt.Errorf("error counting invoices: %w", err)
	}

	return invoices, pendingReview, nil
}

// TouchByItem atualiza o updated_at da nota dona do item
func (r *InvoiceRepository) TouchByItem(itemID uuid.UUID) error {
	query := `
		UPDATE invoices SET updated_at = $1
		WHERE id = (SELECT invoice_id FROM invoice_items WHERE id = $2)
	`
	if _, err := r.db.ExecWithTimeout(query, time.Now(), itemID); err != nil {
		return fmt.Errorf("error touching invoice: %w", err)
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.LineNo, &item.ProductCode, &item.NCMCode, &item.CFOP,
			&item.CSTPIS, &item.CSTCOFINS, &item.Description, &item.TotalValue,
			&item.IsMonofasico, &item.ClassificationConfidence, &item.ClassificationRule,
			&item.NeedsHumanReview, &item.ManualOverride, &item.HumanReviewed,
			&item.CFOPValidForCredit, &item.CFOPValidationMessage, &item.CreditBlockedReason,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	return items, nil
}
