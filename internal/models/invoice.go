package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice representa uma NF-e processada (cabeçalho + itens classificados)
type Invoice struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`

	// Dados extraídos do XML
	AccessKey  string  `json:"access_key" db:"access_key"`
	IssueDate  string  `json:"issue_date" db:"issue_date"` // "YYYY-MM-DD"
	TotalValue float64 `json:"total_value" db:"total_value"`

	// Metadados
	SourceFile string    `json:"source_file,omitempty" db:"source_file"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Items []InvoiceItem `json:"items,omitempty"`
}

// InvoiceItem representa uma linha tributável de uma NF-e
type InvoiceItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	InvoiceID uuid.UUID `json:"invoice_id" db:"invoice_id"`
	LineNo    int       `json:"line_no" db:"line_no"`

	// Dados do produto e da operação
	ProductCode string  `json:"product_code" db:"product_code"`
	NCMCode     string  `json:"ncm_code" db:"ncm_code"`
	CFOP        string  `json:"cfop" db:"cfop"`
	CSTPIS      string  `json:"cst_pis" db:"cst_pis"`
	CSTCOFINS   string  `json:"cst_cofins" db:"cst_cofins"`
	Description string  `json:"description" db:"description"`
	TotalValue  float64 `json:"total_value" db:"total_value"`

	// Resultado da classificação (NCM + CFOP)
	IsMonofasico             bool    `json:"is_monofasico" db:"is_monofasico"`
	ClassificationConfidence float64 `json:"classification_confidence" db:"classification_confidence"`
	ClassificationRule       string  `json:"classification_rule" db:"classification_rule"`
	NeedsHumanReview         bool    `json:"needs_human_review" db:"needs_human_review"`

	// Revisão manual
	ManualOverride bool `json:"manual_override" db:"manual_override"`
	HumanReviewed  bool `json:"human_reviewed" db:"human_reviewed"`

	// Validação do CFOP para crédito
	CFOPValidForCredit    bool    `json:"cfop_valid_for_credit" db:"cfop_valid_for_credit"`
	CFOPValidationMessage string  `json:"cfop_validation_message,omitempty" db:"cfop_validation_message"`
	CreditBlockedReason   *string `json:"credit_blocked_reason,omitempty" db:"credit_blocked_reason"`
}

// ProcessFilesResponse representa o resultado de um lote de processamento
type ProcessFilesResponse struct {
	Processed     int `json:"processed"`
	Failed        int `json:"failed"`
	ItemsToReview int `json:"items_to_review"`
}

// ReviewItemEdit representa a edição manual de um item na revisão
type ReviewItemEdit struct {
	ItemID       uuid.UUID `json:"item_id" binding:"required"`
	IsMonofasico bool      `json:"is_monofasico"`
}

// ReviewSaveRequest representa o request para salvar um lote de revisão.
// Itens pendentes que não aparecem em Edits são considerados aceitos como estão.
type ReviewSaveRequest struct {
	Edits []ReviewItemEdit `json:"edits"`
}

// ReviewSaveResponse representa a resposta ao salvar a revisão
type ReviewSaveResponse struct {
	Edited   int `json:"edited"`
	Accepted int `json:"accepted"`
}

// InvoiceListResponse representa a listagem paginada de notas
type InvoiceListResponse struct {
	Items    []Invoice `json:"items"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Total    int       `json:"total"`
}
