package models

import (
	"time"

	"github.com/google/uuid"
)

// Anexo identifica a tabela de faixas do Simples Nacional aplicável à empresa
type Anexo string

const (
	Anexo1 Anexo = "anexo1"
	Anexo2 Anexo = "anexo2"
	Anexo3 Anexo = "anexo3"
	Anexo4 Anexo = "anexo4"
	Anexo5 Anexo = "anexo5"
)

// CalculationInput representa os dados de apuração informados pelo usuário
// para um mês de competência ("YYYY-MM")
type CalculationInput struct {
	CompanyID       uuid.UUID `json:"company_id" db:"company_id"`
	CompetenceMonth string    `json:"competence_month" db:"competence_month"`

	RBT12   float64 `json:"rbt12" db:"rbt12"`
	DASPaid float64 `json:"das_paid" db:"das_paid"`
	Anexo   Anexo   `json:"anexo" db:"anexo"`

	// Alíquota efetiva informada manualmente, em porcentagem (0-100)
	ManualEffectiveAliquot *float64 `json:"manual_effective_aliquot,omitempty" db:"manual_effective_aliquot"`

	// Quando false, o mês fica fora dos relatórios; nil equivale a true
	IncludeInReport *bool `json:"include_in_report,omitempty" db:"include_in_report"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Included informa se o mês entra no relatório (inclusão é o padrão)
func (ci CalculationInput) Included() bool {
	return ci.IncludeInReport == nil || *ci.IncludeInReport
}

// CalculationResult representa o resultado derivado da apuração de um mês.
// Valores monetários em BRL; effective_aliquot e pis_cofins_share são frações (0-1).
type CalculationResult struct {
	CompetenceMonth    string  `json:"competence_month"`
	TotalRevenue       float64 `json:"total_revenue"`
	MonofasicoRevenue  float64 `json:"monofasico_revenue"`
	DASPaid            float64 `json:"das_paid"`
	AnexoUsed          string  `json:"anexo_used"`
	EffectiveAliquot   float64 `json:"effective_aliquot"`
	PISCOFINSShare     float64 `json:"pis_cofins_share"`
	RecalculatedDASDue float64 `json:"recalculated_das_due"`
	CreditAmount       float64 `json:"credit_amount"`
}

// YearlyResult representa a consolidação anual dos resultados mensais.
// As alíquotas são médias aritméticas simples dos meses incluídos.
type YearlyResult struct {
	Year               string  `json:"year"`
	TotalRevenue       float64 `json:"total_revenue"`
	MonofasicoRevenue  float64 `json:"monofasico_revenue"`
	DASPaid            float64 `json:"das_paid"`
	AnexoUsed          string  `json:"anexo_used"`
	EffectiveAliquot   float64 `json:"effective_aliquot"`
	PISCOFINSShare     float64 `json:"pis_cofins_share"`
	RecalculatedDASDue float64 `json:"recalculated_das_due"`
	CreditAmount       float64 `json:"credit_amount"`
	Months             int     `json:"months"`
}

// TotalResult representa o sumário do período completo
type TotalResult struct {
	TotalRevenue       float64 `json:"total_revenue"`
	MonofasicoRevenue  float64 `json:"monofasico_revenue"`
	DASPaid            float64 `json:"das_paid"`
	RecalculatedDASDue float64 `json:"recalculated_das_due"`
	CreditAmount       float64 `json:"credit_amount"`
	Months             int     `json:"months"`
}

// CalculationInputRequest representa o request para salvar dados de apuração
type CalculationInputRequest struct {
	CompetenceMonth        string   `json:"competence_month" binding:"required"`
	RBT12                  float64  `json:"rbt12"`
	DASPaid                float64  `json:"das_paid"`
	Anexo                  Anexo    `json:"anexo" binding:"omitempty,oneof=anexo1 anexo2 anexo3 anexo4 anexo5"`
	ManualEffectiveAliquot *float64 `json:"manual_effective_aliquot,omitempty"`
	IncludeInReport        *bool    `json:"include_in_report,omitempty"`
}

// SaveCalculationInputsRequest representa o request para salvar um lote de apurações
type SaveCalculationInputsRequest struct {
	Inputs []CalculationInputRequest `json:"inputs" binding:"required,min=1,dive"`
}

// CalculationResultsResponse representa a resposta com os resultados mensais
type CalculationResultsResponse struct {
	Results []CalculationResult `json:"results"`
}
