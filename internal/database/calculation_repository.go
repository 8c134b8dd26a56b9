package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// CalculationRepository cuida das operações de banco para os dados de
// apuração mensal (RBT12, DAS pago, anexo)
type CalculationRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewCalculationRepository cria uma nova instância do repositório
func NewCalculationRepository(db *DB, logger *logrus.Logger) *CalculationRepository {
	return &CalculationRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert grava os dados de apuração de um mês, sobrescrevendo o registro
// anterior da mesma competência
func (r *CalculationRepository) Upsert(input *models.CalculationInput) error {
	query := `
		INSERT INTO calculation_inputs (
			company_id, competence_month, rbt12, das_paid, anexo,
			manual_effective_aliquot, include_in_report, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id, competence_month) DO UPDATE SET
			rbt12 = EXCLUDED.rbt12,
			das_paid = EXCLUDED.das_paid,
			anexo = EXCLUDED.anexo,
			manual_effective_aliquot = EXCLUDED.manual_effective_aliquot,
			include_in_report = EXCLUDED.include_in_report,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecWithTimeout(query,
		input.CompanyID, input.CompetenceMonth, input.RBT12, input.DASPaid,
		nullableAnexo(input.Anexo), input.ManualEffectiveAliquot,
		input.IncludeInReport, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error upserting calculation input: %w", err)
	}

	return nil
}

// UpsertBatch grava um lote de apurações na mesma transação
func (r *CalculationRepository) UpsertBatch(companyID uuid.UUID, inputs []models.CalculationInput) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO calculation_inputs (
				company_id, competence_month, rbt12, das_paid, anexo,
				manual_effective_aliquot, include_in_report, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (company_id, competence_month) DO UPDATE SET
				rbt12 = EXCLUDED.rbt12,
				das_paid = EXCLUDED.das_paid,
				anexo = EXCLUDED.anexo,
				manual_effective_aliquot = EXCLUDED.manual_effective_aliquot,
				include_in_report = EXCLUDED.include_in_report,
				updated_at = EXCLUDED.updated_at
		`

		now := time.Now()
		for _, input := range inputs {
			_, err := tx.Exec(query,
				companyID, input.CompetenceMonth, input.RBT12, input.DASPaid,
				nullableAnexo(input.Anexo), input.ManualEffectiveAliquot,
				input.IncludeInReport, now,
			)
			if err != nil {
				return fmt.Errorf("error upserting calculation input %s: %w", input.CompetenceMonth, err)
			}
		}

		return nil
	})
}

// GetByCompany retorna as apurações da empresa ordenadas por competência
func (r *CalculationRepository) GetByCompany(companyID uuid.UUID) ([]models.CalculationInput, error) {
	query := `
		SELECT company_id, competence_month, rbt12, das_paid, anexo,
			   manual_effective_aliquot, include_in_report, updated_at
		FROM calculation_inputs
		WHERE company_id = $1
		ORDER BY competence_month
	`

	rows, err := r.db.QueryWithTimeout(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("error querying calculation inputs: %w", err)
	}
	defer rows.Close()

	var inputs []models.CalculationInput
	for rows.Next() {
		var input models.CalculationInput
		var anexo sql.NullString
		err := rows.Scan(
			&input.CompanyID, &input.CompetenceMonth, &input.RBT12, &input.DASPaid,
			&anexo, &input.ManualEffectiveAliquot, &input.IncludeInReport,
			&input.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning calculation input: %w", err)
		}
		if anexo.Valid {
			input.Anexo = models.Anexo(anexo.String)
		}
		inputs = append(inputs, input)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calculation inputs: %w", err)
	}

	return inputs, nil
}

// nullableAnexo converte um anexo vazio para NULL
func nullableAnexo(anexo models.Anexo) interface{} {
	if anexo == "" {
		return nil
	}
	return string(anexo)
}
