package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// CompanyRepository cuida das operações de banco para Company
type CompanyRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewCompanyRepository cria uma nova instância do repositório
func NewCompanyRepository(db *DB, logger *logrus.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Create cria uma nova empresa
func (r *CompanyRepository) Create(company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, cnpj, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecWithTimeout(query,
		company.ID, company.Name, company.CNPJ, company.Email,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting company: %w", err)
	}

	return nil
}

// GetByID busca uma empresa por ID
func (r *CompanyRepository) GetByID(id uuid.UUID) (*models.Company, error) {
	query := `
		SELECT id, name, cnpj, email, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var company models.Company
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&company.ID, &company.Name, &company.CNPJ, &company.Email,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("company not found: %s", id)
		}
		return nil, fmt.Errorf("error querying company: %w", err)
	}

	return &company, nil
}

// GetByCNPJ busca uma empresa pelo CNPJ
func (r *CompanyRepository) GetByCNPJ(cnpj string) (*models.Company, error) {
	query := `
		SELECT id, name, cnpj, email, created_at, updated_at
		FROM companies
		WHERE cnpj = $1
	`

	var company models.Company
	err := r.db.QueryRowWithTimeout(query, cnpj).Scan(
		&company.ID, &company.Name, &company.CNPJ, &company.Email,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying company by cnpj: %w", err)
	}

	return &company, nil
}

// List retorna todas as empresas ordenadas por nome
func (r *CompanyRepository) List() ([]models.Company, error) {
	query := `
		SELECT id, name, cnpj, email, created_at, updated_at
		FROM companies
		ORDER BY name
	`

	rows, err := r.db.QueryWithTimeout(query)
	if err != nil {
		return nil, fmt.Errorf("error querying companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var company models.Company
		err := rows.Scan(
			&company.ID, &company.Name, &company.CNPJ, &company.Email,
			&company.CreatedAt, &company.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning company: %w", err)
		}
		companies = append(companies, company)
	}

	return companies, nil
}

// Delete remove uma empresa e os dados associados
func (r *CompanyRepository) Delete(id uuid.UUID) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		queries := []string{
			`DELETE FROM invoice_items WHERE invoice_id IN (SELECT id FROM invoices WHERE company_id = $1)`,
			`DELETE FROM invoices WHERE company_id = $1`,
			`DELETE FROM upload_files WHERE company_id = $1`,
			`DELETE FROM calculation_inputs WHERE company_id = $1`,
			`DELETE FROM companies WHERE id = $1`,
		}
		for _, q := range queries {
			if _, err := tx.Exec(q, id); err != nil {
				return fmt.Errorf("error deleting company data: %w", err)
			}
		}
		return nil
	})
}

// Touch atualiza o updated_at da empresa
func (r *CompanyRepository) Touch(id uuid.UUID) error {
	_, err := r.db.ExecWithTimeout(`UPDATE companies SET updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error touching company: %w", err)
	}
	return nil
}
