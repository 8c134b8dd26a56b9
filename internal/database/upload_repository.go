package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// UploadRepository cuida das operações de banco para arquivos enviados
type UploadRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewUploadRepository cria uma nova instância do repositório
func NewUploadRepository(db *DB, logger *logrus.Logger) *UploadRepository {
	return &UploadRepository{
		db:     db,
		logger: logger,
	}
}

// Create registra um arquivo recebido com status PENDING
func (r *UploadRepository) Create(file *models.UploadFile) error {
	query := `
		INSERT INTO upload_files (
			id, company_id, name, content, size, status, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecWithTimeout(query,
		file.ID, file.CompanyID, file.Name, file.Content, file.Size,
		file.Status, file.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting upload file: %w", err)
	}

	return nil
}

// GetByID busca um arquivo por ID, incluindo o conteúdo
func (r *UploadRepository) GetByID(id uuid.UUID) (*models.UploadFile, error) {
	query := `
		SELECT id, company_id, name, content, size, status, error_message,
			   storage_url, processed_at, uploaded_at
		FROM upload_files
		WHERE id = $1
	`

	var file models.UploadFile
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&file.ID, &file.CompanyID, &file.Name, &file.Content, &file.Size,
		&file.Status, &file.ErrorMessage, &file.StorageURL, &file.ProcessedAt,
		&file.UploadedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("upload file not found: %s", id)
		}
		return nil, fmt.Errorf("error querying upload file: %w", err)
	}

	return &file, nil
}

// GetPendingByCompany retorna os arquivos PENDING da empresa, com conteúdo,
// na ordem de chegada
func (r *UploadRepository) GetPendingByCompany(companyID uuid.UUID) ([]models.UploadFile, error) {
	query := `
		SELECT id, company_id, name, content, size, status, error_message,
			   storage_url, processed_at, uploaded_at
		FROM upload_files
		WHERE company_id = $1 AND status = $2
		ORDER BY uploaded_at
	`

	rows, err := r.db.QueryWithTimeout(query, companyID, models.UploadStatusPending)
	if err != nil {
		return nil, fmt.Errorf("error querying pending files: %w", err)
	}
	defer rows.Close()

	return scanUploadFiles(rows)
}

// ListByCompany retorna os arquivos da empresa sem o conteúdo
func (r *UploadRepository) ListByCompany(companyID uuid.UUID) ([]models.UploadFile, error) {
	query := `
		SELECT id, company_id, name, '', size, status, error_message,
			   storage_url, processed_at, uploaded_at
		FROM upload_files
		WHERE company_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.QueryWithTimeout(query, companyID)
	if err != nil {
		return nil, fmt.Errorf("error querying upload files: %w", err)
	}
	defer rows.Close()

	return scanUploadFiles(rows)
}

// MarkProcessed marca o arquivo como processado e limpa o conteúdo bruto
func (r *UploadRepository) MarkProcessed(id uuid.UUID, storageURL *string) error {
	query := `
		UPDATE upload_files
		SET status = $1, error_message = NULL, storage_url = $2,
			processed_at = $3, content = ''
		WHERE id = $4
	`

	result, err := r.db.ExecWithTimeout(query, models.UploadStatusProcessed, storageURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error marking file processed: %w", err)
	}

	return requireRow(result, id)
}

// MarkFailed marca o arquivo como FAILED com a mensagem de erro
func (r *UploadRepository) MarkFailed(id uuid.UUID, message string) error {
	query := `
		UPDATE upload_files
		SET status = $1, error_message = $2, processed_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecWithTimeout(query, models.UploadStatusFailed, message, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error marking file failed: %w", err)
	}

	return requireRow(result, id)
}

// Delete remove o registro de upload de uma empresa
func (r *UploadRepository) Delete(id, companyID uuid.UUID) error {
	query := `
		DELETE FROM upload_files
		WHERE id = $1 AND company_id = $2
	`

	result, err := r.db.ExecWithTimeout(query, id, companyID)
	if err != nil {
		return fmt.Errorf("error deleting upload file: %w", err)
	}

	return requireRow(result, id)
}

func requireRow(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("upload file not found: %s", id)
	}
	return nil
}

func scanUploadFiles(rows *sql.Rows) ([]models.UploadFile, error) {
	var files []models.UploadFile
	for rows.Next() {
		var file models.UploadFile
		err := rows.Scan(
			&file.ID, &file.CompanyID, &file.Name, &file.Content, &file.Size,
			&file.Status, &file.ErrorMessage, &file.StorageURL, &file.ProcessedAt,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning upload file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload files: %w", err)
	}

	return files, nil
}
