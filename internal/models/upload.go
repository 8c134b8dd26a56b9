package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus representa o estado de processamento de um arquivo enviado
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "PENDING"
	UploadStatusFailed    UploadStatus = "FAILED"
	UploadStatusProcessed UploadStatus = "PROCESSED"
)

// UploadFile representa um arquivo XML de NF-e enviado para processamento
type UploadFile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`

	Name    string       `json:"name" db:"name"`
	Content string       `json:"-" db:"content"`
	Size    int64        `json:"size" db:"size"`
	Status  UploadStatus `json:"status" db:"status"`

	// Preenchidos pelo processamento
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	StorageURL   *string    `json:"storage_url,omitempty" db:"storage_url"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty" db:"processed_at"`

	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// UploadFileRequest representa o request para registrar um arquivo XML
type UploadFileRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UploadFileResponse representa a resposta ao registrar um arquivo
type UploadFileResponse struct {
	ID     string       `json:"id"`
	Status UploadStatus `json:"status"`
}
