package models

import (
	"time"

	"github.com/google/uuid"
)

// Company representa uma empresa do Simples Nacional cadastrada no sistema
type Company struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CNPJ      string    `json:"cnpj" db:"cnpj"`
	Email     string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateCompanyRequest representa o request para cadastrar uma empresa
type CreateCompanyRequest struct {
	Name  string `json:"name" binding:"required"`
	CNPJ  string `json:"cnpj" binding:"required"`
	Email string `json:"email,omitempty"`
}

// CompanyResponse representa a resposta ao cadastrar uma empresa
type CompanyResponse struct {
	ID string `json:"id"`
}
