package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/nfe"
)

// FileService cuida do recebimento e processamento dos XMLs de NF-e
type FileService struct {
	uploadRepo  *database.UploadRepository
	invoiceRepo *database.InvoiceRepository
	companyRepo *database.CompanyRepository
	storage     *database.StorageClient
	calcService *CalculationService
	logger      *logrus.Logger
}

// NewFileService cria uma nova instância do serviço
func NewFileService(db *database.DB, storage *database.StorageClient, calcService *CalculationService, logger *logrus.Logger) *FileService {
	return &FileService{
		uploadRepo:  database.NewUploadRepository(db, logger),
		invoiceRepo: database.NewInvoiceRepository(db, logger),
		companyRepo: database.NewCompanyRepository(db, logger),
		storage:     storage,
		calcService: calcService,
		logger:      logger,
	}
}

// Receive registra um arquivo recebido com status PENDING
func (s *FileService) Receive(companyID uuid.UUID, req *models.UploadFileRequest) (*models.UploadFile, error) {
	if _, err := s.companyRepo.GetByID(companyID); err != nil {
		return nil, err
	}

	file := &models.UploadFile{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Name:       req.Name,
		Content:    req.Content,
		Size:       int64(len(req.Content)),
		Status:     models.UploadStatusPending,
		UploadedAt: time.Now(),
	}

	if err := s.uploadRepo.Create(file); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"file":       file.Name,
		"size":       file.Size,
	}).Info("XML file received")

	return file, nil
}

// ListFiles retorna os arquivos da empresa sem o conteúdo
func (s *FileService) ListFiles(companyID uuid.UUID) ([]models.UploadFile, error) {
	return s.uploadRepo.ListByCompany(companyID)
}

// ProcessPending processa todos os arquivos PENDING da empresa. Um XML
// inválido marca apenas o próprio arquivo como FAILED; o lote continua.
func (s *FileService) ProcessPending(ctx context.Context, companyID uuid.UUID) (*models.ProcessFilesResponse, error) {
	files, err := s.uploadRepo.GetPendingByCompany(companyID)
	if err != nil {
		return nil, err
	}

	response := &models.ProcessFilesResponse{}
	for _, file := range files {
		if err := s.processFile(ctx, &file); err != nil {
			response.Failed++
			s.logger.WithFields(logrus.Fields{
				"file":  file.Name,
				"error": err.Error(),
			}).Warn("XML file rejected")

			if markErr := s.uploadRepo.MarkFailed(file.ID, err.Error()); markErr != nil {
				s.logger.Errorf("Error marking file %s failed: %v", file.ID, markErr)
			}
			continue
		}
		response.Processed++
	}

	_, pendingReview, err := s.invoiceRepo.CountByCompany(companyID)
	if err != nil {
		s.logger.Warnf("Error counting items to review: %v", err)
	}
	response.ItemsToReview = pendingReview

	// Notas novas mudam a receita agregada
	if response.Processed > 0 && s.calcService != nil {
		s.calcService.Invalidate(companyID)
	}

	return response, nil
}

// processFile faz o parse, arquiva o XML e grava a nota classificada
func (s *FileService) processFile(ctx context.Context, file *models.UploadFile) error {
	invoice, err := nfe.Parse(file.Content, file.Name)
	if err != nil {
		return err
	}

	if invoice.AccessKey != "" {
		existing, err := s.invoiceRepo.GetByAccessKey(file.CompanyID, invoice.AccessKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("nota duplicada: chave de acesso %s já importada", invoice.AccessKey)
		}
	}

	now := time.Now()
	invoice.ID = uuid.New()
	invoice.CompanyID = file.CompanyID
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	for i := range invoice.Items {
		invoice.Items[i].ID = uuid.New()
		invoice.Items[i].InvoiceID = invoice.ID
	}

	var storageURL *string
	if s.storage != nil {
		key := fmt.Sprintf("%s/%s.xml", file.CompanyID, invoice.ID)
		url, err := s.storage.UploadXML(ctx, key, []byte(file.Content))
		if err != nil {
			// Arquivamento não bloqueia o processamento
			s.logger.Warnf("Error archiving XML %s: %v", file.Name, err)
		} else {
			storageURL = &url
		}
	}

	if err := s.invoiceRepo.Create(invoice); err != nil {
		return err
	}

	return s.uploadRepo.MarkProcessed(file.ID, storageURL)
}

// DeleteFile remove um upload da empresa. Notas já processadas a partir do
// arquivo não são afetadas.
func (s *FileService) DeleteFile(companyID, fileID uuid.UUID) error {
	return s.uploadRepo.Delete(fileID, companyID)
}

// ListInvoices retorna as notas da empresa com seus itens
func (s *FileService) ListInvoices(companyID uuid.UUID) ([]models.Invoice, error) {
	return s.invoiceRepo.GetByCompany(companyID)
}
