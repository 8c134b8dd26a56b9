package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// ReviewService cuida da fila de revisão humana dos itens ambíguos
// (NCM monofásico com CFOP fora da lista de vendas)
type ReviewService struct {
	invoiceRepo *database.InvoiceRepository
	calcService *CalculationService
	logger      *logrus.Logger
}

// NewReviewService cria uma nova instância do serviço
func NewReviewService(db *database.DB, calcService *CalculationService, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		invoiceRepo: database.NewInvoiceRepository(db, logger),
		calcService: calcService,
		logger:      logger,
	}
}

// ListPending retorna os itens da empresa que aguardam revisão
func (s *ReviewService) ListPending(companyID uuid.UUID) ([]models.InvoiceItem, error) {
	return s.invoiceRepo.GetItemsNeedingReview(companyID)
}

// Save aplica as decisões de revisão. Cada item editado sai da fila com o
// veredito humano gravado como override; os pendentes restantes são aceitos
// com o veredito automático. O cache de apuração é invalidado porque a
// receita monofásica pode ter mudado.
func (s *ReviewService) Save(companyID uuid.UUID, req *models.ReviewSaveRequest) (*models.ReviewSaveResponse, error) {
	response := &models.ReviewSaveResponse{}

	for _, edit := range req.Edits {
		if err := s.invoiceRepo.ApplyReview(edit.ItemID, edit.IsMonofasico); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.TouchByItem(edit.ItemID); err != nil {
			s.logger.Warnf("Error touching invoice for item %s: %v", edit.ItemID, err)
		}

		response.Edited++
	}

	accepted, err := s.invoiceRepo.AcceptPendingReview(companyID)
	if err != nil {
		return nil, err
	}
	response.Accepted = accepted

	if response.Edited > 0 && s.calcService != nil {
		s.calcService.Invalidate(companyID)
	}

	s.logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"edited":     response.Edited,
		"accepted":   response.Accepted,
	}).Info("Item reviews saved")

	return response, nil
}
