package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/simples"
)

// TTL do cache de resultados; a invalidação explícita cobre as mudanças, o
// TTL é só rede de segurança
const resultsCacheTTL = 1 * time.Hour

// CalculationService cuida dos dados de apuração e do recálculo do DAS com
// segregação de receita monofásica
type CalculationService struct {
	calcRepo    *database.CalculationRepository
	invoiceRepo *database.InvoiceRepository
	companyRepo *database.CompanyRepository
	redis       *database.Redis
	logger      *logrus.Logger
}

// NewCalculationService cria uma nova instância do serviço
func NewCalculationService(db *database.DB, redis *database.Redis, logger *logrus.Logger) *CalculationService {
	return &CalculationService{
		calcRepo:    database.NewCalculationRepository(db, logger),
		invoiceRepo: database.NewInvoiceRepository(db, logger),
		companyRepo: database.NewCompanyRepository(db, logger),
		redis:       redis,
		logger:      logger,
	}
}

// SaveInputs grava um lote de apurações mensais e invalida o cache
func (s *CalculationService) SaveInputs(companyID uuid.UUID, req *models.SaveCalculationInputsRequest) error {
	if _, err := s.companyRepo.GetByID(companyID); err != nil {
		return err
	}

	inputs := make([]models.CalculationInput, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		inputs = append(inputs, models.CalculationInput{
			CompanyID:              companyID,
			CompetenceMonth:        in.CompetenceMonth,
			RBT12:                  in.RBT12,
			DASPaid:                in.DASPaid,
			Anexo:                  in.Anexo,
			ManualEffectiveAliquot: in.ManualEffectiveAliquot,
			IncludeInReport:        in.IncludeInReport,
		})
	}

	if err := s.calcRepo.UpsertBatch(companyID, inputs); err != nil {
		return err
	}

	s.Invalidate(companyID)
	return nil
}

// GetInputs retorna as apurações salvas da empresa
func (s *CalculationService) GetInputs(companyID uuid.UUID) ([]models.CalculationInput, error) {
	return s.calcRepo.GetByCompany(companyID)
}

// GetResults retorna os resultados mensais, do cache quando disponível
func (s *CalculationService) GetResults(companyID uuid.UUID) ([]models.CalculationResult, error) {
	cacheKey := resultsCacheKey(companyID)

	if s.redis != nil {
		if cached, err := s.redis.Get(cacheKey); err == nil {
			var results []models.CalculationResult
			if err := json.Unmarshal([]byte(cached), &results); err == nil {
				return results, nil
			}
		}
	}

	invoices, err := s.invoiceRepo.GetByCompany(companyID)
	if err != nil {
		return nil, err
	}
	inputs, err := s.calcRepo.GetByCompany(companyID)
	if err != nil {
		return nil, err
	}

	results := simples.Calculate(invoices, inputs)

	if s.redis != nil {
		if payload, err := json.Marshal(results); err == nil {
			if err := s.redis.SetWithTTL(cacheKey, payload, resultsCacheTTL); err != nil {
				s.logger.Warnf("Error caching calculation results: %v", err)
			}
		}
	}

	return results, nil
}

// GetYearlyResults retorna a consolidação anual
func (s *CalculationService) GetYearlyResults(companyID uuid.UUID) ([]models.YearlyResult, error) {
	results, err := s.GetResults(companyID)
	if err != nil {
		return nil, err
	}
	return simples.YearlyRollup(results), nil
}

// GetTotalResult retorna o sumário do período completo
func (s *CalculationService) GetTotalResult(companyID uuid.UUID) (models.TotalResult, error) {
	results, err := s.GetResults(companyID)
	if err != nil {
		return models.TotalResult{}, err
	}
	return simples.TotalRollup(results), nil
}

// Invalidate descarta os resultados cacheados da empresa
func (s *CalculationService) Invalidate(companyID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(resultsCacheKey(companyID)); err != nil {
		s.logger.Warnf("Error invalidating calculation cache for %s: %v", companyID, err)
	}
}

func resultsCacheKey(companyID uuid.UUID) string {
	return fmt.Sprintf("calc:results:%s", companyID)
}
