package workflows

import (
	"context"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/classification"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
)

// ResultCacheInvalidator descarta os resultados de apuração cacheados de uma
// empresa. Satisfeito pelo CalculationService.
type ResultCacheInvalidator interface {
	Invalidate(companyID uuid.UUID)
}

// ReclassifyWorkflow reaplica as regras de classificação em todos os itens de
// uma empresa. Disparado quando as tabelas de NCM/CFOP mudam de versão, para
// não deixar vereditos antigos no banco. Itens com override manual não são
// tocados.
type ReclassifyWorkflow struct {
	client      inngestgo.Client
	logger      *logrus.Logger
	invoiceRepo *database.InvoiceRepository
	cache       ResultCacheInvalidator
}

// NewReclassifyWorkflow cria uma nova instância do workflow
func NewReclassifyWorkflow(client inngestgo.Client, logger *logrus.Logger, invoiceRepo *database.InvoiceRepository, cache ResultCacheInvalidator) *ReclassifyWorkflow {
	return &ReclassifyWorkflow{
		client:      client,
		logger:      logger,
		invoiceRepo: invoiceRepo,
		cache:       cache,
	}
}

// ReclassifyWorkflowInput representa o input do workflow
type ReclassifyWorkflowInput struct {
	CompanyID uuid.UUID `json:"company_id"`
}

// ReclassifyWorkflowOutput representa o output do workflow
type ReclassifyWorkflowOutput struct {
	CompanyID    uuid.UUID `json:"company_id"`
	ItemsTotal   int       `json:"items_total"`
	ItemsChanged int       `json:"items_changed"`
}

// ReclassifyCompany é a função principal do workflow
func (w *ReclassifyWorkflow) ReclassifyCompany(ctx context.Context, input inngestgo.Input[ReclassifyWorkflowInput]) (*ReclassifyWorkflowOutput, error) {
	return w.reclassify(input.Event.Data.CompanyID)
}

func (w *ReclassifyWorkflow) reclassify(companyID uuid.UUID) (*ReclassifyWorkflowOutput, error) {
	invoices, err := w.invoiceRepo.GetByCompany(companyID)
	if err != nil {
		return nil, err
	}

	output := &ReclassifyWorkflowOutput{CompanyID: companyID}

	for _, invoice := range invoices {
		for i := range invoice.Items {
			item := &invoice.Items[i]
			output.ItemsTotal++

			if item.ManualOverride {
				continue
			}

			before := item.IsMonofasico
			classification.ClassifyItem(item.NCMCode, item.CFOP, item.CSTPIS).Apply(item)

			if err := w.invoiceRepo.UpdateItemClassification(item); err != nil {
				w.logger.Warnf("Error reclassifying item %s: %v", item.ID, err)
				continue
			}
			if item.IsMonofasico != before {
				output.ItemsChanged++
			}
		}
	}

	// Vereditos novos mudam a receita monofásica; resultado cacheado não
	// pode sobreviver à reclassificação
	if output.ItemsChanged > 0 && w.cache != nil {
		w.cache.Invalidate(companyID)
	}

	w.logger.WithFields(logrus.Fields{
		"company_id":    companyID,
		"items_total":   output.ItemsTotal,
		"items_changed": output.ItemsChanged,
	}).Info("Company items reclassified")

	return output, nil
}
