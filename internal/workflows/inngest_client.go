package workflows

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/config"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
)

// ReclassifyEventName é o evento que dispara a reclassificação dos itens de uma empresa
const ReclassifyEventName = "tax/company.reclassify"

// InngestClient cuida da configuração e do registro dos workflows
type InngestClient struct {
	client inngestgo.Client
	logger *logrus.Logger
}

// NewInngestClient cria uma nova instância do cliente
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	if cfg.Inngest.EventKey == "" {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}

	if cfg.Inngest.SigningKey == "" {
		return nil, fmt.Errorf("INNGEST_SIGNING_KEY not configured")
	}

	client, err := inngestgo.NewClient(inngestgo.ClientOpts{
		EventKey:   &cfg.Inngest.EventKey,
		SigningKey: &cfg.Inngest.SigningKey,
		AppID:      cfg.Inngest.AppID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return &InngestClient{
		client: client,
		logger: logger,
	}, nil
}

// RegisterWorkflows registra os workflows no Inngest
func (c *InngestClient) RegisterWorkflows(invoiceRepo *database.InvoiceRepository, cache ResultCacheInvalidator) error {
	c.logger.Info("Registering workflows with Inngest")

	workflow := NewReclassifyWorkflow(c.client, c.logger, invoiceRepo, cache)

	_, err := inngestgo.CreateFunction(
		c.client,
		inngestgo.FunctionOpts{
			ID:   "reclassify-company-items",
			Name: "Reclassificação de itens por empresa",
		},
		inngestgo.EventTrigger(ReclassifyEventName, nil),
		func(ctx context.Context, input inngestgo.Input[ReclassifyWorkflowInput]) (any, error) {
			return workflow.ReclassifyCompany(ctx, input)
		},
	)
	if err != nil {
		return fmt.Errorf("error registering reclassify workflow: %w", err)
	}

	return nil
}

// SendReclassifyEvent dispara a reclassificação assíncrona dos itens de uma empresa
func (c *InngestClient) SendReclassifyEvent(ctx context.Context, companyID uuid.UUID) error {
	_, err := c.client.Send(ctx, inngestgo.Event{
		Name: ReclassifyEventName,
		Data: map[string]any{
			"company_id": companyID.String(),
		},
	})
	if err != nil {
		return fmt.Errorf("error sending reclassify event: %w", err)
	}

	c.logger.WithField("company_id", companyID).Info("Reclassify event sent")
	return nil
}

// Serve expõe o handler HTTP que o Inngest usa para invocar os workflows
func (c *InngestClient) Serve() http.Handler {
	return c.client.Serve()
}

// GetClient retorna o cliente do Inngest
func (c *InngestClient) GetClient() inngestgo.Client {
	return c.client
}
