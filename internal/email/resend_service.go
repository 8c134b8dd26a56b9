package email

import (
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// ResendService envia emails usando a API do Resend
type ResendService struct {
	client    *resend.Client
	fromEmail string
	baseURL   string
	logger    *logrus.Logger
}

// NewResendService cria uma nova instância de ResendService
func NewResendService(apiKey, fromEmail, baseURL string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// SendReportEmail envia o relatório de recuperação com o XLSX anexado
func (s *ResendService) SendReportEmail(company *models.Company, total models.TotalResult, xlsx []byte, fileName string) error {
	subject := fmt.Sprintf("Relatório de Recuperação PIS/COFINS - %s", company.Name)

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Relatório de Recuperação</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 8px; }
        .content { padding: 20px; }
        .credit { font-size: 20px; font-weight: bold; color: #28a745; }
        .footer { margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 8px; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Recuperação de PIS/COFINS Monofásico</h1>
            <p>%s</p>
        </div>

        <div class="content">
            <p>Segue em anexo o relatório de apuração dos créditos de PIS/COFINS
            sobre receita monofásica não segregada no PGDAS.</p>

            <ul>
                <li><strong>Meses apurados:</strong> %d</li>
                <li><strong>Receita total:</strong> R$ %.2f</li>
                <li><strong>Receita monofásica:</strong> R$ %.2f</li>
                <li><strong>DAS pago:</strong> R$ %.2f</li>
                <li><strong>Crédito estimado:</strong> <span class="credit">R$ %.2f</span></li>
            </ul>

            <p>Os valores são estimativas com base nos XMLs enviados e nos dados
            do PGDAS informados. A restituição deve ser conferida por um contador
            antes do pedido via PER/DCOMP.</p>
        </div>

        <div class="footer">
            <p>Este é um email automático do sistema de recuperação tributária.</p>
        </div>
    </div>
</body>
</html>`,
		company.Name,
		total.Months,
		total.TotalRevenue,
		total.MonofasicoRevenue,
		total.DASPaid,
		total.CreditAmount,
	)

	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{company.Email},
		Subject: subject,
		Html:    htmlContent,
		Attachments: []*resend.Attachment{
			{
				Filename:    fileName,
				Content:     xlsx,
				ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			},
		},
	}

	result, err := s.client.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id": result.Id,
		"to":       company.Email,
		"subject":  subject,
	}).Info("Report email sent successfully via Resend")

	return nil
}
