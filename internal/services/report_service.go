package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/email"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService gera os relatórios de recuperação em XLSX e PDF
type ReportService struct {
	companyRepo *database.CompanyRepository
	invoiceRepo *database.InvoiceRepository
	calcService *CalculationService
	resend      *email.ResendService
	storage     *database.StorageClient
	logger      *logrus.Logger
}

// NewReportService cria uma nova instância do serviço
func NewReportService(db *database.DB, calcService *CalculationService, resend *email.ResendService, storage *database.StorageClient, logger *logrus.Logger) *ReportService {
	return &ReportService{
		companyRepo: database.NewCompanyRepository(db, logger),
		invoiceRepo: database.NewInvoiceRepository(db, logger),
		calcService: calcService,
		resend:      resend,
		storage:     storage,
		logger:      logger,
	}
}

// GenerateXLSX monta a planilha da empresa com três abas: Sumário,
// Apuração Mensal e Itens Monofásicos
func (s *ReportService) GenerateXLSX(companyID uuid.UUID) ([]byte, string, error) {
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, "", err
	}
	results, err := s.calcService.GetResults(companyID)
	if err != nil {
		return nil, "", err
	}
	yearly, err := s.calcService.GetYearlyResults(companyID)
	if err != nil {
		return nil, "", err
	}
	total, err := s.calcService.GetTotalResult(companyID)
	if err != nil {
		return nil, "", err
	}
	invoices, err := s.invoiceRepo.GetByCompany(companyID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSummarySheet(f, company, total, yearly); err != nil {
		return nil, "", err
	}
	if err := s.writeMonthlySheet(f, results); err != nil {
		return nil, "", err
	}
	if err := s.writeItemsSheet(f, invoices); err != nil {
		return nil, "", err
	}

	// A aba padrão do excelize fica vazia depois das nossas
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("error writing XLSX: %w", err)
	}

	fileName := fmt.Sprintf("recuperacao-pis-cofins-%s.xlsx", company.CNPJ)
	s.archive(companyID, fileName, buf.Bytes(), xlsxContentType)
	return buf.Bytes(), fileName, nil
}

func (s *ReportService) writeSummarySheet(f *excelize.File, company *models.Company, total models.TotalResult, yearly []models.YearlyResult) error {
	const sheet = "Sumário"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Recuperação de PIS/COFINS Monofásico"},
		{},
		{"Empresa", company.Name},
		{"CNPJ", company.CNPJ},
		{},
		{"Meses apurados", total.Months},
		{"Receita total (R$)", total.TotalRevenue},
		{"Receita monofásica (R$)", total.MonofasicoRevenue},
		{"DAS pago (R$)", total.DASPaid},
		{"DAS devido recalculado (R$)", total.RecalculatedDASDue},
		{"Crédito estimado (R$)", total.CreditAmount},
		{},
		{"Ano", "Meses", "Receita total", "Receita monofásica", "DAS pago", "Crédito", "Anexo"},
	}
	for _, y := range yearly {
		rows = append(rows, []interface{}{y.Year, y.Months, y.TotalRevenue, y.MonofasicoRevenue, y.DASPaid, y.CreditAmount, y.AnexoUsed})
	}

	return writeRows(f, sheet, rows)
}

func (s *ReportService) writeMonthlySheet(f *excelize.File, results []models.CalculationResult) error {
	const sheet = "Apuração Mensal"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Competência", "Receita total", "Receita monofásica", "DAS pago", "Anexo",
			"Alíquota efetiva", "Partilha PIS/COFINS", "Crédito", "DAS devido recalculado"},
	}
	for _, r := range results {
		rows = append(rows, []interface{}{
			r.CompetenceMonth, r.TotalRevenue, r.MonofasicoRevenue, r.DASPaid, r.AnexoUsed,
			r.EffectiveAliquot, r.PISCOFINSShare, r.CreditAmount, r.RecalculatedDASDue,
		})
	}

	return writeRows(f, sheet, rows)
}

func (s *ReportService) writeItemsSheet(f *excelize.File, invoices []models.Invoice) error {
	const sheet = "Itens Monofásicos"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Chave de acesso", "Emissão", "Item", "Produto", "NCM", "CFOP", "CST PIS",
			"Valor", "Regra", "Revisado"},
	}
	for _, invoice := range invoices {
		for _, item := range invoice.Items {
			if !item.IsMonofasico {
				continue
			}
			reviewed := ""
			if item.HumanReviewed {
				reviewed = "Sim"
			}
			rows = append(rows, []interface{}{
				invoice.AccessKey, invoice.IssueDate, item.LineNo, item.Description,
				item.NCMCode, item.CFOP, item.CSTPIS, item.TotalValue,
				item.ClassificationRule, reviewed,
			})
		}
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// GeneratePDF monta o resumo executivo da recuperação em PDF
func (s *ReportService) GeneratePDF(companyID uuid.UUID) ([]byte, string, error) {
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, "", err
	}
	results, err := s.calcService.GetResults(companyID)
	if err != nil {
		return nil, "", err
	}
	total, err := s.calcService.GetTotalResult(companyID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Cabeçalho com fundo colorido
	pdf.SetFillColor(22, 101, 52)
	pdf.Rect(0, 0, 210, 32, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetY(8)
	pdf.Cell(190, 10, tr("Recuperação de PIS/COFINS Monofásico"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(190, 8, tr(fmt.Sprintf("%s - CNPJ %s", company.Name, company.CNPJ)))

	pdf.SetTextColor(44, 62, 80)
	pdf.SetY(42)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(190, 8, tr("Resumo do período"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	summary := [][]string{
		{"Meses apurados", fmt.Sprintf("%d", total.Months)},
		{"Receita total", formatBRL(total.TotalRevenue)},
		{"Receita monofásica", formatBRL(total.MonofasicoRevenue)},
		{"DAS pago", formatBRL(total.DASPaid)},
		{"DAS devido recalculado", formatBRL(total.RecalculatedDASDue)},
		{"Crédito estimado", formatBRL(total.CreditAmount)},
	}
	for _, row := range summary {
		pdf.Cell(80, 7, tr(row[0]))
		pdf.Cell(110, 7, tr(row[1]))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(190, 8, tr("Apuração mensal"))
	pdf.Ln(10)

	// Tabela mensal
	pdf.SetFillColor(236, 240, 241)
	pdf.SetFont("Arial", "B", 9)
	colWidths := []float64{25, 35, 35, 30, 30, 35}
	colHeaders := []string{"Mês", "Receita", "Monofásica", "DAS pago", "Crédito", "DAS devido"}
	for i, header := range colHeaders {
		pdf.CellFormat(colWidths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFillColor(255, 255, 255)
	pdf.SetFont("Arial", "", 9)
	for _, r := range results {
		cells := []string{
			r.CompetenceMonth,
			formatBRL(r.TotalRevenue),
			formatBRL(r.MonofasicoRevenue),
			formatBRL(r.DASPaid),
			formatBRL(r.CreditAmount),
			formatBRL(r.RecalculatedDASDue),
		}
		for i, cell := range cells {
			pdf.CellFormat(colWidths[i], 7, tr(cell), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(7)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(190, 5, tr("Valores estimados com base nos XMLs importados e nos dados do PGDAS informados. A restituição deve ser validada por um contador antes do pedido via PER/DCOMP."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("error generating PDF: %w", err)
	}

	fileName := fmt.Sprintf("recuperacao-pis-cofins-%s.pdf", company.CNPJ)
	s.archive(companyID, fileName, buf.Bytes(), "application/pdf")
	return buf.Bytes(), fileName, nil
}

// archive guarda uma cópia do relatório no storage. Falha não bloqueia a
// geração, o download segue com os bytes em memória.
func (s *ReportService) archive(companyID uuid.UUID, fileName string, content []byte, contentType string) {
	if s.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("reports/%s/%s", companyID, fileName)
	if _, err := s.storage.Upload(ctx, key, content, contentType); err != nil {
		s.logger.Warnf("Error archiving report %s: %v", fileName, err)
	}
}

// EmailReport envia o XLSX por email para o endereço da empresa
func (s *ReportService) EmailReport(companyID uuid.UUID) error {
	if s.resend == nil {
		return fmt.Errorf("email service not configured")
	}

	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return err
	}
	if company.Email == "" {
		return fmt.Errorf("company %s has no email address", companyID)
	}

	xlsx, fileName, err := s.GenerateXLSX(companyID)
	if err != nil {
		return err
	}
	total, err := s.calcService.GetTotalResult(companyID)
	if err != nil {
		return err
	}

	return s.resend.SendReportEmail(company, total, xlsx, fileName)
}

func formatBRL(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}
