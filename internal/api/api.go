package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/database"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/services"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/workflows"
)

// API concentra todos os endpoints do serviço
type API struct {
	companyRepo   *database.CompanyRepository
	fileService   *services.FileService
	reviewService *services.ReviewService
	calcService   *services.CalculationService
	reportService *services.ReportService
	inngestClient *workflows.InngestClient
	logger        *logrus.Logger
}

// NewAPI cria uma nova instância da API
func NewAPI(
	companyRepo *database.CompanyRepository,
	fileService *services.FileService,
	reviewService *services.ReviewService,
	calcService *services.CalculationService,
	reportService *services.ReportService,
	inngestClient *workflows.InngestClient,
	logger *logrus.Logger,
) *API {
	return &API{
		companyRepo:   companyRepo,
		fileService:   fileService,
		reviewService: reviewService,
		calcService:   calcService,
		reportService: reportService,
		inngestClient: inngestClient,
		logger:        logger,
	}
}

// CreateCompany cadastra uma nova empresa do Simples Nacional
func (api *API) CreateCompany(c *gin.Context) {
	var req models.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	cnpj := normalizeCNPJ(req.CNPJ)
	if len(cnpj) != 14 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid CNPJ", []models.ErrorDetail{
			{Field: "cnpj", Issue: "Must contain 14 digits"},
		}))
		return
	}

	existing, err := api.companyRepo.GetByCNPJ(cnpj)
	if err != nil {
		api.logger.WithError(err).Error("Error checking existing company")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating company"))
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, models.NewConflictError(fmt.Sprintf("Company with CNPJ %s already exists", cnpj)))
		return
	}

	now := time.Now().UTC()
	company := &models.Company{
		ID:        uuid.New(),
		Name:      req.Name,
		CNPJ:      cnpj,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := api.companyRepo.Create(company); err != nil {
		api.logger.WithError(err).Error("Error creating company")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating company"))
		return
	}

	c.JSON(http.StatusCreated, models.CompanyResponse{ID: company.ID.String()})
}

// ListCompanies lista as empresas cadastradas
func (api *API) ListCompanies(c *gin.Context) {
	companies, err := api.companyRepo.List()
	if err != nil {
		api.logger.WithError(err).Error("Error listing companies")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error listing companies"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// GetCompany busca uma empresa pelo ID
func (api *API) GetCompany(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	company, err := api.companyRepo.GetByID(companyID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error getting company")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error retrieving company"))
		return
	}

	c.JSON(http.StatusOK, company)
}

// DeleteCompany remove uma empresa e todos os seus dados
func (api *API) DeleteCompany(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	if err := api.companyRepo.Delete(companyID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error deleting company")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error deleting company"))
		return
	}

	// Resultados em cache ficam órfãos sem a empresa
	api.calcService.Invalidate(companyID)

	c.Status(http.StatusNoContent)
}

// UploadFile registra um XML de NF-e para processamento posterior
func (api *API) UploadFile(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	var req models.UploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	file, err := api.fileService.Receive(companyID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error receiving file")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error receiving file"))
		return
	}

	c.JSON(http.StatusCreated, models.UploadFileResponse{
		ID:     file.ID.String(),
		Status: file.Status,
	})
}

// ListFiles lista os arquivos enviados por uma empresa
func (api *API) ListFiles(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	files, err := api.fileService.ListFiles(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error listing files")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error listing files"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// DeleteFile remove um arquivo enviado
func (api *API) DeleteFile(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid file ID", []models.ErrorDetail{
			{Field: "fileID", Issue: "Must be a valid UUID"},
		}))
		return
	}

	if err := api.fileService.DeleteFile(companyID, fileID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Upload file not found"))
			return
		}
		api.logger.WithError(err).Error("Error deleting file")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error deleting file"))
		return
	}

	c.Status(http.StatusNoContent)
}

// ProcessFiles processa todos os arquivos pendentes de uma empresa
func (api *API) ProcessFiles(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	response, err := api.fileService.ProcessPending(c.Request.Context(), companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error processing files")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error processing files"))
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListInvoices lista as notas processadas de uma empresa, com paginação
func (api *API) ListInvoices(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if err != nil || pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	invoices, err := api.fileService.ListInvoices(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error listing invoices")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error listing invoices"))
		return
	}

	total := len(invoices)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, models.InvoiceListResponse{
		Items:    invoices[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// ListReview lista os itens aguardando revisão humana
func (api *API) ListReview(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	items, err := api.reviewService.ListPending(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error listing review items")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error listing review items"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SaveReview aplica um lote de decisões de revisão humana
func (api *API) SaveReview(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	var req models.ReviewSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.reviewService.Save(companyID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Review item not found"))
			return
		}
		api.logger.WithError(err).Error("Error saving review")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error saving review"))
		return
	}

	c.JSON(http.StatusOK, response)
}

// SaveCalculationInputs grava os dados mensais do Simples (RBT12, DAS pago, anexo)
func (api *API) SaveCalculationInputs(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	var req models.SaveCalculationInputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	for i, in := range req.Inputs {
		if !validCompetenceMonth(in.CompetenceMonth) {
			c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid competence month", []models.ErrorDetail{
				{Field: fmt.Sprintf("inputs[%d].competence_month", i), Issue: "Must be in YYYY-MM format"},
			}))
			return
		}
	}

	if err := api.calcService.SaveInputs(companyID, &req); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error saving calculation inputs")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error saving calculation inputs"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": len(req.Inputs)})
}

// GetCalculationInputs lista os dados mensais gravados
func (api *API) GetCalculationInputs(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	inputs, err := api.calcService.GetInputs(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error listing calculation inputs")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error listing calculation inputs"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"inputs": inputs})
}

// GetResults retorna a apuração mensal de créditos
func (api *API) GetResults(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	results, err := api.calcService.GetResults(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error calculating results")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error calculating results"))
		return
	}

	c.JSON(http.StatusOK, models.CalculationResultsResponse{Results: results})
}

// GetYearlyResults retorna a apuração consolidada por ano
func (api *API) GetYearlyResults(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	results, err := api.calcService.GetYearlyResults(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error calculating yearly results")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error calculating yearly results"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetTotalResult retorna o total consolidado de todo o período
func (api *API) GetTotalResult(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	total, err := api.calcService.GetTotalResult(companyID)
	if err != nil {
		api.logger.WithError(err).Error("Error calculating total result")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error calculating total result"))
		return
	}

	c.JSON(http.StatusOK, total)
}

// DownloadXLSX gera e devolve o relatório em Excel
func (api *API) DownloadXLSX(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	content, fileName, err := api.reportService.GenerateXLSX(companyID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error generating XLSX report")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error generating report"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// DownloadPDF gera e devolve o relatório em PDF
func (api *API) DownloadPDF(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	content, fileName, err := api.reportService.GeneratePDF(companyID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error generating PDF report")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error generating report"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, "application/pdf", content)
}

// EmailReport envia o relatório por email para a empresa
func (api *API) EmailReport(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	if err := api.reportService.EmailReport(companyID); err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
		case strings.Contains(err.Error(), "not configured"):
			c.JSON(http.StatusServiceUnavailable, models.NewInternalError("Email service not available"))
		case strings.Contains(err.Error(), "no email address"):
			c.JSON(http.StatusBadRequest, models.NewValidationError("Company has no email address", []models.ErrorDetail{
				{Field: "email", Issue: "Register an email address for the company first"},
			}))
		default:
			api.logger.WithError(err).Error("Error emailing report")
			c.JSON(http.StatusInternalServerError, models.NewInternalError("Error emailing report"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true, "sent_at": time.Now().UTC()})
}

// Reclassify dispara a reclassificação assíncrona dos itens de uma empresa
func (api *API) Reclassify(c *gin.Context) {
	companyID, ok := api.companyIDFromPath(c)
	if !ok {
		return
	}

	if api.inngestClient == nil {
		c.JSON(http.StatusServiceUnavailable, models.NewInternalError("Workflow service not available"))
		return
	}

	if _, err := api.companyRepo.GetByID(companyID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Company not found"))
			return
		}
		api.logger.WithError(err).Error("Error getting company")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error triggering reclassification"))
		return
	}

	if err := api.inngestClient.SendReclassifyEvent(c.Request.Context(), companyID); err != nil {
		api.logger.WithError(err).Error("Error sending reclassify event")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error triggering reclassification"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"triggered": true})
}

// companyIDFromPath parseia o :id da rota; responde 400 quando inválido
func (api *API) companyIDFromPath(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid company ID", []models.ErrorDetail{
			{Field: "id", Issue: "Must be a valid UUID"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

func normalizeCNPJ(cnpj string) string {
	var b strings.Builder
	for _, r := range cnpj {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validCompetenceMonth(month string) bool {
	_, err := time.Parse("2006-01", month)
	return err == nil
}
