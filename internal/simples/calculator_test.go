package simples

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

func salesInvoice(issueDate string, items ...models.InvoiceItem) models.Invoice {
	return models.Invoice{IssueDate: issueDate, Items: items}
}

func monoItem(cfop string, value float64) models.InvoiceItem {
	return models.InvoiceItem{CFOP: cfop, TotalValue: value, IsMonofasico: true}
}

func normalItem(cfop string, value float64) models.InvoiceItem {
	return models.InvoiceItem{CFOP: cfop, TotalValue: value, IsMonofasico: false}
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestCalculate_CenarioCompleto(t *testing.T) {
	// NF-e de março/2024: item monofásico de R$ 1.000 vendido com CFOP 5102.
	// RBT12 de R$ 100.000 no Anexo I: 1ª faixa, partilha 12,74% + 2,76%.
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000)),
	}
	inputs := []models.CalculationInput{
		{CompetenceMonth: "2024-03", RBT12: 100000, DASPaid: 60, Anexo: models.Anexo1},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 1) {
		return
	}

	r := results[0]
	assert.Equal(t, "2024-03", r.CompetenceMonth)
	assert.Equal(t, 1000.0, r.TotalRevenue)
	assert.Equal(t, 1000.0, r.MonofasicoRevenue)
	assert.Equal(t, "Anexo I - Comércio", r.AnexoUsed)
	assert.InDelta(t, 0.06, r.EffectiveAliquot, 1e-9)
	assert.InDelta(t, 0.1550, r.PISCOFINSShare, 1e-9)
	assert.InDelta(t, 9.30, r.CreditAmount, 1e-9)
	assert.InDelta(t, 50.70, r.RecalculatedDASDue, 1e-9)
}

func TestCalculate_SomenteVendasEntramNaReceita(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-10",
			monoItem("5102", 1000),
			monoItem("1102", 500), // entrada: fora da receita
			normalItem("5910", 300), // remessa: fora da receita
			normalItem("6108", 200),
		),
	}
	inputs := []models.CalculationInput{
		{CompetenceMonth: "2024-03", RBT12: 100000, DASPaid: 72, Anexo: models.Anexo1},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 1) {
		return
	}
	assert.Equal(t, 1200.0, results[0].TotalRevenue)
	assert.Equal(t, 1000.0, results[0].MonofasicoRevenue)
}

func TestCalculate_MesSemDadosSaiZeradoComDASEcoado(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000)),
	}

	cases := []models.CalculationInput{
		{CompetenceMonth: "2024-03", RBT12: 100000, DASPaid: 60},                        // sem anexo
		{CompetenceMonth: "2024-03", RBT12: 100000, DASPaid: 0, Anexo: models.Anexo1},   // sem DAS
		{CompetenceMonth: "2024-04", RBT12: 100000, DASPaid: 60, Anexo: models.Anexo1},  // sem receita
		{CompetenceMonth: "2024-03", RBT12: 5000000, DASPaid: 60, Anexo: models.Anexo1}, // RBT12 fora das faixas
	}
	for i, input := range cases {
		results := Calculate(invoices, []models.CalculationInput{input})
		r, ok := resultForMonth(results, input.CompetenceMonth)
		if !assert.True(t, ok, "caso %d", i) {
			continue
		}
		assert.Equal(t, "N/A", r.AnexoUsed, "caso %d", i)
		assert.Zero(t, r.CreditAmount, "caso %d", i)
		assert.Zero(t, r.EffectiveAliquot, "caso %d", i)
		// Sem recálculo possível o devido ecoa o pago
		assert.Equal(t, input.DASPaid, r.RecalculatedDASDue, "caso %d", i)
	}
}

func TestCalculate_MesComReceitaSemDadosApareceZerado(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000)),
	}

	results := Calculate(invoices, nil)
	r, ok := resultForMonth(results, "2024-03")
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, 1000.0, r.TotalRevenue)
	assert.Equal(t, 1000.0, r.MonofasicoRevenue)
	assert.Equal(t, "N/A", r.AnexoUsed)
	assert.Zero(t, r.CreditAmount)
	assert.Zero(t, r.RecalculatedDASDue)
}

func resultForMonth(results []models.CalculationResult, month string) (models.CalculationResult, bool) {
	for _, r := range results {
		if r.CompetenceMonth == month {
			return r, true
		}
	}
	return models.CalculationResult{}, false
}

func TestCalculate_AliquotaManualSobrepoe(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000)),
	}
	inputs := []models.CalculationInput{
		{
			CompetenceMonth:        "2024-03",
			RBT12:                  100000,
			DASPaid:                60,
			Anexo:                  models.Anexo1,
			ManualEffectiveAliquot: floatPtr(4.0), // 4% em vez dos 6% implícitos
		},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 1) {
		return
	}
	assert.InDelta(t, 0.04, results[0].EffectiveAliquot, 1e-9)
	assert.InDelta(t, 1000*0.04*0.1550, results[0].CreditAmount, 1e-9)
}

func TestCalculate_AliquotaManualZeradaCaiNoCalculoImplicito(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000)),
	}
	inputs := []models.CalculationInput{
		{
			CompetenceMonth:        "2024-03",
			RBT12:                  100000,
			DASPaid:                60,
			Anexo:                  models.Anexo1,
			ManualEffectiveAliquot: floatPtr(0),
		},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 1) {
		return
	}
	assert.InDelta(t, 0.06, results[0].EffectiveAliquot, 1e-9)
}

func TestCalculate_MesExcluidoDoRelatorio(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000)),
		salesInvoice("2024-04-15", monoItem("5102", 2000)),
	}
	inputs := []models.CalculationInput{
		{CompetenceMonth: "2024-03", RBT12: 100000, DASPaid: 60, Anexo: models.Anexo1, IncludeInReport: boolPtr(false)},
		{CompetenceMonth: "2024-04", RBT12: 100000, DASPaid: 120, Anexo: models.Anexo1},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 1) {
		return
	}
	assert.Equal(t, "2024-04", results[0].CompetenceMonth)
}

func TestCalculate_OrdenaPorMes(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-05-01", monoItem("5102", 100)),
		salesInvoice("2024-01-01", monoItem("5102", 100)),
		salesInvoice("2024-03-01", monoItem("5102", 100)),
	}
	inputs := []models.CalculationInput{
		{CompetenceMonth: "2024-05", RBT12: 100000, DASPaid: 6, Anexo: models.Anexo1},
		{CompetenceMonth: "2024-01", RBT12: 100000, DASPaid: 6, Anexo: models.Anexo1},
		{CompetenceMonth: "2024-03", RBT12: 100000, DASPaid: 6, Anexo: models.Anexo1},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 3) {
		return
	}
	assert.Equal(t, "2024-01", results[0].CompetenceMonth)
	assert.Equal(t, "2024-03", results[1].CompetenceMonth)
	assert.Equal(t, "2024-05", results[2].CompetenceMonth)
}

func TestCalculate_CreditoNuncaExcedeDAS(t *testing.T) {
	// Alíquota manual absurda leva o crédito acima do DAS pago; o devido não
	// pode ficar negativo
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 100000)),
	}
	inputs := []models.CalculationInput{
		{
			CompetenceMonth:        "2024-03",
			RBT12:                  100000,
			DASPaid:                50,
			Anexo:                  models.Anexo1,
			ManualEffectiveAliquot: floatPtr(90.0),
		},
	}

	results := Calculate(invoices, inputs)
	if !assert.Len(t, results, 1) {
		return
	}
	assert.Greater(t, results[0].CreditAmount, results[0].DASPaid)
	assert.Zero(t, results[0].RecalculatedDASDue)
}

func TestCalculate_Idempotente(t *testing.T) {
	invoices := []models.Invoice{
		salesInvoice("2024-03-15", monoItem("5102", 1000), normalItem("5102", 500)),
	}
	inputs := []models.CalculationInput{
		{CompetenceMonth: "2024-03", RBT12: 250000, DASPaid: 90, Anexo: models.Anexo2},
	}

	first := Calculate(invoices, inputs)
	second := Calculate(invoices, inputs)
	assert.Equal(t, first, second)
}
