package simples

import (
	"sort"
	"strings"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/classification"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// monthRevenue acumula as receitas de um mês de competência
type monthRevenue struct {
	total      float64
	monofasico float64
}

// aggregateRevenue agrega a receita das notas por mês de competência
// ("YYYY-MM"), considerando apenas itens cujo CFOP é uma venda da lista
// permitida. Itens revisados valem pelo veredito final gravado neles.
func aggregateRevenue(invoices []models.Invoice) map[string]monthRevenue {
	months := make(map[string]monthRevenue)
	for _, inv := range invoices {
		if len(inv.IssueDate) < 7 {
			continue
		}
		month := inv.IssueDate[:7]
		for _, item := range inv.Items {
			if !classification.IsSalesCFOP(item.CFOP) {
				continue
			}
			rev := months[month]
			rev.total += item.TotalValue
			if item.IsMonofasico {
				rev.monofasico += item.TotalValue
			}
			months[month] = rev
		}
	}
	return months
}

// Calculate produz o resultado mensal da apuração. O conjunto de meses sai
// da agregação das notas, unido aos meses com dados de apuração informados;
// um mês só fica de fora quando o usuário o exclui do relatório. A receita
// vem das notas; RBT12, DAS pago e anexo vêm dos dados de apuração. O
// resultado sai ordenado por mês de competência.
//
// Um mês sem anexo, sem DAS pago, sem receita ou com RBT12 fora de todas as
// faixas produz resultado zerado com o DAS devido igual ao pago, nunca erro:
// a apuração parcial continua visível enquanto o usuário preenche os dados.
func Calculate(invoices []models.Invoice, inputs []models.CalculationInput) []models.CalculationResult {
	months := aggregateRevenue(invoices)

	inputByMonth := make(map[string]models.CalculationInput, len(inputs))
	excluded := make(map[string]bool)
	for _, input := range inputs {
		if !input.Included() {
			excluded[input.CompetenceMonth] = true
			continue
		}
		inputByMonth[input.CompetenceMonth] = input
	}
	for month := range months {
		if _, ok := inputByMonth[month]; !ok && !excluded[month] {
			inputByMonth[month] = models.CalculationInput{CompetenceMonth: month}
		}
	}

	results := make([]models.CalculationResult, 0, len(inputByMonth))
	for month, input := range inputByMonth {
		results = append(results, calculateMonth(input, months[month]))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CompetenceMonth < results[j].CompetenceMonth
	})
	return results
}

func calculateMonth(input models.CalculationInput, rev monthRevenue) models.CalculationResult {
	result := models.CalculationResult{
		CompetenceMonth:   input.CompetenceMonth,
		TotalRevenue:      rev.total,
		MonofasicoRevenue: rev.monofasico,
		DASPaid:           input.DASPaid,
		AnexoUsed:         "N/A",
		// Sem recálculo possível, o devido ecoa o pago
		RecalculatedDASDue: input.DASPaid,
	}

	if input.Anexo == "" || input.DASPaid <= 0 || rev.total <= 0 {
		return result
	}

	faixa, ok := FindFaixa(input.Anexo, input.RBT12)
	if !ok {
		return result
	}

	effective := input.DASPaid / rev.total
	if input.ManualEffectiveAliquot != nil && *input.ManualEffectiveAliquot > 0 {
		effective = *input.ManualEffectiveAliquot / 100
	}

	share := faixa.PISCOFINSShare()
	credit := rev.monofasico * effective * share
	if credit < 0 {
		credit = 0
	}
	due := input.DASPaid - credit
	if due < 0 {
		due = 0
	}

	result.AnexoUsed = AnexoName(input.Anexo)
	result.EffectiveAliquot = effective
	result.PISCOFINSShare = share
	result.CreditAmount = credit
	result.RecalculatedDASDue = due
	return result
}

// YearOf extrai o ano ("YYYY") de um mês de competência
func YearOf(competenceMonth string) string {
	if idx := strings.Index(competenceMonth, "-"); idx > 0 {
		return competenceMonth[:idx]
	}
	return competenceMonth
}
