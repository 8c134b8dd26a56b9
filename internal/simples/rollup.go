package simples

import (
	"sort"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// YearlyRollup consolida os resultados mensais por ano. Valores monetários
// são somados; alíquota efetiva e partilha saem como média aritmética simples
// dos meses do ano. Anos com mais de um anexo aparecem como "Múltiplos".
func YearlyRollup(results []models.CalculationResult) []models.YearlyResult {
	byYear := make(map[string]*models.YearlyResult)
	anexos := make(map[string]map[string]struct{})

	for _, r := range results {
		year := YearOf(r.CompetenceMonth)
		agg, ok := byYear[year]
		if !ok {
			agg = &models.YearlyResult{Year: year}
			byYear[year] = agg
			anexos[year] = make(map[string]struct{})
		}

		agg.TotalRevenue += r.TotalRevenue
		agg.MonofasicoRevenue += r.MonofasicoRevenue
		agg.DASPaid += r.DASPaid
		agg.CreditAmount += r.CreditAmount
		agg.RecalculatedDASDue += r.RecalculatedDASDue
		agg.EffectiveAliquot += r.EffectiveAliquot
		agg.PISCOFINSShare += r.PISCOFINSShare
		agg.Months++
		if r.AnexoUsed != "" && r.AnexoUsed != "N/A" {
			anexos[year][r.AnexoUsed] = struct{}{}
		}
	}

	years := make([]models.YearlyResult, 0, len(byYear))
	for year, agg := range byYear {
		if agg.Months > 0 {
			agg.EffectiveAliquot /= float64(agg.Months)
			agg.PISCOFINSShare /= float64(agg.Months)
		}
		switch len(anexos[year]) {
		case 0:
			agg.AnexoUsed = "N/A"
		case 1:
			for nome := range anexos[year] {
				agg.AnexoUsed = nome
			}
		default:
			agg.AnexoUsed = "Múltiplos"
		}
		years = append(years, *agg)
	}

	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	return years
}

// TotalRollup consolida todos os resultados mensais em um sumário único
func TotalRollup(results []models.CalculationResult) models.TotalResult {
	var total models.TotalResult
	for _, r := range results {
		total.TotalRevenue += r.TotalRevenue
		total.MonofasicoRevenue += r.MonofasicoRevenue
		total.DASPaid += r.DASPaid
		total.CreditAmount += r.CreditAmount
		total.RecalculatedDASDue += r.RecalculatedDASDue
		total.Months++
	}
	return total
}
