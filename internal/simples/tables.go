// Package simples implementa o recálculo do DAS do Simples Nacional com
// segregação de receita monofásica, usando as tabelas de faixas da
// LC 123/2006 (redação da LC 155/2016).
package simples

import (
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// Faixa representa uma faixa de RBT12 de um anexo do Simples Nacional.
// Alíquota nominal e percentuais de partilha são frações (0-1); limites e
// parcela a deduzir em BRL.
type Faixa struct {
	Min             float64
	Max             float64
	AliquotaNominal float64
	ParcelaDeduzir  float64

	// Percentuais de repartição dos tributos dentro do DAS
	PercentualCOFINS float64
	PercentualPIS    float64
}

// PISCOFINSShare retorna a fração do DAS correspondente a COFINS + PIS/Pasep
func (f Faixa) PISCOFINSShare() float64 {
	return f.PercentualCOFINS + f.PercentualPIS
}

// AnexoTable agrupa as faixas de um anexo
type AnexoTable struct {
	Nome   string
	Faixas []Faixa
}

var anexoTables = map[models.Anexo]AnexoTable{
	models.Anexo1: {
		Nome: "Anexo I - Comércio",
		Faixas: []Faixa{
			{Min: 0, Max: 180000, AliquotaNominal: 0.04, ParcelaDeduzir: 0, PercentualCOFINS: 0.1274, PercentualPIS: 0.0276},
			{Min: 180000.01, Max: 360000, AliquotaNominal: 0.073, ParcelaDeduzir: 5940, PercentualCOFINS: 0.1274, PercentualPIS: 0.0276},
			{Min: 360000.01, Max: 720000, AliquotaNominal: 0.095, ParcelaDeduzir: 13860, PercentualCOFINS: 0.1274, PercentualPIS: 0.0276},
			{Min: 720000.01, Max: 1800000, AliquotaNominal: 0.107, ParcelaDeduzir: 22500, PercentualCOFINS: 0.1274, PercentualPIS: 0.0276},
			{Min: 1800000.01, Max: 3600000, AliquotaNominal: 0.143, ParcelaDeduzir: 87300, PercentualCOFINS: 0.1274, PercentualPIS: 0.0276},
			{Min: 3600000.01, Max: 4800000, AliquotaNominal: 0.19, ParcelaDeduzir: 378000, PercentualCOFINS: 0.2827, PercentualPIS: 0.0613},
		},
	},
	models.Anexo2: {
		Nome: "Anexo II - Indústria",
		Faixas: []Faixa{
			{Min: 0, Max: 180000, AliquotaNominal: 0.045, ParcelaDeduzir: 0, PercentualCOFINS: 0.1151, PercentualPIS: 0.0249},
			{Min: 180000.01, Max: 360000, AliquotaNominal: 0.078, ParcelaDeduzir: 5940, PercentualCOFINS: 0.1151, PercentualPIS: 0.0249},
			{Min: 360000.01, Max: 720000, AliquotaNominal: 0.1, ParcelaDeduzir: 13860, PercentualCOFINS: 0.1151, PercentualPIS: 0.0249},
			{Min: 720000.01, Max: 1800000, AliquotaNominal: 0.112, ParcelaDeduzir: 22500, PercentualCOFINS: 0.1151, PercentualPIS: 0.0249},
			{Min: 1800000.01, Max: 3600000, AliquotaNominal: 0.147, ParcelaDeduzir: 85500, PercentualCOFINS: 0.1151, PercentualPIS: 0.0249},
			{Min: 3600000.01, Max: 4800000, AliquotaNominal: 0.3, ParcelaDeduzir: 720000, PercentualCOFINS: 0.2096, PercentualPIS: 0.0454},
		},
	},
	models.Anexo3: {
		Nome: "Anexo III - Serviços",
		Faixas: []Faixa{
			{Min: 0, Max: 180000, AliquotaNominal: 0.06, ParcelaDeduzir: 0, PercentualCOFINS: 0.1282, PercentualPIS: 0.0278},
			{Min: 180000.01, Max: 360000, AliquotaNominal: 0.112, ParcelaDeduzir: 9360, PercentualCOFINS: 0.1405, PercentualPIS: 0.0305},
			{Min: 360000.01, Max: 720000, AliquotaNominal: 0.135, ParcelaDeduzir: 17640, PercentualCOFINS: 0.1364, PercentualPIS: 0.0296},
			{Min: 720000.01, Max: 1800000, AliquotaNominal: 0.16, ParcelaDeduzir: 35640, PercentualCOFINS: 0.1364, PercentualPIS: 0.0296},
			{Min: 1800000.01, Max: 3600000, AliquotaNominal: 0.21, ParcelaDeduzir: 125640, PercentualCOFINS: 0.1282, PercentualPIS: 0.0278},
			{Min: 3600000.01, Max: 4800000, AliquotaNominal: 0.33, ParcelaDeduzir: 648000, PercentualCOFINS: 0.1603, PercentualPIS: 0.0347},
		},
	},
	models.Anexo4: {
		Nome: "Anexo IV - Serviços",
		Faixas: []Faixa{
			{Min: 0, Max: 180000, AliquotaNominal: 0.045, ParcelaDeduzir: 0, PercentualCOFINS: 0.1767, PercentualPIS: 0.0383},
			{Min: 180000.01, Max: 360000, AliquotaNominal: 0.09, ParcelaDeduzir: 8100, PercentualCOFINS: 0.2055, PercentualPIS: 0.0445},
			{Min: 360000.01, Max: 720000, AliquotaNominal: 0.102, ParcelaDeduzir: 12420, PercentualCOFINS: 0.1973, PercentualPIS: 0.0427},
			{Min: 720000.01, Max: 1800000, AliquotaNominal: 0.14, ParcelaDeduzir: 39780, PercentualCOFINS: 0.189, PercentualPIS: 0.041},
			{Min: 1800000.01, Max: 3600000, AliquotaNominal: 0.22, ParcelaDeduzir: 183780, PercentualCOFINS: 0.1808, PercentualPIS: 0.0392},
			{Min: 3600000.01, Max: 4800000, AliquotaNominal: 0.33, ParcelaDeduzir: 828000, PercentualCOFINS: 0.2055, PercentualPIS: 0.0445},
		},
	},
	models.Anexo5: {
		Nome: "Anexo V - Serviços",
		Faixas: []Faixa{
			{Min: 0, Max: 180000, AliquotaNominal: 0.155, ParcelaDeduzir: 0, PercentualCOFINS: 0.141, PercentualPIS: 0.0305},
			{Min: 180000.01, Max: 360000, AliquotaNominal: 0.18, ParcelaDeduzir: 4500, PercentualCOFINS: 0.141, PercentualPIS: 0.0305},
			{Min: 360000.01, Max: 720000, AliquotaNominal: 0.195, ParcelaDeduzir: 9900, PercentualCOFINS: 0.1492, PercentualPIS: 0.0323},
			{Min: 720000.01, Max: 1800000, AliquotaNominal: 0.205, ParcelaDeduzir: 17100, PercentualCOFINS: 0.1574, PercentualPIS: 0.0341},
			{Min: 1800000.01, Max: 3600000, AliquotaNominal: 0.23, ParcelaDeduzir: 62100, PercentualCOFINS: 0.141, PercentualPIS: 0.0305},
			{Min: 3600000.01, Max: 4800000, AliquotaNominal: 0.305, ParcelaDeduzir: 540000, PercentualCOFINS: 0.1644, PercentualPIS: 0.0356},
		},
	},
}

// FindFaixa localiza a faixa do anexo que contém o RBT12, com limites
// inclusivos nas duas pontas. Retorna false quando o anexo não existe ou o
// RBT12 fica fora de todas as faixas.
func FindFaixa(anexo models.Anexo, rbt12 float64) (Faixa, bool) {
	table, ok := anexoTables[anexo]
	if !ok {
		return Faixa{}, false
	}
	for _, f := range table.Faixas {
		if rbt12 >= f.Min && rbt12 <= f.Max {
			return f, true
		}
	}
	return Faixa{}, false
}

// AnexoName retorna o nome de exibição do anexo ("N/A" quando desconhecido)
func AnexoName(anexo models.Anexo) string {
	if table, ok := anexoTables[anexo]; ok {
		return table.Nome
	}
	return "N/A"
}
