package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

func TestClassifyItem_MonofasicoComVenda(t *testing.T) {
	d := ClassifyItem("30049099", "5102", "04")
	assert.True(t, d.Monofasico)
	assert.False(t, d.NeedsHumanReview)
	assert.Equal(t, 1.0, d.Confidence)
	assert.True(t, d.CFOPValid)
	assert.Empty(t, d.CreditBlockedReason)
}

func TestClassifyItem_MonofasicoComEntrada(t *testing.T) {
	d := ClassifyItem("30049099", "1102", "04")
	assert.False(t, d.Monofasico)
	assert.True(t, d.NeedsHumanReview)
	assert.Equal(t, 1.0, d.Confidence)
	assert.False(t, d.CFOPValid)
	assert.Contains(t, d.CreditBlockedReason, "Produto monofásico (NCM 30049099), porém")
	assert.Contains(t, d.CreditBlockedReason, "ENTRADA/COMPRA")
}

func TestClassifyItem_MonofasicoSemCFOP(t *testing.T) {
	d := ClassifyItem("33051000", "", "06")
	assert.False(t, d.Monofasico)
	assert.True(t, d.NeedsHumanReview)
	assert.Contains(t, d.CreditBlockedReason, "CFOP ausente")
}

func TestClassifyItem_NaoMonofasico(t *testing.T) {
	d := ClassifyItem("61091000", "5102", "01")
	assert.False(t, d.Monofasico)
	assert.False(t, d.NeedsHumanReview)
	assert.Equal(t, 0.0, d.Confidence)
	assert.True(t, d.CFOPValid, "o veredito do CFOP independe do NCM")
	assert.Empty(t, d.CreditBlockedReason)
}

func TestClassifyItem_DivergenciaCST(t *testing.T) {
	// NCM não monofásico com CST de monofásico: só anota, não muda o veredito
	d := ClassifyItem("61091000", "5102", "04")
	assert.False(t, d.Monofasico)
	assert.Contains(t, d.Rule, "Divergência: CST 04 sugere monofásico")

	// NCM monofásico com CST de tributação normal
	d = ClassifyItem("30049099", "5102", "01")
	assert.True(t, d.Monofasico)
	assert.Contains(t, d.Rule, "Divergência: CST 01 sugere tributação normal")

	// Sinais de acordo: sem anotação
	d = ClassifyItem("30049099", "5102", "04")
	assert.NotContains(t, d.Rule, "Divergência")
}

func TestClassifyItem_ExcecaoNaoGeraRevisao(t *testing.T) {
	d := ClassifyItem("30039056", "1102", "04")
	assert.False(t, d.Monofasico)
	assert.False(t, d.NeedsHumanReview)
	// Exceção é veredito definitivo: a regra não ganha anotação de CST
	assert.Equal(t, "EXCEÇÃO: Não é monofásico", d.Rule)
}

func TestClassifyItem_NCMInvalidoNaoGanhaAnotacao(t *testing.T) {
	d := ClassifyItem("abc", "5102", "04")
	assert.False(t, d.Monofasico)
	assert.Equal(t, "NCM INVÁLIDO/VAZIO", d.Rule)
}

func TestCSTSuggestsMonofasico(t *testing.T) {
	for _, cst := range []string{"04", "06", "07", "08", "09"} {
		assert.True(t, CSTSuggestsMonofasico(cst), "cst %s", cst)
	}
	for _, cst := range []string{"01", "02", "49", "99", ""} {
		assert.False(t, CSTSuggestsMonofasico(cst), "cst %s", cst)
	}
}

func TestDecisionApply(t *testing.T) {
	item := &models.InvoiceItem{NCMCode: "30049099", CFOP: "1102", CSTPIS: "04"}
	ClassifyItem(item.NCMCode, item.CFOP, item.CSTPIS).Apply(item)

	assert.False(t, item.IsMonofasico)
	assert.True(t, item.NeedsHumanReview)
	assert.Equal(t, 1.0, item.ClassificationConfidence)
	assert.False(t, item.CFOPValidForCredit)
	if assert.NotNil(t, item.CreditBlockedReason) {
		assert.Contains(t, *item.CreditBlockedReason, "Produto monofásico")
	}

	// Reclassificação com venda válida limpa o bloqueio
	item.CFOP = "5102"
	ClassifyItem(item.NCMCode, item.CFOP, item.CSTPIS).Apply(item)
	assert.True(t, item.IsMonofasico)
	assert.False(t, item.NeedsHumanReview)
	assert.Nil(t, item.CreditBlockedReason)
}
