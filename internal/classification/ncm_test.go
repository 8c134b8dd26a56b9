package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckNCM_InvalidCodes(t *testing.T) {
	cases := []string{"", "   ", "1234", "123456789", "abcdefgh", "3004"}
	for _, ncm := range cases {
		result := CheckNCM(ncm)
		assert.False(t, result.Monofasico, "ncm %q", ncm)
		assert.Equal(t, "NCM INVÁLIDO/VAZIO", result.Rule, "ncm %q", ncm)
	}
}

func TestCheckNCM_AcceptsPunctuation(t *testing.T) {
	// NCM formatado como nas NF-es impressas
	result := CheckNCM("3004.90.46")
	assert.False(t, result.Monofasico)
	assert.Equal(t, "EXCEÇÃO: Não é monofásico", result.Rule)

	result = CheckNCM("3303.00.10")
	assert.True(t, result.Monofasico)
}

func TestCheckNCM_ExceptionBeatsEverything(t *testing.T) {
	// Todos estes códigos caem dentro de prefixos oficiais ou ranges legados,
	// mas a tabela de exceções tem precedência
	exceptions := []string{"30039056", "30049046", "22010100", "22010200", "34011190", "38249029", "38260000"}
	for _, ncm := range exceptions {
		result := CheckNCM(ncm)
		assert.False(t, result.Monofasico, "ncm %s", ncm)
		assert.Equal(t, "EXCEÇÃO: Não é monofásico", result.Rule, "ncm %s", ncm)
	}
}

func TestCheckNCM_OfficialTableByPrefix(t *testing.T) {
	cases := map[string]string{
		"30049099": "Medicamentos em doses",
		"30031234": "Medicamentos (posição 30.03)",
		"33030010": "Perfumes e águas-de-colônia",
		"33049910": "Produtos de beleza e maquiagem",
		"40111000": "Pneus novos de borracha",
		"87032310": "Automóveis de passageiros",
		"22030000": "Cervejas de malte",
		"22021000": "Refrigerantes e outras bebidas não alcoólicas",
		"22071010": "Álcool etílico (etanol), inclusive para fins carburantes",
	}
	for ncm, desc := range cases {
		result := CheckNCM(ncm)
		assert.True(t, result.Monofasico, "ncm %s", ncm)
		assert.Contains(t, result.Rule, "Tabela oficial", "ncm %s", ncm)
		assert.Contains(t, result.Rule, desc, "ncm %s", ncm)
	}
}

func TestCheckNCM_OfficialTableExactCode(t *testing.T) {
	result := CheckNCM("27101159")
	assert.True(t, result.Monofasico)
	assert.Contains(t, result.Rule, "Gasolinas")

	// 27101259 não está na tabela oficial, cai no código específico legado
	result = CheckNCM("27101259")
	assert.True(t, result.Monofasico)
	assert.Equal(t, "MONOFÁSICO: Código específico", result.Rule)
}

func TestCheckNCM_ExceptionMarkerInRule(t *testing.T) {
	result := CheckNCM("30040010")
	assert.True(t, result.Monofasico)
	assert.Contains(t, result.Rule, "(possui exceções)")

	result = CheckNCM("33051000")
	assert.True(t, result.Monofasico)
	assert.NotContains(t, result.Rule, "(possui exceções)")
}

func TestCheckNCM_LegacySpecific(t *testing.T) {
	// Códigos fora da tabela oficial atendidos pela lista legada
	for _, ncm := range []string{"21069010", "27101911"} {
		result := CheckNCM(ncm)
		assert.True(t, result.Monofasico, "ncm %s", ncm)
		assert.Equal(t, "MONOFÁSICO: Código específico", result.Rule, "ncm %s", ncm)
	}
}

func TestCheckNCM_LegacyRange(t *testing.T) {
	cases := map[string]string{
		"73091000": "73090000-73099999", // reservatórios de ferro
		"84321000": "84320000-84379999", // máquinas agrícolas
		"30015000": "30010000-30019999", // glândulas e extratos
		"73102910": "73102900-73102999",
	}
	for ncm, want := range cases {
		result := CheckNCM(ncm)
		assert.True(t, result.Monofasico, "ncm %s", ncm)
		assert.Equal(t, "MONOFÁSICO: Dentro do range "+want, result.Rule, "ncm %s", ncm)
	}
}

func TestCheckNCM_NotMonofasico(t *testing.T) {
	for _, ncm := range []string{"12345678", "61091000", "02013000", "99999999"} {
		result := CheckNCM(ncm)
		assert.False(t, result.Monofasico, "ncm %s", ncm)
		assert.Equal(t, "NÃO MONOFÁSICO", result.Rule, "ncm %s", ncm)
	}
}

func TestCheckNCM_RangeBoundariesInclusive(t *testing.T) {
	assert.True(t, CheckNCM("22071000").Monofasico)
	assert.True(t, CheckNCM("22071099").Monofasico)
	assert.True(t, CheckNCM("40110000").Monofasico)
	assert.True(t, CheckNCM("40139999").Monofasico)
	assert.False(t, CheckNCM("40140000").Monofasico)
}

func TestOfficialTable_ReturnsCopy(t *testing.T) {
	table := OfficialTable()
	assert.NotEmpty(t, table)
	table[0].Prefix = "00000000"
	assert.NotEqual(t, "00000000", OfficialTable()[0].Prefix)
}
