package classification

import (
	"fmt"
	"strings"
)

// NCMResult é o veredito da checagem de NCM
type NCMResult struct {
	Monofasico bool   `json:"monofasico"`
	Rule       string `json:"rule"`
}

// ncmMatcher tenta decidir o NCM. O segundo retorno indica se o matcher
// produziu um veredito; false passa a vez para o próximo da lista.
type ncmMatcher func(ncm string) (NCMResult, bool)

// ncmMatchers define a ordem de precedência: exceções vencem a tabela
// oficial, que vence a tabela legada (códigos pontuais antes dos ranges).
var ncmMatchers = []ncmMatcher{
	matchException,
	matchOfficial,
	matchSpecific,
	matchRange,
}

// CheckNCM classifica um NCM como monofásico ou não, percorrendo a cadeia de
// matchers em ordem e parando no primeiro veredito. Aceita o código com ou
// sem pontuação; fora do formato de 8 dígitos o NCM é inválido e não gera
// crédito.
func CheckNCM(ncm string) NCMResult {
	clean := digitsOnly(ncm)
	if len(clean) != 8 {
		return NCMResult{Monofasico: false, Rule: "NCM INVÁLIDO/VAZIO"}
	}

	for _, match := range ncmMatchers {
		if result, ok := match(clean); ok {
			return result
		}
	}

	return NCMResult{Monofasico: false, Rule: "NÃO MONOFÁSICO"}
}

func matchException(ncm string) (NCMResult, bool) {
	if _, ok := ncmExceptions[ncm]; ok {
		return NCMResult{Monofasico: false, Rule: "EXCEÇÃO: Não é monofásico"}, true
	}
	return NCMResult{}, false
}

func matchOfficial(ncm string) (NCMResult, bool) {
	for _, entry := range officialTable {
		matched := entry.Prefix == ncm
		if !matched && len(entry.Prefix) < 8 {
			matched = strings.HasPrefix(ncm, entry.Prefix)
		}
		if !matched {
			continue
		}
		rule := fmt.Sprintf("MONOFÁSICO: Tabela oficial - %s", entry.Description)
		if entry.HasExceptions {
			rule += " (possui exceções)"
		}
		return NCMResult{Monofasico: true, Rule: rule}, true
	}
	return NCMResult{}, false
}

func matchSpecific(ncm string) (NCMResult, bool) {
	if _, ok := ncmSpecific[ncm]; ok {
		return NCMResult{Monofasico: true, Rule: "MONOFÁSICO: Código específico"}, true
	}
	return NCMResult{}, false
}

func matchRange(ncm string) (NCMResult, bool) {
	for _, r := range ncmRanges {
		if ncm >= r.start && ncm <= r.end {
			rule := fmt.Sprintf("MONOFÁSICO: Dentro do range %s-%s", r.start, r.end)
			return NCMResult{Monofasico: true, Rule: rule}, true
		}
	}
	return NCMResult{}, false
}

// digitsOnly remove tudo que não for dígito do código informado
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
