package classification

import (
	"fmt"
	"strings"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// monofasicoCSTs são os CSTs de PIS/COFINS típicos de produto monofásico na
// ponta revendedora (alíquota zero / sem incidência)
var monofasicoCSTs = map[string]struct{}{
	"04": {}, "06": {}, "07": {}, "08": {}, "09": {},
}

// Decision combina o veredito de NCM (produto) com o de CFOP (operação) para
// um item de NF-e
type Decision struct {
	Monofasico          bool       `json:"is_monofasico"`
	NeedsHumanReview    bool       `json:"needs_human_review"`
	Rule                string     `json:"classification_rule"`
	Confidence          float64    `json:"classification_confidence"`
	CFOPValid           bool       `json:"cfop_valid_for_credit"`
	CFOPMessage         string     `json:"cfop_validation_message"`
	CreditBlockedReason string     `json:"credit_blocked_reason,omitempty"`
	NCM                 NCMResult  `json:"-"`
	CFOP                CFOPResult `json:"-"`
}

// ClassifyItem aplica a decisão combinada: o item só é monofásico quando o
// NCM é elegível E o CFOP é uma venda válida. NCM elegível com CFOP inválido
// marca o item para revisão humana e registra o motivo do bloqueio do
// crédito. O CST declarado no XML não muda o veredito; divergências entre o
// CST e a tabela de NCM são apenas anotadas na regra.
func ClassifyItem(ncm, cfop, cstPIS string) Decision {
	ncmResult := CheckNCM(ncm)
	cfopResult := ValidateCFOP(cfop)

	d := Decision{
		Rule:        ncmResult.Rule,
		NCM:         ncmResult,
		CFOP:        cfopResult,
		CFOPValid:   cfopResult.Valid,
		CFOPMessage: cfopResult.Reason,
	}

	// Exceção explícita e NCM inválido são vereditos definitivos; a anotação
	// de divergência só interessa quando o veredito veio das tabelas de
	// produto
	annotatable := !strings.HasPrefix(ncmResult.Rule, "EXCEÇÃO") &&
		!strings.HasPrefix(ncmResult.Rule, "NCM INVÁLIDO")
	if cstPIS != "" && annotatable {
		if cstMono := CSTSuggestsMonofasico(cstPIS); cstMono != ncmResult.Monofasico {
			if cstMono {
				d.Rule += fmt.Sprintf(" (Divergência: CST %s sugere monofásico)", cstPIS)
			} else {
				d.Rule += fmt.Sprintf(" (Divergência: CST %s sugere tributação normal)", cstPIS)
			}
		}
	}

	if ncmResult.Monofasico {
		d.Confidence = 1.0
		if cfopResult.Valid {
			d.Monofasico = true
		} else {
			d.NeedsHumanReview = true
			d.CreditBlockedReason = fmt.Sprintf("Produto monofásico (NCM %s), porém %s", digitsOnly(ncm), cfopResult.Reason)
		}
	}

	return d
}

// CSTSuggestsMonofasico informa se o CST de PIS/COFINS declarado aponta para
// tributação monofásica na revenda
func CSTSuggestsMonofasico(cst string) bool {
	_, ok := monofasicoCSTs[cst]
	return ok
}

// Apply grava a decisão nos campos de classificação do item
func (d Decision) Apply(item *models.InvoiceItem) {
	item.IsMonofasico = d.Monofasico
	item.NeedsHumanReview = d.NeedsHumanReview
	item.ClassificationRule = d.Rule
	item.ClassificationConfidence = d.Confidence
	item.CFOPValidForCredit = d.CFOPValid
	item.CFOPValidationMessage = d.CFOPMessage
	if d.CreditBlockedReason != "" {
		reason := d.CreditBlockedReason
		item.CreditBlockedReason = &reason
	} else {
		item.CreditBlockedReason = nil
	}
}
