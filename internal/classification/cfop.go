package classification

import (
	"fmt"
	"strings"
)

// CFOPKind categoriza o CFOP do item quanto à natureza da operação
type CFOPKind string

const (
	CFOPSaida    CFOPKind = "saida"
	CFOPEntrada  CFOPKind = "entrada"
	CFOPAusente  CFOPKind = "ausente"
	CFOPInvalido CFOPKind = "invalido"
)

// CFOPResult é o veredito da validação de CFOP. Valid indica que a operação
// é uma venda que gera direito à segregação de receita monofásica no PGDAS.
type CFOPResult struct {
	Valid  bool     `json:"valid"`
	Kind   CFOPKind `json:"kind"`
	Reason string   `json:"reason"`
}

// validSalesCFOPs lista os CFOPs de venda que geram direito a crédito
var validSalesCFOPs = map[string]string{
	// Vendas dentro do estado (5xxx)
	"5101": "Venda de produção do estabelecimento",
	"5102": "Venda de mercadoria adquirida ou recebida de terceiros",
	"5103": "Venda de produção do estabelecimento, efetuada fora do estabelecimento",
	"5104": "Venda de mercadoria adquirida ou recebida de terceiros, efetuada fora do estabelecimento",
	"5105": "Venda de produção do estabelecimento que não deva por ele transitar",
	"5106": "Venda de mercadoria adquirida ou recebida de terceiros, que não deva por ele transitar",
	"5109": "Venda de produção do estabelecimento destinada à Zona Franca de Manaus",
	"5110": "Venda de mercadoria adquirida ou recebida de terceiros destinada à Zona Franca de Manaus",
	"5116": "Venda de produção do estabelecimento originada de encomenda para entrega futura",
	"5117": "Venda de mercadoria adquirida ou recebida de terceiros originada de encomenda para entrega futura",
	"5118": "Venda de produção do estabelecimento entregue ao destinatário por conta e ordem do adquirente",
	"5119": "Venda de mercadoria adquirida ou recebida de terceiros entregue ao destinatário por conta e ordem do adquirente",
	"5120": "Venda de mercadoria adquirida ou recebida de terceiros entregue ao destinatário pelo vendedor remetente, em venda à ordem",

	// Vendas fora do estado (6xxx)
	"6101": "Venda de produção do estabelecimento",
	"6102": "Venda de mercadoria adquirida ou recebida de terceiros",
	"6103": "Venda de produção do estabelecimento, efetuada fora do estabelecimento",
	"6104": "Venda de mercadoria adquirida ou recebida de terceiros, efetuada fora do estabelecimento",
	"6105": "Venda de produção do estabelecimento que não deva por ele transitar",
	"6106": "Venda de mercadoria adquirida ou recebida de terceiros, que não deva por ele transitar",
	"6107": "Venda de produção do estabelecimento, destinada a não contribuinte",
	"6108": "Venda de mercadoria adquirida ou recebida de terceiros, destinada a não contribuinte",
	"6109": "Venda de produção do estabelecimento destinada à Zona Franca de Manaus",
	"6110": "Venda de mercadoria adquirida ou recebida de terceiros destinada à Zona Franca de Manaus",
	"6116": "Venda de produção do estabelecimento originada de encomenda para entrega futura",
	"6117": "Venda de mercadoria adquirida ou recebida de terceiros originada de encomenda para entrega futura",
	"6118": "Venda de produção do estabelecimento entregue ao destinatário por conta e ordem do adquirente",
	"6119": "Venda de mercadoria adquirida ou recebida de terceiros entregue ao destinatário por conta e ordem do adquirente",
	"6120": "Venda de mercadoria adquirida ou recebida de terceiros entregue ao destinatário pelo vendedor remetente, em venda à ordem",

	// Exportação (7xxx)
	"7101": "Venda de produção do estabelecimento",
	"7102": "Venda de mercadoria adquirida ou recebida de terceiros",
	"7105": "Venda de produção do estabelecimento que não deva por ele transitar",
	"7106": "Venda de mercadoria adquirida ou recebida de terceiros que não deva por ele transitar",

	// Substituição tributária
	"5405": "Venda de mercadoria, adquirida ou recebida de terceiros, sujeita a substituição tributária, na condição de contribuinte substituído",
	"6404": "Venda de mercadoria sujeita a substituição tributária, cujo imposto já tenha sido retido anteriormente",
	"6403": "Venda de mercadoria, na condição de substituto tributário",
}

// ValidateCFOP valida o CFOP de um item quanto ao direito de segregar receita
// monofásica. A ordem de decisão é: ausente, formato inválido, venda da lista
// permitida, entrada (primeiro dígito 1, 2 ou 3) e, por fim, saída fora da
// lista, que exige revisão humana.
func ValidateCFOP(cfop string) CFOPResult {
	clean := strings.TrimSpace(cfop)
	if clean == "" {
		return CFOPResult{
			Valid:  false,
			Kind:   CFOPAusente,
			Reason: "CFOP ausente. Não é possível determinar se a receita deveria ter sido segregada no PGDAS.",
		}
	}

	// Pontuação como "5.102" é comum nos XMLs; só os dígitos contam
	clean = digitsOnly(clean)
	if len(clean) != 4 {
		return CFOPResult{
			Valid:  false,
			Kind:   CFOPInvalido,
			Reason: fmt.Sprintf("CFOP \"%s\" inválido (deve ter 4 dígitos).", strings.TrimSpace(cfop)),
		}
	}

	if _, ok := validSalesCFOPs[clean]; ok {
		return CFOPResult{
			Valid:  true,
			Kind:   CFOPSaida,
			Reason: fmt.Sprintf("CFOP %s é uma operação de VENDA. Receita monofásica deveria ter sido segregada no PGDAS.", clean),
		}
	}

	switch clean[0] {
	case '1', '2', '3':
		return CFOPResult{
			Valid:  false,
			Kind:   CFOPEntrada,
			Reason: fmt.Sprintf("CFOP %s é uma operação de ENTRADA/COMPRA. No Simples Nacional, o crédito vem da segregação de VENDAS monofásicas, não de compras.", clean),
		}
	}

	return CFOPResult{
		Valid:  false,
		Kind:   CFOPSaida,
		Reason: fmt.Sprintf("CFOP %s é uma saída, mas pode não gerar direito a crédito. Requer revisão humana.", clean),
	}
}

// IsSalesCFOP informa se o CFOP pertence à lista de vendas que geram crédito
func IsSalesCFOP(cfop string) bool {
	_, ok := validSalesCFOPs[digitsOnly(cfop)]
	return ok
}

// CFOPDescription retorna a descrição oficial de um CFOP da lista de vendas
func CFOPDescription(cfop string) (string, bool) {
	desc, ok := validSalesCFOPs[digitsOnly(cfop)]
	return desc, ok
}
