// Package classification decide, por item de NF-e, se o produto é monofásico
// (PIS/COFINS) e se a operação gera direito à segregação de receita.
//
// As regras de NCM seguem a Tabela 4.3.10 do SPED em duas camadas: uma tabela
// oficial de prefixos e uma tabela legada de ranges/códigos pontuais, sempre
// precedidas pela tabela de exceções.
package classification

// OfficialEntry representa uma entrada da tabela oficial de NCMs monofásicos.
// Prefix pode ser um NCM completo de 8 dígitos ou um prefixo mais curto que
// casa por início de string. HasExceptions marca entradas com carve-outs
// conhecidos na tabela de exceções.
type OfficialEntry struct {
	Prefix        string
	Description   string
	HasExceptions bool
}

// officialTable é a tabela oficial de referência de prefixos monofásicos.
var officialTable = []OfficialEntry{
	// Combustíveis (Lei 9.718/98 e 10.336/01)
	{Prefix: "27101159", Description: "Gasolinas, exceto gasolina de aviação"},
	{Prefix: "27101921", Description: "Querosene de aviação"},
	{Prefix: "27111910", Description: "Gás liquefeito de petróleo (GLP)"},
	{Prefix: "2207", Description: "Álcool etílico (etanol), inclusive para fins carburantes"},

	// Fármacos e perfumaria (Lei 10.147/00)
	{Prefix: "3003", Description: "Medicamentos (posição 30.03)", HasExceptions: true},
	{Prefix: "3004", Description: "Medicamentos em doses (posição 30.04)", HasExceptions: true},
	{Prefix: "3303", Description: "Perfumes e águas-de-colônia"},
	{Prefix: "3304", Description: "Produtos de beleza e maquiagem"},
	{Prefix: "3305", Description: "Preparações capilares"},
	{Prefix: "3307", Description: "Preparações para barbear e desodorantes"},
	{Prefix: "34012010", Description: "Sabões de toucador"},
	{Prefix: "96032100", Description: "Escovas de dentes"},

	// Veículos, máquinas e autopeças (Lei 10.485/02)
	{Prefix: "4011", Description: "Pneus novos de borracha"},
	{Prefix: "4013", Description: "Câmaras de ar de borracha"},
	{Prefix: "8701", Description: "Tratores"},
	{Prefix: "8702", Description: "Veículos para transporte de dez pessoas ou mais"},
	{Prefix: "8703", Description: "Automóveis de passageiros"},
	{Prefix: "8704", Description: "Veículos para transporte de mercadorias"},
	{Prefix: "8706", Description: "Chassis com motor para veículos"},

	// Bebidas frias (Lei 13.097/15)
	{Prefix: "2201", Description: "Águas, incluindo minerais e gaseificadas", HasExceptions: true},
	{Prefix: "2202", Description: "Refrigerantes e outras bebidas não alcoólicas", HasExceptions: true},
	{Prefix: "2203", Description: "Cervejas de malte"},
}

// ncmRange representa um intervalo fechado de NCMs de 8 dígitos, comparado
// lexicograficamente sobre o código zero-padded.
type ncmRange struct {
	start string
	end   string
}

// ncmExceptions lista NCMs pontuais que NÃO são monofásicos, mesmo cobertos
// por range ou prefixo. Tem prioridade sobre qualquer match positivo.
var ncmExceptions = map[string]string{
	"30039056": "Farmacêuticos",
	"30049046": "Farmacêuticos",
	"22010100": "Bebidas frias - Águas Ex 01",
	"22010200": "Bebidas frias - Águas Ex 02",
	"34011190": "Perfumaria - Ex 01",
	"38249029": "Biodiesel Ex 01",
	"38260000": "Biodiesel Ex 01",
}

// ncmSpecific lista NCMs individuais monofásicos fora de qualquer range
var ncmSpecific = map[string]struct{}{
	"27101159": {}, "27101259": {}, "27101921": {}, "27111910": {}, "27101911": {},
	"38249029": {}, "38260000": {}, "21069010": {}, "34011190": {}, "34012010": {},
	"96032100": {},
}

// ncmRanges cobre blocos de produtos monofásicos na tabela legada
var ncmRanges = []ncmRange{
	// Grupo 100 - Combustíveis
	{"27101159", "27101159"},
	{"27101259", "27101259"},
	{"27101921", "27101921"},
	{"27111910", "27111910"},
	{"27101911", "27101911"},
	{"38249029", "38249029"},
	{"38260000", "38260000"},
	{"22071000", "22071099"},
	{"22072000", "22072099"},
	{"22089000", "22089000"},

	// Grupo 200 - Fármacos e Perfumaria
	{"30010000", "30019999"}, // Cap. 30.01
	{"30030000", "30039999"}, // Cap. 30.03
	{"30040000", "30049999"}, // Cap. 30.04
	{"30021000", "30021999"},
	{"30022000", "30022999"},
	{"30063010", "30063029"},
	{"30029020", "30029099"},
	{"30051010", "30051010"},
	{"30066000", "30066000"},
	{"33030000", "33039999"},
	{"33040000", "33049999"},
	{"33050000", "33059999"},
	{"33070000", "33079999"},
	{"34011190", "34011190"},
	{"34012010", "34012010"},
	{"96032100", "96032100"},

	// Grupo 300 - Veículos, Máquinas, Autopeças
	{"73090000", "73099999"},
	{"73102900", "73102999"},
	{"76129012", "76129012"},
	{"84248100", "84248199"},
	{"84290000", "84299999"},
	{"84306990", "84306990"},
	{"84320000", "84379999"},
	{"87010000", "87069999"},
	{"87162000", "87162000"},
	{"40110000", "40139999"},

	// Grupo 400 - Bebidas Frias
	{"21069010", "21069010"},
	{"22010000", "22019999"},
	{"22020000", "22029999"},
	{"22030000", "22039999"},
}

// OfficialTable retorna uma cópia da tabela oficial de prefixos monofásicos
func OfficialTable() []OfficialEntry {
	out := make([]OfficialEntry, len(officialTable))
	copy(out, officialTable)
	return out
}
