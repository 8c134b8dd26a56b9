// Package nfe faz o parse de XMLs de NF-e (modelo 55) nos formatos nfeProc e
// NFe, extraindo os campos necessários para a classificação monofásica.
//
// Não valida XSD nem consulta SEFAZ. Apenas extrai os dados do XML.
package nfe

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/matheus-goncalvesf/pis-e-cofins/internal/classification"
	"github.com/matheus-goncalvesf/pis-e-cofins/internal/models"
)

// Estruturas mínimas do XML da NF-e (nfeProc, NFe, infNFe)

type nfeProc struct {
	XMLName xml.Name    `xml:"nfeProc"`
	NFe     nfeEnvelope `xml:"NFe"`
}

type nfeEnvelope struct {
	XMLName xml.Name `xml:"NFe"`
	InfNFe  infNFe   `xml:"infNFe"`
}

type infNFe struct {
	ID    string `xml:"Id,attr"`
	Ide   *ide   `xml:"ide"`
	Total *total `xml:"total"`
	Det   []det  `xml:"det"`
}

type ide struct {
	NNF   string `xml:"nNF"`
	DhEmi string `xml:"dhEmi"` // layout 4.00
	DEmi  string `xml:"dEmi"`  // layouts antigos
}

type total struct {
	ICMSTot *icmsTot `xml:"ICMSTot"`
}

type icmsTot struct {
	VNF string `xml:"vNF"`
}

type det struct {
	NItem   string  `xml:"nItem,attr"`
	Prod    prod    `xml:"prod"`
	Imposto imposto `xml:"imposto"`
}

type prod struct {
	CProd string `xml:"cProd"`
	XProd string `xml:"xProd"`
	NCM   string `xml:"NCM"`
	CFOP  string `xml:"CFOP"`
	VProd string `xml:"vProd"`
}

type imposto struct {
	PIS    *pisGroup    `xml:"PIS"`
	COFINS *cofinsGroup `xml:"COFINS"`
}

// O CST de PIS/COFINS vem no primeiro filho presente do grupo
type pisGroup struct {
	Aliq *cstVal `xml:"PISAliq"`
	Qtde *cstVal `xml:"PISQtde"`
	NT   *cstVal `xml:"PISNT"`
	Outr *cstVal `xml:"PISOutr"`
}

type cofinsGroup struct {
	Aliq *cstVal `xml:"COFINSAliq"`
	Qtde *cstVal `xml:"COFINSQtde"`
	NT   *cstVal `xml:"COFINSNT"`
	Outr *cstVal `xml:"COFINSOutr"`
	ST   *cstVal `xml:"COFINSST"`
}

type cstVal struct {
	CST string `xml:"CST"`
}

// Regexes de normalização: os emissores variam muito na declaração de
// namespaces e o encoding/xml tropeça em prefixos. Removemos namespaces e
// prefixos antes do parse, como pré-requisito dos matchers por nome simples.
var (
	reXmlns      = regexp.MustCompile(`\s+xmlns(:[a-zA-Z0-9]+)?="[^"]*"`)
	reSchemaLoc  = regexp.MustCompile(`\s+xsi:schemaLocation="[^"]*"`)
	reVersaoAttr = regexp.MustCompile(`\s+versao="[^"]*"`)
	reOpenPrefix = regexp.MustCompile(`<[a-zA-Z0-9]+:`)
	reClosePfx   = regexp.MustCompile(`</[a-zA-Z0-9]+:`)
)

// Normalize remove declarações de namespace, schemaLocation, o atributo
// versao e prefixos de elementos, deixando o XML com nomes simples
func Normalize(xmlContent string) string {
	s := reXmlns.ReplaceAllString(xmlContent, "")
	s = reSchemaLoc.ReplaceAllString(s, "")
	s = reVersaoAttr.ReplaceAllString(s, "")
	s = reOpenPrefix.ReplaceAllString(s, "<")
	s = reClosePfx.ReplaceAllString(s, "</")
	return s
}

// Parse extrai uma nota a partir do conteúdo de um XML de NF-e. Aceita
// nfeProc (com protocolo) e NFe pura, com ou sem prefixos de namespace, em
// UTF-8 ou ISO-8859-1. Cada item sai classificado quanto a NCM e CFOP.
//
// O XML precisa ter ide, total/ICMSTot e pelo menos um det; fora disso o
// arquivo é rejeitado com erro.
func Parse(xmlContent string, sourceFile string) (*models.Invoice, error) {
	normalized := Normalize(xmlContent)

	inf, err := unmarshalInfNFe(normalized)
	if err != nil {
		return nil, err
	}

	if inf.Ide == nil {
		return nil, fmt.Errorf("XML sem o nó ide: não parece uma NF-e válida")
	}
	if inf.Total == nil || inf.Total.ICMSTot == nil {
		return nil, fmt.Errorf("XML sem o nó total/ICMSTot: não parece uma NF-e válida")
	}
	if len(inf.Det) == 0 {
		return nil, fmt.Errorf("XML sem itens (det): não parece uma NF-e válida")
	}

	invoice := &models.Invoice{
		AccessKey:  accessKeyFromID(inf.ID),
		IssueDate:  issueDate(inf.Ide),
		TotalValue: parseDecimal(inf.Total.ICMSTot.VNF),
		SourceFile: sourceFile,
	}

	for i, d := range inf.Det {
		item := models.InvoiceItem{
			LineNo:      itemLineNo(d.NItem, i),
			ProductCode: strings.TrimSpace(d.Prod.CProd),
			NCMCode:     strings.TrimSpace(d.Prod.NCM),
			CFOP:        strings.TrimSpace(d.Prod.CFOP),
			Description: strings.TrimSpace(d.Prod.XProd),
			TotalValue:  parseDecimal(d.Prod.VProd),
			CSTPIS:      cstFromPIS(d.Imposto.PIS),
			CSTCOFINS:   cstFromCOFINS(d.Imposto.COFINS),
		}

		classification.ClassifyItem(item.NCMCode, item.CFOP, item.CSTPIS).Apply(&item)
		invoice.Items = append(invoice.Items, item)
	}

	return invoice, nil
}

// unmarshalInfNFe tenta primeiro nfeProc (formato mais comum), depois NFe pura
func unmarshalInfNFe(normalized string) (*infNFe, error) {
	var proc nfeProc
	if err := decode(normalized, &proc); err == nil && (proc.NFe.InfNFe.Ide != nil || proc.NFe.InfNFe.ID != "") {
		return &proc.NFe.InfNFe, nil
	}

	var envelope nfeEnvelope
	if err := decode(normalized, &envelope); err != nil {
		return nil, fmt.Errorf("falha ao parsear XML: não é um formato NFe válido: %w", err)
	}
	if envelope.InfNFe.Ide == nil && envelope.InfNFe.ID == "" {
		return nil, fmt.Errorf("infNFe não encontrado no XML")
	}
	return &envelope.InfNFe, nil
}

// decode faz o unmarshal aceitando a declaração encoding="ISO-8859-1" que as
// NF-es mais antigas carregam
func decode(content string, v interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader([]byte(content)))
	dec.CharsetReader = charsetReader
	return dec.Decode(v)
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin1", "windows-1252":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "utf-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("charset não suportado: %s", charset)
}

// accessKeyFromID extrai a chave de acesso de 44 dígitos do atributo Id
// (formato "NFe" + chave)
func accessKeyFromID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "NFe")
	return id
}

// issueDate devolve a data de emissão como "YYYY-MM-DD", aceitando dhEmi
// (datetime do layout 4.00) e dEmi (somente data, layouts antigos)
func issueDate(i *ide) string {
	raw := strings.TrimSpace(i.DhEmi)
	if raw == "" {
		raw = strings.TrimSpace(i.DEmi)
	}
	if raw == "" {
		return ""
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("2006-01-02")
	}
	if len(raw) >= 10 {
		return raw[:10]
	}
	return raw
}

func itemLineNo(nItem string, index int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(nItem)); err == nil && n > 0 {
		return n
	}
	return index + 1
}

// parseDecimal converte os valores decimais do XML (ponto como separador;
// vírgula aparece em emissores fora do padrão)
func parseDecimal(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", ".")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func cstFromPIS(g *pisGroup) string {
	if g == nil {
		return ""
	}
	for _, v := range []*cstVal{g.Aliq, g.Qtde, g.NT, g.Outr} {
		if v != nil && v.CST != "" {
			return strings.TrimSpace(v.CST)
		}
	}
	return ""
}

func cstFromCOFINS(g *cofinsGroup) string {
	if g == nil {
		return ""
	}
	for _, v := range []*cstVal{g.Aliq, g.Qtde, g.NT, g.Outr, g.ST} {
		if v != nil && v.CST != "" {
			return strings.TrimSpace(v.CST)
		}
	}
	return ""
}
