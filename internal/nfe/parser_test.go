package nfe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNFeProc = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe xmlns="http://www.portalfiscal.inf.br/nfe">
    <infNFe Id="NFe35240312345678000195550010000001231000001239" versao="4.00">
      <ide>
        <cUF>35</cUF>
        <natOp>VENDA</natOp>
        <mod>55</mod>
        <serie>1</serie>
        <nNF>123</nNF>
        <dhEmi>2024-03-15T10:30:00-03:00</dhEmi>
      </ide>
      <emit>
        <CNPJ>12345678000195</CNPJ>
        <xNome>FARMACIA EXEMPLO LTDA</xNome>
      </emit>
      <det nItem="1">
        <prod>
          <cProd>MED001</cProd>
          <xProd>DIPIRONA 500MG</xProd>
          <NCM>30049099</NCM>
          <CFOP>5102</CFOP>
          <uCom>UN</uCom>
          <qCom>2.0000</qCom>
          <vUnCom>10.0000</vUnCom>
          <vProd>20.00</vProd>
        </prod>
        <imposto>
          <PIS>
            <PISNT>
              <CST>04</CST>
            </PISNT>
          </PIS>
          <COFINS>
            <COFINSNT>
              <CST>04</CST>
            </COFINSNT>
          </COFINS>
        </imposto>
      </det>
      <det nItem="2">
        <prod>
          <cProd>CAM001</cProd>
          <xProd>CAMISETA ALGODAO</xProd>
          <NCM>61091000</NCM>
          <CFOP>5102</CFOP>
          <vProd>35.50</vProd>
        </prod>
        <imposto>
          <PIS>
            <PISAliq>
              <CST>01</CST>
              <vBC>35.50</vBC>
              <pPIS>0.65</pPIS>
              <vPIS>0.23</vPIS>
            </PISAliq>
          </PIS>
          <COFINS>
            <COFINSAliq>
              <CST>01</CST>
              <vCOFINS>1.07</vCOFINS>
            </COFINSAliq>
          </COFINS>
        </imposto>
      </det>
      <total>
        <ICMSTot>
          <vProd>55.50</vProd>
          <vNF>55.50</vNF>
        </ICMSTot>
      </total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParse_NFeProcCompleta(t *testing.T) {
	invoice, err := Parse(sampleNFeProc, "nota123.xml")
	require.NoError(t, err)

	assert.Equal(t, "35240312345678000195550010000001231000001239", invoice.AccessKey)
	assert.Equal(t, "2024-03-15", invoice.IssueDate)
	assert.Equal(t, 55.50, invoice.TotalValue)
	assert.Equal(t, "nota123.xml", invoice.SourceFile)
	require.Len(t, invoice.Items, 2)

	med := invoice.Items[0]
	assert.Equal(t, 1, med.LineNo)
	assert.Equal(t, "MED001", med.ProductCode)
	assert.Equal(t, "DIPIRONA 500MG", med.Description)
	assert.Equal(t, "30049099", med.NCMCode)
	assert.Equal(t, "5102", med.CFOP)
	assert.Equal(t, "04", med.CSTPIS)
	assert.Equal(t, "04", med.CSTCOFINS)
	assert.Equal(t, 20.00, med.TotalValue)
	assert.True(t, med.IsMonofasico)
	assert.False(t, med.NeedsHumanReview)
	assert.True(t, med.CFOPValidForCredit)

	cam := invoice.Items[1]
	assert.Equal(t, 2, cam.LineNo)
	assert.Equal(t, "01", cam.CSTPIS)
	assert.False(t, cam.IsMonofasico)
	assert.Equal(t, 0.0, cam.ClassificationConfidence)
}

func TestParse_NFeSemProtocolo(t *testing.T) {
	nfeOnly := `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe35240312345678000195550010000001231000001239">
    <ide><nNF>123</nNF><dEmi>2024-03-15</dEmi></ide>
    <det nItem="1">
      <prod><cProd>P1</cProd><xProd>PRODUTO</xProd><NCM>33051000</NCM><CFOP>6108</CFOP><vProd>10.00</vProd></prod>
      <imposto></imposto>
    </det>
    <total><ICMSTot><vNF>10.00</vNF></ICMSTot></total>
  </infNFe>
</NFe>`

	invoice, err := Parse(nfeOnly, "nota.xml")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", invoice.IssueDate)
	require.Len(t, invoice.Items, 1)
	assert.True(t, invoice.Items[0].IsMonofasico)
	assert.Empty(t, invoice.Items[0].CSTPIS)
}

func TestParse_CSTDeCOFINSST(t *testing.T) {
	nfeOnly := `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe35240312345678000195550010000001231000001239">
    <ide><nNF>123</nNF><dEmi>2024-03-15</dEmi></ide>
    <det nItem="1">
      <prod><cProd>P1</cProd><xProd>CERVEJA</xProd><NCM>22030000</NCM><CFOP>5405</CFOP><vProd>80.00</vProd></prod>
      <imposto>
        <PIS><PISNT><CST>08</CST></PISNT></PIS>
        <COFINS><COFINSST><CST>75</CST></COFINSST></COFINS>
      </imposto>
    </det>
    <total><ICMSTot><vNF>80.00</vNF></ICMSTot></total>
  </infNFe>
</NFe>`

	invoice, err := Parse(nfeOnly, "st.xml")
	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "08", invoice.Items[0].CSTPIS)
	assert.Equal(t, "75", invoice.Items[0].CSTCOFINS)
}

func TestParse_PrefixoDeNamespace(t *testing.T) {
	prefixed := `<nfe:nfeProc xmlns:nfe="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <nfe:NFe>
    <nfe:infNFe Id="NFe35240312345678000195550010000001231000001239" versao="4.00">
      <nfe:ide><nfe:nNF>1</nfe:nNF><nfe:dhEmi>2024-01-10T08:00:00-03:00</nfe:dhEmi></nfe:ide>
      <nfe:det nItem="1">
        <nfe:prod><nfe:cProd>X</nfe:cProd><nfe:xProd>GASOLINA COMUM</nfe:xProd><nfe:NCM>27101159</nfe:NCM><nfe:CFOP>5405</nfe:CFOP><nfe:vProd>250.00</nfe:vProd></nfe:prod>
        <nfe:imposto></nfe:imposto>
      </nfe:det>
      <nfe:total><nfe:ICMSTot><nfe:vNF>250.00</nfe:vNF></nfe:ICMSTot></nfe:total>
    </nfe:infNFe>
  </nfe:NFe>
</nfe:nfeProc>`

	invoice, err := Parse(prefixed, "prefixada.xml")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", invoice.IssueDate)
	require.Len(t, invoice.Items, 1)
	assert.True(t, invoice.Items[0].IsMonofasico)
	assert.True(t, invoice.Items[0].CFOPValidForCredit)
}

func TestParse_XMLMalformado(t *testing.T) {
	_, err := Parse("<nfeProc><NFe><infNFe>", "quebrada.xml")
	assert.Error(t, err)

	_, err = Parse("isso não é XML", "lixo.xml")
	assert.Error(t, err)
}

func TestParse_SemTagsEssenciais(t *testing.T) {
	semDet := `<NFe><infNFe Id="NFe123">
    <ide><nNF>1</nNF><dEmi>2024-03-15</dEmi></ide>
    <total><ICMSTot><vNF>0</vNF></ICMSTot></total>
  </infNFe></NFe>`
	_, err := Parse(semDet, "semdet.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "det")

	semIde := `<NFe><infNFe Id="NFe123">
    <total><ICMSTot><vNF>0</vNF></ICMSTot></total>
    <det nItem="1"><prod><vProd>1</vProd></prod></det>
  </infNFe></NFe>`
	_, err = Parse(semIde, "semide.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ide")

	semTotal := `<NFe><infNFe Id="NFe123">
    <ide><nNF>1</nNF></ide>
    <det nItem="1"><prod><vProd>1</vProd></prod></det>
  </infNFe></NFe>`
	_, err = Parse(semTotal, "semtotal.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ICMSTot")
}

func TestNormalize(t *testing.T) {
	in := `<nfe:NFe xmlns:nfe="http://x" xmlns="http://y" xsi:schemaLocation="http://z a.xsd" versao="4.00"><nfe:infNFe/></nfe:NFe>`
	out := Normalize(in)
	assert.NotContains(t, out, "xmlns")
	assert.NotContains(t, out, "schemaLocation")
	assert.NotContains(t, out, "versao=")
	assert.NotContains(t, out, "nfe:")
	assert.Contains(t, out, "<infNFe/>")
}

func TestParse_ItemSemNItemGanhaSequencial(t *testing.T) {
	x := `<NFe><infNFe Id="NFe123">
    <ide><nNF>1</nNF><dEmi>2024-03-15</dEmi></ide>
    <det><prod><cProd>A</cProd><NCM>61091000</NCM><CFOP>5102</CFOP><vProd>1.00</vProd></prod></det>
    <det><prod><cProd>B</cProd><NCM>61091000</NCM><CFOP>5102</CFOP><vProd>2.00</vProd></prod></det>
    <total><ICMSTot><vNF>3.00</vNF></ICMSTot></total>
  </infNFe></NFe>`

	invoice, err := Parse(x, "seq.xml")
	require.NoError(t, err)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, 1, invoice.Items[0].LineNo)
	assert.Equal(t, 2, invoice.Items[1].LineNo)
}

func TestParse_EncodingLatin1(t *testing.T) {
	// declaração ISO-8859-1 com conteúdo ASCII: o charset reader não pode
	// rejeitar o arquivo
	x := `<?xml version="1.0" encoding="ISO-8859-1"?>
<NFe><infNFe Id="NFe123">
  <ide><nNF>1</nNF><dEmi>2024-03-15</dEmi></ide>
  <det nItem="1"><prod><cProd>A</cProd><NCM>30049099</NCM><CFOP>5102</CFOP><vProd>1.00</vProd></prod></det>
  <total><ICMSTot><vNF>1.00</vNF></ICMSTot></total>
</infNFe></NFe>`

	invoice, err := Parse(x, "latin1.xml")
	require.NoError(t, err)
	assert.True(t, invoice.Items[0].IsMonofasico)
}

func TestParse_ValorComVirgula(t *testing.T) {
	assert.Equal(t, 10.5, parseDecimal("10,50"))
	assert.Equal(t, 10.5, parseDecimal(" 10.50 "))
	assert.Equal(t, 0.0, parseDecimal(""))
	assert.Equal(t, 0.0, parseDecimal("abc"))
}

func TestAccessKeyFromID(t *testing.T) {
	assert.Equal(t, "35240312345678000195550010000001231000001239",
		accessKeyFromID("NFe35240312345678000195550010000001231000001239"))
	assert.Equal(t, "123", accessKeyFromID("  NFe123  "))
}

func TestIssueDate_Fallbacks(t *testing.T) {
	assert.Equal(t, "2024-03-15", issueDate(&ide{DhEmi: "2024-03-15T10:30:00-03:00"}))
	assert.Equal(t, "2024-03-15", issueDate(&ide{DEmi: "2024-03-15"}))
	assert.Equal(t, "2024-03-15", issueDate(&ide{DhEmi: "2024-03-15 10:30:00"}))
	assert.Equal(t, "", issueDate(&ide{}))
}

