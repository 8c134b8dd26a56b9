package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteRows_PlanilhaLegivel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Apuração Mensal"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)

	rows := [][]interface{}{
		{"Competência", "Receita total", "Crédito"},
		{"2024-03", 1000.0, 9.30},
		{"2024-04", 2000.0, 18.60},
	}
	require.NoError(t, writeRows(f, sheet, rows))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	// Reabrir o arquivo gerado e conferir o conteúdo
	reopened, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer reopened.Close()

	header, err := reopened.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Competência", header)

	month, err := reopened.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", month)

	credit, err := reopened.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "9.3", credit)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 9.30", formatBRL(9.3))
	assert.Equal(t, "R$ 0.00", formatBRL(0))
}
