package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderFlattensNewlines(t *testing.T) {
	data := Dataset{
		Headers: []string{"Reference", "Subject"},
		Rows: []map[string]string{
			{"Reference": "7", "Subject": "Budget request\nsecond line"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	content := string(out)
	assert.True(t, strings.HasPrefix(content, "Reference,Subject"))
	assert.Contains(t, content, "7,Budget request second line")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	data := Dataset{
		Headers: []string{"Reference", "Subject", "Status"},
		Rows: []map[string]string{
			{"Reference": "7", "Subject": "Budget request", "Status": "new"},
		},
	}

	out, err := NewPDFExporter().Render(data, "Incoming Correspondence")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestColumnWidthsWeightFreeText(t *testing.T) {
	widths := columnWidths([]string{"Reference", "Subject", "Status"}, 120)
	require.Len(t, widths, 3)
	assert.InDelta(t, 30.0, widths[0], 0.001)
	assert.InDelta(t, 60.0, widths[1], 0.001)
	assert.InDelta(t, 30.0, widths[2], 0.001)
	assert.InDelta(t, 120.0, widths[0]+widths[1]+widths[2], 0.001)
}
