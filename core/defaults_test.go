package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

func TestApplySectionDefaultsFillsOnlyEmptySections(t *testing.T) {
	m := models.Mission{Scope: "Only the lab network."}
	require.NoError(t, ApplySectionDefaults(&m))

	assert.Equal(t, "Only the lab network.", m.Scope)
	assert.NotEmpty(t, m.ExecutiveSummary)
	assert.NotEmpty(t, m.Conclusion)

	paragraphs := strings.Split(m.Introduction, "\n")
	require.Len(t, paragraphs, 2)
	for _, p := range paragraphs {
		assert.Equal(t, strings.Join(strings.Fields(p), " "), p)
	}
}

func TestCompactParagraphs(t *testing.T) {
	assert.Equal(t, "a b\nc", CompactParagraphs("  a \t b \r\n\r\n c\n"))
	assert.Equal(t, "", CompactParagraphs(" \n "))
}
