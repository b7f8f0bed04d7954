package icannreport

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportColumnsOrder(t *testing.T) {
	cols := ReportColumns()
	require.NotEmpty(t, cols)
	assert.Equal(t, "tld", cols[0])
	assert.Equal(t, "operational_registrars", cols[1])
	assert.Equal(t, "srs_cont_update", cols[len(cols)-1])
	assert.Len(t, cols, 40)
}

// Every column after tld must be projected by the generated query under the
// same alias, so that rows scan into ActivityReportRow.
func TestReportColumnsMatchQueryAliases(t *testing.T) {
	query, err := BuildActivityReportQuery("2016-06", nil)
	require.NoError(t, err)
	for _, col := range ReportColumns()[1:] {
		assert.True(t, strings.Contains(query, fmt.Sprintf(" AS %s,", col)),
			"query does not project column %q", col)
	}
}
