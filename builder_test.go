package icannreport

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenHeaderSentinel = "-- END OF HEADER\n"

// goldenActivityQuery returns the expected SQL body from the golden file,
// with everything up to and including the header sentinel stripped.
func goldenActivityQuery(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile("testdata/golden_activity_query.sql")
	require.NoError(t, err)
	_, body, found := strings.Cut(string(raw), goldenHeaderSentinel)
	require.True(t, found, "golden file has no %q sentinel", goldenHeaderSentinel)
	return body
}

func TestBuildActivityReportQueryMatchesGolden(t *testing.T) {
	got, err := BuildActivityReportQuery("2016-06", nil)
	require.NoError(t, err)
	if diff := cmp.Diff(goldenActivityQuery(t), got); diff != "" {
		t.Errorf("generated query differs from golden (-want +got):\n%s", diff)
	}
}

func TestBuildActivityReportQueryDeterministic(t *testing.T) {
	threshold := 25
	first, err := BuildActivityReportQuery("2016-06", &threshold)
	require.NoError(t, err)
	second, err := BuildActivityReportQuery("2016-06", &threshold)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildActivityReportQueryMonthBounds(t *testing.T) {
	query, err := BuildActivityReportQuery("2016-12", nil)
	require.NoError(t, err)
	// December's activity window must roll over into the next year.
	assert.Contains(t, query, "TIMESTAMP('2016-12-01')")
	assert.Contains(t, query, "DATE_ADD(TIMESTAMP('2017-01-01'), -1, 'SECOND')")
}

func TestBuildActivityReportQueryRegistrarCount(t *testing.T) {
	threshold := 300
	query, err := BuildActivityReportQuery("2016-06", &threshold)
	require.NoError(t, err)
	assert.Contains(t, query, "HAVING operational_registrars >= 300")

	zero := 0
	query, err = BuildActivityReportQuery("2016-06", &zero)
	require.NoError(t, err)
	assert.Contains(t, query, "HAVING operational_registrars >= 0")
}

func TestBuildActivityReportQueryOmitsRegistrarCountWhenAbsent(t *testing.T) {
	query, err := BuildActivityReportQuery("2016-06", nil)
	require.NoError(t, err)
	assert.NotContains(t, query, "HAVING operational_registrars")
}

func TestBuildActivityReportQueryInvalidMonth(t *testing.T) {
	for _, month := range []string{
		"2016-13",
		"2016-00",
		"not-a-month",
		"2016-6",
		"2016-06-01",
		"201606",
		"",
	} {
		_, err := BuildActivityReportQuery(month, nil)
		var invalid *ErrInvalidMonth
		require.ErrorAs(t, err, &invalid, "month %q", month)
		assert.Equal(t, month, invalid.Month)
	}
}

func TestBuildActivityReportQueryNegativeRegistrarCount(t *testing.T) {
	threshold := -1
	_, err := BuildActivityReportQuery("2016-06", &threshold)
	var invalid *ErrInvalidRegistrarCount
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, -1, invalid.Count)
}

func TestBuildActivityReportQueryNegativeCountBeatsNoFilter(t *testing.T) {
	// A negative threshold must fail, not silently fall back to the
	// unfiltered query.
	threshold := -7
	query, err := BuildActivityReportQuery("2016-06", &threshold)
	assert.Empty(t, query)
	assert.True(t, errors.As(err, new(*ErrInvalidRegistrarCount)))
}
