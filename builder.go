// Package icannreport builds the multi-part BigQuery queries used to produce
// monthly ICANN activity reports for registry oversight submission.
//
// The package only assembles query text. Executing the query, uploading the
// resulting report, and scheduling are all handled elsewhere in the
// reporting pipeline.
package icannreport

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// flowReporterLogSignature must match the signature prepended to the EPP
// metadata log lines by the flow reporter; the EPP/SRS data source keys off
// it to find the JSON payloads in the request logs.
const flowReporterLogSignature = "FLOW-LOG-SIGNATURE-METADATA"

// monthPattern is stricter than time.Parse, which accepts unpadded months.
var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// BuildActivityReportQuery returns the assembled activity report query for a
// given month.
//
// The outermost activity report query aggregates the union of a series of
// "data source" subqueries that each produce rows of the shape
// (tld, metricName, count); a NULL tld means the metric counts towards all
// TLDs. The WHOIS and EPP/SRS sources in turn share a common monthly
// request-log subquery scoped to [first of month, first of next month).
//
// month selects the report month and must be in YYYY-MM form; a month that
// does not parse as a real calendar month yields ErrInvalidMonth.
//
// registrarCount is an optional activity threshold. When nil the query
// carries no registrar-count filter. When set it must be non-negative
// (ErrInvalidRegistrarCount otherwise) and is embedded as a literal lower
// bound on the aggregated operational-registrars count.
func BuildActivityReportQuery(month string, registrarCount *int) (string, error) {
	thisYearmonth, nextYearmonth, err := monthBounds(month)
	if err != nil {
		return "", err
	}
	if registrarCount != nil && *registrarCount < 0 {
		return "", NewErrInvalidRegistrarCount(*registrarCount)
	}

	logsQuery := makeMonthlyLogsQuery(thisYearmonth, nextYearmonth)
	dataSourceQueries := []string{
		makeActivityOperationalRegistrarsQuery(nextYearmonth),
		makeActivityAllRampedUpRegistrarsQuery(nextYearmonth),
		makeActivityAllRegistrarsQuery(nextYearmonth),
		makeActivityWhoisQuery(logsQuery),
		makeActivityDnsQuery(),
		makeActivityEppSrsMetricsQuery(logsQuery),
	}
	query := makeActivityReportQuery(dataSourceQueries, registrarCount)
	return stripTrailingWhitespaceFromLines(query), nil
}

// monthBounds validates month and returns the report month and the following
// month, both in YYYY-MM form. The pair bounds the half-open activity window
// [thisYearmonth-01, nextYearmonth-01).
func monthBounds(month string) (thisYearmonth, nextYearmonth string, err error) {
	if !monthPattern.MatchString(month) {
		return "", "", NewErrInvalidMonth(month)
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", NewErrInvalidMonth(month)
	}
	next := start.AddDate(0, 1, 0)
	return start.Format("2006-01"), next.Format("2006-01"), nil
}

const monthlyLogsQueryTemplate = `
      -- Query AppEngine request logs for the report month.
      SELECT
        protoPayload.resource AS requestPath,
        protoPayload.line.logMessage AS logMessage,
      FROM
        TABLE_DATE_RANGE_STRICT(
          [appengine_logs.appengine_googleapis_com_request_log_],
          TIMESTAMP('%s-01'),
          -- End timestamp is inclusive, so subtract 1 second from the
          -- timestamp representing the start of the next month.
          DATE_ADD(TIMESTAMP('%s-01'), -1, 'SECOND'))
    `

func makeMonthlyLogsQuery(thisYearmonth, nextYearmonth string) string {
	return fmt.Sprintf(monthlyLogsQueryTemplate, thisYearmonth, nextYearmonth)
}

const activityReportQueryTemplate = `
      SELECT
        Tld.tld AS tld,
        SUM(IF(metricName = 'operational-registrars', count, 0)) AS operational_registrars,
        -- Compute ramp-up-registrars as all-ramped-up-registrars
        -- minus operational-registrars, with a floor of 0.
        GREATEST(0, SUM(
          CASE
            WHEN metricName = 'operational-registrars' THEN -count
            WHEN metricName = 'all-ramped-up-registrars' THEN count
            ELSE 0
          END)) AS ramp_up_registrars,
        -- Compute pre-ramp-up-registrars as all-registrars minus
        -- all-ramp-up-registrars, with a floor of 0.
        GREATEST(0, SUM(
          CASE
            WHEN metricName = 'all-ramped-up-registrars' THEN -count
            WHEN metricName = 'all-registrars' THEN count
            ELSE 0
          END)) AS pre_ramp_up_registrars,
        -- We don't support ZFA over SFTP, only AXFR.
        0 AS zfa_passwords,
        SUM(IF(metricName = 'whois-43-queries', count, 0))  AS whois_43_queries,
        SUM(IF(metricName = 'web-whois-queries', count, 0)) AS web_whois_queries,
        -- We don't support searchable WHOIS.
        0 AS searchable_whois_queries,
        -- DNS queries for UDP/TCP are all assumed to be recevied/responded.
        SUM(IF(metricName = 'dns-udp-queries', count, 0)) AS dns_udp_queries_received,
        SUM(IF(metricName = 'dns-udp-queries', count, 0)) AS dns_udp_queries_responded,
        SUM(IF(metricName = 'dns-tcp-queries', count, 0)) AS dns_tcp_queries_received,
        SUM(IF(metricName = 'dns-tcp-queries', count, 0)) AS dns_tcp_queries_responded,
        -- SRS metrics.
        SUM(IF(metricName = 'srs-dom-check', count, 0)) AS srs_dom_check,
        SUM(IF(metricName = 'srs-dom-create', count, 0)) AS srs_dom_create,
        SUM(IF(metricName = 'srs-dom-delete', count, 0)) AS srs_dom_delete,
        SUM(IF(metricName = 'srs-dom-info', count, 0)) AS srs_dom_info,
        SUM(IF(metricName = 'srs-dom-renew', count, 0)) AS srs_dom_renew,
        SUM(IF(metricName = 'srs-dom-rgp-restore-report', count, 0)) AS srs_dom_rgp_restore_report,
        SUM(IF(metricName = 'srs-dom-rgp-restore-request', count, 0)) AS srs_dom_rgp_restore_request,
        SUM(IF(metricName = 'srs-dom-transfer-approve', count, 0)) AS srs_dom_transfer_approve,
        SUM(IF(metricName = 'srs-dom-transfer-cancel', count, 0)) AS srs_dom_transfer_cancel,
        SUM(IF(metricName = 'srs-dom-transfer-query', count, 0)) AS srs_dom_transfer_query,
        SUM(IF(metricName = 'srs-dom-transfer-reject', count, 0)) AS srs_dom_transfer_reject,
        SUM(IF(metricName = 'srs-dom-transfer-request', count, 0)) AS srs_dom_transfer_request,
        SUM(IF(metricName = 'srs-dom-update', count, 0)) AS srs_dom_update,
        SUM(IF(metricName = 'srs-host-check', count, 0)) AS srs_host_check,
        SUM(IF(metricName = 'srs-host-create', count, 0)) AS srs_host_create,
        SUM(IF(metricName = 'srs-host-delete', count, 0)) AS srs_host_delete,
        SUM(IF(metricName = 'srs-host-info', count, 0)) AS srs_host_info,
        SUM(IF(metricName = 'srs-host-update', count, 0)) AS srs_host_update,
        SUM(IF(metricName = 'srs-cont-check', count, 0)) AS srs_cont_check,
        SUM(IF(metricName = 'srs-cont-create', count, 0)) AS srs_cont_create,
        SUM(IF(metricName = 'srs-cont-delete', count, 0)) AS srs_cont_delete,
        SUM(IF(metricName = 'srs-cont-info', count, 0)) AS srs_cont_info,
        SUM(IF(metricName = 'srs-cont-transfer-approve', count, 0)) AS srs_cont_transfer_approve,
        SUM(IF(metricName = 'srs-cont-transfer-cancel', count, 0)) AS srs_cont_transfer_cancel,
        SUM(IF(metricName = 'srs-cont-transfer-query', count, 0)) AS srs_cont_transfer_query,
        SUM(IF(metricName = 'srs-cont-transfer-reject', count, 0)) AS srs_cont_transfer_reject,
        SUM(IF(metricName = 'srs-cont-transfer-request', count, 0)) AS srs_cont_transfer_request,
        SUM(IF(metricName = 'srs-cont-update', count, 0)) AS srs_cont_update,
      -- Cross join a list of all TLDs against TLD-specific metrics and then
      -- filter so that only metrics with that TLD or a NULL TLD are counted
      -- towards a given TLD.
      FROM (
        SELECT tldStr AS tld
        FROM [latest_snapshot.Registry]
        -- Include all real TLDs that are not in pre-delegation testing.
        WHERE tldType = 'REAL'
        OMIT RECORD IF SOME(tldStateTransitions.tldState = 'PDT')
      ) AS Tld
      CROSS JOIN (
        SELECT
          tld, metricName, count
        FROM
          -- Dummy data source that ensures that all TLDs appear in report,
          -- since they'll all have at least 1 joined row that survives.
          (SELECT STRING(NULL) AS tld, STRING(NULL) AS metricName, 0 AS count),
          -- BEGIN JOINED DATA SOURCES --
          %s
          -- END JOINED DATA SOURCES --
      ) AS TldMetrics
      WHERE Tld.tld = TldMetrics.tld OR TldMetrics.tld IS NULL
      GROUP BY tld%s
      ORDER BY tld
    `

// makeActivityReportQuery makes the overall activity report query over the
// given data source subqueries. Each subquery must output rows of the shape
// (STRING tld, STRING metricName, INTEGER count); they are parenthesized and
// joined into a table union inside the cross-join block. A non-nil
// registrarCount adds a HAVING bound on the aggregated
// operational-registrars count.
func makeActivityReportQuery(dataSourceQueries []string, registrarCount *int) string {
	subqueries := make([]string, 0, len(dataSourceQueries))
	for _, q := range dataSourceQueries {
		subqueries = append(subqueries, fmt.Sprintf("(\n%s\n)", q))
	}
	joinedDataSources := "\n" + strings.Join(subqueries, ",\n")
	havingClause := ""
	if registrarCount != nil {
		havingClause = fmt.Sprintf("\n      HAVING operational_registrars >= %d", *registrarCount)
	}
	return fmt.Sprintf(activityReportQueryTemplate, joinedDataSources, havingClause)
}

const activityOperationalRegistrarsQueryTemplate = `
      -- Query for operational-registrars metric.
      SELECT
        allowedTlds AS tld,
        'operational-registrars' AS metricName,
        INTEGER(COUNT(__key__.name)) AS count,
      FROM [domain-registry:latest_snapshot.Registrar]
      WHERE type = 'REAL'
        AND creationTime < TIMESTAMP('%s-01')
      GROUP BY tld
    `

func makeActivityOperationalRegistrarsQuery(nextYearmonth string) string {
	return fmt.Sprintf(activityOperationalRegistrarsQueryTemplate, nextYearmonth)
}

const activityAllRampedUpRegistrarsQueryTemplate = `
      -- Query for all-ramped-up-registrars metric.
      SELECT
        STRING(NULL) AS tld,  -- Applies to all TLDs.
        'all-ramped-up-registrars' AS metricName,
        -- Sandbox OT&E registrar names can have either '-{1,2,3,4}' or '{,2,3}'
        -- as suffixes - strip all of these off to get the "real" name.
        INTEGER(EXACT_COUNT_DISTINCT(
          REGEXP_EXTRACT(__key__.name, r'(.+?)(?:-?\d)?$'))) AS count,
      FROM [domain-registry-sandbox:latest_snapshot.Registrar]
      WHERE type = 'OTE'
        AND creationTime < TIMESTAMP('%s-01')
    `

func makeActivityAllRampedUpRegistrarsQuery(nextYearmonth string) string {
	return fmt.Sprintf(activityAllRampedUpRegistrarsQueryTemplate, nextYearmonth)
}

const activityAllRegistrarsQueryTemplate = `
      -- Query for all-registrars metric.
      SELECT
        STRING(NULL) AS tld,  -- Applies to all TLDs.
        'all-registrars' AS metricName,
        INTEGER(COUNT(__key__.name)) AS count,
      FROM [domain-registry:latest_snapshot.Registrar]
      WHERE creationTime < TIMESTAMP('%s-01')
    `

// makeActivityAllRegistrarsQuery counts every registrar in the snapshot that
// existed before the end of the report month, regardless of type.
func makeActivityAllRegistrarsQuery(nextYearmonth string) string {
	return fmt.Sprintf(activityAllRegistrarsQueryTemplate, nextYearmonth)
}

const activityWhoisQueryTemplate = `
      -- Query for WHOIS metrics.
      SELECT
        STRING(NULL) AS tld,  -- Applies to all TLDs.
        -- Whois queries over port 43 get forwarded by the proxy to /_dr/whois,
        -- while web queries come in via /whois/<params>.
        CASE WHEN requestPath = '/_dr/whois' THEN 'whois-43-queries'
             WHEN LEFT(requestPath, 7) = '/whois/' THEN 'web-whois-queries'
             END AS metricName,
        INTEGER(COUNT(requestPath)) AS count,
      FROM (
        -- BEGIN LOGS QUERY --
        %s
        -- END LOGS QUERY --
      )
      GROUP BY metricName
      HAVING metricName IS NOT NULL
    `

func makeActivityWhoisQuery(logsQuery string) string {
	return fmt.Sprintf(activityWhoisQueryTemplate, logsQuery)
}

const activityDnsQuery = `
      -- Query for DNS metrics.
      SELECT
        STRING(NULL) AS tld,
        metricName,
        -1 AS count,
      FROM
        (SELECT 'dns-udp-queries' AS metricName),
        (SELECT 'dns-tcp-queries' AS metricName)
    `

// makeActivityDnsQuery emits placeholder counts; DNS query volume is
// tabulated outside the registry's own logs.
func makeActivityDnsQuery() string {
	return activityDnsQuery
}

const activityEppSrsMetricsQueryTemplate = `
      -- Query FlowReporter JSON log messages and calculate SRS metrics.
      SELECT
        tld,
        activityReportField AS metricName,
        INTEGER(COUNT(*)) AS count,
      FROM
        -- Flatten the "tld" column (repeated) so that domain checks for names
        -- across multiple TLDs are counted towards each checked TLD as though
        -- there were one copy of this row per TLD (the effect of flattening).
        FLATTEN((
          SELECT
            -- Use some ugly regex hackery to convert JSON list of strings into
            -- repeated string values, since there's no built-in for this.
            REGEXP_EXTRACT(
              SPLIT(
                REGEXP_EXTRACT(
                  JSON_EXTRACT(json, '$.tlds'),
                  r'^\[(.*)\]$')),
              '^"(.*)"$') AS tld,
            JSON_EXTRACT_SCALAR(json, '$.resourceType') AS resourceType,
            JSON_EXTRACT_SCALAR(json, '$.icannActivityReportField')
              AS activityReportField,
          FROM (
            SELECT
              -- Extract JSON payload following log signature.
              REGEXP_EXTRACT(logMessage, r'%[2]s: (.*)\n?$')
                AS json,
            FROM (
              -- BEGIN LOGS QUERY --
              %[1]s
              -- END LOGS QUERY --
            )
            WHERE logMessage CONTAINS '%[2]s'
          )
        ),
        -- Second argument to flatten (see above).
        tld)
      -- Exclude cases that can't be tabulated correctly - activity report field
      -- is null/empty, or the TLD is null/empty even though it's a domain flow.
      WHERE
        activityReportField != '' AND (tld != '' OR resourceType != 'domain')
      GROUP BY tld, metricName
      ORDER BY tld, metricName
    `

func makeActivityEppSrsMetricsQuery(logsQuery string) string {
	return fmt.Sprintf(activityEppSrsMetricsQueryTemplate, logsQuery, flowReporterLogSignature)
}
