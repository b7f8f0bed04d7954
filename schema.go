package icannreport

import (
	"reflect"

	"github.com/kisielk/sqlstruct"
)

// ActivityReportRow is the schema of one row of the activity report, in the
// column order projected by the generated query. Pipeline consumers use it
// to interpret query results without parsing the SQL text.
type ActivityReportRow struct {
	Tld                     string `db:"tld"`
	OperationalRegistrars   int64  `db:"operational_registrars"`
	RampUpRegistrars        int64  `db:"ramp_up_registrars"`
	PreRampUpRegistrars     int64  `db:"pre_ramp_up_registrars"`
	ZfaPasswords            int64  `db:"zfa_passwords"`
	Whois43Queries          int64  `db:"whois_43_queries"`
	WebWhoisQueries         int64  `db:"web_whois_queries"`
	SearchableWhoisQueries  int64  `db:"searchable_whois_queries"`
	DnsUdpQueriesReceived   int64  `db:"dns_udp_queries_received"`
	DnsUdpQueriesResponded  int64  `db:"dns_udp_queries_responded"`
	DnsTcpQueriesReceived   int64  `db:"dns_tcp_queries_received"`
	DnsTcpQueriesResponded  int64  `db:"dns_tcp_queries_responded"`
	SrsDomCheck             int64  `db:"srs_dom_check"`
	SrsDomCreate            int64  `db:"srs_dom_create"`
	SrsDomDelete            int64  `db:"srs_dom_delete"`
	SrsDomInfo              int64  `db:"srs_dom_info"`
	SrsDomRenew             int64  `db:"srs_dom_renew"`
	SrsDomRgpRestoreReport  int64  `db:"srs_dom_rgp_restore_report"`
	SrsDomRgpRestoreRequest int64  `db:"srs_dom_rgp_restore_request"`
	SrsDomTransferApprove   int64  `db:"srs_dom_transfer_approve"`
	SrsDomTransferCancel    int64  `db:"srs_dom_transfer_cancel"`
	SrsDomTransferQuery     int64  `db:"srs_dom_transfer_query"`
	SrsDomTransferReject    int64  `db:"srs_dom_transfer_reject"`
	SrsDomTransferRequest   int64  `db:"srs_dom_transfer_request"`
	SrsDomUpdate            int64  `db:"srs_dom_update"`
	SrsHostCheck            int64  `db:"srs_host_check"`
	SrsHostCreate           int64  `db:"srs_host_create"`
	SrsHostDelete           int64  `db:"srs_host_delete"`
	SrsHostInfo             int64  `db:"srs_host_info"`
	SrsHostUpdate           int64  `db:"srs_host_update"`
	SrsContCheck            int64  `db:"srs_cont_check"`
	SrsContCreate           int64  `db:"srs_cont_create"`
	SrsContDelete           int64  `db:"srs_cont_delete"`
	SrsContInfo             int64  `db:"srs_cont_info"`
	SrsContTransferApprove  int64  `db:"srs_cont_transfer_approve"`
	SrsContTransferCancel   int64  `db:"srs_cont_transfer_cancel"`
	SrsContTransferQuery    int64  `db:"srs_cont_transfer_query"`
	SrsContTransferReject   int64  `db:"srs_cont_transfer_reject"`
	SrsContTransferRequest  int64  `db:"srs_cont_transfer_request"`
	SrsContUpdate           int64  `db:"srs_cont_update"`
}

// ReportColumns returns the report's column names in projection order.
//
// Columns are mapped from the exported fields of ActivityReportRow using the
// `db` struct tag; a field without a tag falls back to the snake_case form
// of its name, and `db:"-"` excludes a field.
func ReportColumns() []string {
	typ := reflect.TypeOf(ActivityReportRow{})

	var names []string
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		// Skip unexported fields
		if f.PkgPath != "" {
			continue
		}
		tag := f.Tag.Get(sqlstruct.TagName)
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sqlstruct.ToSnakeCase(f.Name)
		}
		names = append(names, tag)
	}
	return names
}
