package icannreport

import "github.com/kisielk/sqlstruct"

// The init function sets up the sqlstruct package so that column mapping
// uses the "db" struct field tag and snake_case name derivation.
func init() {
	sqlstruct.TagName = "db"
	sqlstruct.NameMapper = sqlstruct.ToSnakeCase
}
