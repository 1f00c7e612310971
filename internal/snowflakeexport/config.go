// Package snowflakeexport is a daily, best-effort export of the linker's
// conflict-resolution metrics to a Snowflake table for BI: a gosnowflake
// DSN over database/sql, driven by a periodic ticker loop.
package snowflakeexport

// Config holds the Snowflake connection parameters.
type Config struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
	Enabled   bool   `yaml:"enabled"`
}
