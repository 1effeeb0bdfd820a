// Package logging builds the zap logger shared by every gitguard command.
//
// Console output goes to stderr at the configured level. When an audit log
// path is configured, records of the logger named [AuditName] are also written
// as JSON to a size-rotated file.
package logging
