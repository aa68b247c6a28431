// Package sbd reads Iridium short-burst-data messages from storage.
//
// Each message is one mobile-originated transmission from a station modem,
// identified by the modem's IMEI number and the time of the Iridium session
// that delivered it. A FilesystemStore lays messages out the way the
// receiving server writes them: one subdirectory per IMEI, one file per
// session named YYMMDD_HHMMSS.sbd, file contents are the raw payload.
//
// Store implementations return messages in a deterministic order (session
// time, then IMEI, then filename) but callers that care about reassembly
// should sort per device themselves.
package sbd
