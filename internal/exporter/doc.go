// Package exporter serializes already-computed pipeline state: the unified
// table as delimited text or as a workbook with a summary sheet, and the
// quality report and data dictionary as YAML documents. No computation
// happens here.
package exporter
