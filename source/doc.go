// Package source materializes the term table and the curated match index
// from disk.
//
// The term table is read with an explicit schema: a header row naming the
// columns id, term, category, synonyms and icd11_tm2_code. Only id and term
// are required. Cells holding a missing-value sentinel (empty, NA, NaN, null
// and similar) are treated as absent. Tables may be CSV files or XLSX
// workbooks, in which case the first sheet is read.
//
// The curated match index is a JSON document with "exact" and "partial"
// buckets. Decoding is tolerant of absent buckets and of non-string list
// elements.
//
// A missing file is never an error: FileSource substitutes an empty table or
// index. Malformed content is reported as a *DataLoadError.
package source
