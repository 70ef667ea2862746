package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(content ...[]byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for _, part := range content {
		h.Write(part)
	}
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Sentinel values used in engine output.
const (
	// NoDirectMatch is reported as the match of a result without target codes.
	NoDirectMatch = "No Direct Match"
	// TargetPending is reported as the target code of an unmapped translation.
	TargetPending = "TBD"

	StatusMapped  = "Mapped"
	StatusPending = "Pending"

	// SystemTM2 labels translations answered by the term table.
	SystemTM2 = "ICD-11 TM2"
	// SystemICD11 labels translations answered by the curated match index.
	SystemICD11 = "ICD-11"
)

// TermRecord is one row of the term table.
// Empty strings stand for missing cells.
type TermRecord struct {
	ID         string
	Term       string
	Category   string
	Synonyms   string
	TargetCode string // ICD-11 TM2 code, empty when not yet mapped
}

// Mapped reports whether the record carries a target code.
func (r TermRecord) Mapped() bool {
	return r.TargetCode != ""
}

// CuratedEntry is one hand-classified mapping in the curated match index.
type CuratedEntry struct {
	Code        string   `json:"code"`
	Label       string   `json:"label"`
	Synonyms    []string `json:"synonyms"`
	TargetCodes []string `json:"icd11_tm2_codes"` // first is primary
}

// CuratedIndex holds the "exact" and "partial" buckets of curated matches.
// Only the partial bucket takes part in search and translation.
type CuratedIndex struct {
	Exact   []CuratedEntry `json:"exact"`
	Partial []CuratedEntry `json:"partial"`
}

// Dataset is a complete loaded snapshot of both sources.
type Dataset struct {
	Terms   []TermRecord
	Curated CuratedIndex
	Info    SnapshotInfo
}

// SnapshotInfo describes the source files a snapshot was built from.
type SnapshotInfo struct {
	Fingerprint       ID        `json:"fingerprint"`
	TermTablePath     string    `json:"term_table_path"`
	CuratedIndexPath  string    `json:"curated_index_path"`
	TermTableFound    bool      `json:"term_table_found"`
	CuratedIndexFound bool      `json:"curated_index_found"`
	TermCount         int       `json:"term_count"`
	CuratedCount      int       `json:"curated_count"`
	LoadedAt          time.Time `json:"loaded_at"`
}

// MappingResult is a ranked search candidate.
type MappingResult struct {
	ID         string  `json:"id"`
	Term       string  `json:"term"`
	Code       string  `json:"code"`
	Match      string  `json:"match"`
	Confidence float64 `json:"confidence"`
}

// TranslationResult is the answer to a code translation.
type TranslationResult struct {
	SourceCode string `json:"source_code"`
	SourceTerm string `json:"source_term"`
	TargetCode string `json:"target_code"`
	System     string `json:"system"`
	Status     string `json:"status"`
}

// Stats summarizes the current snapshot. DailyQueries and ActiveUsers are
// placeholder figures, not telemetry.
type Stats struct {
	TotalMappings int `json:"total_mappings"`
	DailyQueries  int `json:"daily_queries"`
	ActiveUsers   int `json:"active_users"`
	FHIRResources int `json:"fhir_resources"`
}

// Settings is the integration settings document.
type Settings struct {
	ClientID    string    `json:"client_id"`
	CallbackURL string    `json:"callback_url"`
	Environment string    `json:"environment"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	DefaultClientID    = "sbx-837-299-441-992"
	DefaultCallbackURL = "/api/v1/auth/callback"
	DefaultEnvironment = "Sandbox Gateway v2.4"
)

// DefaultSettings returns the settings document used before any update.
func DefaultSettings() *Settings {
	return &Settings{
		ClientID:    DefaultClientID,
		CallbackURL: DefaultCallbackURL,
		Environment: DefaultEnvironment,
	}
}
