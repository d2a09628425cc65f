package domain

import "time"

type ScanStatus string

const (
	ScanPending  ScanStatus = "pending"
	ScanClean    ScanStatus = "clean"
	ScanInfected ScanStatus = "infected"
	ScanError    ScanStatus = "error"
)

func (s ScanStatus) Valid() bool {
	switch s {
	case ScanPending, ScanClean, ScanInfected, ScanError:
		return true
	default:
		return false
	}
}

// ScanVerdict is the outcome of a single scan exchange with the external
// scanning service.
type ScanVerdict struct {
	Status    ScanStatus
	Signature string
}

type Document struct {
	ID            string     `json:"id"`
	CaseID        string     `json:"case_id"`
	FirmID        string     `json:"firm_id"`
	UploaderID    string     `json:"uploader_id"`
	Filename      string     `json:"filename"`
	ContentType   string     `json:"content_type"`
	SizeBytes     int64      `json:"size_bytes"`
	ContentSHA256 string     `json:"content_sha256"`
	StorageURI    string     `json:"storage_uri"`
	ScanStatus    ScanStatus `json:"scan_status"`
	ScanSignature string     `json:"scan_signature"`
	ScannedAt     *time.Time `json:"scanned_at"`
	CreatedAt     time.Time  `json:"created_at"`
}
