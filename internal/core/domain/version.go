package domain

import "time"

type VersionType string

const (
	VersionOriginal          VersionType = "ORIGINAL"
	VersionAIDraft           VersionType = "AI_DRAFT"
	VersionManualTranslation VersionType = "MANUAL_TRANSLATION"
	VersionFinal             VersionType = "FINAL"
)

func (t VersionType) Valid() bool {
	switch t {
	case VersionOriginal, VersionAIDraft, VersionManualTranslation, VersionFinal:
		return true
	default:
		return false
	}
}

// Version is an immutable content snapshot. Number is unique per document and never reused.
type Version struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"document_id"`
	Number     int         `json:"number"`
	Type       VersionType `json:"type"`
	Content    string      `json:"content"`
	CreatedBy  string      `json:"created_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewVersion is the input for appending a version; the store assigns ID, Number and CreatedAt.
type NewVersion struct {
	DocumentID string
	Type       VersionType
	Content    string
	CreatedBy  string
}

// LatestOfType returns the highest-numbered version of the given type.
func LatestOfType(versions []Version, versionType VersionType) (Version, bool) {
	var (
		latest Version
		found  bool
	)
	for _, v := range versions {
		if v.Type != versionType {
			continue
		}
		if !found || v.Number > latest.Number {
			latest = v
			found = true
		}
	}
	return latest, found
}
