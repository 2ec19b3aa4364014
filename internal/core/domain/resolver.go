package domain

// ResolveCurrentVersion selects the version representing current content for status.
// It is a pure function of its inputs; callers must re-run it after every append
// instead of trusting Document.CurrentVersionID.
func ResolveCurrentVersion(status DocumentStatus, versions []Version) (Version, bool) {
	for _, versionType := range resolutionOrder(status) {
		if v, ok := LatestOfType(versions, versionType); ok {
			return v, true
		}
	}
	return Version{}, false
}

func resolutionOrder(status DocumentStatus) []VersionType {
	switch status {
	case StatusApproved, StatusPublished:
		return []VersionType{VersionFinal}
	case StatusPendingReview:
		return []VersionType{VersionFinal, VersionManualTranslation}
	case StatusInTranslation, StatusDraft, StatusPendingTranslation:
		return []VersionType{VersionManualTranslation, VersionAIDraft}
	default:
		return nil
	}
}

// LatestTranslation returns the newest translated content: a manual translation,
// else the AI draft. The original is never treated as a translation.
func LatestTranslation(versions []Version) (Version, bool) {
	return ResolveCurrentVersion(StatusInTranslation, versions)
}
