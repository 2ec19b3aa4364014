package domain

type Action string

const (
	ActionRequestTranslation Action = "request_translation"
	ActionStartTranslation   Action = "start_translation"
	ActionResumeTranslation  Action = "resume_translation"
	ActionSaveDraft          Action = "save_draft"
	ActionSubmitForReview    Action = "submit_for_review"
	ActionApprove            Action = "approve"
	ActionReject             Action = "reject"
	ActionPublish            Action = "publish"
	ActionHandOver           Action = "hand_over"
	ActionConvertToPending   Action = "convert_to_pending"
	ActionReleaseLock        Action = "release_lock"
	ActionReclaimLock        Action = "reclaim_lock"
)

type transitionRule struct {
	from func(DocumentStatus) bool
	to   func(DocumentStatus) DocumentStatus
}

func fromOnly(allowed ...DocumentStatus) func(DocumentStatus) bool {
	return func(s DocumentStatus) bool {
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

func anyStatus(DocumentStatus) bool { return true }

func moveTo(next DocumentStatus) func(DocumentStatus) DocumentStatus {
	return func(DocumentStatus) DocumentStatus { return next }
}

func unchanged(s DocumentStatus) DocumentStatus { return s }

// Status preconditions only; lock and handover preconditions are checked by the coordinator.
var transitions = map[Action]transitionRule{
	ActionRequestTranslation: {from: fromOnly(StatusDraft), to: moveTo(StatusPendingTranslation)},
	ActionStartTranslation:   {from: fromOnly(StatusPendingTranslation), to: moveTo(StatusInTranslation)},
	ActionResumeTranslation:  {from: fromOnly(StatusInTranslation), to: unchanged},
	ActionSaveDraft:          {from: fromOnly(StatusInTranslation), to: unchanged},
	ActionSubmitForReview:    {from: fromOnly(StatusInTranslation), to: moveTo(StatusPendingReview)},
	ActionApprove:            {from: fromOnly(StatusPendingReview), to: moveTo(StatusApproved)},
	ActionReject:             {from: fromOnly(StatusPendingReview, StatusApproved), to: moveTo(StatusInTranslation)},
	ActionPublish:            {from: fromOnly(StatusApproved), to: moveTo(StatusPublished)},
	ActionHandOver:           {from: fromOnly(StatusInTranslation), to: unchanged},
	ActionConvertToPending: {
		from: func(s DocumentStatus) bool { return s != StatusPendingTranslation },
		to:   moveTo(StatusPendingTranslation),
	},
	ActionReleaseLock: {from: anyStatus, to: unchanged},
	ActionReclaimLock: {from: anyStatus, to: unchanged},
}

// NextStatus validates the status precondition of action and returns the resulting status.
func NextStatus(doc *Document, action Action) (DocumentStatus, error) {
	rule, ok := transitions[action]
	if !ok {
		return doc.Status, NewInvalidTransition(doc, action, "unknown action")
	}
	if !rule.from(doc.Status) {
		return doc.Status, NewInvalidTransition(doc, action, "")
	}
	return rule.to(doc.Status), nil
}

// AllowedActions lists the actions whose status precondition holds for status.
func AllowedActions(status DocumentStatus) []Action {
	ordered := []Action{
		ActionRequestTranslation,
		ActionStartTranslation,
		ActionResumeTranslation,
		ActionSaveDraft,
		ActionSubmitForReview,
		ActionApprove,
		ActionReject,
		ActionPublish,
		ActionHandOver,
		ActionConvertToPending,
	}
	out := make([]Action, 0, len(ordered))
	for _, action := range ordered {
		if transitions[action].from(status) {
			out = append(out, action)
		}
	}
	return out
}

type CreateDocumentRequest struct {
	Title           string
	CategoryID      string
	OriginalContent string
	AIDraftContent  string
	CreatedBy       string
}

type HandoverRequest struct {
	DocumentID string
	WorkerID   string
	Memo       string
	TermsNotes string
	// Content, when set, is saved as a working translation before the lock is released.
	Content string
}

// TransitionResult is returned by every state-changing operation.
type TransitionResult struct {
	Document        Document  `json:"document"`
	AppendedVersion *Version  `json:"appended_version,omitempty"`
	Lock            *Lock     `json:"lock,omitempty"`
	Handover        *Handover `json:"handover,omitempty"`
}
