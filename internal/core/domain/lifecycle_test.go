package domain

import (
	"errors"
	"testing"
)

func TestNextStatusFollowsLifecycle(t *testing.T) {
	cases := []struct {
		from   DocumentStatus
		action Action
		want   DocumentStatus
	}{
		{StatusDraft, ActionRequestTranslation, StatusPendingTranslation},
		{StatusPendingTranslation, ActionStartTranslation, StatusInTranslation},
		{StatusInTranslation, ActionResumeTranslation, StatusInTranslation},
		{StatusInTranslation, ActionSaveDraft, StatusInTranslation},
		{StatusInTranslation, ActionSubmitForReview, StatusPendingReview},
		{StatusPendingReview, ActionApprove, StatusApproved},
		{StatusPendingReview, ActionReject, StatusInTranslation},
		{StatusApproved, ActionReject, StatusInTranslation},
		{StatusApproved, ActionPublish, StatusPublished},
		{StatusInTranslation, ActionHandOver, StatusInTranslation},
		{StatusInTranslation, ActionConvertToPending, StatusPendingTranslation},
		{StatusPublished, ActionConvertToPending, StatusPendingTranslation},
	}
	for _, tc := range cases {
		doc := &Document{ID: "doc-1", Status: tc.from}
		got, err := NextStatus(doc, tc.action)
		if err != nil {
			t.Fatalf("%s from %s: unexpected error %v", tc.action, tc.from, err)
		}
		if got != tc.want {
			t.Fatalf("%s from %s: expected %s, got %s", tc.action, tc.from, tc.want, got)
		}
	}
}

func TestNextStatusRejectsInvalidTransitions(t *testing.T) {
	cases := []struct {
		from   DocumentStatus
		action Action
	}{
		{StatusDraft, ActionStartTranslation},
		{StatusPendingTranslation, ActionSubmitForReview},
		{StatusInTranslation, ActionApprove},
		{StatusPendingReview, ActionPublish},
		{StatusPublished, ActionReject},
		{StatusPendingTranslation, ActionConvertToPending},
		{StatusDraft, Action("TELEPORT")},
	}
	for _, tc := range cases {
		doc := &Document{ID: "doc-1", Status: tc.from}
		got, err := NextStatus(doc, tc.action)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s from %s: expected ErrInvalidTransition, got %v", tc.action, tc.from, err)
		}
		var typed *InvalidTransitionError
		if !errors.As(err, &typed) || typed.Status != tc.from || typed.Action != tc.action {
			t.Fatalf("%s from %s: expected typed error, got %#v", tc.action, tc.from, err)
		}
		if got != tc.from {
			t.Fatalf("%s from %s: status must not change, got %s", tc.action, tc.from, got)
		}
	}
}

func TestAllowedActions(t *testing.T) {
	got := AllowedActions(StatusPendingReview)
	want := []Action{ActionApprove, ActionReject, ActionConvertToPending}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	for _, action := range AllowedActions(StatusPendingTranslation) {
		if action == ActionConvertToPending {
			t.Fatalf("convert must not be offered for an already pending document")
		}
	}
}
