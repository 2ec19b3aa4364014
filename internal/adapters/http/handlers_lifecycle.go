package httpadapter

import (
	"net/http"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type contentRequest struct {
	Content string `json:"content"`
}

type requestTranslationRequest struct {
	AIDraft string `json:"ai_draft"`
}

type handoverRequest struct {
	Memo       string `json:"memo"`
	TermsNotes string `json:"terms_notes"`
	Content    string `json:"content"`
}

// respondTransition records the outcome and writes the transition result.
func (rt *Router) respondTransition(w http.ResponseWriter, r *http.Request, action domain.Action, result *domain.TransitionResult, err error) {
	rt.metrics.RecordTransition(action, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) requestTranslation(w http.ResponseWriter, r *http.Request) {
	actor, ok := workerID(w, r)
	if !ok {
		return
	}
	var req requestTranslationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := rt.lifecycle.RequestTranslation(r.Context(), documentIDParam(r), actor, req.AIDraft)
	rt.respondTransition(w, r, domain.ActionRequestTranslation, result, err)
}

func (rt *Router) startTranslation(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	result, err := rt.lifecycle.StartTranslation(r.Context(), documentIDParam(r), worker)
	rt.respondTransition(w, r, domain.ActionStartTranslation, result, err)
}

func (rt *Router) resumeTranslation(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	result, err := rt.lifecycle.ResumeTranslation(r.Context(), documentIDParam(r), worker)
	rt.respondTransition(w, r, domain.ActionResumeTranslation, result, err)
}

func (rt *Router) saveDraft(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := rt.lifecycle.SaveDraft(r.Context(), documentIDParam(r), worker, req.Content)
	rt.respondTransition(w, r, domain.ActionSaveDraft, result, err)
}

func (rt *Router) submitForReview(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := rt.lifecycle.SubmitForReview(r.Context(), documentIDParam(r), worker, req.Content)
	rt.respondTransition(w, r, domain.ActionSubmitForReview, result, err)
}

func (rt *Router) handOver(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	var req handoverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := rt.lifecycle.HandOver(r.Context(), domain.HandoverRequest{
		DocumentID: documentIDParam(r),
		WorkerID:   worker,
		Memo:       req.Memo,
		TermsNotes: req.TermsNotes,
		Content:    req.Content,
	})
	rt.respondTransition(w, r, domain.ActionHandOver, result, err)
}

func (rt *Router) approve(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := workerID(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := rt.lifecycle.Approve(r.Context(), documentIDParam(r), reviewer, req.Content)
	rt.respondTransition(w, r, domain.ActionApprove, result, err)
}

func (rt *Router) reject(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := workerID(w, r)
	if !ok {
		return
	}
	result, err := rt.lifecycle.Reject(r.Context(), documentIDParam(r), reviewer)
	rt.respondTransition(w, r, domain.ActionReject, result, err)
}

func (rt *Router) publish(w http.ResponseWriter, r *http.Request) {
	actor, ok := workerID(w, r)
	if !ok {
		return
	}
	result, err := rt.lifecycle.Publish(r.Context(), documentIDParam(r), actor)
	rt.respondTransition(w, r, domain.ActionPublish, result, err)
}

func (rt *Router) convertToPending(w http.ResponseWriter, r *http.Request) {
	result, err := rt.lifecycle.ConvertToPending(r.Context(), documentIDParam(r), adminActor(r))
	rt.respondTransition(w, r, domain.ActionConvertToPending, result, err)
}
