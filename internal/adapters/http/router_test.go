package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/doc-lifecycle/internal/config"
	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/usecase"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/identity"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/paragraph"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/repository/memory"
)

const sampleOriginal = `<p data-paragraph-index="0">One</p><p data-paragraph-index="1">Two</p><p data-paragraph-index="2">Three</p><p data-paragraph-index="3">Four</p>`

func newTestHandler(cfg config.Config) http.Handler {
	store := memory.NewStore()
	repos := store.Repositories()
	directory := identity.NewDirectory(map[string]string{"w-1": "Alice", "w-2": "Bob"})

	services := Services{
		Lifecycle: usecase.NewLifecycleUseCase(store, directory, nil),
		Locks:     usecase.NewLockManager(repos.Locks, directory),
		Reader:    usecase.NewDocumentReaderUseCase(repos.Documents, repos.Versions, repos.Locks, repos.Handovers, directory, paragraph.NewCounter()),
		Favorites: usecase.NewFavoritesUseCase(repos.Documents, store.Favorites()),
		History:   usecase.NewAuditUseCase(store.AuditLog()),
	}
	return NewRouter(cfg, services, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path, worker string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if worker != "" {
		req.Header.Set(workerIDHeader, worker)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func decode[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, res.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, res *httptest.ResponseRecorder, want int) {
	t.Helper()
	if res.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, res.Code, res.Body.String())
	}
}

func createPendingDocument(t *testing.T, h http.Handler) string {
	t.Helper()
	res := do(t, h, http.MethodPost, "/v1/documents", "editor", map[string]string{
		"title":    "Handbook",
		"original": sampleOriginal,
		"ai_draft": "<p>machine</p>",
	})
	expectStatus(t, res, http.StatusCreated)
	created := decode[domain.TransitionResult](t, res)

	res = do(t, h, http.MethodPost, "/v1/documents/"+created.Document.ID+"/request-translation", "editor", nil)
	expectStatus(t, res, http.StatusOK)
	return created.Document.ID
}

func TestLifecycleHappyPathOverHTTP(t *testing.T) {
	h := newTestHandler(config.Config{})
	id := createPendingDocument(t, h)
	base := "/v1/documents/" + id

	expectStatus(t, do(t, h, http.MethodPost, base+"/start", "w-1", nil), http.StatusOK)
	for _, idx := range []int{0, 1} {
		expectStatus(t, do(t, h, http.MethodPost, base+"/progress", "w-1", map[string]int{"unit_index": idx}), http.StatusOK)
	}

	view := decode[domain.DocumentView](t, do(t, h, http.MethodGet, base, "", nil))
	if view.TotalUnits != 4 || view.Progress != 50 {
		t.Fatalf("expected 2/4 units = 50%%, got total=%d progress=%d", view.TotalUnits, view.Progress)
	}
	if !view.Lock.Locked || view.Lock.HolderName != "Alice" {
		t.Fatalf("expected lock held by Alice, got %+v", view.Lock)
	}

	expectStatus(t, do(t, h, http.MethodPost, base+"/submit", "w-1", map[string]string{"content": "<p>human</p>"}), http.StatusOK)
	expectStatus(t, do(t, h, http.MethodPost, base+"/approve", "reviewer", nil), http.StatusOK)
	expectStatus(t, do(t, h, http.MethodPost, base+"/publish", "reviewer", nil), http.StatusOK)

	view = decode[domain.DocumentView](t, do(t, h, http.MethodGet, base, "", nil))
	if view.Document.Status != domain.StatusPublished || view.Progress != 100 {
		t.Fatalf("expected published at 100%%, got %s/%d", view.Document.Status, view.Progress)
	}
	if view.CurrentVersion == nil || view.CurrentVersion.Type != domain.VersionFinal || view.CurrentVersion.Content != "<p>human</p>" {
		t.Fatalf("expected FINAL copied from submitted translation, got %+v", view.CurrentVersion)
	}
	if view.Lock.Locked {
		t.Fatalf("lock must be released after submit")
	}

	versions := decode[map[string][]domain.Version](t, do(t, h, http.MethodGet, base+"/versions", "", nil))
	if len(versions["versions"]) != 4 {
		t.Fatalf("expected ORIGINAL, AI_DRAFT, MANUAL, FINAL; got %d versions", len(versions["versions"]))
	}
}

func TestStartOnLockedDocumentReturns423WithHolder(t *testing.T) {
	h := newTestHandler(config.Config{})
	id := createPendingDocument(t, h)

	expectStatus(t, do(t, h, http.MethodPost, "/v1/documents/"+id+"/start", "w-1", nil), http.StatusOK)

	res := do(t, h, http.MethodPost, "/v1/documents/"+id+"/resume", "w-2", nil)
	expectStatus(t, res, http.StatusLocked)
	body := decode[errorResponse](t, res)
	if body.Code != "already_locked" || body.HolderID != "w-1" || body.HolderName != "Alice" || body.AcquiredAt == nil {
		t.Fatalf("unexpected conflict body: %+v", body)
	}
}

func TestInvalidTransitionReturns409(t *testing.T) {
	h := newTestHandler(config.Config{})
	id := createPendingDocument(t, h)

	res := do(t, h, http.MethodPost, "/v1/documents/"+id+"/approve", "reviewer", nil)
	expectStatus(t, res, http.StatusConflict)
	body := decode[errorResponse](t, res)
	if body.Status != string(domain.StatusPendingTranslation) || body.Action != string(domain.ActionApprove) {
		t.Fatalf("unexpected transition error body: %+v", body)
	}
}

func TestNonHolderDraftReturns403(t *testing.T) {
	h := newTestHandler(config.Config{})
	id := createPendingDocument(t, h)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/documents/"+id+"/start", "w-1", nil), http.StatusOK)

	res := do(t, h, http.MethodPost, "/v1/documents/"+id+"/draft", "w-2", map[string]string{"content": "x"})
	expectStatus(t, res, http.StatusForbidden)
}

func TestMissingWorkerHeaderReturns401(t *testing.T) {
	h := newTestHandler(config.Config{})
	res := do(t, h, http.MethodPost, "/v1/documents", "", map[string]string{"title": "t", "original": "o"})
	expectStatus(t, res, http.StatusUnauthorized)
}

func TestUnknownDocumentReturns404(t *testing.T) {
	h := newTestHandler(config.Config{})
	expectStatus(t, do(t, h, http.MethodGet, "/v1/documents/missing", "", nil), http.StatusNotFound)
}

func TestMalformedBodyReturns400(t *testing.T) {
	h := newTestHandler(config.Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString(`{"title":`))
	req.Header.Set(workerIDHeader, "editor")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	expectStatus(t, res, http.StatusBadRequest)
}

func TestHandoverThenAdminConvertToPending(t *testing.T) {
	h := newTestHandler(config.Config{AdminAPIKey: "secret"})
	id := createPendingDocument(t, h)
	base := "/v1/documents/" + id

	expectStatus(t, do(t, h, http.MethodPost, base+"/start", "w-1", nil), http.StatusOK)
	expectStatus(t, do(t, h, http.MethodPost, base+"/progress", "w-1", map[string]int{"unit_index": 0}), http.StatusOK)
	expectStatus(t, do(t, h, http.MethodPost, base+"/handover", "w-1", map[string]string{
		"memo":    "glossary half done",
		"content": "<p>partial</p>",
	}), http.StatusOK)

	view := decode[domain.DocumentView](t, do(t, h, http.MethodGet, base, "", nil))
	if view.Lock.Locked || view.Handover == nil || view.Progress != 25 {
		t.Fatalf("expected unlocked doc with handover at 25%%, got lock=%v handover=%v progress=%d", view.Lock.Locked, view.Handover, view.Progress)
	}

	expectStatus(t, do(t, h, http.MethodPost, "/v1/admin/documents/"+id+"/convert-to-pending", "", nil), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/documents/"+id+"/convert-to-pending", nil)
	req.Header.Set("Authorization", "Bearer secret")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	expectStatus(t, res, http.StatusOK)

	result := decode[domain.TransitionResult](t, res)
	if result.Document.Status != domain.StatusPendingTranslation {
		t.Fatalf("expected PENDING_TRANSLATION, got %s", result.Document.Status)
	}
	if result.AppendedVersion == nil || result.AppendedVersion.Content != "<p>partial</p>" {
		t.Fatalf("expected partial translation carried forward, got %+v", result.AppendedVersion)
	}
}

func TestAdminListAndReclaimLocks(t *testing.T) {
	h := newTestHandler(config.Config{})
	id := createPendingDocument(t, h)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/documents/"+id+"/start", "w-1", nil), http.StatusOK)

	locks := decode[map[string][]domain.LockState](t, do(t, h, http.MethodGet, "/v1/admin/locks", "", nil))
	if len(locks["locks"]) != 1 || locks["locks"][0].IsStale {
		t.Fatalf("expected one fresh lock, got %+v", locks["locks"])
	}
	stale := decode[map[string][]domain.LockState](t, do(t, h, http.MethodGet, "/v1/admin/locks?stale=true", "", nil))
	if len(stale["locks"]) != 0 {
		t.Fatalf("expected no stale locks, got %+v", stale["locks"])
	}

	expectStatus(t, do(t, h, http.MethodPost, "/v1/admin/documents/"+id+"/lock/reclaim", "", nil), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/admin/documents/"+id+"/lock/reclaim", "", nil), http.StatusConflict)

	state := decode[domain.LockState](t, do(t, h, http.MethodGet, "/v1/documents/"+id+"/lock", "", nil))
	if state.Locked {
		t.Fatalf("expected lock to be reclaimed")
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	h := newTestHandler(config.Config{})
	id := createPendingDocument(t, h)

	expectStatus(t, do(t, h, http.MethodPut, "/v1/documents/"+id+"/favorite", "w-1", nil), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodPut, "/v1/documents/missing/favorite", "w-1", nil), http.StatusNotFound)

	favorites := decode[map[string][]domain.Favorite](t, do(t, h, http.MethodGet, "/v1/favorites", "w-1", nil))
	if len(favorites["favorites"]) != 1 || favorites["favorites"][0].DocumentID != id {
		t.Fatalf("unexpected favorites: %+v", favorites)
	}

	expectStatus(t, do(t, h, http.MethodDelete, "/v1/documents/"+id+"/favorite", "w-1", nil), http.StatusNoContent)
	favorites = decode[map[string][]domain.Favorite](t, do(t, h, http.MethodGet, "/v1/favorites", "w-1", nil))
	if len(favorites["favorites"]) != 0 {
		t.Fatalf("expected favorites cleared, got %+v", favorites)
	}
}

func TestListDocumentsFiltersByStatus(t *testing.T) {
	h := newTestHandler(config.Config{})
	createPendingDocument(t, h)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/documents", "editor", map[string]string{"title": "Draft", "original": "<p>x</p>"}), http.StatusCreated)

	list := decode[map[string][]domain.Document](t, do(t, h, http.MethodGet, "/v1/documents?status=pending_translation", "", nil))
	if len(list["documents"]) != 1 {
		t.Fatalf("expected one pending document, got %d", len(list["documents"]))
	}
	expectStatus(t, do(t, h, http.MethodGet, "/v1/documents?status=bogus", "", nil), http.StatusBadRequest)
}
