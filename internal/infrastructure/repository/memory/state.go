package memory

import (
	"sort"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type accessor func() (*state, func())

type state struct {
	documents map[string]domain.Document
	versions  map[string][]domain.Version
	locks     map[string]domain.Lock
	handovers map[string]domain.Handover

	// Not touched inside units of work, so clones share them.
	favorites map[string]map[string]domain.Favorite
	events    map[string][]domain.LifecycleEvent
	eventIDs  map[string]struct{}
}

func newState() *state {
	return &state{
		documents: make(map[string]domain.Document),
		versions:  make(map[string][]domain.Version),
		locks:     make(map[string]domain.Lock),
		handovers: make(map[string]domain.Handover),
		favorites: make(map[string]map[string]domain.Favorite),
		events:    make(map[string][]domain.LifecycleEvent),
		eventIDs:  make(map[string]struct{}),
	}
}

// clone copies every map a transaction may write. Values are either immutable
// (versions) or replaced wholesale on update (locks, handovers), so a shallow
// copy of each entry is enough.
func (st *state) clone() *state {
	out := &state{
		documents: make(map[string]domain.Document, len(st.documents)),
		versions:  make(map[string][]domain.Version, len(st.versions)),
		locks:     make(map[string]domain.Lock, len(st.locks)),
		handovers: make(map[string]domain.Handover, len(st.handovers)),
		favorites: st.favorites,
		events:    st.events,
		eventIDs:  st.eventIDs,
	}
	for k, v := range st.documents {
		out.documents[k] = v
	}
	for k, v := range st.versions {
		out.versions[k] = append([]domain.Version(nil), v...)
	}
	for k, v := range st.locks {
		out.locks[k] = v
	}
	for k, v := range st.handovers {
		out.handovers[k] = v
	}
	return out
}

func copyLock(l domain.Lock) *domain.Lock {
	l.CompletedUnits = append([]int{}, l.CompletedUnits...)
	return &l
}

func sortDocuments(docs []domain.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
}
