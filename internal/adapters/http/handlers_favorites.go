package httpadapter

import "net/http"

func (rt *Router) addFavorite(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	if err := rt.favorites.Add(r.Context(), worker, documentIDParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) removeFavorite(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	if err := rt.favorites.Remove(r.Context(), worker, documentIDParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) listFavorites(w http.ResponseWriter, r *http.Request) {
	worker, ok := workerID(w, r)
	if !ok {
		return
	}
	favorites, err := rt.favorites.List(r.Context(), worker)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}
