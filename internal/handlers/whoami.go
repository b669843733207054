package handlers

import (
	"fmt"
	"net/http"
)

// WhoAmI echoes the server's view of the visitor.
func (h *Handlers) WhoAmI(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.Logger.Error().Interface("panic", rec).Msg("whoami failed")
			h.writeError(w, http.StatusInternalServerError, fmt.Sprint(rec))
		}
	}()

	who := h.Resolver.Resolve(r)
	h.Metrics.RecordWhoAmI(who.Method)
	h.writeJSON(w, http.StatusOK, who)
}
