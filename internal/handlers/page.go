package handlers

import (
	"net/http"

	"privacymirror/internal/utils"
)

// Index renders the mirror page. Scary mode is on unless the query string
// carries "safe".
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	nonce, err := utils.GenerateNonce()
	if err != nil {
		h.Logger.Error().Err(err).Msg("generate nonce")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	_, safe := r.URL.Query()["safe"]

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; script-src 'nonce-"+nonce+"'; style-src 'self'; connect-src 'self'; img-src 'self' data:; base-uri 'none'; frame-ancestors 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err := h.Page.Render(w, nonce, !safe); err != nil {
		h.Logger.Error().Err(err).Msg("render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
