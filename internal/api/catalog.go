package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/snarg/moodscribe/internal/render"
)

// CatalogHandler serves the static emotion and display-mode catalogs.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler { return &CatalogHandler{} }

// Routes registers catalog routes on the given router.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/emotions", h.ListEmotions)
	r.Get("/modes", h.ListModes)
}

// ListEmotions returns every emotion label with its glyph, sorted by label.
func (h *CatalogHandler) ListEmotions(w http.ResponseWriter, r *http.Request) {
	glyphs := render.Glyphs()
	WriteJSON(w, http.StatusOK, map[string]any{
		"emotions": glyphs,
		"total":    len(glyphs),
	})
}

// ListModes returns the recognized display modes and the default.
func (h *CatalogHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"modes":   render.Modes(),
		"default": render.DefaultMode,
	})
}
