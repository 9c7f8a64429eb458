package handlers

import (
	"cafe-server/middleware"
	"cafe-server/services"
	"net/http"
)

type AdminHandler struct {
	cafeService *services.CafeService
}

func NewAdminHandler(cafeService *services.CafeService) *AdminHandler {
	return &AdminHandler{cafeService: cafeService}
}

// ReloadCafes handles POST /admin/reload
func (h *AdminHandler) ReloadCafes(w http.ResponseWriter, r *http.Request) {
	n, err := h.cafeService.Reload(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"loaded": n})
}
