package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gerai-erp/gerai/internal/platform/httpx"
)

// maxUploadBytes caps spreadsheet uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// Handler wires HTTP endpoints for spreadsheet imports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs importer handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/opname", h.handleOpname)
	r.Post("/purchases", h.handlePurchases)
}

func (h *Handler) handleOpname(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.service.ImportOpname)
}

func (h *Handler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.service.ImportPurchases)
}

func (h *Handler) runImport(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, reader io.Reader) (Summary, error)) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "multipart form with a file field required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "file field required")
		return
	}
	defer file.Close()

	summary, err := run(r.Context(), file)
	if err != nil {
		if errors.Is(err, ErrEmptySheet) {
			httpx.Problem(w, http.StatusBadRequest, "Empty Sheet", err.Error())
			return
		}
		h.logger.Error("import request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
