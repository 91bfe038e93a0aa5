package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/discovery/internal/service"
)

// MaxUploadBytes bounds an uploaded lead file.
const MaxUploadBytes = 10 << 20

// AdminUploadHandler imports lead files for administrators.
type AdminUploadHandler struct {
	leadsService *service.LeadsService
}

// NewAdminUploadHandler wires a handler backed by the leads service.
func NewAdminUploadHandler(leadsService *service.LeadsService) *AdminUploadHandler {
	return &AdminUploadHandler{leadsService: leadsService}
}

// UploadCSV handles POST /admin/upload-csv requests. The file goes
// through the same normalization and dedup as a discovery run.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".csv" {
		return Error(c, http.StatusBadRequest, fmt.Sprintf("expected a .csv file, got %q", fileHeader.Filename))
	}
	if fileHeader.Size > MaxUploadBytes {
		return Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("csv file exceeds %d MB", MaxUploadBytes>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.leadsService.ImportCSV(c.Request().Context(), file)
	if err != nil {
		return Fail(c, err, "failed to process csv")
	}

	return Success(c, http.StatusOK, fmt.Sprintf("imported %d of %d rows", summary.Inserted, summary.Rows), summary)
}
