package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gmgifpe/asset-tracker/src/utils"
)

const maxStatementSize = 10 << 20 // 10 MiB

// readStatement pulls the uploaded CSV out of the multipart form.
func readStatement(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		return nil, utils.BadRequest("expected a multipart form with a file field")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, utils.BadRequest("missing file field")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxStatementSize))
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, utils.BadRequest("uploaded file is empty")
	}
	return content, nil
}

func (h *Handler) PreviewCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, err := h.userID(r); err != nil {
		h.HandleErrors(w, err)
		return
	}

	content, err := readStatement(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.PreviewCSV(ctx, content)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	content, err := readStatement(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.ImportCSV(ctx, userID, content)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}
