package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.GetHoldings(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) GetRealizedGains(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.GetRealizedGains(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.GetPortfolioSummary(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) GetAssetPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.GetAssetPerformance(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) GetPortfolioMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.GetPortfolioMetrics(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.UpdatePrices(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) ConvertCurrency(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")
	amount, err := decimal.NewFromString(chi.URLParam(r, "amount"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("amount must be a number"))
		return
	}

	res, err := h.Controller.ConvertCurrency(ctx, amount, from, to)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) GetBackup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	res, err := h.Controller.GetBackup(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=portfolio_backup.json")
	h.respond(w, r, res, http.StatusOK)
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	userID, err := h.userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	file, err := h.Controller.ExportXLSX(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	filename := fmt.Sprintf("portfolio_%s.xlsx", time.Now().UTC().Format(utils.ShortDashDateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := file.Write(w); err != nil {
		utils.LoggerFromContext(ctx).Errorf("failed to stream workbook: %v", err)
	}
}

func (h *Handler) GetTaxPresets(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Controller.GetTaxPresets(r.Context()), http.StatusOK)
}
