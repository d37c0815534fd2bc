// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlserve serves stored sheets read-only over HTTP.
//
// Routes:
//
//	GET /sheets              sheet names, row counts, revisions and update times
//	GET /sheets/{name}       one sheet as JSON with display-formatted values
//	GET /sheets/{name}.csv   one sheet as CSV with raw values
//
// Sheet responses carry the sheet revision as ETag and honor If-None-Match.
package tictlserve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bufdev/tictl/internal/pkg/cliio"
	"github.com/bufdev/tictl/internal/tictl/tictlsheets"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SheetReader reads stored sheets.
type SheetReader interface {
	ListSheets(ctx context.Context) ([]tictlsheets.Info, error)
	ReadSheet(ctx context.Context, name string) (*tictlsheets.Sheet, error)
}

// SheetResponse is the JSON body of a single sheet.
type SheetResponse struct {
	Name      string     `json:"name"`
	Revision  string     `json:"revision"`
	UpdatedAt time.Time  `json:"updated_at"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

// NewHandler returns the HTTP handler for reader.
//
// Money cells are formatted in currencyCode.
func NewHandler(logger *slog.Logger, reader SheetReader, currencyCode string) http.Handler {
	h := &handler{
		logger:       logger.With("component", "serve"),
		reader:       reader,
		currencyCode: currencyCode,
	}
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(h.logRequests)
	router.Get("/sheets", h.listSheets)
	router.Get("/sheets/{name}", h.getSheet)
	return router
}

// *** PRIVATE ***

const csvSuffix = ".csv"

type handler struct {
	logger       *slog.Logger
	reader       SheetReader
	currencyCode string
}

func (h *handler) listSheets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.reader.ListSheets(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if infos == nil {
		infos = []tictlsheets.Info{}
	}
	h.writeJSON(w, r, infos)
}

func (h *handler) getSheet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	asCSV := strings.HasSuffix(name, csvSuffix)
	if asCSV {
		name = strings.TrimSuffix(name, csvSuffix)
	}
	sheet, err := h.reader.ReadSheet(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	etag := `"` + sheet.Revision + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if asCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := cliio.WriteCSVRecords(w, sheet.Table.Records()); err != nil {
			h.logger.Warn("writing response", "path", r.URL.Path, "error", err)
		}
		return
	}
	h.writeJSON(w, r, &SheetResponse{
		Name:      sheet.Name,
		Revision:  sheet.Revision,
		UpdatedAt: sheet.UpdatedAt,
		Columns:   sheet.Table.Header(),
		Rows:      sheet.Table.FormattedRows(h.currencyCode),
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("writing response", "path", r.URL.Path, "error", err)
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, tictlsheets.ErrSheetNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
