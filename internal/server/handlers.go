// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/research-supervisor/internal/pipeline"
)

// Client-facing error messages.
const (
	msgMissingTask = "Missing task parameter"
	msgInvalidJSON = "Invalid JSON body"
	msgInternal    = "Internal server error"
)

//go:embed static/index.html
var indexHTML []byte

type supervisorRequest struct {
	Task string `json:"task"`
}

type pastQueriesResponse struct {
	PastQueries []string `json:"past_queries"`
}

func (s *Server) handleHome(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

// handleSupervisor validates the task before any cache access, then returns
// the cached or freshly produced record.
func (s *Server) handleSupervisor(c echo.Context) error {
	var req supervisorRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidJSON).SetInternal(err)
	}

	task := strings.TrimSpace(req.Task)
	if task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgMissingTask)
	}

	rec, err := s.research.Run(c.Request().Context(), task)
	if errors.Is(err, pipeline.ErrEmptyTask) {
		return echo.NewHTTPError(http.StatusBadRequest, msgMissingTask)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handlePastQueries(c echo.Context) error {
	tasks, err := s.tasks.ListTasks(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
	return c.JSON(http.StatusOK, pastQueriesResponse{PastQueries: tasks})
}
