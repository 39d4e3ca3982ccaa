// Package router exposes the pipeline's caller-facing operations over HTTP.
// Business-rule failures map to 4xx responses with the structured result
// body; infrastructure failures map to generic 5xx responses.
package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/asapdigest/content-pipeline/internal/apperr"
	"github.com/asapdigest/content-pipeline/internal/dedup"
	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/processor"
)

type ContentRouter struct {
	e    *echo.Echo
	proc *processor.Processor
}

func NewContentRouter(e *echo.Echo, proc *processor.Processor) *ContentRouter {
	return &ContentRouter{e: e, proc: proc}
}

func (r *ContentRouter) Bind() {
	r.e.POST("/content/process", r.processHandler)
	r.e.POST("/content", r.createHandler)
	r.e.PUT("/content/:id", r.updateHandler)
	r.e.DELETE("/content/:id", r.deleteHandler)
	r.e.GET("/content/:id", r.getHandler)
	r.e.POST("/content/similar", r.similarHandler)
	r.e.GET("/content/stats", r.statsHandler)
	r.e.POST("/admin/reindex", r.reindexHandler)
	r.e.GET("/admin/duplicate-report", r.duplicateReportHandler)
}

// processHandler runs the pipeline without persisting, for dry-run
// moderation previews.
func (r *ContentRouter) processHandler(c echo.Context) error {
	var item domain.ContentItem
	if err := c.Bind(&item); err != nil {
		return apperr.NewValidationWrap("invalid content payload", err)
	}

	res := r.proc.Process(c.Request().Context(), item, 0)
	return c.JSON(processStatus(res), res)
}

func (r *ContentRouter) createHandler(c echo.Context) error {
	var item domain.ContentItem
	if err := c.Bind(&item); err != nil {
		return apperr.NewValidationWrap("invalid content payload", err)
	}

	ctx := c.Request().Context()
	res := r.proc.Process(ctx, item, 0)
	if !res.Success {
		return c.JSON(processStatus(res), res)
	}

	save := r.proc.Save(ctx, res, 0)
	if !save.Success {
		return c.JSON(saveStatus(save), save)
	}
	return c.JSON(http.StatusCreated, save)
}

func (r *ContentRouter) updateHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var item domain.ContentItem
	if err := c.Bind(&item); err != nil {
		return apperr.NewValidationWrap("invalid content payload", err)
	}

	ctx := c.Request().Context()
	res := r.proc.Process(ctx, item, id)
	if !res.Success {
		return c.JSON(processStatus(res), res)
	}

	save := r.proc.Save(ctx, res, id)
	if !save.Success {
		if _, ok := save.Errors["update"]; ok {
			return apperr.NewNotFound(save.Errors["update"])
		}
		return c.JSON(saveStatus(save), save)
	}
	return c.JSON(http.StatusOK, save)
}

func (r *ContentRouter) deleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	removed, err := r.proc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NewNotFound("content does not exist")
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *ContentRouter) getHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	item, err := r.proc.GetContent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NewNotFound("content does not exist")
	}
	return c.JSON(http.StatusOK, item)
}

func (r *ContentRouter) similarHandler(c echo.Context) error {
	var req struct {
		Item  domain.ContentItem `json:"item"`
		Limit int                `json:"limit"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid similarity payload", err)
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	matches, err := r.proc.FindSimilarContent(c.Request().Context(), req.Item, req.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"matches": matches})
}

func (r *ContentRouter) statsHandler(c echo.Context) error {
	stats, err := r.proc.GetContentStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (r *ContentRouter) reindexHandler(c echo.Context) error {
	var req struct {
		BatchSize int `json:"batchSize"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid reindex payload", err)
	}

	report, err := r.proc.ReindexContent(c.Request().Context(), req.BatchSize)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (r *ContentRouter) duplicateReportHandler(c echo.Context) error {
	opts := dedup.ReportOptions{}
	if w := c.QueryParam("window"); w != "" {
		window, err := time.ParseDuration(w)
		if err != nil {
			return apperr.NewValidationWrap("invalid window", err)
		}
		opts.Window = window
	}
	if l := c.QueryParam("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			return apperr.NewValidationWrap("invalid limit", err)
		}
		opts.Limit = limit
	}

	report, err := r.proc.GenerateDuplicateReport(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation("id must be a positive integer")
	}
	return id, nil
}

// processStatus maps business-rule failures to 4xx classes.
func processStatus(res *processor.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Errors["duplicate"] != "":
		return http.StatusConflict
	case res.Errors["internal"] != "":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func saveStatus(save *processor.SaveResult) int {
	switch {
	case save.Errors["duplicate"] != "":
		return http.StatusConflict
	case save.Errors["process"] != "":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
