package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vizrec/adapters/ingest"
	"vizrec/app"
	"vizrec/domain/core"
	"vizrec/domain/dataset"
	"vizrec/internal/errors"
)

type datasetHandler struct {
	service *app.VisualizationService
}

// upload is the source of an import request: a multipart "file" part or
// the raw request body.
type upload struct {
	body io.ReadCloser
	req  app.ImportRequest
}

func openUpload(c *gin.Context) (*upload, error) {
	req := app.ImportRequest{
		Name:   c.Query("name"),
		Tags:   splitTags(c.Query("tags")),
		Origin: dataset.OriginUpload,
		Format: c.Query("format"),
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, errors.InvalidInput("multipart upload requires a \"file\" part")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrap(err, "failed to open upload")
		}
		req.Filename = fh.Filename
		if v := c.PostForm("name"); v != "" {
			req.Name = v
		}
		if v := c.PostForm("tags"); v != "" {
			req.Tags = splitTags(v)
		}
		if v := c.PostForm("format"); v != "" {
			req.Format = v
		}
		return &upload{body: f, req: req}, nil
	}

	req.Filename = c.Query("filename")
	if req.Format == "" && req.Filename == "" {
		if f, err := ingest.ParseFormat(c.ContentType()); err == nil {
			req.Format = string(f)
		}
	}
	return &upload{body: c.Request.Body, req: req}, nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// HandleUpload imports an uploaded file and returns the stored dataset
func (h *datasetHandler) HandleUpload(c *gin.Context) {
	up, err := openUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer up.body.Close()

	res, err := h.service.Import(c.Request.Context(), up.body, up.req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// HandleUploadStream imports an upload while streaming chunk progress as
// server-sent events; the final event is import_completed or import_failed.
func (h *datasetHandler) HandleUploadStream(c *gin.Context) {
	up, err := openUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer up.body.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	send := func(e *Event) {
		c.Writer.WriteString(e.ToSSEFormat())
		c.Writer.Flush()
	}

	up.req.OnChunk = func(p ingest.ChunkProgress) { send(progressEvent(p)) }
	res, err := h.service.Import(c.Request.Context(), up.body, up.req)
	if err != nil {
		send(failedEvent(newErrorBody(err)))
		return
	}
	send(completedEvent(ImportCompletedData{
		Dataset:     res.Dataset.Summarize(),
		SkippedRows: res.Dataset.SkippedRows,
		Issues:      res.Issues,
		RuntimeMs:   res.RuntimeMs,
	}))
}

// HandleList lists stored datasets, optionally filtered with ?tag=
func (h *datasetHandler) HandleList(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("tag"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": list,
		"count":    len(list),
	})
}

func datasetID(c *gin.Context) (core.ID, bool) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return "", false
	}
	return id, true
}

func (h *datasetHandler) HandleGet(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	ds, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (h *datasetHandler) HandleDelete(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *datasetHandler) HandleProfile(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	prof, err := h.service.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prof)
}

func (h *datasetHandler) HandleRecommendations(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	recs, err := h.service.Recommend(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":      id,
		"recommendations": recs,
	})
}

// HandleSpec synthesizes a chart specification from a recommendation id or
// an explicit mark and encoding.
func (h *datasetHandler) HandleSpec(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var req app.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid synthesis request: "+err.Error()))
		return
	}
	spec, err := h.service.Synthesize(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

// HandleReport renders the dataset report; ?format=markdown returns Markdown
func (h *datasetHandler) HandleReport(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	format := app.ReportFormat(c.DefaultQuery("format", string(app.ReportHTML)))
	body, err := h.service.Report(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	contentType := "text/html; charset=utf-8"
	if format == app.ReportMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, body)
}

func (h *datasetHandler) HandleRecommendAll(c *gin.Context) {
	all, err := h.service.RecommendAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendations": all,
		"count":           len(all),
	})
}
