package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vizrec/adapters/ingest"
	"vizrec/internal"
	"vizrec/internal/errors"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`

	// Ingestion failures only
	Kind          ingest.ErrorKind `json:"kind,omitempty"`
	Offset        *int64           `json:"offset,omitempty"`
	RowsProcessed int              `json:"rows_processed,omitempty"`
	SkippedRows   int              `json:"skipped_rows,omitempty"`
	Fields        []string         `json:"fields,omitempty"`
}

func newErrorBody(err error) errorBody {
	body := errorBody{Error: err.Error(), Code: errors.GetCode(err)}

	var ie *ingest.IngestError
	if errors.As(err, &ie) {
		body.Kind = ie.Kind
		if ie.Offset >= 0 {
			offset := ie.Offset
			body.Offset = &offset
		}
		body.RowsProcessed = ie.RowsProcessed
		body.SkippedRows = ie.SkippedRows
		body.Fields = ie.Fields
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		body.Code = codeTooLarge
	}
	return body
}

const (
	codeTooLarge    = "PAYLOAD_TOO_LARGE"
	codeRateLimited = "RATE_LIMITED"
)

func statusFor(code string) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeParseError, errors.CodeEmptyData:
		return http.StatusUnprocessableEntity
	case errors.CodeCanceled:
		return http.StatusRequestTimeout
	case codeTooLarge:
		return http.StatusRequestEntityTooLarge
	case codeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON with the status its code maps to
func respondError(c *gin.Context, err error) {
	body := newErrorBody(err)
	status := statusFor(body.Code)
	if status >= http.StatusInternalServerError {
		internal.DefaultLogger.Error("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		body.Error = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}
