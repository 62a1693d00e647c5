package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/mandi-labs/backend-mandi/internal/common"
)

// BodyLimit caps request payload size. The body is buffered so downstream
// JSON decoding sees a plain reader with a known length.
type BodyLimit struct {
	Max int64
}

// Middleware answers oversized payloads with 413 before the handler runs.
// A declared Content-Length over the limit short-circuits without reading.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength != -1 && r.ContentLength > b.Max {
			tooLarge(w)
			return
		}

		buf, err := io.ReadAll(io.LimitReader(r.Body, b.Max+1))
		if err != nil && !errors.Is(err, io.EOF) {
			common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid request body", nil)
			return
		}
		if int64(len(buf)) > b.Max {
			tooLarge(w)
			return
		}
		_ = r.Body.Close()

		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}

func tooLarge(w http.ResponseWriter) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, common.CodeInvalidInput, "request entity too large", nil)
}
