package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/reqctx"
)

const LocationUnknown = "RENDER:ERROR:UNKNOWN"

// TimeLayout is RFC 3339 with fraction of fixed length
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Time is rendered in UTC with TimeLayout, so every timestamp looks the same whatever its value
type Time time.Time

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(TimeLayout) + `"`), nil
}

// JSON sends data as json and enforces status code
func JSON(w http.ResponseWriter, code int, data any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

// Error renders err as public error envelope with request id of r
// Errors that are not *apperrors.Error are hidden behind InternalServerError
// Returns what was rendered, so caller may log it
func Error(w http.ResponseWriter, r *http.Request, err error) *apperrors.Error {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalServerError(err, LocationUnknown)
	}

	// Copy, the same error value may be rendered for other requests
	rendered := *appErr
	rendered.RequestID = reqctx.RequestID(r.Context())

	JSON(w, rendered.StatusCode, rendered)
	return &rendered
}
