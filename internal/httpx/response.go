package httpx

import (
	"encoding/json"
	"io"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

const maxBodySize = 1 << 20

// ReadJSON decodes a JSON request body into dst, capping the body at 1 MiB.
func ReadJSON(r *http.Request, dst any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dst)
}
