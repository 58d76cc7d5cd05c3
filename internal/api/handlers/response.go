package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/isdelr/blog-be/internal/services"
	"github.com/rs/zerolog/hlog"
	"github.com/samber/oops"
)

const maxBodyBytes = 1 << 20

// MsgBadRequest is the reply to bodies that are not the expected JSON.
const MsgBadRequest = "request body is malformed"

// statusOverrides remaps error codes for routes whose contract differs from
// defaultStatus.
type statusOverrides map[string]int

var defaultStatus = map[string]int{
	services.CodeValidation:         http.StatusBadRequest,
	services.CodeUnauthenticated:    http.StatusBadRequest,
	services.CodeInvalidCredentials: http.StatusPreconditionFailed,
	services.CodeForbidden:          http.StatusForbidden,
	services.CodeNotFound:           http.StatusNotFound,
	services.CodeConflict:           http.StatusConflict,
	services.CodeInternal:           http.StatusBadRequest,
}

var fallbackMessage = map[string]string{
	services.CodeValidation:         "request is invalid",
	services.CodeUnauthenticated:    "please log in",
	services.CodeInvalidCredentials: services.MsgInvalidCredentials,
	services.CodeForbidden:          "you are not allowed to do that",
	services.CodeNotFound:           "not found",
	services.CodeConflict:           "already exists",
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps a service error to its status and client-safe message.
// Internal failures are logged and answered with failMsg only.
func writeError(w http.ResponseWriter, r *http.Request, err error, failMsg string, overrides statusOverrides) {
	code := services.ErrorCode(err)
	status, ok := overrides[code]
	if !ok {
		status = defaultStatus[code]
	}

	msg := failMsg
	if code == services.CodeInternal {
		logEvent := hlog.FromRequest(r).Error().Err(err)
		if oopsErr, ok := oops.AsOops(err); ok {
			logEvent = logEvent.Fields(oopsErr.Context())
		}
		logEvent.Str("path", r.URL.Path).Msg(failMsg)
	} else {
		msg = oops.GetPublic(err, fallbackMessage[code])
		hlog.FromRequest(r).Debug().Err(err).Str("code", code).Msg(failMsg)
	}

	writeJSON(w, status, map[string]string{"errorMessage": msg})
}

// decodeJSON decodes a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Debug().Err(err).Msg("Invalid request body")
	writeJSON(w, http.StatusBadRequest, map[string]string{"errorMessage": MsgBadRequest})
}
