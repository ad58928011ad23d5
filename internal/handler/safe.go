package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/safe-backend/internal/crypto"
	"github.com/AlexZinkM/safe-backend/internal/model"
	"github.com/AlexZinkM/safe-backend/safe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	maxBodyBytes = 1 << 20

	minQRSize = 64
	maxQRSize = 1024
)

// SafeHandler serves the /v1/safe endpoints.
type SafeHandler struct {
	safe   safe.Safe
	logger zerolog.Logger
}

// NewSafeHandler creates a new SafeHandler
func NewSafeHandler(s safe.Safe, logger zerolog.Logger) *SafeHandler {
	return &SafeHandler{
		safe:   s,
		logger: logger,
	}
}

// Register adds the Safe routes to mux.
func (h *SafeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/safe/{address}", h.GetInfo)
	mux.HandleFunc("POST /v1/safe/{address}", h.Deploy)
	mux.HandleFunc("PUT /v1/safe/{address}", h.Exec)
	mux.HandleFunc("GET /v1/safe/{address}/qr", h.QRCode)
}

// GetInfo handles GET /v1/safe/{address}
// @Summary      Get Safe info
// @Description  Returns the deterministic Safe address of an owner and whether it is deployed
// @Tags         safe
// @Produce      json
// @Param        address  path      string  true  "Owner address"
// @Success      200      {object}  model.SafeInfo
// @Failure      400      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /v1/safe/{address} [get]
func (h *SafeHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.safe.Info(r.Context(), r.PathValue("address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Deploy handles POST /v1/safe/{address}
// @Summary      Deploy Safe
// @Description  Deploys the Safe of an owner through the proxy factory and waits for the receipt
// @Tags         safe
// @Produce      json
// @Param        address  path      string  true  "Owner address"
// @Success      201      {object}  model.SafeResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /v1/safe/{address} [post]
func (h *SafeHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.safe.Deploy(r.Context(), r.PathValue("address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Exec handles PUT /v1/safe/{address}
// @Summary      Execute Safe transaction
// @Description  Submits a signed transaction to the deployed Safe of an owner and waits for the receipt
// @Tags         safe
// @Accept       json
// @Produce      json
// @Param        address  path      string          true  "Owner address"
// @Param        request  body      model.SafeCall  true  "Safe transaction"
// @Success      200      {object}  model.SafeResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /v1/safe/{address} [put]
func (h *SafeHandler) Exec(w http.ResponseWriter, r *http.Request) {
	var call model.SafeCall
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&call); err != nil {
		h.writeError(w, r, &safe.Error{Kind: safe.KindBadParams, Detail: "body", Err: err})
		return
	}

	resp, err := h.safe.Exec(r.Context(), r.PathValue("address"), &call)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// QRCode handles GET /v1/safe/{address}/qr
// @Summary      Safe address QR code
// @Description  Returns a PNG QR code of the Safe address of an owner
// @Tags         safe
// @Produce      png
// @Param        address  path      string  true   "Owner address"
// @Param        size     query     int     false  "Image size in pixels (64-1024)"  default(256)
// @Success      200      {file}    binary
// @Failure      400      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /v1/safe/{address}/qr [get]
func (h *SafeHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	size := crypto.QRCodeSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < minQRSize || n > maxQRSize {
			h.writeError(w, r, &safe.Error{Kind: safe.KindBadParams, Detail: "size", Err: errors.New("must be an integer between 64 and 1024")})
			return
		}
		size = n
	}

	info, err := h.safe.Info(r.Context(), r.PathValue("address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	png, err := crypto.QRCodePNG(info.Address, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch kind := safe.KindOf(err); {
	case kind == safe.KindRPC:
		return http.StatusServiceUnavailable
	case kind.IsClientFault():
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *SafeHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &h.logger
	}
	switch {
	case status == http.StatusInternalServerError:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = http.StatusText(status)
	case status >= http.StatusInternalServerError:
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("request failed")
	default:
		logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}

	writeJSON(w, status, model.ErrorResponse{
		Code:    status,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
