package tax

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/taxy/internal/common"
)

// Handler exposes the tax endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts the tax endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/getTaxAmount/{regimeName}/{amount}", h.TaxAmount)
	r.Get("/regimes", h.Regimes)
	r.Get("/regimes/{regimeName}", h.RegimeDetail)
}

// TaxAmount handles GET /getTaxAmount/{regimeName}/{amount}.
func (h *Handler) TaxAmount(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "tax service not configured", nil)
		return
	}
	regimeName := pathParam(r, "regimeName")
	rawAmount := pathParam(r, "amount")
	if regimeName == "" || strings.TrimSpace(rawAmount) == "" {
		http.NotFound(w, r)
		return
	}

	income, err := ParseIncome(rawAmount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	report, err := h.service.Calculate(r.Context(), regimeName, income)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if verbose(r) {
		common.JSON(w, http.StatusOK, report)
		return
	}
	common.JSON(w, http.StatusOK, report.Summary())
}

// Regimes handles GET /regimes.
func (h *Handler) Regimes(w http.ResponseWriter, _ *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "tax service not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.service.Regimes()})
}

// RegimeDetail handles GET /regimes/{regimeName}.
func (h *Handler) RegimeDetail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "tax service not configured", nil)
		return
	}
	regime, err := h.service.Regime(pathParam(r, "regimeName"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": regime})
}

// pathParam returns the decoded URL parameter. chi matches on the escaped
// path when the request has one, leaving sequences such as %2F in place.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func verbose(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("verbose"))
	return err == nil && v
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	appErr, ok := common.AsAppError(err)
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	// Unknown regimes answer with a bare text message.
	if appErr.Code == "REGIME_NOT_FOUND" {
		common.Text(w, appErr.Status(), appErr.Message)
		return
	}
	code := appErr.Code
	if code == "" {
		code = "INTERNAL"
	}
	common.JSONError(w, appErr.Status(), code, appErr.Message, appErr.Details)
}
