package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/tracker"
)

// OpportunitiesHandler serves the tracker's current record set, the
// supplemental read endpoint over the tracker's current records.
type OpportunitiesHandler struct {
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// NewOpportunitiesHandler constructs an OpportunitiesHandler.
func NewOpportunitiesHandler(t *tracker.Tracker, logger *zap.Logger) *OpportunitiesHandler {
	return &OpportunitiesHandler{tracker: t, logger: logger}
}

// ErrorResponse is a JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleOpportunities handles GET /api/opportunities, optionally filtered
// by ?unnotified=true.
func (h *OpportunitiesHandler) HandleOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var records interface{}
	if r.URL.Query().Get("unnotified") == "true" {
		records = h.tracker.GetUnnotified()
	} else {
		records = h.tracker.GetAll()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(records); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *OpportunitiesHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
