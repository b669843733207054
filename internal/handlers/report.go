package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"privacymirror/internal/analysis"
	"privacymirror/internal/types"
	"privacymirror/internal/utils"
)

// Report analyses the client report the page collected. Nothing is kept.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.Cfg.Report.MaxBodyBytes)
	var report types.ClientReport
	if err := decodeReport(body, &report); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Metrics.RecordReport("too_large")
			h.writeError(w, http.StatusRequestEntityTooLarge, "report too large")
			return
		}
		h.Metrics.RecordReport("invalid")
		h.writeError(w, http.StatusBadRequest, "invalid report: "+err.Error())
		return
	}

	clientIP := utils.ClientIP(r, h.Cfg.RemoteAddrFallback)
	result := h.Analyzer.Analyze(&report, analysis.RequestFrom(r, clientIP))
	for _, f := range result.Findings {
		h.Metrics.RecordFinding(f.Kind)
	}
	h.Metrics.RecordReport("ok")

	h.Logger.Info().
		Str("report_id", result.ReportID).
		Str("browser", result.Browser.Name).
		Str("device", result.Browser.Device).
		Int("signals", result.SignalCount).
		Int("findings", len(result.Findings)).
		Msg("report analysed")

	h.writeJSON(w, http.StatusOK, result)
}

// decodeReport reads exactly one JSON value; anything after it is an error.
func decodeReport(r io.Reader, report *types.ClientReport) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(report); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected data after report")
		}
		return err
	}
	return nil
}
