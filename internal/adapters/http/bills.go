package httpadapter

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func (rt *Router) createVoiceBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'audio' is required"})
		return
	}
	defer file.Close()

	bill, err := rt.processor.ProcessVoiceOrder(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordBill(rt.service, len(bill.Items), bill.Totals.GrandTotal, bill.Error != "")
	}
	writeJSON(w, http.StatusOK, bill)
}

// downloadBill serves a generated PDF by its exact generated name. Anything
// that does not look like a generated name is rejected before touching the
// filesystem.
func (rt *Router) downloadBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/v1/bills/")
	if !billFileName.MatchString(name) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such bill"})
		return
	}

	path := filepath.Join(rt.billsDir, name)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such bill"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}
