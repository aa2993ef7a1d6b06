package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/engine"
)

// SimulateSSE streams simulation progress as Server-Sent Events.
// GET /api/simulate/stream?variant=...&games=...&maxTurns=...&seed=...&workers=...
//
// Events: "progress" (engine.SimulateProgress), "result" (SimulateResponse),
// "error" and a final "done".
func (h *Handlers) SimulateSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	query := r.URL.Query()
	seed, err := parseInt64Param(query.Get("seed"))
	if err != nil {
		writeSSEError(w, "invalid seed")
		return
	}
	opts, err := h.simulateOptions(SimulateRequest{
		Variant:  query.Get("variant"),
		Games:    parseIntParam(query.Get("games"), 0),
		MaxTurns: parseIntParam(query.Get("maxTurns"), 0),
		Workers:  parseIntParam(query.Get("workers"), 0),
		Seed:     seed,
	})
	if err != nil {
		writeSSEError(w, err.Error())
		return
	}

	start := time.Now()
	result, err := engine.Simulate(r.Context(), opts, func(p engine.SimulateProgress) {
		writeSSEEvent(w, "progress", p)
		flusher.Flush()
	})
	if err != nil {
		h.logger.Warn("streamed simulation failed", zap.Error(err))
		writeSSEError(w, "simulation failed: "+err.Error())
		return
	}

	writeSSEEvent(w, "result", SimulateResponse{
		SimulateResult: result,
		Seed:           opts.Seed,
		ElapsedMS:      float64(time.Since(start).Microseconds()) / 1000,
	})
	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", ErrorResponse{Error: message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

func parseInt64Param(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
