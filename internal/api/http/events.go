package http

import (
	"context"
	"log"
	nethttp "net/http"
	"strconv"

	syncx "github.com/mind-engage/evalboard/internal/sync"
)

type EventLister interface {
	List(ctx context.Context, after int64, limit int) ([]syncx.Event, error)
}

const maxEventPage = 500

// GET /events?after=&limit=  audit trail of evaluation writes.
func ListEventsHandler(events EventLister, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit := 100
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			if v > maxEventPage {
				v = maxEventPage
			}
			limit = v
		}
		out, err := events.List(r.Context(), after, limit)
		if err != nil {
			logger.Printf("api: list events: %v", err)
			writeMessage(w, nethttp.StatusInternalServerError, "Failed to fetch events", nil)
			return
		}
		if out == nil {
			out = []syncx.Event{}
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
