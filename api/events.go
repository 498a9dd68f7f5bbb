package api

import (
	"net/http"

	"github.com/vocdoni/zkballot/types"
)

// defaultEventsLimit is the page size of the event journal.
const defaultEventsLimit = 100

// events returns a page of the event journal
// GET /events?after={eventId}&limit={n}
func (a *API) events(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultEventsLimit)
	if err != nil || limit <= 0 {
		ErrMalformedParam.Withf("invalid limit %q", r.URL.Query().Get("limit")).Write(w)
		return
	}
	events, err := a.seq.Events(r.URL.Query().Get("after"), limit)
	if err != nil {
		ErrMalformedParam.WithErr(err).Write(w)
		return
	}
	if events == nil {
		events = []*types.Event{}
	}
	httpWriteJSON(w, &EventsResponse{Events: events})
}
