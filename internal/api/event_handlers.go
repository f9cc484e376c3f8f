package api

import (
	"net/http"
	"strconv"

	"cloud-drive/internal/catalog"
)

// @Summary      List events
// @Description  Returns journaled events addressed to the caller with an id greater than since, oldest first, at most 100 per page.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "Last seen event id"
// @Success      200    {object}  Envelope{data=[]catalog.Event}
// @Failure      400    {object}  Envelope
// @Failure      401    {object}  Envelope
// @Failure      500    {object}  Envelope
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var sinceID int64
	if since := r.URL.Query().Get("since"); since != "" {
		var err error
		sinceID, err = strconv.ParseInt(since, 10, 64)
		if err != nil || sinceID < 0 {
			writeError(w, http.StatusBadRequest, "Invalid since parameter")
			return
		}
	}

	events, err := s.store.GetEventsSince(r.Context(), user.ID, sinceID)
	if err != nil {
		s.handleError(w, r, err, "Failed to get events")
		return
	}
	if events == nil {
		events = []catalog.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}
