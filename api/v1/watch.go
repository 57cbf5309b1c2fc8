package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/http/response"
	"github.com/bookkeep/bookkeep/log"
)

// watchBooks streams committed book writes matching the query filters as
// server-sent events. The stream ends when the client disconnects or the
// store shuts down.
func (h *Handler) watchBooks(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.ServerError(w, r, errors.New("streaming unsupported"))
		return
	}

	find, err := bookFindFromRequest(r)
	if err != nil {
		response.BadRequest(w, r, err)
		return
	}

	sub := h.store.SubscribeBooks(find)
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case book, ok := <-sub.Updates():
			if !ok {
				return
			}
			payload, err := json.Marshal(book)
			if err != nil {
				log.Error("Failed to marshal book snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: book\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
