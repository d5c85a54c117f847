package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
	redisstore "github.com/MrSnakeDoc/linkjump/internal/store/redis"
)

// lookupLink finds a record in the index, then in Redis.
func lookupLink(r *http.Request, d deps.Deps, id string) (*catalog.Record, bool) {
	if rec, ok := d.MemoryIndex.GetLink(id); ok {
		return rec, true
	}
	if d.Store == nil {
		return nil, false
	}
	rec, err := d.Store.GetLink(r.Context(), id)
	if err != nil {
		if !errors.Is(err, redisstore.ErrNotFound) {
			d.Logger.Warn("failed to read link from redis",
				logger.String("link_id", id),
				logger.Error(err))
		}
		return nil, false
	}
	return rec, true
}

// GetLink returns the versioned envelope of a link descriptor.
func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, ok := lookupLink(r, d, id)
		if !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}

		data, err := domain.EncodeLink(rec.Link)
		if err != nil {
			d.Logger.Error("failed to encode link", logger.String("link_id", id), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to encode link")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Link-Clicks", strconv.FormatInt(rec.Clicks, 10))
		if rec.Disabled {
			w.Header().Set("X-Link-Disabled", "true")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// GetLinkHandler returns the versioned envelope of the handler tree attached
// to a link. Links without a tree answer 404.
func GetLinkHandler(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, ok := lookupLink(r, d, id)
		if !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		tree := rec.Link.Handler()
		if tree == nil {
			writeError(w, http.StatusNotFound, "link has no handler tree")
			return
		}

		data, err := domain.EncodeHandler(tree)
		if err != nil {
			d.Logger.Error("failed to encode handler tree", logger.String("link_id", id), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to encode handler tree")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

type openResponse struct {
	ID       string                    `json:"id"`
	Device   string                    `json:"device"`
	Fallback bool                      `json:"fallback_to_store"`
	Outcome  domain.Outcome            `json:"outcome"`
	Journal  []platform.Event          `json:"journal"`
	Clicks   int64                     `json:"clicks"`
	Previous *redisstore.CachedOutcome `json:"previous,omitempty"`
}

// OpenLink runs the resolution chain of a catalog link on the simulated
// device. The tracking URL fires on every attempt; only a successful open
// counts a click.
func OpenLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		rec, ok := lookupLink(r, d, id)
		if !ok {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		if rec.Disabled {
			writeError(w, http.StatusGone, "link is no longer in the catalog")
			return
		}

		fallback := boolParam(r, "fallback", d.FallbackToStore)
		sess := d.Simulator.NewSession(platform.SessionOptions{
			LaunchFlags:    d.LaunchFlags,
			Tracker:        d.Tracker,
			Logger:         d.Logger,
			AcceptPreviews: boolParam(r, "accept_previews", false),
		})
		device := sess.Device().Name

		var previous *redisstore.CachedOutcome
		if d.Store != nil {
			cached, err := d.Store.GetCachedOutcome(ctx, device, id, fallback)
			if err != nil {
				d.Logger.Debug("failed to read cached outcome", logger.Error(err))
			}
			previous = cached
		}

		out := rec.Link.Resolve(sess.Env(), fallback)
		now := d.Now()

		clicks := rec.Clicks
		if out.Opened {
			clicks = d.MemoryIndex.IncrementClicks(id, now)
			if d.Store != nil {
				// Increment click counter (best effort)
				if n, err := d.Store.IncrementClicks(ctx, id); err != nil {
					d.Logger.Warn("failed to count click in redis", logger.String("link_id", id), logger.Error(err))
				} else if n > clicks {
					clicks = n
				}
			}
		}

		if d.Store != nil {
			cached := redisstore.CachedOutcome{
				Opened:     out.Opened,
				Strategy:   out.Strategy.String(),
				Code:       out.Code,
				ResolvedAt: now,
			}
			if err := d.Store.CacheOutcome(ctx, device, id, fallback, cached, d.OutcomeTTL); err != nil {
				d.Logger.Debug("failed to cache outcome", logger.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, openResponse{
			ID:       id,
			Device:   device,
			Fallback: fallback,
			Outcome:  out,
			Journal:  sess.Journal(),
			Clicks:   clicks,
			Previous: previous,
		})
	}
}
