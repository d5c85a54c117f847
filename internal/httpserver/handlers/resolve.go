package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

// resolveLinkRequest is either a raw server link (parsed under Package) or
// the manual fields of the link tester.
type resolveLinkRequest struct {
	Link           json.RawMessage `json:"link,omitempty"`
	Package        string          `json:"package,omitempty"`
	ShortcutID     string          `json:"shortcut_id,omitempty"`
	URIScheme      string          `json:"uri_scheme,omitempty"`
	WebLink        string          `json:"web_link,omitempty"`
	Fallback       *bool           `json:"fallback,omitempty"`
	AcceptPreviews bool            `json:"accept_previews,omitempty"`
}

func (req resolveLinkRequest) build() (*domain.Link, error) {
	if len(req.Link) > 0 && string(req.Link) != "null" {
		return domain.ParseLink(req.Link, domain.AppInfo{PackageName: req.Package})
	}
	if req.Package == "" && req.ShortcutID == "" && req.URIScheme == "" && req.WebLink == "" {
		return nil, errors.New("nothing to resolve: pass link or at least one of package, shortcut_id, uri_scheme, web_link")
	}
	return domain.NewLink(domain.LinkFields{
		DestinationPackage: req.Package,
		AndroidShortcutID:  req.ShortcutID,
		URIScheme:          req.URIScheme,
		WebLink:            req.WebLink,
	}), nil
}

type resolveLinkResponse struct {
	Device  string           `json:"device"`
	Link    *domain.Link     `json:"link"`
	WebLink string           `json:"effective_web_link,omitempty"`
	Outcome domain.Outcome   `json:"outcome"`
	Journal []platform.Event `json:"journal"`
}

// ResolveLink is the link tester: it runs an ad-hoc descriptor through the
// resolution chain. Ad-hoc links never fire tracking URLs.
func ResolveLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveLinkRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		link, err := req.build()
		if err != nil {
			var malformed *domain.MalformedHandlerError
			if errors.As(err, &malformed) {
				writeMalformed(w, malformed)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		fallback := d.FallbackToStore
		if req.Fallback != nil {
			fallback = *req.Fallback
		}

		sess := d.Simulator.NewSession(platform.SessionOptions{
			LaunchFlags:    d.LaunchFlags,
			Logger:         d.Logger,
			AcceptPreviews: req.AcceptPreviews,
		})
		out := link.Resolve(sess.Env(), fallback)

		writeJSON(w, http.StatusOK, resolveLinkResponse{
			Device:  sess.Device().Name,
			Link:    link,
			WebLink: link.WebLink(),
			Outcome: out,
			Journal: sess.Journal(),
		})
	}
}

type handlerTarget struct {
	Package           string `json:"package,omitempty"`
	Name              string `json:"name,omitempty"`
	URIScheme         string `json:"uri_scheme,omitempty"`
	WebLink           string `json:"web_link,omitempty"`
	DeepviewExtraText string `json:"deepview_extra_text,omitempty"`
}

type resolveHandlerRequest struct {
	Handler        json.RawMessage `json:"handler"`
	Target         handlerTarget   `json:"target"`
	Open           bool            `json:"open,omitempty"`
	AcceptPreviews bool            `json:"accept_previews,omitempty"`
}

type resolveHandlerResponse struct {
	Device  string           `json:"device"`
	Type    string           `json:"type"`
	Valid   bool             `json:"valid"`
	Opened  bool             `json:"opened"`
	Journal []platform.Event `json:"journal"`
}

// ResolveHandler parses a handler tree, validates it against a target and,
// when asked and valid, opens it.
func ResolveHandler(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveHandlerRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if len(req.Handler) == 0 {
			writeError(w, http.StatusBadRequest, "missing handler")
			return
		}

		h, err := domain.ParseHandler(req.Handler)
		if err != nil {
			var malformed *domain.MalformedHandlerError
			if errors.As(err, &malformed) {
				writeMalformed(w, malformed)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		target := domain.NewLink(domain.LinkFields{
			Name:               req.Target.Name,
			DestinationPackage: req.Target.Package,
			URIScheme:          req.Target.URIScheme,
			WebLink:            req.Target.WebLink,
			DeepviewExtraText:  req.Target.DeepviewExtraText,
			Handler:            h,
		})

		sess := d.Simulator.NewSession(platform.SessionOptions{
			LaunchFlags:    d.LaunchFlags,
			Logger:         d.Logger,
			AcceptPreviews: req.AcceptPreviews,
		})
		env := sess.Env()

		resp := resolveHandlerResponse{
			Device: sess.Device().Name,
			Type:   string(h.Type()),
			Valid:  h.Validate(env, target),
		}
		if req.Open && resp.Valid {
			resp.Opened = h.Open(env, target)
		}
		resp.Journal = sess.Journal()

		writeJSON(w, http.StatusOK, resp)
	}
}
