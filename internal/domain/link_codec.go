package domain

import (
	"encoding/json"
	"fmt"
)

// linkJSON is the full form of a Link. Every field is always written so an
// empty string never turns into an absent key.
type linkJSON struct {
	EntityID          string          `json:"entity_id"`
	Type              string          `json:"type"`
	Score             float64         `json:"score"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"image_url"`
	AppName           string          `json:"app_name"`
	AppStoreID        string          `json:"app_store_id"`
	AppIconURL        string          `json:"app_icon_url"`
	RankingHint       string          `json:"ranking_hint"`
	Metadata          json.RawMessage `json:"metadata"`
	RoutingMode       string          `json:"routing_mode"`
	URIScheme         string          `json:"uri_scheme"`
	WebLink           string          `json:"web_link"`
	ClickTrackingLink string          `json:"click_tracking_link"`
	AndroidShortcutID string          `json:"android_shortcut_id"`
	IconCategory      string          `json:"icon_category"`
	DeepviewExtraText string          `json:"deepview_extra_text"`
	Handler           json.RawMessage `json:"handler,omitempty"`
}

func (l *Link) MarshalJSON() ([]byte, error) {
	out := linkJSON{
		EntityID:          l.entityID,
		Type:              l.linkType,
		Score:             l.score,
		Name:              l.name,
		Description:       l.description,
		ImageURL:          l.imageURL,
		AppName:           l.appName,
		AppStoreID:        l.destinationPackage,
		AppIconURL:        l.appIconURL,
		RankingHint:       l.rankingHint,
		Metadata:          normalizeMetadata(l.metadata),
		RoutingMode:       l.routingMode,
		URIScheme:         l.uriScheme,
		WebLink:           l.webLink,
		ClickTrackingLink: l.clickTrackingURL,
		AndroidShortcutID: l.androidShortcutID,
		IconCategory:      string(l.iconCategory),
		DeepviewExtraText: l.deepviewExtraText,
	}
	if l.handler != nil {
		h, err := json.Marshal(l.handler)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal link handler: %w", err)
		}
		out.Handler = h
	}
	return json.Marshal(out)
}

func (l *Link) UnmarshalJSON(data []byte) error {
	var in linkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	f := LinkFields{
		EntityID:           in.EntityID,
		Type:               in.Type,
		Score:              in.Score,
		Name:               in.Name,
		Description:        in.Description,
		ImageURL:           in.ImageURL,
		AppName:            in.AppName,
		AppIconURL:         in.AppIconURL,
		RankingHint:        in.RankingHint,
		Metadata:           in.Metadata,
		IconCategory:       in.IconCategory,
		RoutingMode:        in.RoutingMode,
		URIScheme:          in.URIScheme,
		WebLink:            in.WebLink,
		DestinationPackage: in.AppStoreID,
		ClickTrackingURL:   in.ClickTrackingLink,
		AndroidShortcutID:  in.AndroidShortcutID,
		DeepviewExtraText:  in.DeepviewExtraText,
	}
	if !isNullJSON(in.Handler) {
		h, err := ParseHandler(in.Handler)
		if err != nil {
			return err
		}
		f.Handler = h
	}

	*l = *NewLink(f)
	return nil
}

type linkEnvelope struct {
	Version int             `json:"version"`
	Link    json.RawMessage `json:"link"`
}

// EncodeLink serializes a Link, handler tree included, into a versioned envelope.
func EncodeLink(l *Link) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("cannot encode nil link")
	}
	body, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal link: %w", err)
	}
	return json.Marshal(linkEnvelope{Version: CodecVersion, Link: body})
}

// DecodeLink is the inverse of EncodeLink.
func DecodeLink(data []byte) (*Link, error) {
	var env linkEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link envelope: %w", err)
	}
	if env.Version != CodecVersion {
		return nil, fmt.Errorf("link envelope version %d: %w", env.Version, ErrUnsupportedCodecVersion)
	}
	var l Link
	if err := json.Unmarshal(env.Link, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}
	return &l, nil
}
