package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// StorePackage is the package of the platform store app.
	StorePackage = "com.android.vending"
	// StoreHost is the host of store web links.
	StoreHost = "play.google.com"
	// StoreURLPrefix builds the web link of a package that has none.
	StoreURLPrefix = "https://play.google.com/store/apps/details?id="
	// AppURIScheme is the platform scheme that embeds the package in the URI itself.
	AppURIScheme = "android-app"
)

// IconCategory classifies the icon shown next to a link.
type IconCategory string

const (
	IconBusiness      IconCategory = "business"
	IconCars          IconCategory = "cars"
	IconCommunication IconCategory = "communication"
	IconEducation     IconCategory = "education"
	IconEvents        IconCategory = "events"
	IconFood          IconCategory = "food"
	IconGames         IconCategory = "games"
	IconHealth        IconCategory = "health"
	IconHome          IconCategory = "home"
	IconLifestyle     IconCategory = "lifestyle"
	IconMaps          IconCategory = "maps"
	IconMusic         IconCategory = "music"
	IconNews          IconCategory = "news"
	IconOther         IconCategory = "other"
	IconPhotos        IconCategory = "photos"
	IconShopping      IconCategory = "shopping"
	IconSocial        IconCategory = "social"
	IconSports        IconCategory = "sports"
	IconTravel        IconCategory = "travel"
	IconUtilities     IconCategory = "utilities"
	IconVideo         IconCategory = "video"
)

var iconCategories = map[IconCategory]bool{
	IconBusiness: true, IconCars: true, IconCommunication: true, IconEducation: true,
	IconEvents: true, IconFood: true, IconGames: true, IconHealth: true, IconHome: true,
	IconLifestyle: true, IconMaps: true, IconMusic: true, IconNews: true, IconOther: true,
	IconPhotos: true, IconShopping: true, IconSocial: true, IconSports: true,
	IconTravel: true, IconUtilities: true, IconVideo: true,
}

// ParseIconCategory maps unknown or empty values to IconOther.
func ParseIconCategory(s string) IconCategory {
	c := IconCategory(s)
	if iconCategories[c] {
		return c
	}
	return IconOther
}

// AppInfo is the app-level context a link is parsed under.
type AppInfo struct {
	Name              string
	PackageName       string
	IconURL           string
	DeepviewExtraText string
}

// Link is one openable destination (an action descriptor).
//
// A Link is immutable once built: every string accessor returns "" rather
// than a missing value, and the handler tree it carries is owned by it.
type Link struct {
	// ─────────────────────────────
	// Identity & display
	// ─────────────────────────────
	entityID     string
	linkType     string
	score        float64
	name         string
	description  string
	imageURL     string
	appName      string
	appIconURL   string
	rankingHint  string
	metadata     json.RawMessage
	iconCategory IconCategory

	// ─────────────────────────────
	// Routing payload
	// ─────────────────────────────
	routingMode        string
	uriScheme          string
	webLink            string
	destinationPackage string
	clickTrackingURL   string
	androidShortcutID  string
	deepviewExtraText  string
	handler            Handler
}

// LinkFields is the mutable form used to build a Link in code.
type LinkFields struct {
	EntityID           string
	Type               string
	Score              float64
	Name               string
	Description        string
	ImageURL           string
	AppName            string
	AppIconURL         string
	RankingHint        string
	Metadata           json.RawMessage
	IconCategory       string
	RoutingMode        string
	URIScheme          string
	WebLink            string
	DestinationPackage string
	ClickTrackingURL   string
	AndroidShortcutID  string
	DeepviewExtraText  string
	Handler            Handler
}

// NewLink builds a Link, applying the same defaults as ParseLink.
func NewLink(f LinkFields) *Link {
	return &Link{
		entityID:           f.EntityID,
		linkType:           f.Type,
		score:              normalizeScore(f.Score),
		name:               f.Name,
		description:        f.Description,
		imageURL:           f.ImageURL,
		appName:            f.AppName,
		appIconURL:         f.AppIconURL,
		rankingHint:        f.RankingHint,
		metadata:           normalizeMetadata(f.Metadata),
		iconCategory:       ParseIconCategory(f.IconCategory),
		routingMode:        f.RoutingMode,
		uriScheme:          f.URIScheme,
		webLink:            f.WebLink,
		destinationPackage: f.DestinationPackage,
		clickTrackingURL:   f.ClickTrackingURL,
		androidShortcutID:  f.AndroidShortcutID,
		deepviewExtraText:  f.DeepviewExtraText,
		handler:            f.Handler,
	}
}

// Fields returns a copy of the link as LinkFields.
func (l *Link) Fields() LinkFields {
	return LinkFields{
		EntityID:           l.entityID,
		Type:               l.linkType,
		Score:              l.score,
		Name:               l.name,
		Description:        l.description,
		ImageURL:           l.imageURL,
		AppName:            l.appName,
		AppIconURL:         l.appIconURL,
		RankingHint:        l.rankingHint,
		Metadata:           append(json.RawMessage(nil), l.metadata...),
		IconCategory:       string(l.iconCategory),
		RoutingMode:        l.routingMode,
		URIScheme:          l.uriScheme,
		WebLink:            l.webLink,
		DestinationPackage: l.destinationPackage,
		ClickTrackingURL:   l.clickTrackingURL,
		AndroidShortcutID:  l.androidShortcutID,
		DeepviewExtraText:  l.deepviewExtraText,
		Handler:            l.handler,
	}
}

// Keys of one entry of an app's deep_links array.
const (
	fieldEntityID          = "entity_id"
	fieldType              = "type"
	fieldScore             = "score"
	fieldName              = "name"
	fieldDescription       = "description"
	fieldImageURL          = "image_url"
	fieldMetadata          = "metadata"
	fieldURIScheme         = "uri_scheme"
	fieldWebLink           = "web_link"
	fieldRoutingMode       = "routing_mode"
	fieldClickTrackingLink = "click_tracking_link"
	fieldRankingHint       = "ranking_hint"
	fieldAndroidShortcutID = "android_shortcut_id"
	fieldIconCategory      = "icon_category"
	fieldDeepviewExtraText = "deepview_extra_text"
	fieldHandler           = "handler"
)

// ParseLink builds a Link from a server payload, injecting the app context.
// Unknown keys are ignored and fields of an unexpected type fall back to
// their defaults. Only a present but malformed "handler" tree fails the whole
// parse, with a *MalformedHandlerError.
func ParseLink(data []byte, app AppInfo) (*Link, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse link: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse link: not an object")
	}

	f := LinkFields{
		EntityID:           optString(raw, fieldEntityID),
		Type:               optString(raw, fieldType),
		Score:              optFloat(raw, fieldScore),
		Name:               optString(raw, fieldName),
		Description:        optString(raw, fieldDescription),
		ImageURL:           optString(raw, fieldImageURL),
		AppName:            app.Name,
		AppIconURL:         app.IconURL,
		RankingHint:        optString(raw, fieldRankingHint),
		Metadata:           optObject(raw, fieldMetadata),
		IconCategory:       optString(raw, fieldIconCategory),
		RoutingMode:        optString(raw, fieldRoutingMode),
		URIScheme:          optString(raw, fieldURIScheme),
		WebLink:            optString(raw, fieldWebLink),
		DestinationPackage: app.PackageName,
		ClickTrackingURL:   optString(raw, fieldClickTrackingLink),
		AndroidShortcutID:  optString(raw, fieldAndroidShortcutID),
		DeepviewExtraText:  app.DeepviewExtraText,
	}
	if v, ok := raw[fieldDeepviewExtraText]; ok && !isNullJSON(v) {
		f.DeepviewExtraText = optString(raw, fieldDeepviewExtraText)
	}
	if h := raw[fieldHandler]; !isNullJSON(h) {
		tree, err := ParseHandler(h)
		if err != nil {
			return nil, err
		}
		f.Handler = tree
	}

	return NewLink(f), nil
}

// optString reads a string field. Numbers and booleans are kept in their JSON
// text form; null, objects, arrays and absent keys give "".
func optString(raw map[string]json.RawMessage, key string) string {
	v := bytes.TrimSpace(raw[key])
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case 't', 'f':
		return string(v)
	case '{', '[', 'n':
		return ""
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return ""
		}
		return n.String()
	}
}

// optFloat reads a number, or a string holding one. Anything else gives 0.
func optFloat(raw map[string]json.RawMessage, key string) float64 {
	v := bytes.TrimSpace(raw[key])
	if len(v) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// optObject keeps the field only when it is a JSON object.
func optObject(raw map[string]json.RawMessage, key string) json.RawMessage {
	v := bytes.TrimSpace(raw[key])
	if len(v) == 0 || v[0] != '{' {
		return nil
	}
	return append(json.RawMessage(nil), v...)
}

func (l *Link) EntityID() string           { return l.entityID }
func (l *Link) Type() string               { return l.linkType }
func (l *Link) Score() float64             { return l.score }
func (l *Link) Name() string               { return l.name }
func (l *Link) Description() string        { return l.description }
func (l *Link) ImageURL() string           { return l.imageURL }
func (l *Link) AppName() string            { return l.appName }
func (l *Link) AppIconURL() string         { return l.appIconURL }
func (l *Link) RankingHint() string        { return l.rankingHint }
func (l *Link) RoutingMode() string        { return l.routingMode }
func (l *Link) URIScheme() string          { return l.uriScheme }
func (l *Link) DestinationPackage() string { return l.destinationPackage }
func (l *Link) ClickTrackingURL() string   { return l.clickTrackingURL }
func (l *Link) AndroidShortcutID() string  { return l.androidShortcutID }
func (l *Link) IconCategory() IconCategory { return l.iconCategory }
func (l *Link) DeepviewExtraText() string  { return l.deepviewExtraText }

// Handler returns the handler tree attached to the link, or nil.
func (l *Link) Handler() Handler { return l.handler }

// Metadata returns a copy of the opaque metadata object.
func (l *Link) Metadata() json.RawMessage {
	return append(json.RawMessage(nil), l.metadata...)
}

// RawWebLink returns the web link exactly as received, possibly empty.
func (l *Link) RawWebLink() string { return l.webLink }

// WebLink returns the web link, derived from the store listing of the
// destination package when the payload carried none.
func (l *Link) WebLink() string {
	if l.webLink != "" {
		return l.webLink
	}
	if l.destinationPackage == "" {
		return ""
	}
	return StoreURLPrefix + l.destinationPackage
}

// IsAd reports whether the ranking hint marks the link as featured content.
func (l *Link) IsAd() bool {
	return isFeatured(l.rankingHint)
}

func isFeatured(hint string) bool {
	return strings.HasPrefix(strings.ToLower(hint), "featured")
}

func normalizeScore(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return 0
	}
	return s
}

// normalizeMetadata keeps JSON objects (compacted) and replaces anything else with {}.
func normalizeMetadata(m json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(m)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return json.RawMessage("{}")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return json.RawMessage("{}")
	}
	return json.RawMessage(buf.Bytes())
}

func isNullJSON(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
