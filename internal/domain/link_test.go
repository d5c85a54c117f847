package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var yelp = AppInfo{
	Name:              "Yelp",
	PackageName:       "com.yelp.android",
	IconURL:           "https://cdn.example.com/yelp.png",
	DeepviewExtraText: "Open in Yelp",
}

func TestParseLinkDefaults(t *testing.T) {
	l, err := ParseLink([]byte(`{"entity_id":"e1"}`), AppInfo{})
	require.NoError(t, err)

	assert.Equal(t, "e1", l.EntityID())
	for name, got := range map[string]string{
		"Type":               l.Type(),
		"Name":               l.Name(),
		"Description":        l.Description(),
		"ImageURL":           l.ImageURL(),
		"AppName":            l.AppName(),
		"AppIconURL":         l.AppIconURL(),
		"RankingHint":        l.RankingHint(),
		"RoutingMode":        l.RoutingMode(),
		"URIScheme":          l.URIScheme(),
		"DestinationPackage": l.DestinationPackage(),
		"ClickTrackingURL":   l.ClickTrackingURL(),
		"AndroidShortcutID":  l.AndroidShortcutID(),
		"DeepviewExtraText":  l.DeepviewExtraText(),
		"WebLink":            l.WebLink(),
	} {
		assert.Empty(t, got, name)
	}
	assert.Equal(t, 0.0, l.Score())
	assert.Equal(t, IconOther, l.IconCategory())
	assert.JSONEq(t, `{}`, string(l.Metadata()))
	assert.Nil(t, l.Handler())
	assert.False(t, l.IsAd())
}

func TestParseLinkInjectsAppContext(t *testing.T) {
	l, err := ParseLink([]byte(`{
		"entity_id":"biz-1",
		"type":"business",
		"score":0.87,
		"name":"Taco Place",
		"uri_scheme":"yelp:///biz/1",
		"web_link":"https://www.yelp.com/biz/1",
		"click_tracking_link":"https://t.example.com/c/1",
		"ranking_hint":"featured_top",
		"icon_category":"food",
		"metadata":{ "stars" : 4.5 },
		"android_shortcut_id":"nearby",
		"unknown_key":true
	}`), yelp)
	require.NoError(t, err)

	assert.Equal(t, "Yelp", l.AppName())
	assert.Equal(t, "com.yelp.android", l.DestinationPackage())
	assert.Equal(t, "https://cdn.example.com/yelp.png", l.AppIconURL())
	assert.Equal(t, "Open in Yelp", l.DeepviewExtraText())
	assert.Equal(t, 0.87, l.Score())
	assert.Equal(t, IconFood, l.IconCategory())
	assert.Equal(t, `{"stars":4.5}`, string(l.Metadata()))
	assert.Equal(t, "nearby", l.AndroidShortcutID())
	assert.True(t, l.IsAd())
}

func TestParseLinkOwnExtraTextWins(t *testing.T) {
	l, err := ParseLink([]byte(`{"deepview_extra_text":""}`), yelp)
	require.NoError(t, err)
	assert.Equal(t, "", l.DeepviewExtraText())
}

func TestParseLinkMalformedHandler(t *testing.T) {
	_, err := ParseLink([]byte(`{"entity_id":"e1","handler":{"@type":"shortcut"}}`), yelp)
	var malformed *MalformedHandlerError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "shortcut", malformed.Type)
}

func TestParseLinkNullHandler(t *testing.T) {
	l, err := ParseLink([]byte(`{"handler":null}`), yelp)
	require.NoError(t, err)
	assert.Nil(t, l.Handler())
}

func TestParseLinkRejectsInvalidJSON(t *testing.T) {
	_, err := ParseLink([]byte(`{"entity_id":`), yelp)
	require.Error(t, err)
}

func TestParseLinkCoercesMistypedFields(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantID    string
		wantName  string
		wantScore float64
		wantWeb   string
	}{
		{name: "numeric name", payload: `{"entity_id":"e","name":5}`, wantID: "e", wantName: "5"},
		{name: "numeric id", payload: `{"entity_id":42,"name":"Tacos"}`, wantID: "42", wantName: "Tacos"},
		{name: "string score", payload: `{"entity_id":"e","score":"0.5"}`, wantID: "e", wantScore: 0.5},
		{name: "garbage score", payload: `{"entity_id":"e","score":"high"}`, wantID: "e"},
		{name: "bool name", payload: `{"entity_id":"e","name":true}`, wantID: "e", wantName: "true"},
		{name: "object web link", payload: `{"entity_id":"e","web_link":{"u":1}}`, wantID: "e", wantWeb: "https://play.google.com/store/apps/details?id=com.yelp.android"},
		{name: "null name", payload: `{"entity_id":"e","name":null}`, wantID: "e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseLink([]byte(tt.payload), yelp)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, l.EntityID())
			assert.Equal(t, tt.wantName, l.Name())
			assert.Equal(t, tt.wantScore, l.Score())
			if tt.wantWeb != "" {
				assert.Equal(t, tt.wantWeb, l.WebLink())
			}
		})
	}
}

func TestParseLinkMistypedExtraTextKeepsDefault(t *testing.T) {
	l, err := ParseLink([]byte(`{"deepview_extra_text":null}`), yelp)
	require.NoError(t, err)
	assert.Equal(t, "Open in Yelp", l.DeepviewExtraText())
}

func TestNewLinkNormalization(t *testing.T) {
	tests := []struct {
		name         string
		score        float64
		metadata     string
		icon         string
		wantScore    float64
		wantMetadata string
		wantIcon     IconCategory
	}{
		{name: "valid", score: 1.5, metadata: `{"a":1}`, icon: "maps", wantScore: 1.5, wantMetadata: `{"a":1}`, wantIcon: IconMaps},
		{name: "nan score", score: math.NaN(), wantScore: 0, wantMetadata: `{}`, wantIcon: IconOther},
		{name: "infinite score", score: math.Inf(1), wantScore: 0, wantMetadata: `{}`, wantIcon: IconOther},
		{name: "negative score", score: -3, wantScore: 0, wantMetadata: `{}`, wantIcon: IconOther},
		{name: "array metadata", metadata: `[1,2]`, wantMetadata: `{}`, wantIcon: IconOther},
		{name: "string metadata", metadata: `"x"`, wantMetadata: `{}`, wantIcon: IconOther},
		{name: "unknown icon", icon: "spaceships", wantMetadata: `{}`, wantIcon: IconOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta json.RawMessage
			if tt.metadata != "" {
				meta = json.RawMessage(tt.metadata)
			}
			l := NewLink(LinkFields{Score: tt.score, Metadata: meta, IconCategory: tt.icon})
			if got := l.Score(); got != tt.wantScore {
				t.Errorf("Score() = %v, want %v", got, tt.wantScore)
			}
			if got := string(l.Metadata()); got != tt.wantMetadata {
				t.Errorf("Metadata() = %s, want %s", got, tt.wantMetadata)
			}
			if got := l.IconCategory(); got != tt.wantIcon {
				t.Errorf("IconCategory() = %v, want %v", got, tt.wantIcon)
			}
		})
	}
}

func TestLinkMetadataIsACopy(t *testing.T) {
	l := NewLink(LinkFields{Metadata: json.RawMessage(`{"a":1}`)})
	m := l.Metadata()
	m[1] = 'X'
	assert.Equal(t, `{"a":1}`, string(l.Metadata()))
}

func TestWebLinkDerivation(t *testing.T) {
	tests := []struct {
		name string
		f    LinkFields
		want string
	}{
		{name: "explicit", f: LinkFields{WebLink: "https://a.example.com", DestinationPackage: "p"}, want: "https://a.example.com"},
		{name: "derived", f: LinkFields{DestinationPackage: "com.example"}, want: StoreURLPrefix + "com.example"},
		{name: "nothing to derive from", f: LinkFields{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLink(tt.f)
			if got := l.WebLink(); got != tt.want {
				t.Errorf("WebLink() = %q, want %q", got, tt.want)
			}
			assert.Equal(t, tt.f.WebLink, l.RawWebLink())
		})
	}
}

func TestIsAd(t *testing.T) {
	tests := map[string]bool{
		"":             false,
		"organic":      false,
		"featured":     true,
		"Featured_Top": true,
		"not_featured": false,
	}
	for hint, want := range tests {
		if got := NewLink(LinkFields{RankingHint: hint}).IsAd(); got != want {
			t.Errorf("IsAd(%q) = %v, want %v", hint, got, want)
		}
	}
}

func TestLinkCodecRoundTrip(t *testing.T) {
	tree, err := ParseHandler([]byte(`{"@type":"test_installed","package":"com.yelp.android","links":[{"@type":"shortcut","id":"nearby"}]}`))
	require.NoError(t, err)

	original := NewLink(LinkFields{
		EntityID:           "biz-1",
		Type:               "business",
		Score:              0.5,
		Name:               "Taco Place",
		AppName:            "Yelp",
		RankingHint:        "featured",
		Metadata:           json.RawMessage(`{"stars":4}`),
		IconCategory:       "food",
		URIScheme:          "yelp:///biz/1",
		DestinationPackage: "com.yelp.android",
		ClickTrackingURL:   "https://t.example.com/c/1",
		DeepviewExtraText:  "",
		Handler:            tree,
	})

	data, err := EncodeLink(original)
	require.NoError(t, err)

	decoded, err := DecodeLink(data)
	require.NoError(t, err)

	if diff := cmp.Diff(original.Fields(), decoded.Fields(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("DecodeLink(EncodeLink()) mismatch (-want +got):\n%s", diff)
	}

	again, err := EncodeLink(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestLinkCodecKeepsEmptyStrings(t *testing.T) {
	data, err := json.Marshal(NewLink(LinkFields{}))
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &keys))
	for _, k := range []string{"entity_id", "web_link", "uri_scheme", "deepview_extra_text", "metadata"} {
		assert.Contains(t, keys, k)
	}
	assert.NotContains(t, keys, "handler")
}

func TestDecodeLinkErrors(t *testing.T) {
	_, err := DecodeLink([]byte(`{"version":2,"link":{}}`))
	require.ErrorIs(t, err, ErrUnsupportedCodecVersion)

	_, err = DecodeLink([]byte(`not json`))
	require.Error(t, err)

	_, err = EncodeLink(nil)
	require.Error(t, err)
}

func TestMalformedHandlerErrorMessage(t *testing.T) {
	err := &MalformedHandlerError{Path: "links[0]", Type: "shortcut", Reason: `missing required field "id"`}
	assert.Equal(t, `malformed handler at links[0] (@type "shortcut"): missing required field "id"`, err.Error())

	root := &MalformedHandlerError{Reason: "not a JSON object"}
	assert.Equal(t, "malformed handler at root: not a JSON object", root.Error())
}
