package domain

import (
	"encoding/json"
	"fmt"
)

// CodecVersion is written into every envelope produced by EncodeHandler and EncodeLink.
const CodecVersion = 1

const (
	keyType     = "@type"
	keyChildren = "links"
	// keyChildrenAlias is accepted on parse only.
	keyChildrenAlias = "children"
)

// ParseHandler parses a server-authored handler payload.
//
// Parsing is eager and recursive: composite children are parsed up front and
// the first malformed node anywhere in the tree fails the whole call with a
// *MalformedHandlerError. No partial tree is ever returned.
func ParseHandler(data []byte) (Handler, error) {
	return parseNode(data, "")
}

func parseNode(raw json.RawMessage, path string) (Handler, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &MalformedHandlerError{Path: path, Reason: "not a JSON object", Err: err}
	}
	if obj == nil {
		return nil, &MalformedHandlerError{Path: path, Reason: "not a JSON object"}
	}

	r := fieldReader{obj: obj, path: path}
	t, err := r.required(keyType)
	if err != nil {
		return nil, err
	}
	r.typ = t

	switch HandlerType(t) {
	case TypeViewAction:
		h := &ViewAction{}
		if h.Data, err = r.required("data"); err != nil {
			return nil, err
		}
		if h.ForcePackage, err = r.optional("forcePackage"); err != nil {
			return nil, err
		}
		if h.Extras, err = r.extras(); err != nil {
			return nil, err
		}
		return h, nil

	case TypeCustomAction:
		h := &CustomAction{}
		if h.Action, err = r.required("action"); err != nil {
			return nil, err
		}
		if h.Data, err = r.optional("data"); err != nil {
			return nil, err
		}
		if h.Extras, err = r.extras(); err != nil {
			return nil, err
		}
		return h, nil

	case TypeLaunchAction:
		h := &LaunchAction{}
		if h.Extras, err = r.extras(); err != nil {
			return nil, err
		}
		return h, nil

	case TypeShortcut:
		h := &Shortcut{}
		if h.ID, err = r.required("id"); err != nil {
			return nil, err
		}
		return h, nil

	case TypeTestInstalled:
		h := &TestInstalled{}
		if h.Package, err = r.required("package"); err != nil {
			return nil, err
		}
		if h.Children, err = r.children(); err != nil {
			return nil, err
		}
		return h, nil

	case TypeTestNotInstalled:
		h := &TestNotInstalled{}
		if h.Package, err = r.required("package"); err != nil {
			return nil, err
		}
		if h.Children, err = r.children(); err != nil {
			return nil, err
		}
		return h, nil

	case TypeDeepView:
		h := &DeepView{}
		if h.Title, err = r.optional("title"); err != nil {
			return nil, err
		}
		if h.Description, err = r.optional("description"); err != nil {
			return nil, err
		}
		if h.ImageURL, err = r.optional("image_url"); err != nil {
			return nil, err
		}
		if h.Children, err = r.children(); err != nil {
			return nil, err
		}
		return h, nil

	default:
		return nil, &MalformedHandlerError{Path: path, Type: t, Reason: "unknown @type"}
	}
}

// fieldReader extracts typed fields from one handler object.
type fieldReader struct {
	obj  map[string]json.RawMessage
	path string
	typ  string
}

func (r fieldReader) fail(reason string, err error) error {
	return &MalformedHandlerError{Path: r.path, Type: r.typ, Reason: reason, Err: err}
}

func (r fieldReader) required(key string) (string, error) {
	raw, ok := r.obj[key]
	if !ok || isNullJSON(raw) {
		return "", r.fail(fmt.Sprintf("missing required field %q", key), nil)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", r.fail(fmt.Sprintf("field %q must be a string", key), err)
	}
	return s, nil
}

func (r fieldReader) optional(key string) (string, error) {
	raw, ok := r.obj[key]
	if !ok || isNullJSON(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", r.fail(fmt.Sprintf("field %q must be a string", key), err)
	}
	return s, nil
}

// extras is optional: absence means no extra parameters.
func (r fieldReader) extras() (map[string]string, error) {
	raw, ok := r.obj["extras"]
	if !ok || isNullJSON(raw) {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, r.fail(`field "extras" must be an object of strings`, err)
	}
	return m, nil
}

func (r fieldReader) children() ([]Handler, error) {
	key := keyChildren
	raw, ok := r.obj[key]
	if !ok {
		key = keyChildrenAlias
		raw, ok = r.obj[key]
	}
	if !ok || isNullJSON(raw) {
		return nil, r.fail(fmt.Sprintf("missing required field %q", keyChildren), nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, r.fail(fmt.Sprintf("field %q must be an array", key), err)
	}

	children := make([]Handler, 0, len(items))
	for i, item := range items {
		childPath := fmt.Sprintf("%s[%d]", keyChildren, i)
		if r.path != "" {
			childPath = r.path + "." + childPath
		}
		child, err := parseNode(item, childPath)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// ─────────────────────────────────────────────────────────────────
// Serialization
// ─────────────────────────────────────────────────────────────────

type viewActionJSON struct {
	Type         HandlerType       `json:"@type"`
	Data         string            `json:"data"`
	ForcePackage string            `json:"forcePackage,omitempty"`
	Extras       map[string]string `json:"extras,omitzero"`
}

type customActionJSON struct {
	Type   HandlerType       `json:"@type"`
	Action string            `json:"action"`
	Data   string            `json:"data,omitempty"`
	Extras map[string]string `json:"extras,omitzero"`
}

type launchActionJSON struct {
	Type   HandlerType       `json:"@type"`
	Extras map[string]string `json:"extras,omitzero"`
}

type shortcutJSON struct {
	Type HandlerType `json:"@type"`
	ID   string      `json:"id"`
}

type gateJSON struct {
	Type     HandlerType `json:"@type"`
	Package  string      `json:"package"`
	Children []Handler   `json:"links"`
}

type deepViewJSON struct {
	Type        HandlerType `json:"@type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	Children    []Handler   `json:"links"`
}

func (h *ViewAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewActionJSON{Type: h.Type(), Data: h.Data, ForcePackage: h.ForcePackage, Extras: h.Extras})
}

func (h *CustomAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(customActionJSON{Type: h.Type(), Action: h.Action, Data: h.Data, Extras: h.Extras})
}

func (h *LaunchAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(launchActionJSON{Type: h.Type(), Extras: h.Extras})
}

func (h *Shortcut) MarshalJSON() ([]byte, error) {
	return json.Marshal(shortcutJSON{Type: h.Type(), ID: h.ID})
}

func (h *TestInstalled) MarshalJSON() ([]byte, error) {
	return json.Marshal(gateJSON{Type: h.Type(), Package: h.Package, Children: nonNil(h.Children)})
}

func (h *TestNotInstalled) MarshalJSON() ([]byte, error) {
	return json.Marshal(gateJSON{Type: h.Type(), Package: h.Package, Children: nonNil(h.Children)})
}

func (h *DeepView) MarshalJSON() ([]byte, error) {
	return json.Marshal(deepViewJSON{
		Type:        h.Type(),
		Title:       h.Title,
		Description: h.Description,
		ImageURL:    h.ImageURL,
		Children:    nonNil(h.Children),
	})
}

func nonNil(children []Handler) []Handler {
	if children == nil {
		return []Handler{}
	}
	return children
}

type handlerEnvelope struct {
	Version int             `json:"version"`
	Handler json.RawMessage `json:"handler"`
}

// EncodeHandler serializes a handler tree into a versioned envelope suitable
// for handing across a process boundary.
func EncodeHandler(h Handler) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("cannot encode nil handler")
	}
	body, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal handler: %w", err)
	}
	return json.Marshal(handlerEnvelope{Version: CodecVersion, Handler: body})
}

// DecodeHandler is the inverse of EncodeHandler.
func DecodeHandler(data []byte) (Handler, error) {
	var env handlerEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal handler envelope: %w", err)
	}
	if env.Version != CodecVersion {
		return nil, fmt.Errorf("handler envelope version %d: %w", env.Version, ErrUnsupportedCodecVersion)
	}
	return ParseHandler(env.Handler)
}
