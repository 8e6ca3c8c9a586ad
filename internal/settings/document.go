package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// Keys in the general section.
const (
	KeyServerURL  = "server_url"
	KeyUsername   = "username"
	KeyPassword   = "password"
	KeyProtocol   = "protocol"
	KeyDeleteSend = "delete_send"
)

// Protocol values.
const (
	ProtocolDefault      = "odk_default"
	ProtocolGoogleSheets = "google_sheets"
)

// DefaultServerURL is used when a document carries no server_url.
const DefaultServerURL = "https://demo.getodk.org"

// volatileKeys never take part in comparisons.
var volatileKeys = map[string]struct{}{
	"last_updated": {},
	"timestamp":    {},
	"updated_at":   {},
	"imported_at":  {},
}

// ErrInvalidDocument is returned when a document cannot be parsed or imported.
var ErrInvalidDocument = errors.New("invalid settings document")

// ImportResult reports whether a document can be imported as a project.
type ImportResult string

const (
	ImportSuccess             ImportResult = "success"
	ImportInvalidSettings     ImportResult = "invalid_settings"
	ImportUnsupportedProtocol ImportResult = "unsupported_protocol"
)

// Document is a project's settings document.
type Document struct {
	General map[string]any `json:"general"`
	Admin   map[string]any `json:"admin"`
	Project map[string]any `json:"project"`
}

// Connection is the server account a document points at.
type Connection struct {
	ServerURL string
	UserName  string
	Password  string
}

// Parse decodes the JSON wire form of a document.
func Parse(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if d.General == nil {
		return Document{}, fmt.Errorf("%w: missing general section", ErrInvalidDocument)
	}
	return d.normalized(), nil
}

// MarshalJSON always emits all three sections.
func (d Document) MarshalJSON() ([]byte, error) {
	type wire Document
	return json.Marshal(wire(d.normalized()))
}

// Connection extracts the connection identity.
func (d Document) Connection() Connection {
	c := Connection{ServerURL: DefaultServerURL}
	if v, ok := d.General[KeyServerURL].(string); ok && v != "" {
		c.ServerURL = v
	}
	if v, ok := d.General[KeyUsername].(string); ok {
		c.UserName = v
	}
	if v, ok := d.General[KeyPassword].(string); ok {
		c.Password = v
	}
	return c
}

// Validate reports whether the document can be imported.
func (d Document) Validate() ImportResult {
	if d.General == nil {
		return ImportInvalidSettings
	}
	for _, k := range []string{KeyServerURL, KeyUsername, KeyPassword, KeyProtocol} {
		v, ok := d.General[k]
		if !ok {
			continue
		}
		if _, isString := v.(string); !isString {
			return ImportInvalidSettings
		}
	}
	if d.General[KeyProtocol] == ProtocolGoogleSheets {
		return ImportUnsupportedProtocol
	}
	return ImportSuccess
}

// Stable returns a copy with volatile keys removed from every section.
func (d Document) Stable() Document {
	return Document{
		General: stripVolatile(d.General),
		Admin:   stripVolatile(d.Admin),
		Project: stripVolatile(d.Project),
	}
}

// Clone returns a shallow copy of every section.
func (d Document) Clone() Document {
	return Document{
		General: maps.Clone(d.General),
		Admin:   maps.Clone(d.Admin),
		Project: maps.Clone(d.Project),
	}.normalized()
}

// Bool reads a boolean from the general section.
func (d Document) Bool(key string) (bool, bool) {
	v, ok := d.General[key].(bool)
	return v, ok
}

func (d Document) normalized() Document {
	if d.General == nil {
		d.General = map[string]any{}
	}
	if d.Admin == nil {
		d.Admin = map[string]any{}
	}
	if d.Project == nil {
		d.Project = map[string]any{}
	}
	return d
}

func stripVolatile(section map[string]any) map[string]any {
	out := make(map[string]any, len(section))
	for k, v := range section {
		if _, skip := volatileKeys[k]; skip {
			continue
		}
		out[k] = v
	}
	return out
}
