package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Result payloads are opaque to the caching layer; JSON works for the typical
// structs/maps/slices callers put in them. Time, complex numbers, funcs,
// channels, etc may not be supported.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used for remote-store entries.
var Default Codec = GoJSON{}
