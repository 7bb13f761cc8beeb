package annotation

import "encoding/json"

// Annotation type discriminators used by the labeling platform.
const (
	TypeBox      = "BOX"
	TypePolygons = "POLYGONS"
)

// ResultDocument is one per-item export: results[0] is a header row,
// results[1] carries the working payload.
type ResultDocument struct {
	Results []json.RawMessage `json:"results"`
}

// SourceDocument is the per-image JSON carrying image geometry and an
// occasional fallback filename in sources[1].
type SourceDocument struct {
	Images  []SourceImage `json:"images"`
	Sources []string      `json:"sources"`
}

type SourceImage struct {
	ConvertedImageInfo ImageInfo `json:"convertedImageInfo"`
}

type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimensions returns the pixel size from the first image's
// convertedImageInfo, defaulting to 0x0 when absent.
func (d *SourceDocument) Dimensions() (int, int) {
	if d == nil || len(d.Images) == 0 {
		return 0, 0
	}
	info := d.Images[0].ConvertedImageInfo
	return info.Width, info.Height
}

// FallbackFileName returns the secondary sources entry, the last-resort
// filename source before synthesizing one from the identifier.
func (d *SourceDocument) FallbackFileName() string {
	if d == nil || len(d.Sources) < 2 {
		return ""
	}
	return d.Sources[1]
}

// Point is one 2D coordinate; platform exports carry float positions even
// for pixel-aligned boxes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Corners are the four named corners of a BOX record.
type Corners struct {
	TL *Point `json:"tl"`
	TR *Point `json:"tr"`
	BR *Point `json:"br"`
	BL *Point `json:"bl"`
}

func (c *Corners) empty() bool {
	return c.TL == nil && c.TR == nil && c.BR == nil && c.BL == nil
}

// Box is the left/top/width/height fallback geometry of a BOX record.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// Record is one raw annotation as exported, before normalization. The
// transcription lives under a variant-specific key, so extraction keeps the
// raw object around for the text lookup.
type Record struct {
	Annotation string   `json:"annotation"`
	Coords     *Corners `json:"coords"`
	Object     *Box     `json:"object"`
	Points     []Point  `json:"points"`
	Angle      float64  `json:"angle"`

	raw map[string]json.RawMessage
}

// UnmarshalJSON keeps the raw key set so variant-specific fields can be read
// without hardcoding every historical key name.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.raw = raw
	return nil
}

// Text returns the transcription stored under the variant's text key.
// Non-string values are treated as absent.
func (r *Record) Text(key string) string {
	rawValue, ok := r.raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(rawValue, &s); err != nil {
		return ""
	}
	return s
}

// Canonical is the normalized, schema-independent annotation: ordered
// geometry plus the classified transcription. Text is only set when Label
// is LabelText.
type Canonical struct {
	Points []Point
	Label  string
	Text   string
}
