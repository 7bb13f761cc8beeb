// Package cvat models the fixed CVAT-style output schema and its
// deterministic text rendering.
package cvat

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/hwjung-data/labelconv/pkg/annotation"
)

// Document is the full output tree. It is built fresh from the template's
// summary values plus the image list; the template is never mutated.
type Document struct {
	TaskName string
	Size     int
	Created  string
	Updated  string
	Images   []Image
}

// Image is one output image element. ID equals the item's zero-based
// position in the manifest, not the order files were found on disk.
type Image struct {
	ID       int
	Name     string
	Width    int
	Height   int
	Polygons []Polygon
}

// Polygon is one annotation element. Text is only rendered when Label is
// "text".
type Polygon struct {
	Label  string
	ZOrder int
	Points string
	Text   string
}

// Summary holds the values extracted from a template document.
type Summary struct {
	TaskName string
	Created  string
	Updated  string
}

type templateXML struct {
	XMLName xml.Name `xml:"annotations"`
	Task    struct {
		Name string `xml:"name"`
	} `xml:"task"`
	Created string `xml:"created"`
	Updated string `xml:"updated"`
}

// LoadTemplate parses a reference XML and extracts its summary metadata.
// The template's placeholder image elements are discarded; only summary
// values survive into the output.
func LoadTemplate(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read template: %w", err)
	}

	var tpl templateXML
	if err := xml.Unmarshal(data, &tpl); err != nil {
		return Summary{}, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	return Summary{
		TaskName: strings.TrimSpace(tpl.Task.Name),
		Created:  strings.TrimSpace(tpl.Created),
		Updated:  strings.TrimSpace(tpl.Updated),
	}, nil
}

// Render serializes the document as tab-indented XML text. Empty elements
// come out self-closing; Format collapses them to explicit open/close
// pairs.
func (d *Document) Render() string {
	var b strings.Builder
	esc := annotation.EscapeXML

	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<annotations>\n")
	b.WriteString("\t<task>\n")
	fmt.Fprintf(&b, "\t\t<name>%s</name>\n", esc(d.TaskName))
	b.WriteString("\t</task>\n")
	fmt.Fprintf(&b, "\t<size>%d</size>\n", d.Size)
	fmt.Fprintf(&b, "\t<created>%s</created>\n", esc(d.Created))
	fmt.Fprintf(&b, "\t<updated>%s</updated>\n", esc(d.Updated))

	for _, img := range d.Images {
		open := fmt.Sprintf("\t<image id=\"%d\" name=\"%s\" width=\"%d\" height=\"%d\"",
			img.ID, esc(img.Name), img.Width, img.Height)
		if len(img.Polygons) == 0 {
			b.WriteString(open + "/>\n")
			continue
		}

		b.WriteString(open + ">\n")
		for _, p := range img.Polygons {
			poly := fmt.Sprintf("\t\t<polygon label=\"%s\" source=\"file\" occluded=\"0\" z_order=\"%d\" points=\"%s\"",
				esc(p.Label), p.ZOrder, esc(p.Points))
			if p.Label != annotation.LabelText {
				b.WriteString(poly + "/>\n")
				continue
			}
			b.WriteString(poly + ">\n")
			fmt.Fprintf(&b, "\t\t\t<attribute name=\"text\">%s</attribute>\n", esc(p.Text))
			b.WriteString("\t\t</polygon>\n")
		}
		b.WriteString("\t</image>\n")
	}

	b.WriteString("</annotations>\n")
	return b.String()
}
