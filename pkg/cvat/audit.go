package cvat

import (
	"encoding/xml"
	"fmt"
	"os"
)

// Audit summarizes an emitted annotations file for quantity checks.
type Audit struct {
	Images        []AuditImage
	TotalPolygons int
	Labels        map[string]int
}

// AuditImage is the per-image object count.
type AuditImage struct {
	ID       string
	Name     string
	Polygons int
}

type auditDoc struct {
	XMLName xml.Name     `xml:"annotations"`
	Size    int          `xml:"size"`
	Images  []auditImage `xml:"image"`
}

type auditImage struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Polygons []struct {
		Label string `xml:"label,attr"`
	} `xml:"polygon"`
}

// AuditFile parses an output XML and counts its images and polygons.
func AuditFile(path string) (*Audit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations file: %w", err)
	}

	var doc auditDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse annotations file %s: %w", path, err)
	}

	audit := &Audit{Labels: map[string]int{}}
	for _, img := range doc.Images {
		audit.Images = append(audit.Images, AuditImage{
			ID:       img.ID,
			Name:     img.Name,
			Polygons: len(img.Polygons),
		})
		audit.TotalPolygons += len(img.Polygons)
		for _, p := range img.Polygons {
			audit.Labels[p.Label]++
		}
	}

	return audit, nil
}
