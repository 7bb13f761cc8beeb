package annotation

import (
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// Variant describes one known result-document dialect: where the payload
// sits in the results array and which keys carry the annotation list and
// the transcription.
type Variant struct {
	ResultIndex   int    `yaml:"result_index"`
	AnnotationKey string `yaml:"annotation_key"`
	TextKey       string `yaml:"text_key"`
}

// VariantSet selects a Variant per manifest row based on its difficulty
// tag. Adding a tier is a data change, not a code change.
type VariantSet struct {
	Default Variant            `yaml:"default"`
	Tiers   map[string]Variant `yaml:"tiers"`
}

// DefaultVariants covers the dialects observed so far: a single-tier
// default, plus the two-tier run where the mid tier switched annotation
// keys.
func DefaultVariants() VariantSet {
	return VariantSet{
		Default: Variant{ResultIndex: 1, AnnotationKey: "name_5OJYEV", TextKey: "ocr"},
		Tiers: map[string]Variant{
			"중": {ResultIndex: 1, AnnotationKey: "name_RRMP0X", TextKey: "ocr"},
			"상": {ResultIndex: 1, AnnotationKey: "name_5OJYEV", TextKey: "ocr"},
		},
	}
}

// For returns the variant for a difficulty tag, falling back to the default
// for blank or unknown tags.
func (s VariantSet) For(difficulty string) Variant {
	if v, ok := s.Tiers[difficulty]; ok {
		return v
	}
	return s.Default
}

// LoadVariants reads a variant set from a YAML file.
func LoadVariants(path string) (VariantSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return VariantSet{}, fmt.Errorf("failed to read variants file: %w", err)
	}

	var set VariantSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return VariantSet{}, fmt.Errorf("failed to parse variants file: %w", err)
	}

	if set.Default.AnnotationKey == "" {
		return VariantSet{}, fmt.Errorf("variants file %s has no default annotation_key", path)
	}

	return set, nil
}
