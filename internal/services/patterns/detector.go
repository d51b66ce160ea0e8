package patterns

import "CosmicClock/internal/domain/models"

// Detector classifies a sample against a catalog.
type Detector struct {
	catalog Catalog
}

// NewDetector builds a detector over the default catalog.
func NewDetector() *Detector {
	return &Detector{catalog: defaultCatalog}
}

// NewDetectorWithCatalog builds a detector over c.
func NewDetectorWithCatalog(c Catalog) *Detector {
	return &Detector{catalog: c}
}

// Catalog returns the definitions evaluated by the detector.
func (d *Detector) Catalog() Catalog {
	return d.catalog
}

// Detect returns one record per matching definition, in catalog order.
func (d *Detector) Detect(sample models.TimeSample) []models.DetectedPattern {
	out := make([]models.DetectedPattern, 0, 4)
	for _, def := range d.catalog {
		if def.Match == nil || !def.Match(sample) {
			continue
		}
		desc := def.Name
		if def.Describe != nil {
			desc = def.Describe(sample)
		}
		out = append(out, models.DetectedPattern{
			ID:          def.ID,
			Name:        def.Name,
			Description: desc,
			Category:    def.Category,
			Timestamp:   sample.Instant,
		})
	}
	return out
}
