package inspectionService

import (
	"strings"

	"uniform-inspection/internal/entity"
	"uniform-inspection/pkg/roboflow"
)

// NormalizeDetections converts a raw detector response into the uniform
// detection shape. Class names are lowercased for case-insensitive matching
// against the checklist. The first prediction classified as "carnet" supplies
// the identity box used for the OCR annotation. A response with zero
// predictions is a valid empty result, not an error.
func NormalizeDetections(resp *roboflow.DetectResponse) entity.DetectionResult {
	result := entity.DetectionResult{}

	if resp == nil {
		return result
	}

	for _, p := range resp.Predictions {
		name := strings.ToLower(p.Class)

		bbox := entity.BoundingBox{
			X:      p.X,
			Y:      p.Y,
			Width:  p.Width,
			Height: p.Height,
		}

		result.Elements = append(result.Elements, entity.DetectedElement{
			Name:       name,
			Confidence: p.Confidence,
			BBox:       bbox,
		})

		if name == "carnet" && result.CarnetBox == nil {
			box := bbox
			result.CarnetBox = &box
		}
	}

	result.TotalDetections = len(result.Elements)

	return result
}
