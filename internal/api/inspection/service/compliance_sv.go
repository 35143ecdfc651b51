package inspectionService

import (
	"uniform-inspection/internal/entity"
)

// EvaluateCompliance compares detected element names against the uniform
// checklist. Iteration follows checklist order so the output is deterministic
// no matter how the detector ordered its predictions. Duplicate names count
// once and names outside the checklist are ignored.
func EvaluateCompliance(detectedNames []string) entity.ComplianceVerdict {
	detected := make(map[string]bool, len(detectedNames))
	for _, name := range detectedNames {
		detected[name] = true
	}

	present := make([]string, 0, len(entity.UniformChecklist))
	missing := make([]string, 0, len(entity.UniformChecklist))

	for _, item := range entity.UniformChecklist {
		if detected[item] {
			present = append(present, item)
		} else {
			missing = append(missing, item)
		}
	}

	percentage := float64(len(present)) / float64(len(entity.UniformChecklist)) * 100

	return entity.ComplianceVerdict{
		Percentage: percentage,
		Present:    present,
		Missing:    missing,
	}
}
