package entity

import (
	"fmt"
	"strings"
	"time"
)

// UniformChecklist is the fixed set of items a technician must wear or carry.
// The names are the detector's class vocabulary; matching is exact after
// lowercasing, so any mismatch here would make that item permanently "missing".
var UniformChecklist = []string{
	"botas", "gafas", "guantes", "casco",
	"camisa", "polo", "pantalon", "carnet",
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type DetectedElement struct {
	Name       string      `json:"name"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}

// DetectionResult is the normalized shape of one detector call.
type DetectionResult struct {
	Elements        []DetectedElement `json:"detected_elements"`
	CarnetBox       *BoundingBox      `json:"carnet_box,omitempty"`
	TotalDetections int               `json:"total_detections"`
}

// ComplianceVerdict partitions the checklist into present and missing items.
// Present and Missing always follow checklist order, never detection order.
type ComplianceVerdict struct {
	Percentage float64  `json:"percentage"`
	Present    []string `json:"present"`
	Missing    []string `json:"missing"`
}

// ComplianceRecord is one row of the persisted inspection history. It is
// immutable once built; sinks append it and never update or delete it.
type ComplianceRecord struct {
	Timestamp  time.Time
	Partner    string
	Technician string
	Present    []string
	Missing    []string
	Percentage float64
}

// ResultColumns is the header of the tabular history file and of the remote
// ledger range, in column order A:F.
var ResultColumns = []string{"Date", "Partner", "Name", "Has", "Missing", "Percentage"}

func (r ComplianceRecord) PresentDisplay() string {
	if len(r.Present) == 0 {
		return "None"
	}
	return strings.Join(r.Present, ", ")
}

func (r ComplianceRecord) MissingDisplay() string {
	if len(r.Missing) == 0 {
		return "Complete"
	}
	return strings.Join(r.Missing, ", ")
}

func (r ComplianceRecord) PercentageDisplay() string {
	return fmt.Sprintf("%.1f%%", r.Percentage)
}

// Row renders the record as the six ordered cell values of the tabular schema.
func (r ComplianceRecord) Row() []string {
	return []string{
		r.Timestamp.Format("2006-01-02 15:04:05"),
		r.Partner,
		r.Technician,
		r.PresentDisplay(),
		r.MissingDisplay(),
		r.PercentageDisplay(),
	}
}
