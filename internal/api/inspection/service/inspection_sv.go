package inspectionService

import (
	"bytes"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"uniform-inspection/internal/api/inspection"
	"uniform-inspection/internal/entity"
	contextPkg "uniform-inspection/pkg/context"
)

const carnetPrompt = `Transcribe all readable text on this technician ID card.
Return only the text, without any commentary.`

// InspectUniform runs the full pipeline for one request: detect, normalize,
// evaluate, persist locally, persist remotely, annotate. Both persistence
// steps degrade to booleans; the verdict is returned even when every sink
// fails, since the compliance computation itself already succeeded.
func (s *inspectionService) InspectUniform(ctx context.Context, req inspection.InspectionRequest, imagePath string) (*inspection.InspectionResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !s.detector.Available() {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Detector not available, aborting inspection")
		return nil, inspection.ErrDetectorUnavailable
	}

	raw, err := s.detector.Detect(ctx, imagePath, s.confidence)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Detection call failed")
		return nil, inspection.ErrDetectorUnavailable
	}

	detections := NormalizeDetections(raw)
	if detections.TotalDetections == 0 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"partner":    req.Partner,
		}).Info("No uniform elements detected")
		return nil, inspection.ErrNoDetections
	}

	names := make([]string, 0, len(detections.Elements))
	for _, e := range detections.Elements {
		names = append(names, e.Name)
	}

	verdict := EvaluateCompliance(names)

	record := entity.ComplianceRecord{
		Timestamp:  time.Now(),
		Partner:    req.Partner,
		Technician: req.TechnicianName,
		Present:    verdict.Present,
		Missing:    verdict.Missing,
		Percentage: verdict.Percentage,
	}

	localSaved := s.repo.SaveResult(record)
	if !localSaved {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"partner":    req.Partner,
		}).Error("Failed to save result locally, continuing")
	}

	remoteSaved := s.appendToLedger(ctx, record)

	result := &inspection.InspectionResult{
		Partner:        req.Partner,
		TechnicianName: req.TechnicianName,
		Percentage:     verdict.Percentage,
		Present:        verdict.Present,
		Missing:        verdict.Missing,
		PresentDisplay: record.PresentDisplay(),
		MissingDisplay: record.MissingDisplay(),
		Timestamp:      record.Timestamp.Format("2006-01-02 15:04:05"),
		LocalSaved:     localSaved,
		RemoteSaved:    remoteSaved,
	}

	result.CarnetText = s.extractCarnetText(ctx, imagePath, detections.CarnetBox)

	s.archivePhoto(imagePath, requestID)

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"partner":      req.Partner,
		"percentage":   verdict.Percentage,
		"present":      record.PresentDisplay(),
		"missing":      record.MissingDisplay(),
		"local_saved":  localSaved,
		"remote_saved": remoteSaved,
	}).Info("Inspection completed")

	return result, nil
}

// appendToLedger isolates the remote sink so nothing it does, panics
// included, can undo the local write or fail the request.
func (s *inspectionService) appendToLedger(ctx context.Context, record entity.ComplianceRecord) (saved bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"panic": r,
			}).Error("Remote ledger append panicked")
			saved = false
		}
	}()

	if s.ledger == nil {
		return false
	}

	return s.ledger.AppendRecord(ctx, record)
}

func (s *inspectionService) extractCarnetText(ctx context.Context, imagePath string, box *entity.BoundingBox) string {
	if s.gemini == nil || box == nil {
		return ""
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		s.log.Errorf("Failed to read image for carnet OCR: %v", err)
		return ""
	}

	cropped, err := s.utils.CropToBox(imageData, *box)
	if err != nil {
		s.log.Warnf("Failed to crop carnet region: %v", err)
		return ""
	}

	encoded, err := s.utils.ConvertFileToBase64(bytes.NewReader(cropped))
	if err != nil {
		s.log.Warnf("Failed to encode carnet crop: %v", err)
		return ""
	}

	text, err := s.gemini.AnalyzeImage(ctx, encoded, carnetPrompt)
	if err != nil {
		s.log.Warnf("Carnet OCR failed: %v", err)
		return ""
	}

	return text
}

func (s *inspectionService) archivePhoto(imagePath string, requestID string) {
	if s.s3Client == nil || !s.s3Client.Available() {
		return
	}

	location, err := s.s3Client.ArchivePhoto(imagePath)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to archive photo to S3")
		return
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"location":   location,
	}).Info("Photo archived to S3")
}

func (s *inspectionService) History(limit int) ([]inspection.HistoryRow, error) {
	rows, err := s.repo.ListResults(limit)
	if err != nil {
		return nil, err
	}

	history := make([]inspection.HistoryRow, 0, len(rows))
	for _, row := range rows {
		// Older files may carry short rows; pad so indexing stays safe.
		for len(row) < 6 {
			row = append(row, "")
		}
		history = append(history, inspection.HistoryRow{
			Date:       row[0],
			Partner:    row[1],
			Name:       row[2],
			Has:        row[3],
			Missing:    row[4],
			Percentage: row[5],
		})
	}

	return history, nil
}
