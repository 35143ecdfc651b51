package inspectionService

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"uniform-inspection/internal/api/inspection"
	inspectionRepository "uniform-inspection/internal/api/inspection/repository"
	"uniform-inspection/pkg/gemini"
	"uniform-inspection/pkg/roboflow"
	"uniform-inspection/pkg/s3"
	"uniform-inspection/pkg/sheets"
	"uniform-inspection/pkg/utils"
)

type IInspectionService interface {
	InspectUniform(ctx context.Context, req inspection.InspectionRequest, imagePath string) (*inspection.InspectionResult, error)
	History(limit int) ([]inspection.HistoryRow, error)
}

type inspectionService struct {
	log        *logrus.Logger
	detector   roboflow.ItfRoboflow
	repo       inspectionRepository.Repository
	ledger     sheets.ItfSheets
	gemini     gemini.IGemini
	s3Client   s3.ItfS3
	utils      utils.IUtils
	confidence float64
}

func NewInspectionService(
	log *logrus.Logger,
	detector roboflow.ItfRoboflow,
	repo inspectionRepository.Repository,
	ledger sheets.ItfSheets,
	geminiClient gemini.IGemini,
	s3Client s3.ItfS3,
	utilsInstance utils.IUtils,
) IInspectionService {
	confidence := 0.5
	if raw := os.Getenv("DETECTION_CONFIDENCE"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 && parsed <= 1 {
			confidence = parsed
		}
	}

	return &inspectionService{
		log:        log,
		detector:   detector,
		repo:       repo,
		ledger:     ledger,
		gemini:     geminiClient,
		s3Client:   s3Client,
		utils:      utilsInstance,
		confidence: confidence,
	}
}
