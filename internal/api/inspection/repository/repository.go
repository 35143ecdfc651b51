package inspectionRepository

import (
	"sync"

	"github.com/sirupsen/logrus"

	"uniform-inspection/internal/entity"
)

// Repository is the local tabular history of compliance results. SaveResult
// never returns an error: persistence failures are logged and converted to
// false so the pipeline can still report its verdict.
type Repository interface {
	SaveResult(record entity.ComplianceRecord) bool
	ListResults(limit int) ([][]string, error)
}

// Config carries the already-resolved file locations. Path resolution itself
// happens at bootstrap in internal/config.
type Config struct {
	// Path is the target workbook.
	Path string
	// SeedPath, when set and present, is copied over a missing target before
	// the first append.
	SeedPath string
}

func New(log *logrus.Logger, cfg Config) Repository {
	return &resultsRepository{
		log:      log,
		path:     cfg.Path,
		seedPath: cfg.SeedPath,
	}
}

type resultsRepository struct {
	log      *logrus.Logger
	path     string
	seedPath string

	// Serializes the read-modify-write cycle; concurrent appends would
	// otherwise race and drop rows.
	mu sync.Mutex
}
