package inspectionService

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"uniform-inspection/internal/api/inspection"
	"uniform-inspection/internal/entity"
	"uniform-inspection/pkg/roboflow"
	"uniform-inspection/pkg/utils"
)

type fakeDetector struct {
	available bool
	resp      *roboflow.DetectResponse
	err       error
	calls     int
}

func (f *fakeDetector) Available() bool {
	return f.available
}

func (f *fakeDetector) Detect(_ context.Context, _ string, _ float64) (*roboflow.DetectResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeRepo struct {
	ok    bool
	saved []entity.ComplianceRecord
}

func (f *fakeRepo) SaveResult(record entity.ComplianceRecord) bool {
	f.saved = append(f.saved, record)
	return f.ok
}

func (f *fakeRepo) ListResults(_ int) ([][]string, error) {
	rows := make([][]string, 0, len(f.saved))
	for _, r := range f.saved {
		rows = append(rows, r.Row())
	}
	return rows, nil
}

type fakeLedger struct {
	ok     bool
	panics bool
	calls  int
}

func (f *fakeLedger) Available() bool {
	return true
}

func (f *fakeLedger) AppendRecord(_ context.Context, _ entity.ComplianceRecord) bool {
	f.calls++
	if f.panics {
		panic("ledger exploded")
	}
	return f.ok
}

type fakeGemini struct {
	text      string
	gotBase64 string
}

func (f *fakeGemini) AnalyzeImage(_ context.Context, base64Image string, _ string) (string, error) {
	f.gotBase64 = base64Image
	return f.text, nil
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func cascoPoloResponse() *roboflow.DetectResponse {
	return &roboflow.DetectResponse{
		Predictions: []roboflow.Prediction{
			{Class: "casco", Confidence: 0.9},
			{Class: "polo", Confidence: 0.8},
		},
	}
}

func testRequest() inspection.InspectionRequest {
	return inspection.InspectionRequest{
		Partner:        "Regional Norte",
		TechnicianName: "Juan Perez",
	}
}

func TestInspectUniform_DetectorUnavailable(t *testing.T) {
	detector := &fakeDetector{available: false}
	repo := &fakeRepo{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, nil, nil, nil, utils.New())

	result, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")

	require.ErrorIs(t, err, inspection.ErrDetectorUnavailable)
	require.Nil(t, result)
	require.Zero(t, detector.calls)
	require.Empty(t, repo.saved)
}

func TestInspectUniform_DetectorErrorIsUnavailable(t *testing.T) {
	detector := &fakeDetector{available: true, err: context.DeadlineExceeded}
	repo := &fakeRepo{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, nil, nil, nil, utils.New())

	_, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")

	require.ErrorIs(t, err, inspection.ErrDetectorUnavailable)
	require.Empty(t, repo.saved)
}

func TestInspectUniform_ZeroDetectionsShortCircuits(t *testing.T) {
	detector := &fakeDetector{available: true, resp: &roboflow.DetectResponse{}}
	repo := &fakeRepo{ok: true}
	ledger := &fakeLedger{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, ledger, nil, nil, utils.New())

	result, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")

	require.ErrorIs(t, err, inspection.ErrNoDetections)
	require.Nil(t, result)
	require.Empty(t, repo.saved, "no row may be written before evaluation")
	require.Zero(t, ledger.calls)
}

func TestInspectUniform_SuccessfulPipeline(t *testing.T) {
	detector := &fakeDetector{available: true, resp: cascoPoloResponse()}
	repo := &fakeRepo{ok: true}
	ledger := &fakeLedger{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, ledger, nil, nil, utils.New())

	result, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")

	require.NoError(t, err)
	require.InDelta(t, 25.0, result.Percentage, 0.001)
	require.Equal(t, []string{"casco", "polo"}, result.Present)
	require.Equal(t, "casco, polo", result.PresentDisplay)
	require.Equal(t, "botas, gafas, guantes, camisa, pantalon, carnet", result.MissingDisplay)
	require.True(t, result.LocalSaved)
	require.True(t, result.RemoteSaved)

	require.Len(t, repo.saved, 1)
	require.Equal(t, "Regional Norte", repo.saved[0].Partner)
	require.Equal(t, "25.0%", repo.saved[0].PercentageDisplay())
	require.Equal(t, 1, ledger.calls)
}

func TestInspectUniform_LocalStoreFailureStillReports(t *testing.T) {
	detector := &fakeDetector{available: true, resp: cascoPoloResponse()}
	repo := &fakeRepo{ok: false}
	ledger := &fakeLedger{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, ledger, nil, nil, utils.New())

	result, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")

	require.NoError(t, err)
	require.False(t, result.LocalSaved)
	require.True(t, result.RemoteSaved)
	require.InDelta(t, 25.0, result.Percentage, 0.001)
}

func TestInspectUniform_LedgerPanicIsContained(t *testing.T) {
	detector := &fakeDetector{available: true, resp: cascoPoloResponse()}
	repo := &fakeRepo{ok: true}
	ledger := &fakeLedger{panics: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, ledger, nil, nil, utils.New())

	result, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")

	require.NoError(t, err)
	require.False(t, result.RemoteSaved)
	require.True(t, result.LocalSaved, "remote failure must not undo the local write")
}

func TestInspectUniform_CarnetTextAnnotation(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "photo.png")
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(imagePath, buf.Bytes(), 0o644))

	detector := &fakeDetector{available: true, resp: &roboflow.DetectResponse{
		Predictions: []roboflow.Prediction{
			{Class: "carnet", Confidence: 0.9, X: 10, Y: 10, Width: 8, Height: 8},
		},
	}}
	ocr := &fakeGemini{text: "JP-1234"}
	svc := NewInspectionService(newTestLogger(), detector, &fakeRepo{ok: true}, nil, ocr, nil, utils.New())

	result, err := svc.InspectUniform(context.Background(), testRequest(), imagePath)
	require.NoError(t, err)
	require.Equal(t, "JP-1234", result.CarnetText)

	cropped, err := base64.StdEncoding.DecodeString(ocr.gotBase64)
	require.NoError(t, err, "the crop must reach the vision client base64-encoded")
	require.NotEmpty(t, cropped)
}

func TestHistory_MapsStoredRows(t *testing.T) {
	detector := &fakeDetector{available: true, resp: cascoPoloResponse()}
	repo := &fakeRepo{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, nil, nil, nil, utils.New())

	_, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")
	require.NoError(t, err)

	rows, err := svc.History(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Regional Norte", rows[0].Partner)
	require.Equal(t, "Juan Perez", rows[0].Name)
	require.Equal(t, "casco, polo", rows[0].Has)
	require.Equal(t, "25.0%", rows[0].Percentage)
}

func TestInspectUniform_RepeatedCallsAppendNewRows(t *testing.T) {
	detector := &fakeDetector{available: true, resp: cascoPoloResponse()}
	repo := &fakeRepo{ok: true}
	svc := NewInspectionService(newTestLogger(), detector, repo, &fakeLedger{ok: true}, nil, nil, utils.New())

	first, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")
	require.NoError(t, err)

	second, err := svc.InspectUniform(context.Background(), testRequest(), "photo.jpg")
	require.NoError(t, err)

	require.Equal(t, first.Present, second.Present)
	require.Equal(t, first.Missing, second.Missing)
	require.Equal(t, first.Percentage, second.Percentage)
	require.Len(t, repo.saved, 2, "storage is record-once-per-call, not upsert")
}
