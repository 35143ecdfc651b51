package inspectionRepository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"uniform-inspection/internal/entity"
)

const resultsSheet = "Sheet1"

// SaveResult appends one record to the workbook using whole-file
// read-modify-write semantics: the format has no incremental append, so the
// existing rows are read, the new row added, and the file rewritten through a
// temp file plus rename. A corrupt existing file is moved aside to a
// timestamped backup and treated as empty.
func (r *resultsRepository) SaveResult(record entity.ComplianceRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		if err := r.seed(); err != nil {
			r.log.WithFields(logrus.Fields{
				"path":  r.path,
				"error": err.Error(),
			}).Error("Failed to seed results file")
			return false
		}
	}

	rows := r.readRows()
	rows = append(rows, record.Row())

	if err := r.writeRows(rows); err != nil {
		r.log.WithFields(logrus.Fields{
			"path":  r.path,
			"error": err.Error(),
		}).Error("Failed to write results file")
		return false
	}

	if _, err := os.Stat(r.path); err != nil {
		r.log.WithFields(logrus.Fields{
			"path": r.path,
		}).Error("Results file missing after write")
		return false
	}

	r.log.WithFields(logrus.Fields{
		"path":  r.path,
		"total": len(rows),
	}).Info("Result saved to local history")

	return true
}

func (r *resultsRepository) ListResults(limit int) ([][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func(f *excelize.File) {
		if err := f.Close(); err != nil {
			r.log.Errorf("Failed to close results file: %v", err)
		}
	}(f)

	all, err := f.GetRows(resultsSheet)
	if err != nil {
		return nil, err
	}

	if len(all) <= 1 {
		return nil, nil
	}

	rows := all[1:]
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	return rows, nil
}

// seed leaves a valid workbook at r.path: either a copy of the configured
// seed file or a fresh header-only workbook.
func (r *resultsRepository) seed() error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if r.seedPath != "" {
		if data, err := os.ReadFile(r.seedPath); err == nil {
			if err := os.WriteFile(r.path, data, 0o644); err != nil {
				return err
			}
			r.log.WithFields(logrus.Fields{
				"seed": r.seedPath,
				"path": r.path,
			}).Info("Seeded results file from fallback copy")
			return nil
		}
	}

	return r.writeRows(nil)
}

// readRows returns the data rows of the workbook, without the header. On any
// read failure the file is moved aside best-effort and nil is returned, so
// the append proceeds as if no history existed.
func (r *resultsRepository) readRows() [][]string {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		r.backupCorrupt(err)
		return nil
	}
	defer func(f *excelize.File) {
		if err := f.Close(); err != nil {
			r.log.Errorf("Failed to close results file: %v", err)
		}
	}(f)

	all, err := f.GetRows(resultsSheet)
	if err != nil {
		r.backupCorrupt(err)
		return nil
	}

	if len(all) <= 1 {
		return nil
	}

	return all[1:]
}

func (r *resultsRepository) backupCorrupt(cause error) {
	base := strings.TrimSuffix(r.path, filepath.Ext(r.path))
	backup := fmt.Sprintf("%s_backup_%s%s", base, time.Now().Format("20060102_150405"), filepath.Ext(r.path))

	if err := os.Rename(r.path, backup); err != nil {
		r.log.WithFields(logrus.Fields{
			"path":  r.path,
			"error": err.Error(),
		}).Warn("Failed to back up corrupt results file")
	} else {
		r.log.WithFields(logrus.Fields{
			"path":   r.path,
			"backup": backup,
			"cause":  cause.Error(),
		}).Warn("Corrupt results file moved to backup, starting fresh")
	}
}

func (r *resultsRepository) writeRows(rows [][]string) error {
	f := excelize.NewFile()
	defer func(f *excelize.File) {
		if err := f.Close(); err != nil {
			r.log.Errorf("Failed to close workbook: %v", err)
		}
	}(f)

	header := make([]interface{}, len(entity.ResultColumns))
	for i, col := range entity.ResultColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &cells); err != nil {
			return err
		}
	}

	// Keep the .xlsx extension, excelize rejects unknown formats on save.
	tmp := r.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return err
	}

	return os.Rename(tmp, r.path)
}
