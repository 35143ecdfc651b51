package config

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const resultsFileName = "resultados_uniformes.xlsx"

// StoragePaths holds the resolved filesystem locations the app writes to.
type StoragePaths struct {
	UploadsDir  string
	ResultsPath string
	// SeedPath is a same-schema workbook copied over a missing results file,
	// typically the working-directory file left behind before a move to a
	// persistent disk.
	SeedPath string
}

// ResolveStoragePaths prefers a writable persistent-disk location (hosted
// deployments mount one at PERSISTENT_DATA_DIR or /var/data) and falls back
// to the working directory. Upload and result directories are created here so
// the rest of the app can assume they exist.
func ResolveStoragePaths(log *logrus.Logger) StoragePaths {
	base := persistentBase()

	uploadsDir := filepath.Join(base, "images")
	resultsDir := filepath.Join(base, "results")

	for _, dir := range []string{uploadsDir, resultsDir, filepath.Join(base, "credentials")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warnf("Failed to create directory %s: %v", dir, err)
		}
	}

	paths := StoragePaths{
		UploadsDir:  uploadsDir,
		ResultsPath: filepath.Join(base, resultsFileName),
	}

	if seed := os.Getenv("RESULTS_SEED_FILE"); seed != "" {
		paths.SeedPath = seed
	} else if base != "." {
		// A prior run in the working directory is the natural seed.
		if _, err := os.Stat(resultsFileName); err == nil {
			paths.SeedPath = resultsFileName
		}
	}

	log.WithFields(logrus.Fields{
		"uploads_dir":  paths.UploadsDir,
		"results_path": paths.ResultsPath,
		"seed_path":    paths.SeedPath,
	}).Info("Storage paths resolved")

	return paths
}

func persistentBase() string {
	candidates := []string{os.Getenv("PERSISTENT_DATA_DIR"), "/var/data"}

	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if isWritable(dir) {
			return dir
		}
	}

	return "."
}

func isWritable(dir string) bool {
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}
