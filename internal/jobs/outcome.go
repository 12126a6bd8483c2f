package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Outcome classifies how processing a job ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

type outcomeRecord struct {
	Company      string `json:"company"`
	JobTitle     string `json:"job_title"`
	Link         string `json:"link"`
	JobRecruiter string `json:"job_recruiter"`
	JobLocation  string `json:"job_location"`
	PDFPath      string `json:"pdf_path"`
}

// OutcomeWriter appends jobs to per-outcome JSON array files
// (success.json, failed.json, skipped.json) under the output directory.
type OutcomeWriter struct {
	dir    string
	logger *zap.Logger
}

func NewOutcomeWriter(dir string, logger *zap.Logger) *OutcomeWriter {
	return &OutcomeWriter{dir: dir, logger: logger}
}

// Record appends the job to the outcome's file, rewriting the whole array. A
// corrupt file is reset with a warning rather than blocking the run.
func (w *OutcomeWriter) Record(outcome Outcome, job *Job) error {
	path := filepath.Join(w.dir, string(outcome)+".json")

	var records []outcomeRecord
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			w.logger.Warn("outcome file is corrupt, resetting",
				zap.String("path", path),
				zap.Error(err),
			)
			records = nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading outcome file: %w", err)
	}

	records = append(records, outcomeRecord{
		Company:      job.Company,
		JobTitle:     job.Title,
		Link:         job.Link,
		JobRecruiter: job.Recruiter,
		JobLocation:  job.Location,
		PDFPath:      job.PDFPath,
	})

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling outcome records: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing outcome file: %w", err)
	}

	w.logger.Debug("recorded outcome",
		zap.String("outcome", string(outcome)),
		zap.String("job", job.String()),
	)

	return nil
}
