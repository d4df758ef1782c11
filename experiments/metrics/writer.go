package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped subfolder under root for one run's CSVs.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

// Dir returns the directory the writer stores its files in.
func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteEpisodeRecords(records []EpisodeRecord) error {
	path := filepath.Join(w.baseDir, "episode_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create episode records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"run", "episode", "steps", "returns", "solved", "start_time", "end_time", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write episode records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Run.String(),
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Steps),
			joinFloats(record.Returns),
			strconv.FormatBool(record.Solved),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write episode record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteStepRecords(records []StepRecord) error {
	path := filepath.Join(w.baseDir, "step_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create step records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"episode", "step", "actions", "rewards", "dones"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write step records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Step),
			joinInts(record.Actions),
			joinFloats(record.Rewards),
			joinBools(record.Dones),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write step record row: %w", err)
		}
	}

	return nil
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func joinBools(values []bool) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatBool(v)
	}
	return strings.Join(parts, " ")
}
