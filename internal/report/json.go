package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwiater/hashbench/internal/benchmark"
)

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r *benchmark.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// WriteResults writes r as JSON into dir, naming the file after the measured
// cases and the batch count, and returns the file name.
func WriteResults(dir string, r *benchmark.Report) (string, error) {
	var names []string
	for _, e := range r.Entries {
		names = append(names, e.Name)
	}
	slug := Slugify(strings.Join(names, "-"))
	if slug == "" {
		slug = "empty"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	fileName := filepath.Join(dir, fmt.Sprintf("%s-%d.json", slug, r.Options.MeasuredBatches))

	file, err := os.Create(fileName)
	if err != nil {
		return "", fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	if err := WriteJSON(file, r); err != nil {
		return "", fmt.Errorf("error writing results to file: %w", err)
	}

	log.Printf("Benchmark results written to %s", fileName)
	return fileName, nil
}
