package screener

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

// Fixed column order for every CSV view.
var csvHeader = []string{"symbol", "name", "price", "marketCap", "volume", "industry"}

// WriteError means one output file could not be written. It is fatal only to
// that file; other views may still land.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer serializes views below OutputDir. Each file is written to a temp
// name and renamed into place so a reader never observes a partial file.
type Writer struct {
	OutputDir string
	Logger    *zap.Logger
}

func NewWriter(outputDir string, logger *zap.Logger) *Writer {
	if outputDir == "" {
		outputDir = "."
	}
	return &Writer{
		OutputDir: outputDir,
		Logger:    logger,
	}
}

// WriteCSV writes one view to relPath with the mandatory header row.
func (w *Writer) WriteCSV(relPath string, records []TickerRecord) error {
	path := filepath.Join(w.OutputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmpPath := path + "." + uuid.NewString() + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	writer := csv.NewWriter(file)
	writeErr := writer.Write(csvHeader)
	for _, record := range records {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write([]string{
			record.Symbol,
			record.Name,
			record.Price.String(),
			record.MarketCap.String(),
			strconv.FormatInt(record.Volume, 10),
			record.Industry,
		})
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}

	if writeErr != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: writeErr}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}

	w.Logger.Info("wrote view", zap.String("path", path), zap.Int("rows", len(records)))
	return nil
}

// WriteJSON writes a prettified JSON snapshot of the records, with the same
// temp-and-rename discipline as the CSV views.
func (w *Writer) WriteJSON(relPath string, records []TickerRecord) error {
	path := filepath.Join(w.OutputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if records == nil {
		records = []TickerRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmpPath := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, pretty.Pretty(data), 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}

	w.Logger.Info("wrote snapshot", zap.String("path", path), zap.Int("rows", len(records)))
	return nil
}

// WriteViews writes every view, continuing past per-file failures, and
// reports how many landed and how many failed.
func (w *Writer) WriteViews(views []View) (written int, failed int) {
	for _, view := range views {
		if err := w.WriteCSV(view.Path, view.Records); err != nil {
			w.Logger.Error("view write failed", zap.String("path", view.Path), zap.Error(err))
			failed++
			continue
		}
		written++
	}
	return written, failed
}
