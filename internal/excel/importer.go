package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/vocabtrainer/internal/database"
	"github.com/example/vocabtrainer/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	VocabColumn       string // Column with the word
	ArticleColumn     string // Column with the grammatical article
	TranslationColumn string // Column with the translation
	WordTypeColumn    string // Column with the word type (noun, verb, ...)
	ContextColumn     string // Column with an example sentence
	SheetName         string // Name of the sheet to import; empty means the first sheet
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		VocabColumn:       "A",
		ArticleColumn:     "B",
		TranslationColumn: "C",
		WordTypeColumn:    "D",
		ContextColumn:     "E",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Repository is the catalog storage the importer writes to
type Repository interface {
	GetByVocab(ctx context.Context, vocab, translation string) (*models.VocabularyItem, error)
	Create(ctx context.Context, item *models.VocabularyItem) error
	Update(ctx context.Context, item *models.VocabularyItem) error
}

// Importer loads vocabulary rows into the catalog
type Importer struct {
	repo Repository
}

// NewImporter creates an importer writing to repo
func NewImporter(repo Repository) *Importer {
	return &Importer{repo: repo}
}

type columns struct {
	vocab, article, translation, wordType, context int
}

func (c ImportConfig) columns() (columns, error) {
	var cols columns
	targets := []struct {
		name string
		dst  *int
	}{
		{c.VocabColumn, &cols.vocab},
		{c.ArticleColumn, &cols.article},
		{c.TranslationColumn, &cols.translation},
		{c.WordTypeColumn, &cols.wordType},
		{c.ContextColumn, &cols.context},
	}
	for _, t := range targets {
		if t.name == "" {
			*t.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(t.name)
		if err != nil {
			return cols, fmt.Errorf("invalid column %q: %w", t.name, err)
		}
		*t.dst = n - 1
	}
	if cols.vocab < 0 || cols.translation < 0 {
		return cols, errors.New("vocab and translation columns are required")
	}
	return cols, nil
}

// ImportWords imports words from an Excel or CSV file
func (im *Importer) ImportWords(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	cols, err := config.columns()
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, row, cols, result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	log.Printf("[IMPORT] %s: %d rows, %d created, %d updated, %d skipped",
		config.FilePath, result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	return result, nil
}

// readExcel returns all rows of the named sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow creates or updates the catalog item described by one row
func (im *Importer) processRow(ctx context.Context, row []string, cols columns, result *ImportResult) error {
	vocab := cleanWord(cell(row, cols.vocab))
	translation := strings.TrimSpace(cell(row, cols.translation))
	if vocab == "" {
		return errors.New("word cannot be empty")
	}
	if translation == "" {
		return errors.New("translation cannot be empty")
	}

	item := models.VocabularyItem{
		Vocab:       vocab,
		Translation: translation,
		Article:     optional(cell(row, cols.article)),
		WordType:    optional(strings.ToLower(cell(row, cols.wordType))),
		Context:     optional(cell(row, cols.context)),
	}

	existing, err := im.repo.GetByVocab(ctx, vocab, translation)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if err := im.repo.Create(ctx, &item); err != nil {
			return err
		}
		result.Created++
	case err != nil:
		return err
	default:
		item.ID = existing.ID
		if err := im.repo.Update(ctx, &item); err != nil {
			return err
		}
		result.Updated++
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing notes in parentheses, e.g. "gehen (ging, gegangen)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}
