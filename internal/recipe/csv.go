package recipe

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"comida-a-casa/internal/apperr"
)

// Column names of the import format.
const (
	ColumnName        = "nombre"
	ColumnIngredients = "ingredientes"
	ColumnCategory    = "categoría"
)

// MissingColumnsMessage is shown when the header lacks a required column.
const MissingColumnsMessage = `El CSV debe tener las columnas "nombre" e "ingredientes".`

const bom = "\ufeff"

// ParseCSV reads recipes from comma separated text with a header row.
//
// The first non-empty line is the header. Rows missing a name or the
// ingredients are skipped. Input with no data rows yields an empty slice.
func ParseCSV(r io.Reader) ([]Draft, error) {
	body, err := skipBlankLines(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.MalformedInput, "recipe.csv", "No se pudo leer el archivo CSV.", err)
	}

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Draft{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.MalformedInput, "recipe.csv", "El archivo CSV no es válido.", err)
	}

	nameIdx, ingredientsIdx, categoryIdx := -1, -1, -1
	for i, cell := range header {
		switch normalizeHeader(cell) {
		case ColumnName:
			nameIdx = i
		case ColumnIngredients:
			ingredientsIdx = i
		case ColumnCategory, "categoria":
			categoryIdx = i
		}
	}
	if nameIdx < 0 || ingredientsIdx < 0 {
		return nil, &apperr.Error{
			Kind:    apperr.MalformedInput,
			Op:      "recipe.csv",
			Message: MissingColumnsMessage,
			Err:     errors.New("missing required column"),
		}
	}

	drafts := []Draft{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.MalformedInput, "recipe.csv", "El archivo CSV no es válido.", err)
		}

		name := field(record, nameIdx)
		ingredients := field(record, ingredientsIdx)
		if name == "" || ingredients == "" {
			continue
		}
		drafts = append(drafts, Draft{
			Name:        name,
			Ingredients: ingredients,
			Category:    ParseCategory(field(record, categoryIdx)),
		})
	}
	return drafts, nil
}

// skipBlankLines drops the BOM and leading blank lines so the csv
// reader sees the header first.
func skipBlankLines(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	var skipped int
	for {
		line, err := br.ReadString('\n')
		if skipped == 0 {
			line = strings.TrimPrefix(line, bom)
		}
		skipped++
		if strings.TrimSpace(line) != "" {
			return io.MultiReader(strings.NewReader(line), br), nil
		}
		if errors.Is(err, io.EOF) {
			return strings.NewReader(""), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func normalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, bom)
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, `"'`)
	return strings.ToLower(strings.TrimSpace(cell))
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
