// Package loader reads the property dataset that backs the catalog.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Operation values a property can be listed under.
const (
	OperationVenta    = "venta"
	OperationAlquiler = "alquiler"
)

// Property is a single catalog listing. Prices are normalized to ARS at load
// time so all comparisons are unit-consistent.
type Property struct {
	ID         string  `json:"id"`
	Operacion  string  `json:"operacion"`
	Zona       string  `json:"zona"`
	Precio     float64 `json:"precio"`
	Titulo     string  `json:"titulo"`
	Link       string  `json:"link,omitempty"`
	Disponible bool    `json:"disponible"`
}

// usdToARS is the fixed conversion applied to USD-priced rows.
const usdToARS = 1000

// LoadCSV reads properties from the Zonaprop-style dataset at path.
// Rows with an unrecognized operation, an empty zone, or an unparseable price
// are dropped rather than failing the load.
func LoadCSV(path string) ([]Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) ([]Property, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := indexColumns(header)

	var properties []Property
	for idx := 0; ; idx++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows, keep the rest of the file.
			continue
		}

		prop, ok := parseRow(cols, row, idx)
		if !ok {
			continue
		}
		properties = append(properties, prop)
	}

	return properties, nil
}

type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func (c columnIndex) get(row []string, names ...string) string {
	for _, name := range names {
		i, ok := c[name]
		if !ok || i >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[i]); value != "" {
			return value
		}
	}
	return ""
}

func parseRow(cols columnIndex, row []string, idx int) (Property, bool) {
	operacion, ok := parseOperacion(cols.get(row, "Operacion"))
	if !ok {
		return Property{}, false
	}

	zona := cols.get(row, "Zona3", "Zona2", "Zona")
	if zona == "" {
		return Property{}, false
	}

	precio, ok := parsePrecio(cols.get(row, "Precio"))
	if !ok {
		return Property{}, false
	}

	if strings.EqualFold(cols.get(row, "Currency"), "USD") || cols.get(row, "Currency") == "" {
		precio *= usdToARS
	}

	titulo := cols.get(row, "generatedTitle", "Title")
	if titulo == "" {
		titulo = "Sin título"
	}

	return Property{
		ID:         fmt.Sprintf("ZP-%06d", idx),
		Operacion:  operacion,
		Zona:       zona,
		Precio:     precio,
		Titulo:     titulo,
		Link:       cols.get(row, "url"),
		Disponible: true,
	}, true
}

func parseOperacion(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case OperationVenta:
		return OperationVenta, true
	case OperationAlquiler:
		return OperationAlquiler, true
	default:
		return "", false
	}
}

// parsePrecio strips everything but digits ("USD 120.000" -> 120000).
func parsePrecio(raw string) (float64, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
