package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"churn-prediction-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// ColumnCustomerID is the optional identifier column.
const ColumnCustomerID = "CustomerId"

// ColumnAliases maps normalized header names (lower case, no spaces or
// underscores) to input field names. Unlisted columns such as Surname or
// Exited are ignored.
var ColumnAliases = map[string]string{
	"customerid": ColumnCustomerID,
	"customer":   ColumnCustomerID,
	"clientid":   ColumnCustomerID,

	"creditscore": models.FieldCreditScore,
	"score":       models.FieldCreditScore,

	"age": models.FieldAge,

	"tenure":      models.FieldTenure,
	"tenureyears": models.FieldTenure,

	"balance":        models.FieldBalance,
	"accountbalance": models.FieldBalance,

	"numofproducts":  models.FieldNumOfProducts,
	"numproducts":    models.FieldNumOfProducts,
	"productsnumber": models.FieldNumOfProducts,
	"products":       models.FieldNumOfProducts,

	"estimatedsalary": models.FieldEstimatedSalary,
	"salary":          models.FieldEstimatedSalary,

	"hascrcard":     models.FieldHasCrCard,
	"hascreditcard": models.FieldHasCrCard,
	"creditcard":    models.FieldHasCrCard,

	"isactivemember": models.FieldIsActiveMember,
	"activemember":   models.FieldIsActiveMember,
	"active":         models.FieldIsActiveMember,

	"gender": models.FieldGender,
	"sex":    models.FieldGender,
}

// integerFields are parsed with Atoi downstream; "2.0" is accepted here.
var integerFields = map[string]bool{
	models.FieldNumOfProducts:  true,
	models.FieldHasCrCard:      true,
	models.FieldIsActiveMember: true,
}

// CustomerRow is one data row keyed by input field name.
type CustomerRow struct {
	Line       int
	CustomerID string
	Fields     map[string]string
}

// CSVParser handles parsing of customer CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseCustomers parses CSV content into rows of prediction fields. Values
// are cleaned but not validated; the predictor reports bad values per row.
func (p *CSVParser) ParseCustomers(content string) ([]CustomerRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	// Build column mapping
	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var rows []CustomerRow
	var parseErrors []error

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError already carries the line number
			parseErrors = append(parseErrors, err)
			continue
		}
		if isBlank(record) {
			continue
		}

		// The reader skips empty lines, so ask it for the real line.
		lineNum, _ := reader.FieldPos(0)

		row, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		row.Line = lineNum
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

// NormalizeHeader lower-cases a header and strips spaces, underscores and dashes.
func NormalizeHeader(col string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(col)))
}

// buildColumnMapping creates a mapping of field names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		field, ok := ColumnAliases[NormalizeHeader(strings.TrimPrefix(col, "\ufeff"))]
		if !ok {
			continue
		}
		// First matching column wins
		if _, seen := p.columnMapping[field]; !seen {
			p.columnMapping[field] = i
		}
	}

	// Check for required columns
	var missing []string
	for _, required := range models.InputFields() {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow extracts the mapped columns of a single CSV row.
func (p *CSVParser) parseRow(record []string) (CustomerRow, error) {
	row := CustomerRow{Fields: make(map[string]string, len(models.InputFields()))}

	for field, idx := range p.columnMapping {
		if idx >= len(record) {
			if field == ColumnCustomerID {
				continue
			}
			return CustomerRow{}, fmt.Errorf("column %s index out of range", field)
		}

		value := strings.TrimSpace(record[idx])
		if field == ColumnCustomerID {
			row.CustomerID = value
			continue
		}
		if field != models.FieldGender {
			value = cleanNumber(value, integerFields[field])
		}
		row.Fields[field] = value
	}

	return row, nil
}

// cleanNumber removes thousands separators and currency symbols. Integral
// floats are rewritten as integers for integer fields.
func cleanNumber(s string, integer bool) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)

	if integer && strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return s
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
