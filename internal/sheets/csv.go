package sheets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/brandpulse/sheetfeed/internal/models"
)

// ParsedTab is one tab's content after header detection and row typing.
type ParsedTab struct {
	Headers []string
	Rows    []models.SheetRow
	// Skipped counts records dropped as blank data rows, for parse-quality
	// reporting. Pre-header noise rows are not counted.
	Skipped int
}

// headerScanWindow bounds how deep into a tab we look for a header row.
const headerScanWindow = 10

// minHeaderFields is the least non-blank fields a record needs to be
// taken as the header row; title and spacer rows never reach it.
const minHeaderFields = 3

var (
	numericRe  = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)$`)
	currencyRe = regexp.MustCompile(`[₹$€£,%\s]`)
)

// parseRecords runs a single-pass two-state machine over raw delimited
// text. Doubled quotes inside a quoted field become a literal quote;
// commas, CR and LF inside quotes are content; \r\n, \n and a lone \r all
// terminate a record; the final record needs no terminator. Records whose
// every field is blank are dropped. Malformed quoting never errors: an
// unterminated quote consumes the rest of the input as field content.
func parseRecords(text string) [][]string {
	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(text)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		for _, f := range fields {
			if strings.TrimSpace(f) != "" {
				records = append(records, fields)
				break
			}
		}
		fields = nil
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteRune(c)
			}
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',':
			endField()
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			field.WriteRune(c)
		}
	}
	if field.Len() > 0 || len(fields) > 0 {
		endRecord()
	}
	return records
}

// Parse converts raw delimited text into a header list and typed rows.
// The header is the first record within the scan window having at least
// minHeaderFields non-blank fields; everything before it is noise. No
// header found means an empty tab, not an error.
func Parse(text string) ParsedTab {
	records := parseRecords(text)

	headerIdx := -1
	for i := 0; i < len(records) && i < headerScanWindow; i++ {
		if countNonBlank(records[i]) >= minHeaderFields {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return ParsedTab{}
	}

	headers := records[headerIdx]
	out := ParsedTab{Headers: headers}
	for _, rec := range records[headerIdx+1:] {
		row := materializeRow(headers, rec)
		if row == nil {
			out.Skipped++
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// materializeRow types one record against the header row. Short rows are
// fine: positions past the record's end simply read as absent. Rows with
// fewer than 2 non-blank values are blank data rows and return nil.
func materializeRow(headers []string, rec []string) models.SheetRow {
	row := models.SheetRow{}
	filled := 0
	for i, h := range headers {
		if strings.TrimSpace(h) == "" || i >= len(rec) {
			continue
		}
		raw := rec[i]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if isDateHeader(h) {
			row[h] = trimmed
			filled++
			continue
		}
		if f, ok := coerceNumeric(trimmed); ok {
			row[h] = f
		} else {
			row[h] = raw
		}
		filled++
	}
	if filled < 2 {
		return nil
	}
	return row
}

// isDateHeader matches the date-indicator vocabulary; values under these
// headers are never numerically coerced.
func isDateHeader(h string) bool {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Contains(h, "date") || h == "month" || h == "day"
}

// coerceNumeric strips currency and comma punctuation and parses the rest
// as a signed decimal. "₹1,234.50" comes back as 1234.5.
func coerceNumeric(s string) (float64, bool) {
	cleaned := currencyRe.ReplaceAllString(s, "")
	if cleaned == "" || !numericRe.MatchString(cleaned) {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func countNonBlank(fields []string) int {
	n := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return n
}
