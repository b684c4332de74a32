package dataloader

import (
	"fmt"
	"strings"
)

// Record maps header names to the field values of one line. Fields missing
// from a short line are absent from the map, not empty strings.
type Record map[string]string

// Table is parsed delimited text: the trimmed header row plus one Record
// per data line.
type Table struct {
	Headers []string
	Rows    []Record
}

// EmptyInputError reports input text with no parsable lines at all.
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	if e.Source == "" {
		return "empty input: no parsable lines"
	}
	return fmt.Sprintf("empty input: no parsable lines in %s", e.Source)
}

// ParseTable splits raw delimited text into header-keyed records. The first
// non-empty line is the header row, comma-split and trimmed; every later
// line is comma-split positionally and zipped against the header names.
// There is no quoting and no escaping: a comma always separates fields.
// Lines with fewer fields than headers leave the trailing keys absent;
// extra fields are dropped. Column consistency across rows is not checked.
func ParseTable(text string) (*Table, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, &EmptyInputError{}
	}

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	table := &Table{Headers: headers}
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		row := make(Record, len(headers))
		for i, h := range headers {
			if i >= len(fields) {
				break
			}
			row[h] = fields[i]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
