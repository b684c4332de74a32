package dataloader

import (
	"errors"
	"testing"
)

func TestParseTable(t *testing.T) {
	text := `id,location,purchase_amount
1,Texas,50
2,Ohio,12.75`

	table, err := ParseTable(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHeaders := []string{"id", "location", "purchase_amount"}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("got %d headers, want %d", len(table.Headers), len(wantHeaders))
	}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, table.Headers[i], h)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0]["id"] != "1" || table.Rows[0]["location"] != "Texas" {
		t.Errorf("row 0 mismatch: %v", table.Rows[0])
	}
	if table.Rows[1]["purchase_amount"] != "12.75" {
		t.Errorf("row 1 amount = %q, want 12.75", table.Rows[1]["purchase_amount"])
	}
}

func TestParseTableShortLine(t *testing.T) {
	table, err := ParseTable("a,b,c\n1,2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := table.Rows[0]
	if row["a"] != "1" || row["b"] != "2" {
		t.Errorf("row = %v, want a=1 b=2", row)
	}
	if _, present := row["c"]; present {
		t.Errorf("key c should be absent on a short line, got %q", row["c"])
	}
}

func TestParseTableExtraFields(t *testing.T) {
	table, err := ParseTable("a,b\n1,2,3,4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := table.Rows[0]
	if len(row) != 2 || row["a"] != "1" || row["b"] != "2" {
		t.Errorf("extra fields should be dropped, got %v", row)
	}
}

func TestParseTableEmptyInput(t *testing.T) {
	for _, text := range []string{"", "\n", "\r\n", "\n\n  \n"} {
		_, err := ParseTable(text)
		var emptyErr *EmptyInputError
		if !errors.As(err, &emptyErr) {
			t.Errorf("ParseTable(%q) error = %v, want EmptyInputError", text, err)
		}
	}
}

func TestParseTableHeaderOnly(t *testing.T) {
	table, err := ParseTable("id,location\n")
	if err != nil {
		t.Fatalf("header-only input should parse, got %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(table.Rows))
	}
}

func TestParseTableNoQuoting(t *testing.T) {
	// A quoted field is not special: the comma inside still splits
	table, err := ParseTable("a,b\n\"x,y\",z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := table.Rows[0]
	if row["a"] != "\"x" || row["b"] != "y\"" {
		t.Errorf("quoting must not be interpreted, got %v", row)
	}
}

func TestParseTableCRLFAndPadding(t *testing.T) {
	table, err := ParseTable(" id , location \r\n1,Texas\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Headers[0] != "id" || table.Headers[1] != "location" {
		t.Errorf("headers not trimmed: %v", table.Headers)
	}
	if table.Rows[0]["id"] != "1" {
		t.Errorf("row = %v", table.Rows[0])
	}
}
