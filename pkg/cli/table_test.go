package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableOutput(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, "NEIGHBOR", "STATE")
	table.Row("10.0.2.1", "Established")
	table.Row("192.168.11.1", "Active")
	table.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want headers + divider + 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NEIGHBOR") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "--------") {
		t.Errorf("divider line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "10.0.2.1") || !strings.Contains(lines[2], "Established") {
		t.Errorf("row line = %q", lines[2])
	}
}

func TestTableEmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, "NEIGHBOR", "STATE")
	table.Flush()

	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTableWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, "K", "V").WithPrefix("  ")
	table.Row("a", "b")
	table.Flush()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
	}
}
