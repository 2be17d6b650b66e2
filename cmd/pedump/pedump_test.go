package main

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const testSchema = `
stringHeap: 0x20
tables:
  - type: Module
    offset: 0
    rows: 2
    columns:
      - {name: Name, kind: string, width: 2}
      - {name: Entry, kind: ref, width: 2, target: Method, oneBased: true}
  - type: Method
    offset: 0x10
    rows: 1
    columns:
      - {name: Name, kind: ustring, width: 2}
      - {name: Flags, kind: u16}
`

// writeFixture writes a little-endian image and its schema into a temp dir.
func writeFixture(t *testing.T) (imagePath, schemaPath string) {
	t.Helper()
	b := make([]byte, 0x40)
	le := binary.LittleEndian
	le.PutUint16(b[0:], 0)
	le.PutUint16(b[2:], 1)
	le.PutUint16(b[4:], 5)
	le.PutUint16(b[6:], 0)
	le.PutUint16(b[0x10:], 10)
	le.PutUint16(b[0x12:], 0x20)
	copy(b[0x20:], "core\x00util\x00")
	for i, r := range "main" {
		le.PutUint16(b[0x2A+2*i:], uint16(r))
	}

	dir := t.TempDir()
	imagePath = filepath.Join(dir, "image.bin")
	schemaPath = filepath.Join(dir, "tables.yaml")
	if err := os.WriteFile(imagePath, b, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return imagePath, schemaPath
}

func TestInfoCommand(t *testing.T) {
	img, _ := writeFixture(t)

	for _, asJSON := range []bool{false, true} {
		resetFlags()
		jsonOut = asJSON
		output, err := captureOutput(t, func() error { return runInfo([]string{img}) })
		if err != nil {
			t.Fatalf("runInfo() error = %v", err)
		}
		if asJSON {
			assertJSON(t, output)
			assertContains(t, output, []string{`"length": 64`, `"endianness": "little"`})
		} else {
			assertContains(t, output, []string{"Length: 64 bytes", "Endianness: little"})
		}
	}

	resetFlags()
	if _, err := captureOutput(t, func() error { return runInfo([]string{img + ".missing"}) }); err == nil {
		t.Fatal("runInfo() on a missing file succeeded")
	}
}

func TestBytesCommand(t *testing.T) {
	img, _ := writeFixture(t)
	resetFlags()

	output, err := captureOutput(t, func() error { return runBytes([]string{img, "0x20", "4"}) })
	if err != nil {
		t.Fatalf("runBytes() error = %v", err)
	}
	assertContains(t, output, []string{"63 6f 72 65", "|core|"})

	_, err = captureOutput(t, func() error { return runBytes([]string{img, "0x3e", "8"}) })
	if err == nil {
		t.Fatal("runBytes() past the end succeeded")
	}
}

func TestStringCommand(t *testing.T) {
	img, _ := writeFixture(t)

	resetFlags()
	output, err := captureOutput(t, func() error { return runString([]string{img, "0x25"}) })
	if err != nil {
		t.Fatalf("runString() error = %v", err)
	}
	assertContains(t, output, []string{"util"})

	resetFlags()
	stringUnicode = true
	jsonOut = true
	output, err = captureOutput(t, func() error { return runString([]string{img, "0x2a"}) })
	if err != nil {
		t.Fatalf("runString(--unicode) error = %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{`"value": "main"`})
}

func TestTablesCommand(t *testing.T) {
	img, sch := writeFixture(t)

	resetFlags()
	output, err := captureOutput(t, func() error { return runTables(context.Background(), []string{img, sch}) })
	if err != nil {
		t.Fatalf("runTables() error = %v", err)
	}
	assertContains(t, output, []string{
		"Module (2 rows)",
		`Name="core" Entry=Method[0]`,
		`Name="util" Entry=<none>`,
		"Method (1 rows)",
		`Name="main" Flags=32`,
	})

	resetFlags()
	jsonOut = true
	tablesType = "Method"
	output, err = captureOutput(t, func() error { return runTables(context.Background(), []string{img, sch}) })
	if err != nil {
		t.Fatalf("runTables(--json) error = %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{`"type": "Method"`, `"Flags": "32"`})

	resetFlags()
	tablesType = "Field"
	if _, err := captureOutput(t, func() error { return runTables(context.Background(), []string{img, sch}) }); err == nil {
		t.Fatal("runTables(--type Field) succeeded")
	}
}
