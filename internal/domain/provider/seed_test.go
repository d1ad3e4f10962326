package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSeed(t *testing.T) {
	doc := `
providers:
  - name: Dr. Emily Rodriguez
    specialty: Neurology
    email: emily@example.com
    phone: "555-0103"
    availability: ["10:00", "11:30"]
  - name: Dr. James Wilson
    specialty: Internal Medicine
    email: james@example.com
`
	got, err := ParseSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []SeedEntry{
		{Name: "Dr. Emily Rodriguez", Specialty: "Neurology", Email: "emily@example.com", Phone: "555-0103", Availability: []string{"10:00", "11:30"}},
		{Name: "Dr. James Wilson", Specialty: "Internal Medicine", Email: "james@example.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSeed_UnknownField(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("providers:\n  - name: X\n    speciality: typo\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseSeed_Empty(t *testing.T) {
	got, err := ParseSeed(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestLoadSeedFile_Repository(t *testing.T) {
	entries, err := LoadSeedFile(filepath.Join("..", "..", "..", "seed", "providers.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected bundled seed file to list providers")
	}
	if err := validateSeed(entries); err != nil {
		t.Errorf("bundled seed file is invalid: %v", err)
	}
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !os.IsNotExist(unwrapAll(err)) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}
