package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStorageImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"biomassoutput/internal/blob", true},
		{"biomassoutput/internal/blob/core", true},
		{"biomassoutput/internal/persistence", true},
		{"biomassoutput/internal/infra/blob/s3", true},
		{"biomassoutput/internal/blobby", false},
		{"biomassoutput/internal/biomass", false},
		{"biomassoutput/pkg/hostapi", false},
	}
	for _, c := range cases {
		if got := StorageImportForbidden(c.in); got != c.want {
			t.Fatalf("StorageImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"example.com/mod/internal/x", true},
		{"example.com/mod/pkg/x", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func writeSource(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.go", "package tmp\nimport (\n\t\"fmt\"\n\t\"biomassoutput/internal/blob\"\n)\nvar _ = fmt.Sprint\nvar _ blob.Store\n")
	writeSource(t, dir, "a_test.go", "package tmp\nimport \"biomassoutput/internal/persistence\"\nvar _ persistence.Store\n")
	writeSource(t, dir, "notes.txt", "import \"biomassoutput/internal/infra\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeSource(t, filepath.Join(dir, "sub"), "b.go", "package sub\nimport \"biomassoutput/internal/persistence\"\n")

	viols, err := directImportViolations(dir, StorageImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "biomassoutput/internal/blob (in a.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), StorageImportForbidden); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "x.go", "package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	AssertNoDirectImports(t, dir, StorageImportForbidden, "none")
}

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = format }

func TestFailHelpersReportViolations(t *testing.T) {
	var rec recordingFatal
	failIfDirectViolations(&rec, "reason", nil)
	if rec.msg != "" {
		t.Fatalf("no violations must not fail")
	}
	failIfDirectViolations(&rec, "reason", []string{"x"})
	if rec.msg == "" {
		t.Fatalf("expected direct failure")
	}
	rec = recordingFatal{}
	failIfTransitiveViolations(&rec, "reason", []string{"x"})
	if rec.msg == "" {
		t.Fatalf("expected transitive failure")
	}
}

func TestTransitiveDependencyViolationsUsesGoList(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nbiomassoutput/pkg/hostapi\nbiomassoutput/internal/blob\n\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", InternalImportForbidden)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "biomassoutput/internal/blob" {
		t.Fatalf("unexpected violations %v", viols)
	}
}
