package catalog

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTestHolder(t *testing.T) *Holder {
	t.Helper()
	h, err := NewHolder("", zap.NewNop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	return h
}

func TestDefaultCatalogIsValid(t *testing.T) {
	if err := validateCatalog(Default()); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
}

func TestGetPackage(t *testing.T) {
	h := newTestHolder(t)

	pkg, err := h.GetPackage("auto-2")
	if err != nil {
		t.Fatalf("get auto-2: %v", err)
	}
	if pkg.Price != 129900 {
		t.Fatalf("auto-2 price = %d, want 129900", pkg.Price)
	}
	if !pkg.Recommended {
		t.Fatalf("auto-2 should be recommended")
	}

	if _, err := h.GetPackage("auto-9"); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("unknown package error = %v, want ErrPackageNotFound", err)
	}
}

func TestListExcludesHiddenPackages(t *testing.T) {
	h := newTestHolder(t)
	for _, p := range h.List() {
		if p.ID == "test-pkg" {
			t.Fatalf("test-pkg should be hidden from the public listing")
		}
	}
	if got := len(h.List()); got != 6 {
		t.Fatalf("public packages = %d, want 6", got)
	}
}

func TestIsUploadRequired(t *testing.T) {
	h := newTestHolder(t)

	cases := []struct {
		pkg  string
		want bool
	}{
		{"auto-1", false},
		{"auto-2", true},
		{"auto-3", true},
		{"lease-1", true},
		{"lease-2", true},
		{"lease-3", true},
		{"test-pkg", true},
	}
	for _, tt := range cases {
		got, err := h.IsUploadRequired(tt.pkg)
		if err != nil {
			t.Fatalf("IsUploadRequired(%q): %v", tt.pkg, err)
		}
		if got != tt.want {
			t.Fatalf("IsUploadRequired(%q) = %v, want %v", tt.pkg, got, tt.want)
		}
	}

	if _, err := h.IsUploadRequired("nope"); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("unknown package error = %v, want ErrPackageNotFound", err)
	}
}

func TestEveryPackageHasRequirements(t *testing.T) {
	h := newTestHolder(t)
	for _, p := range h.snapshot().Packages {
		reqs, err := h.GetRequirements(p.ID)
		if err != nil {
			t.Fatalf("requirements for %q: %v", p.ID, err)
		}
		if reqs.SkipUpload && len(reqs.Documents) > 0 {
			t.Fatalf("%q skips upload but lists documents", p.ID)
		}
	}
}

func TestExtraRequiredDocumentsExistInRequirementSet(t *testing.T) {
	h := newTestHolder(t)
	for pkgID, docIDs := range extraRequiredDocuments {
		reqs, err := h.GetRequirements(pkgID)
		if err != nil {
			t.Fatalf("requirements for %q: %v", pkgID, err)
		}
		known := make(map[string]bool, len(reqs.Documents))
		for _, d := range reqs.Documents {
			known[d.ID] = true
		}
		for _, id := range docIDs {
			if !known[id] {
				t.Fatalf("extra required doc %q not declared for %q", id, pkgID)
			}
		}
	}
}
