package pagination_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/estate/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 10, MaxPageSize: 100}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")
	t.Setenv("TEST_MAX_PAGE", "200")

	env := &pagination.Env{
		DefaultPageSize: "TEST_PAGE_SIZE",
		MaxPageSize:     "TEST_MAX_PAGE",
	}

	cfg := pagination.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 50 {
		t.Errorf("DefaultPageSize = %d, want 50", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 200 {
		t.Errorf("MaxPageSize = %d, want 200", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot exceed max_page_size") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := pagination.Config{DefaultPageSize: 10, MaxPageSize: 100}
	base.Merge(&pagination.Config{MaxPageSize: 500})

	if base.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10", base.DefaultPageSize)
	}
	if base.MaxPageSize != 500 {
		t.Errorf("MaxPageSize = %d, want 500", base.MaxPageSize)
	}
}

func TestRangeFromQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
	}{
		{"explicit window", "_start=0&_end=2", 0, 2},
		{"offset window", "_start=20&_end=30", 20, 10},
		{"missing values use default size", "", 0, 10},
		{"inverted window uses default size", "_start=5&_end=1", 5, 10},
		{"negative start clamps to zero", "_start=-4&_end=3", 0, 3},
		{"oversized window clamps to max", "_start=0&_end=1000", 0, 100},
		{"garbage values", "_start=abc&_end=xyz", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			r := pagination.RangeFromQuery(values, defaultConfig())

			if r.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", r.Offset(), tt.wantOffset)
			}
			if r.Limit() != tt.wantLimit {
				t.Errorf("Limit() = %d, want %d", r.Limit(), tt.wantLimit)
			}
		})
	}
}

func TestRangeFromQuerySort(t *testing.T) {
	values := url.Values{"_sort": {"price"}, "_order": {"desc"}}
	r := pagination.RangeFromQuery(values, defaultConfig())

	if len(r.Sort) != 1 {
		t.Fatalf("len(Sort) = %d, want 1", len(r.Sort))
	}
	if r.Sort[0].Field != "price" || !r.Sort[0].Descending {
		t.Errorf("Sort[0] = %+v, want price desc", r.Sort[0])
	}
}

func TestNewResultNilData(t *testing.T) {
	r := pagination.NewResult[string](nil, 0)
	if r.Data == nil {
		t.Error("Data = nil, want empty slice")
	}
}
