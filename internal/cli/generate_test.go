package cli

import (
	"strings"
	"testing"

	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/errors"
	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/manifest"
	"github.com/pdkit/libmerge/pkg/pipeline"
)

func TestOutputVariant(t *testing.T) {
	tests := []struct {
		name     string
		ccsnoise bool
		leakage  bool
		want     liberty.TimingType
	}{
		{name: "default is basic", want: liberty.Basic},
		{name: "ccsnoise flag", ccsnoise: true, want: liberty.CCSNoise},
		{name: "leakage flag", leakage: true, want: liberty.Leakage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputVariant(tt.ccsnoise, tt.leakage); got != tt.want {
				t.Errorf("outputVariant(%v, %v) = %v, want %v", tt.ccsnoise, tt.leakage, got, tt.want)
			}
		})
	}
}

func TestPrintResult(t *testing.T) {
	written := pipeline.CornerOutput{
		Corner: "ff_100C_1v65",
		Input:  liberty.CCSNoise,
		Output: liberty.Basic,
		Path:   "lib/timing/lib__ff_100C_1v65.lib",
		Cells:  3,
		Size:   2048,
	}
	failure := pipeline.Failure{
		Corner:       "nope",
		Code:         errors.ErrCodeUnknownCorner,
		Message:      "unknown corner nope",
		Alternatives: []string{"ff_100C_1v65"},
	}

	t.Run("all written", func(t *testing.T) {
		err := printResult(&pipeline.Result{Written: []pipeline.CornerOutput{written}})
		if err != nil {
			t.Errorf("printResult() = %v, want nil", err)
		}
	})

	t.Run("partial failure exits non-zero", func(t *testing.T) {
		err := printResult(&pipeline.Result{
			Written:  []pipeline.CornerOutput{written},
			Failures: []pipeline.Failure{failure},
		})
		if err == nil {
			t.Fatal("printResult() should return an error when corners failed")
		}
		if !strings.Contains(err.Error(), "1 of 2") {
			t.Errorf("error %q should count the failed corners", err)
		}
	})

	t.Run("nothing requested", func(t *testing.T) {
		if err := printResult(&pipeline.Result{}); err != nil {
			t.Errorf("printResult() = %v, want nil for an empty run", err)
		}
	})
}

func TestCornerListing(t *testing.T) {
	lib := &corners.Library{
		Name: "sky130_fd_sc_hd",
		Corners: map[string]liberty.TimingType{
			"ff_100C_1v65": liberty.CCSNoise,
			"ss_n40C_1v28": liberty.Basic,
		},
		Cells: []string{"buf_1", "inv_2"},
	}
	man := &manifest.Manifest{
		Corners: map[string]manifest.CornerInfo{
			"ss_n40C_1v28": {Description: "slow-slow, -40C, 1.28V"},
		},
	}

	out := cornerListing(lib, man)

	for _, want := range []string{
		"sky130_fd_sc_hd",
		"2 corners",
		"2 cells",
		"ff_100C_1v65",
		"basic, ccsnoise",
		"(with ccsnoise)",
		"ss_n40C_1v28",
		"slow-slow, -40C, 1.28V",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing should contain %q:\n%s", want, out)
		}
	}

	ff := strings.Index(out, "ff_100C_1v65")
	ss := strings.Index(out, "ss_n40C_1v28")
	if ff > ss {
		t.Error("listing should be sorted by corner name")
	}
}
