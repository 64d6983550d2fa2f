package repair_test

import (
	"strings"
	"testing"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/repair"
)

func TestReportStringFill(t *testing.T) {
	res := repair.NewOps(kernel.Capabilities{}).FillHoles(mustTube(t, 8), repair.FillOptions{
		Strategy: repair.FillSuite,
	})
	s := res.Report.String()
	for _, want := range []string{
		"Hole Fill",
		"vertices: 16 -> 16",
		"faces:    16 -> 28",
		"strategy: suite -> library",
		"loops: 2 found, 2 closed, 0 skipped",
		"faces added: +12",
		"watertight: no -> yes",
		"fallback: suite -> library (toolkit capability unavailable)",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Report.String() missing %q:\n%s", want, s)
		}
	}
}

func TestReportStringCheck(t *testing.T) {
	res := repair.NewOps(kernel.Capabilities{}).CheckNormals(mustCube(t))
	s := res.Report.String()
	for _, want := range []string{
		"Normal Consistency Check",
		"winding consistent: yes",
		"watertight: yes",
		"degenerate faces: 0 (0.0%)",
		"mean normal length: 1.0000",
		"note: normals look consistent",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Report.String() missing %q:\n%s", want, s)
		}
	}
}

func TestStatusString(t *testing.T) {
	cases := []struct {
		status repair.Status
		want   string
	}{
		{repair.StatusSuccess, "success"},
		{repair.StatusDegraded, "degraded"},
		{repair.StatusFailed, "failed"},
		{repair.Status(9), "Status(9)"},
	}
	for _, tc := range cases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status.String() = %q, want %q", got, tc.want)
		}
	}
}
