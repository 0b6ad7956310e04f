package progress

import (
	"strings"
	"testing"
	"time"
)

func TestGetProgressBar(t *testing.T) {
	cases := map[int]string{
		0:   ">----------",
		50:  "=====>-----",
		100: "==========>",
		150: "==========>",
	}
	for p, want := range cases {
		if got := GetProgressBar(p, 10); got != want {
			t.Fatalf("progress %d: got=%q want=%q", p, got, want)
		}
	}
	if got := len(GetProgressBar(10, 0)); got != 51 {
		t.Fatalf("default width mismatch: got=%d", got)
	}
}

func TestPercent(t *testing.T) {
	if Percent(0, 0) != 100 || Percent(5, 10) != 50 || Percent(20, 10) != 100 {
		t.Fatalf("percent mismatch")
	}
}

func TestLine(t *testing.T) {
	got := Line(512, 1024, 3, 2500*time.Millisecond)
	if !strings.Contains(got, "50% (512/1024) found=3 2s") {
		t.Fatalf("line mismatch: %q", got)
	}
}
