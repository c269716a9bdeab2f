package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = fmt.Sprintf(format, v...) })
	Logf("strategy=%s", "zip")
	if got != "strategy=zip" {
		t.Fatalf("got %q", got)
	}

	SetLogger(nil)
	Logf("ignored %d", 1) // must not panic
	if got != "strategy=zip" {
		t.Fatalf("muted logger still wrote: %q", got)
	}
}
