package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samuelfneumann/gopac/layout"
)

func TestTextUpdateRendersBoard(t *testing.T) {
	var buf bytes.Buffer
	d := NewText(&buf)

	if err := d.Update(layout.SmallGrid().Game()); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"%%%%%%%",
		"%.   G%",
		"% %%% %",
		"%  P  %",
		"% %%% %",
		"%.   .%",
		"%%%%%%%",
		"Score: 0",
		"",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("wrong rendering:\n%v", buf.String())
	}
}

func TestTextFinishReportsOutcome(t *testing.T) {
	var buf bytes.Buffer
	d := NewText(&buf)

	if err := d.Finish(layout.SmallGrid().Game()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Final score") {
		t.Errorf("outcome not reported: %q", buf.String())
	}
}

func TestNullDisplayDoesNothing(t *testing.T) {
	d := NewNull()
	s := layout.SmallGrid().Game()
	if err := d.Update(s); err != nil {
		t.Error(err)
	}
	if err := d.Finish(s); err != nil {
		t.Error(err)
	}
}
