package render

import (
	"context"
	"testing"

	"github.com/matzehuels/stainedglass/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10"><rect width="10" height="10" fill="#e25b73"/></svg>`

func TestToPNGInvalidScale(t *testing.T) {
	_, err := ToPNG(context.Background(), []byte(tinySVG), 0)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ToPNG(scale=0) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestToPDF(t *testing.T) {
	if !Available() {
		_, err := ToPDF(context.Background(), []byte(tinySVG))
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ToPDF() without rsvg-convert error = %v, want %s", err, errors.ErrCodeUnsupported)
		}
		t.Skip("rsvg-convert not installed")
	}

	pdf, err := ToPDF(context.Background(), []byte(tinySVG))
	if err != nil {
		t.Fatalf("ToPDF() error = %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Errorf("ToPDF() output does not start with %%PDF")
	}
}
