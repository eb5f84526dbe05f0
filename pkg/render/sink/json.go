package sink

import "github.com/matzehuels/stainedglass/pkg/mosaic"

// RenderJSON serializes the mosaic, geometry and drawn attributes included,
// for external renderers.
func RenderJSON(m mosaic.Mosaic) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return mosaic.Marshal(m)
}
