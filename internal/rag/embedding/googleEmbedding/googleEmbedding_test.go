package googleEmbedding

import "testing"

func TestCheckDimension(t *testing.T) {
	c := &client{dimension: 3}

	if err := c.checkDimension([]float32{0.1, 0.2, 0.3}); err != nil {
		t.Errorf("matching dimension rejected: %v", err)
	}
	if err := c.checkDimension([]float32{0.1, 0.2}); err == nil {
		t.Error("short vector accepted")
	}
	if err := c.checkDimension(nil); err == nil {
		t.Error("empty vector accepted")
	}
}
