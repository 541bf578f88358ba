package render

import (
	"bytes"
	"image/gif"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCapturesUntilLimit(t *testing.T) {
	r := NewRecorder(nil, 28, 14, 3, 50*time.Millisecond)
	w, h := r.Viewport()
	r.SetSize(w, h)
	r.SetFillColor(glyphColor)
	r.SetFontSize(14)

	for i := 0; i < 3; i++ {
		r.FillText("1", 0, 14)
		require.NoError(t, r.Flush())
	}

	select {
	case <-r.Done():
	default:
		t.Fatal("recorder should be done after reaching its limit")
	}

	require.NoError(t, r.Flush())
	assert.Equal(t, 3, r.Len())

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))
	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, []int{5, 5, 5}, anim.Delay)
	assert.Equal(t, 28, anim.Config.Width)
	assert.Equal(t, 14, anim.Config.Height)
}

func TestRecorderEncodeWithoutFrames(t *testing.T) {
	r := NewRecorder(nil, 28, 14, 1, 0)
	assert.Error(t, r.Encode(&bytes.Buffer{}))
}
