package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewQRCodePNG(t *testing.T) {
	data, err := PreviewQRCodePNG("http://127.0.0.1:8080/", 128)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	_, err = PreviewQRCodePNG("", 128)
	assert.Error(t, err)
}

func TestViewportSet(t *testing.T) {
	v := NewViewport(140, 100)
	assert.False(t, v.Set(140, 100))
	assert.True(t, v.Set(84, 100))
	w, h := v.Size()
	assert.Equal(t, 84, w)
	assert.Equal(t, 100, h)
}
