package pix

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReference = "00020126360014BR.GOV.BCB.PIX0114+5511999999999520400005303986540569.905802BR5925TESTE6009SAO PAULO62070503***6304ABCD"

func TestClampSize(t *testing.T) {
	assert.Equal(t, DefaultSize, ClampSize(0))
	assert.Equal(t, MinSize, ClampSize(10))
	assert.Equal(t, MinSize, ClampSize(-5))
	assert.Equal(t, 300, ClampSize(300))
	assert.Equal(t, MaxSize, ClampSize(5000))
}

func TestQRCode(t *testing.T) {
	data, err := QRCode(sampleReference, 300)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestQRCode_EmptyReference(t *testing.T) {
	_, err := QRCode("  ", 0)
	assert.ErrorIs(t, err, ErrNoReference)
}
