package common

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, 3, Coalesce(3))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"TEXCOORD_0", "TEXCOORD_1"}, SortedKeys(map[string]bool{"TEXCOORD_1": true, "TEXCOORD_0": true}))
	assert.Nil(t, SortedKeys(map[int]string{}))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 4))
	assert.Equal(t, 4, AlignUp(1, 4))
	assert.Equal(t, 4, AlignUp(4, 4))
	assert.Equal(t, 8, AlignUp(6, 4))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint16{}))
	b := SliceToBytes([]uint16{1, 2, 3})
	assert.Len(t, b, 6)
}

func TestBounds(t *testing.T) {
	lo, hi := Bounds(nil)
	assert.Equal(t, mgl32.Vec3{}, lo)
	assert.Equal(t, mgl32.Vec3{}, hi)

	lo, hi = Bounds([]mgl32.Vec3{{1, -2, 3}, {-1, 5, 0}})
	assert.Equal(t, mgl32.Vec3{-1, -2, 0}, lo)
	assert.Equal(t, mgl32.Vec3{1, 5, 3}, hi)
}

func TestImportedTextureDecode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 255})

	path := filepath.Join(t.TempDir(), "diffuse.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	tex := &ImportedTexture{Name: "diffuse", Path: path}
	staged, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staged.Width)
	assert.Equal(t, uint32(1), staged.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, staged.Pixels)
	assert.Equal(t, 2, tex.Width)

	_, err = (&ImportedTexture{Name: "embedded"}).Decode()
	assert.ErrorContains(t, err, `texture "embedded" has no path`)

	_, err = (&ImportedTexture{Path: filepath.Join(t.TempDir(), "missing.png")}).Decode()
	assert.ErrorIs(t, err, os.ErrNotExist)

	var nilTex *ImportedTexture
	_, err = nilTex.Decode()
	assert.Error(t, err)
}
