package buffer_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"

	"github.com/lodestar-engine/lodestar/buffer"
)

type textureName int

const (
	bird textureName = iota
	depth
)

type imageCopy struct {
	src           int
	dst           int
	width, height uint32
}

// countingImageAllocator hands out sequential image handles and records
// every create, free and copy.
type countingImageAllocator struct {
	next     int
	created  int
	freed    int
	live     map[int]bool
	copies   []imageCopy
	allocErr error
}

func newCountingImageAllocator() *countingImageAllocator {
	return &countingImageAllocator{live: map[int]bool{}}
}

func (a *countingImageAllocator) AllocateImage(width, height uint32, format buffer.Format, usage buffer.Usage, props buffer.MemoryProps) (int, error) {
	if a.allocErr != nil {
		return 0, a.allocErr
	}
	a.next++
	a.created++
	a.live[a.next] = true
	return a.next, nil
}

func (a *countingImageAllocator) FreeImage(img int) {
	if !a.live[img] {
		panic("double free")
	}
	delete(a.live, img)
	a.freed++
}

func (a *countingImageAllocator) CopyToImage(src, dst int, width, height uint32) error {
	a.copies = append(a.copies, imageCopy{src: src, dst: dst, width: width, height: height})
	return nil
}

func newTextures(a *countingImageAllocator) *buffer.Textures[int, int, textureName] {
	return buffer.NewTextures[int, int, textureName](a)
}

func TestTextureReplaceNeverLeaks(t *testing.T) {
	alloc := newCountingImageAllocator()
	texs := newTextures(alloc)

	first, err := texs.Allocate(bird, 8, 8, 0, 0, 0)
	require.NoError(t, err)
	second, err := texs.Allocate(bird, 16, 16, 0, 0, 0)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The first image was freed when the slot was replaced.
	require.Equal(t, 2, alloc.created)
	require.Equal(t, 1, alloc.freed)

	img, err := texs.Image(bird)
	require.NoError(t, err)
	require.Equal(t, second, img)

	texs.FreeAll()
	require.Equal(t, alloc.created, alloc.freed)
	require.Empty(t, alloc.live)
}

func TestTextureCopyCoversAllocatedExtent(t *testing.T) {
	alloc := newCountingImageAllocator()
	texs := newTextures(alloc)

	img, err := texs.Allocate(bird, 4, 2, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, texs.CopyFrom(7, bird))
	require.Equal(t, []imageCopy{{src: 7, dst: img, width: 4, height: 2}}, alloc.copies)
}

func TestTextureLookupOfUnallocatedNameFails(t *testing.T) {
	texs := newTextures(newCountingImageAllocator())

	_, err := texs.Image(depth)
	require.ErrorIs(t, err, buffer.ErrNotFound)
	require.ErrorIs(t, texs.CopyFrom(1, depth), buffer.ErrNotFound)
	require.ErrorIs(t, texs.Free(depth), buffer.ErrNotFound)
}

func TestTextureAllocateErrorLeavesSlotEmpty(t *testing.T) {
	alloc := newCountingImageAllocator()
	texs := newTextures(alloc)

	_, err := texs.Allocate(bird, 8, 8, 0, 0, 0)
	require.NoError(t, err)

	// A failed replacement still frees the old image, and the slot stays
	// empty rather than keeping a stale handle.
	alloc.allocErr = eris.New("out of device memory")
	_, err = texs.Allocate(bird, 8, 8, 0, 0, 0)
	require.Error(t, err)
	require.Equal(t, 1, alloc.freed)

	_, err = texs.Image(bird)
	require.ErrorIs(t, err, buffer.ErrNotFound)
}

func TestTextureFreeClearsSlot(t *testing.T) {
	alloc := newCountingImageAllocator()
	texs := newTextures(alloc)

	_, err := texs.Allocate(depth, 32, 32, 0, 0, 0)
	require.NoError(t, err)
	require.NoError(t, texs.Free(depth))
	require.Equal(t, alloc.created, alloc.freed)

	require.ErrorIs(t, texs.Free(depth), buffer.ErrNotFound)
}
