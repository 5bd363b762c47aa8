package buffer

import (
	"github.com/rotisserie/eris"
)

// Format names the pixel format of an image. Like Usage and MemoryProps it
// is passed through to the allocator untouched; its values belong to the
// device boundary.
type Format uint32

// ImageAllocator creates, destroys and fills images on behalf of Textures.
// B is the staging buffer handle type, I the image handle type.
type ImageAllocator[B any, I any] interface {
	// AllocateImage creates a 2D image with bound memory satisfying the
	// given format, usage and memory property flags.
	AllocateImage(width, height uint32, format Format, usage Usage, props MemoryProps) (I, error)

	// FreeImage destroys the image and its memory in one call.
	FreeImage(img I)

	// CopyToImage transitions dst for transfer, copies src into it and
	// transitions it for sampling, blocking until the device is idle.
	CopyToImage(src B, dst I, width, height uint32) error
}

// imageSlot keeps the extent next to the handle so later copies know the
// region they fill.
type imageSlot[I any] struct {
	image  I
	width  uint32
	height uint32
}

// Textures tracks named images the way Manager tracks Standard buffers: an
// image handle and its backing memory are allocated and freed together, and
// re-allocating a name frees the old image before the slot is overwritten.
// B is the staging buffer handle type, I the image handle type, N the
// texture name enumeration.
type Textures[B comparable, I comparable, N comparable] struct {
	alloc  ImageAllocator[B, I]
	images map[N]imageSlot[I]
}

func NewTextures[B comparable, I comparable, N comparable](alloc ImageAllocator[B, I]) *Textures[B, I, N] {
	return &Textures[B, I, N]{
		alloc:  alloc,
		images: map[N]imageSlot[I]{},
	}
}

// Allocate allocates the image for a texture name. An existing image under
// the same name is freed first, so the slot is replaced in place and never
// double-allocated.
func (t *Textures[B, I, N]) Allocate(name N, width, height uint32, format Format, usage Usage, props MemoryProps) (I, error) {
	if old, ok := t.images[name]; ok {
		t.alloc.FreeImage(old.image)
		delete(t.images, name)
	}
	img, err := t.alloc.AllocateImage(width, height, format, usage, props)
	if err != nil {
		var zero I
		return zero, eris.Wrapf(err, "failed to allocate texture %v", name)
	}
	t.images[name] = imageSlot[I]{image: img, width: width, height: height}
	return img, nil
}

// Image returns the image allocated under name. A name that was never
// allocated is a hard error, never a silent default.
func (t *Textures[B, I, N]) Image(name N) (I, error) {
	slot, ok := t.images[name]
	if !ok {
		var zero I
		return zero, eris.Wrapf(ErrNotFound, "texture %v", name)
	}
	return slot.image, nil
}

// CopyFrom fills name's image from the staging buffer src, covering the full
// extent the image was allocated with.
func (t *Textures[B, I, N]) CopyFrom(src B, name N) error {
	slot, ok := t.images[name]
	if !ok {
		return eris.Wrapf(ErrNotFound, "texture %v", name)
	}
	return t.alloc.CopyToImage(src, slot.image, slot.width, slot.height)
}

// Free frees the image under name and clears the slot.
func (t *Textures[B, I, N]) Free(name N) error {
	slot, ok := t.images[name]
	if !ok {
		return eris.Wrapf(ErrNotFound, "texture %v", name)
	}
	t.alloc.FreeImage(slot.image)
	delete(t.images, name)
	return nil
}

// FreeAll frees every tracked image.
func (t *Textures[B, I, N]) FreeAll() {
	for name, slot := range t.images {
		t.alloc.FreeImage(slot.image)
		delete(t.images, name)
	}
}
