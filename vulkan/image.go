package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/rotisserie/eris"
)

func (d *GraphicsDevice) CreateImage(width, height uint32, format vk.Format, usage vk.ImageUsageFlags) (vk.Image, error) {
	var img vk.Image
	res := vk.CreateImage(d.device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}, nil, &img)
	if err := vk.Error(res); err != nil {
		return vk.NullImage, eris.Wrap(err, "vkCreateImage")
	}
	return img, nil
}

func (d *GraphicsDevice) ImageMemoryRequirements(img vk.Image) (uint64, uint32) {
	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, img, &reqs)
	reqs.Deref()
	return uint64(reqs.Size), reqs.MemoryTypeBits
}

func (d *GraphicsDevice) BindImageMemory(img vk.Image, mem vk.DeviceMemory) error {
	if err := vk.Error(vk.BindImageMemory(d.device, img, mem, 0)); err != nil {
		return eris.Wrap(err, "vkBindImageMemory")
	}
	return nil
}

// SubmitCopyToImage records the full upload into one transient command
// buffer: a barrier into the transfer layout, the copy, and a barrier into
// the shader-read layout. It waits for the queue to drain so the staging
// buffer may be freed as soon as this returns.
func (d *GraphicsDevice) SubmitCopyToImage(src vk.Buffer, dst vk.Image, width, height uint32) error {
	return d.submitOneTime(func(cmd vk.CommandBuffer) {
		recordLayoutTransition(cmd, dst, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		vk.CmdCopyBufferToImage(cmd, src, dst, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: vk.Offset3D{},
			ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
		}})
		recordLayoutTransition(cmd, dst, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
}

func (d *GraphicsDevice) DestroyImage(img vk.Image) {
	vk.DestroyImage(d.device, img, nil)
}

// recordLayoutTransition emits the pipeline barrier moving img between the
// two layouts the upload path needs.
func recordLayoutTransition(cmd vk.CommandBuffer, img vk.Image, oldLayout, newLayout vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}

	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}
