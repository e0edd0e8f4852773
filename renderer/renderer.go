package renderer

import (
	"image"
	"image/color"

	"github.com/ByLCY/scroll/layout"
)

// Font 是绑定到文本块的字体能力：测量、行距与光栅化。绑定后不可变。
type Font interface {
	layout.Measurer
	// LineAdvance 返回相邻两行之间的固定像素距离。
	LineAdvance() int
	// Rasterize 把一行文本画成像素面。返回的 Surface 由调用方负责 Release。
	Rasterize(s string) (*Surface, error)
}

// TextureHandle identifies an uploaded texture. The zero value means "no texture".
type TextureHandle uint64

// NoTexture is held by blocks that have nothing to draw.
const NoTexture TextureHandle = 0

// TextureStore 模拟渲染后端的纹理接口。
type TextureStore interface {
	UploadTexture(img *image.RGBA) (TextureHandle, error)
	DestroyTexture(h TextureHandle)
}

// FontSpec 描述一个字体请求，由 Renderer 解析为 Font。
type FontSpec struct {
	Name  string      `json:"name"`
	Src   string      `json:"src"` // builtin:goregular、embed:gomono 或文件路径
	Style string      `json:"style,omitempty"`
	Size  int         `json:"size"` // 像素
	Color color.Color `json:"-"`
}

// Renderer 是字体后端：根据 FontSpec 创建可绑定到文本块的 Font。
type Renderer interface {
	Face(spec FontSpec) (Font, error)
}
