package render

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"elearn/backend/config"
)

const (
	primaryColor = "#2E86C1"
	textColor    = "#1F2933"
	mutedColor   = "#52606D"
)

// PNGRenderer 基于 gg 绘制 PNG 证书
type PNGRenderer struct {
	width   int
	height  int
	issuer  string
	regular *truetype.Font
	bold    *truetype.Font
}

// NewPNGRenderer 加载字体并创建渲染器
// 未配置字体路径时使用内置 Go 字体（仅覆盖拉丁字符）
func NewPNGRenderer(cfg *config.CertificateConfig) (*PNGRenderer, error) {
	regular, err := loadFont(cfg.FontPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("加载证书字体失败: %w", err)
	}
	bold, err := loadFont(cfg.BoldFontPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("加载证书粗体字体失败: %w", err)
	}
	return &PNGRenderer{
		width:   cfg.Width,
		height:  cfg.Height,
		issuer:  cfg.Issuer,
		regular: regular,
		bold:    bold,
	}, nil
}

func (r *PNGRenderer) ContentType() string { return "image/png" }

func (r *PNGRenderer) Extension() string { return ".png" }

// Render 绘制证书：边框、标题、姓名、课程名、签发日期、签发方
func (r *PNGRenderer) Render(data CertificateData) ([]byte, error) {
	if strings.TrimSpace(data.Name) == "" || strings.TrimSpace(data.CourseTitle) == "" || data.Date == "" {
		return nil, ErrMissingField
	}
	issuer := data.Issuer
	if issuer == "" {
		issuer = r.issuer
	}

	w, h := float64(r.width), float64(r.height)
	dc := gg.NewContext(r.width, r.height)

	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	// 外边框与内细线
	margin := h * 0.04
	dc.SetHexColor(primaryColor)
	dc.SetLineWidth(h * 0.016)
	dc.DrawRectangle(margin, margin, w-2*margin, h-2*margin)
	dc.Stroke()
	inner := margin * 1.8
	dc.SetLineWidth(2)
	dc.DrawRectangle(inner, inner, w-2*inner, h-2*inner)
	dc.Stroke()

	cx := w / 2
	textWidth := w - 4*inner

	dc.SetFontFace(r.face(r.bold, h*0.085))
	dc.SetHexColor(primaryColor)
	dc.DrawStringAnchored("CERTIFICATE", cx, h*0.22, 0.5, 0.5)

	dc.SetFontFace(r.face(r.regular, h*0.03))
	dc.SetHexColor(mutedColor)
	dc.DrawStringAnchored("This is to certify that", cx, h*0.34, 0.5, 0.5)

	dc.SetFontFace(r.face(r.bold, h*0.055))
	dc.SetHexColor(textColor)
	dc.DrawStringWrapped(data.Name, cx, h*0.43, 0.5, 0.5, textWidth, 1.2, gg.AlignCenter)

	dc.SetFontFace(r.face(r.regular, h*0.03))
	dc.SetHexColor(mutedColor)
	dc.DrawStringAnchored("has successfully completed the course", cx, h*0.52, 0.5, 0.5)

	dc.SetFontFace(r.face(r.bold, h*0.045))
	dc.SetHexColor(textColor)
	dc.DrawStringWrapped(data.CourseTitle, cx, h*0.61, 0.5, 0.5, textWidth, 1.2, gg.AlignCenter)

	dc.SetFontFace(r.face(r.regular, h*0.028))
	dc.SetHexColor(mutedColor)
	dc.DrawStringAnchored("Date of issue: "+data.Date, cx, h*0.74, 0.5, 0.5)

	dc.SetFontFace(r.face(r.regular, h*0.03))
	dc.SetHexColor(primaryColor)
	dc.DrawStringAnchored(issuer, cx, h*0.84, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("PNG 编码失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	raw := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return truetype.Parse(raw)
}
