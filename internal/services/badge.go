package services

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
)

const badgeSize = 256

var badgePalette = map[string]string{
	achievements.BadgeBeginner:     "#CD7F32",
	achievements.BadgeIntermediate: "#A8A9AD",
	achievements.BadgeAdvanced:     "#D4AF37",
}

const (
	badgeDefaultHex = "#2E7D6B"
	badgeLockedHex  = "#9E9E9E"
)

// BadgeRenderer draws achievement badges as PNGs. Locked badges are greyed out.
type BadgeRenderer struct {
	font *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewBadgeRenderer loads the TTF at fontPath, or the bundled Go Bold face when
// fontPath is empty.
func NewBadgeRenderer(fontPath string) (*BadgeRenderer, error) {
	raw := gobold.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read badge font: %w", err)
		}
		raw = b
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &BadgeRenderer{font: parsed, faces: map[float64]font.Face{}}, nil
}

func (r *BadgeRenderer) face(size float64) font.Face {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	r.faces[size] = f
	return f
}

func (r *BadgeRenderer) Render(a *types.Achievement, earned bool) (bytes.Buffer, error) {
	var buf bytes.Buffer
	if a == nil {
		return buf, fmt.Errorf("achievement required")
	}
	base := badgeColor(a.BadgeType, earned)
	const c = float64(badgeSize) / 2

	dc := gg.NewContext(badgeSize, badgeSize)
	dc.DrawCircle(c, c, c)
	dc.Clip()
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, badgeSize, badgeSize)
	dc.Fill()
	dc.ResetClip()

	dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 200})
	dc.SetLineWidth(8)
	dc.DrawCircle(c, c, c-14)
	dc.Stroke()

	dc.SetColor(color.White)
	dc.SetFontFace(r.face(96))
	dc.DrawStringAnchored(badgeInitials(a.Name), c, c-16, 0.5, 0.5)

	dc.SetFontFace(r.face(28))
	dc.DrawStringAnchored(strconv.Itoa(a.Points)+" pts", c, c+62, 0.5, 0.5)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func badgeColor(badgeType string, earned bool) color.NRGBA {
	h := badgeDefaultHex
	if !earned {
		h = badgeLockedHex
	} else if p, ok := badgePalette[badgeType]; ok {
		h = p
	}
	rv, gv, bv, err := parseHexRGB(h)
	if err != nil {
		return color.NRGBA{R: 0x2E, G: 0x7D, B: 0x6B, A: 0xFF}
	}
	return color.NRGBA{R: rv, G: gv, B: bv, A: 0xFF}
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid hex")
	}
	return raw[0], raw[1], raw[2], nil
}

// badgeInitials takes the first letter of up to two words.
func badgeInitials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		rs := []rune(w)
		if len(rs) == 0 {
			continue
		}
		out = append(out, []rune(strings.ToUpper(string(rs[0])))...)
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
