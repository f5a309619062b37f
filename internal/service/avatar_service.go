package service

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go-auth-dashboard/internal/model"
)

const (
	DefaultAvatarSize = 96
	MinAvatarSize     = 24
	MaxAvatarSize     = 256

	maxCachedAvatars = 64
)

var avatarPalette = []color.RGBA{
	{R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
	{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
	{R: 0xdb, G: 0x27, B: 0x77, A: 0xff},
	{R: 0xea, G: 0x58, B: 0x0c, A: 0xff},
	{R: 0x16, G: 0xa3, B: 0x4a, A: 0xff},
	{R: 0x08, G: 0x91, B: 0xb2, A: 0xff},
}

// AvatarService renders square PNG avatars showing the user's initials.
type AvatarService struct {
	mu    sync.Mutex
	cache map[string][]byte
}

func NewAvatarService() *AvatarService {
	return &AvatarService{cache: map[string][]byte{}}
}

// ClampAvatarSize keeps a requested edge length inside the supported range;
// zero selects the default.
func ClampAvatarSize(size int) int {
	switch {
	case size == 0:
		return DefaultAvatarSize
	case size < MinAvatarSize:
		return MinAvatarSize
	case size > MaxAvatarSize:
		return MaxAvatarSize
	default:
		return size
	}
}

func (s *AvatarService) Render(user model.User, size int) ([]byte, error) {
	size = ClampAvatarSize(size)
	initials := user.Initials()
	key := fmt.Sprintf("%s|%s|%d", user.ID, initials, size)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	encoded, err := renderInitials(initials, avatarColor(user.ID+user.Email), size)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.cache) >= maxCachedAvatars {
		s.cache = map[string][]byte{}
	}
	s.cache[key] = encoded
	s.mu.Unlock()

	return encoded, nil
}

func avatarColor(seed string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}

// renderInitials draws the text with the 7x13 bitmap face on a small tile
// and scales the tile up to the requested size.
func renderInitials(initials string, background color.RGBA, size int) ([]byte, error) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, initials).Ceil()
	tileEdge := textWidth + 8
	if tileEdge < 21 {
		tileEdge = 21
	}

	tile := image.NewRGBA(image.Rect(0, 0, tileEdge, tileEdge))
	draw.Draw(tile, tile.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	drawer := &font.Drawer{
		Dst:  tile,
		Src:  image.White,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((tileEdge - textWidth) / 2),
			Y: fixed.I((tileEdge-textHeight)/2) + metrics.Ascent,
		},
	}
	drawer.DrawString(initials)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), tile, tile.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
