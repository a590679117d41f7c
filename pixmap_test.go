package pixfx

import (
	"path/filepath"
	"testing"
)

func TestPixmap_SetGetPixel(t *testing.T) {
	pm := NewPixmap(4, 4)
	pm.SetPixel(1, 2, RGBA{R: 1, G: 0.5, B: 0, A: 1})
	got := pm.GetPixel(1, 2)
	if got.R != 1 || got.A != 1 {
		t.Errorf("GetPixel = %+v", got)
	}
	if g := pm.Data()[pm.PixOffset(1, 2)+1]; g != 127 {
		t.Errorf("green byte = %d, want 127", g)
	}

	// Out-of-bounds access is a no-op read of transparent.
	pm.SetPixel(-1, 0, White)
	if got := pm.GetPixel(-1, 0); got != Transparent {
		t.Errorf("out-of-bounds GetPixel = %+v, want transparent", got)
	}
}

func TestPixmap_CloneIsIndependent(t *testing.T) {
	pm := solidPixmap(3, 3, White)
	c := pm.Clone()
	if !c.EqualTo(pm) {
		t.Fatal("clone differs from source")
	}
	c.SetPixel(0, 0, Black)
	if c.EqualTo(pm) {
		t.Error("mutating the clone changed the source")
	}
}

func TestPixmap_SubPixmap(t *testing.T) {
	pm := numberedPixmap(6, 6)
	sub := pm.SubPixmap(2, 3, 3, 2)
	if sub.Width() != 3 || sub.Height() != 2 {
		t.Fatalf("sub size = %dx%d, want 3x2", sub.Width(), sub.Height())
	}
	sx, sy := pixelCoords(t, sub, 0, 0)
	if sx != 2 || sy != 3 {
		t.Errorf("sub origin came from (%d,%d), want (2,3)", sx, sy)
	}
	// The sub pixmap owns its data.
	sub.SetPixel(0, 0, White)
	gx, _ := pixelCoords(t, pm, 2, 3)
	if gx != 2 {
		t.Error("mutating the sub pixmap changed the source")
	}
}

func TestPixmap_ImageRoundTrip(t *testing.T) {
	pm := gradientPixmap(5, 7)
	back := FromImage(pm.ToImage())
	if !back.EqualTo(pm) {
		t.Error("image round trip changed pixels")
	}
}

func TestPixmap_ToImageCopies(t *testing.T) {
	pm := solidPixmap(2, 2, White)
	img := pm.ToImage()
	img.Pix[0] = 0
	if pm.Data()[0] != 255 {
		t.Error("mutating the exported image changed the pixmap")
	}
}

func TestPixmap_SaveLoadPNG(t *testing.T) {
	pm := gradientPixmap(9, 4)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := pm.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPixmap(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.EqualTo(pm) {
		t.Error("PNG round trip changed pixels")
	}
}

func TestPixmap_SaveByExtension(t *testing.T) {
	pm := solidPixmap(4, 4, RGBA{R: 0.8, G: 0.4, B: 0.2, A: 1})
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg", "c.jpeg"} {
		if err := pm.Save(filepath.Join(dir, name)); err != nil {
			t.Errorf("Save(%s) error = %v", name, err)
		}
	}
	if err := pm.Save(filepath.Join(dir, "d.bmp")); err == nil {
		t.Error("Save(d.bmp) accepted an unsupported extension")
	}
}
