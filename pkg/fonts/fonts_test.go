package fonts

import "testing"

func TestFace(t *testing.T) {
	if len(TTF()) == 0 {
		t.Fatal("TTF() is empty")
	}
	f, err := Face(12)
	if err != nil {
		t.Fatalf("Face() error: %v", err)
	}
	defer f.Close()

	if h := f.Metrics().Height.Ceil(); h < 10 || h > 20 {
		t.Errorf("line height = %d px, want about 12-15", h)
	}
	adv, ok := f.GlyphAdvance('M')
	if !ok || adv <= 0 {
		t.Errorf("GlyphAdvance('M') = %v, %v", adv, ok)
	}
}

func TestRegularParsedOnce(t *testing.T) {
	a, err := Regular()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Regular()
	if a != b {
		t.Error("Regular() parsed the font twice")
	}
}
