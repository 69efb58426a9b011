package css

import (
	"testing"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "empty",
			raw:  "",
			want: map[string]string{},
		},
		{
			name: "all forms",
			raw:  `border="1" contenteditable style="text-align: center; color: #ff00e6" cellpadding=0 cellspacing='0' align="center"`,
			want: map[string]string{
				"border":          "1",
				"contenteditable": "",
				"style":           "text-align: center; color: #ff00e6",
				"cellpadding":     "0",
				"cellspacing":     "0",
				"align":           "center",
			},
		},
		{
			name: "last wins",
			raw:  `class="a" class="b"`,
			want: map[string]string{"class": "b"},
		},
		{
			name: "case preserved",
			raw:  `Width="10" width="20"`,
			want: map[string]string{"Width": "10", "width": "20"},
		},
		{
			name: "value stops at bracket",
			raw:  `alt="a>b"`,
			want: map[string]string{"alt": "a", "b": ""},
		},
		{
			name: "leading whitespace inside quotes",
			raw:  `src="  image.png"`,
			want: map[string]string{"src": "image.png"},
		},
		{
			name: "spaces around equal sign",
			raw:  `width = 42 height= '7'`,
			want: map[string]string{"width": "42", "height": "7"},
		},
		{
			name: "newline in quoted value",
			raw:  "src=\"data:image/png;base64,AAA\nBBB\"",
			want: map[string]string{"src": "data:image/png;base64,AAA\nBBB"},
		},
		{
			name: "malformed fragments dropped",
			raw:  `= "orphan" width=`,
			want: map[string]string{"orphan": ""},
		},
		{
			name: "unterminated quote",
			raw:  `title="never closed`,
			want: map[string]string{"title": "never closed"},
		},
		{
			name: "hyphenated and namespaced names",
			raw:  `data-id=7 xml:lang="en"`,
			want: map[string]string{"data-id": "7", "xml:lang": "en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := ParseAttributes(tt.raw)
			if attrs.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d (%s)", attrs.Len(), len(tt.want), attrs)
			}
			for k, v := range tt.want {
				got, ok := attrs.Get(k)
				if !ok {
					t.Errorf("attribute %q is missing", k)
					continue
				}
				if got != v {
					t.Errorf("attribute %q = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestAttributes_NilSafe(t *testing.T) {
	var attrs *Attributes

	if attrs.Len() != 0 {
		t.Error("nil table must be empty")
	}
	if attrs.Has("x") {
		t.Error("nil table has no entries")
	}
	if !attrs.GetAsColor("color").IsEmpty() {
		t.Error("expected empty color")
	}
	if attrs.GetAsUnit("width").IsValid() {
		t.Error("expected invalid unit")
	}
	if attrs.GetAsMargin("margin").IsValid() {
		t.Error("expected invalid margin")
	}
	if !attrs.GetAsBorder().IsEmpty() {
		t.Error("expected empty border")
	}
	if !attrs.GetAsFont("font").IsEmpty() {
		t.Error("expected empty font")
	}
}

func TestAttributes_Names(t *testing.T) {
	attrs := ParseAttributes(`b=2 a=1 c`)
	names := attrs.Names()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if s := attrs.String(); s != `a="1" b="2" c=""` {
		t.Errorf("String() = %q", s)
	}
}

func TestGetAsMargin_Cascade(t *testing.T) {
	tests := []struct {
		name                     string
		style                    string
		top, right, bottom, left string
	}{
		{"shorthand only", "margin: 4px", "4px", "4px", "4px", "4px"},
		{"side overrides", "margin: 4px; margin-left: 8px", "4px", "4px", "4px", "8px"},
		{"side before shorthand still wins", "margin-left: 8px; margin: 4px", "4px", "4px", "4px", "8px"},
		{"invalid side ignored", "margin: 4px; margin-top: huge", "4px", "4px", "4px", "4px"},
		{"no shorthand", "margin-bottom: 1em", "<unset>", "<unset>", "1em", "<unset>"},
		{"two values", "margin: 1pt 2pt", "1pt", "2pt", "1pt", "2pt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParseStyle(tt.style).GetAsMargin("margin")
			got := [...]string{m.Top.String(), m.Right.String(), m.Bottom.String(), m.Left.String()}
			want := [...]string{tt.top, tt.right, tt.bottom, tt.left}
			if got != want {
				t.Errorf("margin = %v, want %v", got, want)
			}
		})
	}
}

func TestGetAsMargin_Attributes(t *testing.T) {
	m := ParseAttributes(`margin="4px" margin-left="8px"`).GetAsMargin("margin")
	if m.Left != NewUnit(8, UnitPixel) {
		t.Errorf("left = %v, want 8px", m.Left)
	}
	for _, side := range []Unit{m.Top, m.Right, m.Bottom} {
		if side != NewUnit(4, UnitPixel) {
			t.Errorf("side = %v, want 4px", side)
		}
	}
}

func TestGetAsSideBorder_Families(t *testing.T) {
	attrs := ParseStyle("border: 1px solid red; border-top-color: blue; border-bottom-style: dashed; border-left-width: thick")
	b := attrs.GetAsBorder()

	if b.Right != (SideBorder{Style: BorderStyleSolid, Color: RGB(255, 0, 0), Width: NewUnit(1, UnitPixel)}) {
		t.Errorf("right = %+v, want grouped definition", b.Right)
	}
	if b.Top.Color != RGB(0, 0, 255) || b.Top.Style != BorderStyleSolid || b.Top.Width != NewUnit(1, UnitPixel) {
		t.Errorf("top = %+v, want blue 1px solid", b.Top)
	}
	if b.Bottom.Style != BorderStyleDashed || b.Bottom.Color != RGB(255, 0, 0) {
		t.Errorf("bottom = %+v, want red dashed", b.Bottom)
	}
	if b.Left.Width != NewUnit(5, UnitPixel) || b.Left.Style != BorderStyleSolid {
		t.Errorf("left = %+v, want 5px solid", b.Left)
	}
}

func TestGetAsSideBorder_SideShorthand(t *testing.T) {
	attrs := ParseStyle("border: 2pt dotted; border-left: 1px double green")
	b := attrs.GetAsBorder()
	if b.Left.Style != BorderStyleDouble || b.Left.Color != RGB(0, 128, 0) {
		t.Errorf("left = %+v, want double green", b.Left)
	}
	if b.Top.Style != BorderStyleDotted || !b.Top.Color.IsEmpty() {
		t.Errorf("top = %+v, want dotted without color", b.Top)
	}
}

func TestGetAsFont_Cascade(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  Font
	}{
		{
			name:  "shorthand",
			style: `font: italic small-caps bold 12px/30px Georgia, serif`,
			want:  Font{Style: FontStyleItalic, Variant: FontVariantSmallCaps, Weight: FontWeightBold, Size: NewUnit(12, UnitPixel), Family: "Georgia"},
		},
		{
			name:  "weight override",
			style: `font: bold 10pt Arial; font-weight: normal`,
			want:  Font{Weight: FontWeightNormal, Size: NewUnit(10, UnitPoint), Family: "Arial"},
		},
		{
			name:  "invalid sub-property inherits shorthand",
			style: `font: italic 10pt Arial; font-style: sideways; font-size: big`,
			want:  Font{Style: FontStyleItalic, Size: NewUnit(10, UnitPoint), Family: "Arial"},
		},
		{
			name:  "individual only",
			style: `font-family: 'Times New Roman', serif; font-size: large; font-style: oblique`,
			want:  Font{Style: FontStyleOblique, Size: NewUnit(13.5, UnitPoint), Family: "Times New Roman"},
		},
		{
			name:  "numeric weight",
			style: `font-weight: 600`,
			want:  Font{Weight: 600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStyle(tt.style).GetAsFont("font")
			if got != tt.want {
				t.Errorf("font = %+v, want %+v", got, tt.want)
			}
		})
	}
}
