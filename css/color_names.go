package css

// namedColors maps lower-cased color names to values. Besides CSS names it
// keeps legacy misspellings ("fuschia", "darkmagena") found in older markup.
// NOTE: values follow the legacy table, a few of them (blanchedalmond, ivory,
// peachpuff, tomato, darkslategray, olivedrab) differ from CSS level 4.
var namedColors = map[string]Color{
	"black":                RGB(0, 0, 0),
	"white":                RGB(255, 255, 255),
	"aliceblue":            RGB(240, 248, 255),
	"lightsalmon":          RGB(255, 160, 122),
	"antiquewhite":         RGB(250, 235, 215),
	"lightseagreen":        RGB(32, 178, 170),
	"aqua":                 RGB(0, 255, 255),
	"lightskyblue":         RGB(135, 206, 250),
	"aquamarine":           RGB(127, 255, 212),
	"lightslategray":       RGB(119, 136, 153),
	"azure":                RGB(240, 255, 255),
	"lightsteelblue":       RGB(176, 196, 222),
	"beige":                RGB(245, 245, 220),
	"lightyellow":          RGB(255, 255, 224),
	"bisque":               RGB(255, 228, 196),
	"lime":                 RGB(0, 255, 0),
	"limegreen":            RGB(50, 205, 50),
	"blanchedalmond":       RGB(255, 255, 205),
	"linen":                RGB(250, 240, 230),
	"blue":                 RGB(0, 0, 255),
	"magenta":              RGB(255, 0, 255),
	"blueviolet":           RGB(138, 43, 226),
	"maroon":               RGB(128, 0, 0),
	"brown":                RGB(165, 42, 42),
	"mediumaquamarine":     RGB(102, 205, 170),
	"burlywood":            RGB(222, 184, 135),
	"mediumblue":           RGB(0, 0, 205),
	"cadetblue":            RGB(95, 158, 160),
	"mediumorchid":         RGB(186, 85, 211),
	"chartreuse":           RGB(127, 255, 0),
	"mediumpurple":         RGB(147, 112, 219),
	"chocolate":            RGB(210, 105, 30),
	"mediumseagreen":       RGB(60, 179, 113),
	"coral":                RGB(255, 127, 80),
	"mediumslateblue":      RGB(123, 104, 238),
	"cornflowerblue":       RGB(100, 149, 237),
	"mediumspringgreen":    RGB(0, 250, 154),
	"cornsilk":             RGB(255, 248, 220),
	"mediumturquoise":      RGB(72, 209, 204),
	"crimson":              RGB(220, 20, 60),
	"mediumvioletred":      RGB(199, 21, 112),
	"cyan":                 RGB(0, 255, 255),
	"midnightblue":         RGB(25, 25, 112),
	"darkblue":             RGB(0, 0, 139),
	"mintcream":            RGB(245, 255, 250),
	"darkcyan":             RGB(0, 139, 139),
	"mistyrose":            RGB(255, 228, 225),
	"darkgoldenrod":        RGB(184, 134, 11),
	"moccasin":             RGB(255, 228, 181),
	"darkgray":             RGB(169, 169, 169),
	"navajowhite":          RGB(255, 222, 173),
	"darkgreen":            RGB(0, 100, 0),
	"navy":                 RGB(0, 0, 128),
	"darkkhaki":            RGB(189, 183, 107),
	"oldlace":              RGB(253, 245, 230),
	"darkmagena":           RGB(139, 0, 139),
	"olive":                RGB(128, 128, 0),
	"darkolivegreen":       RGB(85, 107, 47),
	"olivedrab":            RGB(107, 142, 45),
	"darkorange":           RGB(255, 140, 0),
	"orange":               RGB(255, 165, 0),
	"darkorchid":           RGB(153, 50, 204),
	"orangered":            RGB(255, 69, 0),
	"darkred":              RGB(139, 0, 0),
	"orchid":               RGB(218, 112, 214),
	"darksalmon":           RGB(233, 150, 122),
	"palegoldenrod":        RGB(238, 232, 170),
	"darkseagreen":         RGB(143, 188, 143),
	"palegreen":            RGB(152, 251, 152),
	"darkslateblue":        RGB(72, 61, 139),
	"paleturquoise":        RGB(175, 238, 238),
	"darkslategray":        RGB(40, 79, 79),
	"palevioletred":        RGB(219, 112, 147),
	"darkturquoise":        RGB(0, 206, 209),
	"papayawhip":           RGB(255, 239, 213),
	"darkviolet":           RGB(148, 0, 211),
	"peachpuff":            RGB(255, 218, 155),
	"deeppink":             RGB(255, 20, 147),
	"peru":                 RGB(205, 133, 63),
	"deepskyblue":          RGB(0, 191, 255),
	"pink":                 RGB(255, 192, 203),
	"dimgray":              RGB(105, 105, 105),
	"plum":                 RGB(221, 160, 221),
	"dodgerblue":           RGB(30, 144, 255),
	"powderblue":           RGB(176, 224, 230),
	"firebrick":            RGB(178, 34, 34),
	"purple":               RGB(128, 0, 128),
	"floralwhite":          RGB(255, 250, 240),
	"red":                  RGB(255, 0, 0),
	"forestgreen":          RGB(34, 139, 34),
	"rosybrown":            RGB(188, 143, 143),
	"fuschia":              RGB(255, 0, 255),
	"royalblue":            RGB(65, 105, 225),
	"gainsboro":            RGB(220, 220, 220),
	"saddlebrown":          RGB(139, 69, 19),
	"ghostwhite":           RGB(248, 248, 255),
	"salmon":               RGB(250, 128, 114),
	"gold":                 RGB(255, 215, 0),
	"sandybrown":           RGB(244, 164, 96),
	"goldenrod":            RGB(218, 165, 32),
	"seagreen":             RGB(46, 139, 87),
	"gray":                 RGB(128, 128, 128),
	"seashell":             RGB(255, 245, 238),
	"green":                RGB(0, 128, 0),
	"sienna":               RGB(160, 82, 45),
	"greenyellow":          RGB(173, 255, 47),
	"silver":               RGB(192, 192, 192),
	"honeydew":             RGB(240, 255, 240),
	"skyblue":              RGB(135, 206, 235),
	"hotpink":              RGB(255, 105, 180),
	"slateblue":            RGB(106, 90, 205),
	"indianred":            RGB(205, 92, 92),
	"slategray":            RGB(112, 128, 144),
	"indigo":               RGB(75, 0, 130),
	"snow":                 RGB(255, 250, 250),
	"ivory":                RGB(255, 240, 240),
	"springgreen":          RGB(0, 255, 127),
	"khaki":                RGB(240, 230, 140),
	"steelblue":            RGB(70, 130, 180),
	"lavender":             RGB(230, 230, 250),
	"tan":                  RGB(210, 180, 140),
	"lavenderblush":        RGB(255, 240, 245),
	"teal":                 RGB(0, 128, 128),
	"lawngreen":            RGB(124, 252, 0),
	"thistle":              RGB(216, 191, 216),
	"lemonchiffon":         RGB(255, 250, 205),
	"tomato":               RGB(253, 99, 71),
	"lightblue":            RGB(173, 216, 230),
	"turquoise":            RGB(64, 224, 208),
	"lightcoral":           RGB(240, 128, 128),
	"violet":               RGB(238, 130, 238),
	"lightcyan":            RGB(224, 255, 255),
	"wheat":                RGB(245, 222, 179),
	"lightgoldenrodyellow": RGB(250, 250, 210),
	"lightgreen":           RGB(144, 238, 144),
	"whitesmoke":           RGB(245, 245, 245),
	"lightgray":            RGB(211, 211, 211),
	"yellow":               RGB(255, 255, 0),
	"lightpink":            RGB(255, 182, 193),
	"yellowgreen":          RGB(154, 205, 50),
	"transparent":          RGBA(0, 0, 0, 0),
	"fuchsia":              RGB(255, 0, 255),
	"darkmagenta":          RGB(139, 0, 139),
	"grey":                 RGB(128, 128, 128),
	"darkgrey":             RGB(169, 169, 169),
	"lightgrey":            RGB(211, 211, 211),
	"dimgrey":              RGB(105, 105, 105),
	"slategrey":            RGB(112, 128, 144),
	"lightslategrey":       RGB(119, 136, 153),
	"darkslategrey":        RGB(40, 79, 79),
	"rebeccapurple":        RGB(102, 51, 153),
}
