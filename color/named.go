package color

// named maps CSS4 color keywords to their channel values.
var named = map[string]Color{
	"transparent":          {Type: TypeRGB, A: 0, HasAlpha: true},
	"aliceblue":            {Type: TypeHex, R: 240, G: 248, B: 255},
	"antiquewhite":         {Type: TypeHex, R: 250, G: 235, B: 215},
	"aqua":                 {Type: TypeHex, R: 0, G: 255, B: 255},
	"aquamarine":           {Type: TypeHex, R: 127, G: 255, B: 212},
	"azure":                {Type: TypeHex, R: 240, G: 255, B: 255},
	"beige":                {Type: TypeHex, R: 245, G: 245, B: 220},
	"bisque":               {Type: TypeHex, R: 255, G: 228, B: 196},
	"black":                {Type: TypeHex, R: 0, G: 0, B: 0},
	"blanchedalmond":       {Type: TypeHex, R: 255, G: 235, B: 205},
	"blue":                 {Type: TypeHex, R: 0, G: 0, B: 255},
	"blueviolet":           {Type: TypeHex, R: 138, G: 43, B: 226},
	"brown":                {Type: TypeHex, R: 165, G: 42, B: 42},
	"burlywood":            {Type: TypeHex, R: 222, G: 184, B: 135},
	"cadetblue":            {Type: TypeHex, R: 95, G: 158, B: 160},
	"chartreuse":           {Type: TypeHex, R: 127, G: 255, B: 0},
	"chocolate":            {Type: TypeHex, R: 210, G: 105, B: 30},
	"coral":                {Type: TypeHex, R: 255, G: 127, B: 80},
	"cornflowerblue":       {Type: TypeHex, R: 100, G: 149, B: 237},
	"cornsilk":             {Type: TypeHex, R: 255, G: 248, B: 220},
	"crimson":              {Type: TypeHex, R: 220, G: 20, B: 60},
	"cyan":                 {Type: TypeHex, R: 0, G: 255, B: 255},
	"darkblue":             {Type: TypeHex, R: 0, G: 0, B: 139},
	"darkcyan":             {Type: TypeHex, R: 0, G: 139, B: 139},
	"darkgoldenrod":        {Type: TypeHex, R: 184, G: 134, B: 11},
	"darkgray":             {Type: TypeHex, R: 169, G: 169, B: 169},
	"darkgrey":             {Type: TypeHex, R: 169, G: 169, B: 169},
	"darkgreen":            {Type: TypeHex, R: 0, G: 100, B: 0},
	"darkkhaki":            {Type: TypeHex, R: 189, G: 183, B: 107},
	"darkmagenta":          {Type: TypeHex, R: 139, G: 0, B: 139},
	"darkolivegreen":       {Type: TypeHex, R: 85, G: 107, B: 47},
	"darkorange":           {Type: TypeHex, R: 255, G: 140, B: 0},
	"darkorchid":           {Type: TypeHex, R: 153, G: 50, B: 204},
	"darkred":              {Type: TypeHex, R: 139, G: 0, B: 0},
	"darksalmon":           {Type: TypeHex, R: 233, G: 150, B: 122},
	"darkseagreen":         {Type: TypeHex, R: 143, G: 188, B: 143},
	"darkslateblue":        {Type: TypeHex, R: 72, G: 61, B: 139},
	"darkslategray":        {Type: TypeHex, R: 47, G: 79, B: 79},
	"darkslategrey":        {Type: TypeHex, R: 47, G: 79, B: 79},
	"darkturquoise":        {Type: TypeHex, R: 0, G: 206, B: 209},
	"darkviolet":           {Type: TypeHex, R: 148, G: 0, B: 211},
	"deeppink":             {Type: TypeHex, R: 255, G: 20, B: 147},
	"deepskyblue":          {Type: TypeHex, R: 0, G: 191, B: 255},
	"dimgray":              {Type: TypeHex, R: 105, G: 105, B: 105},
	"dimgrey":              {Type: TypeHex, R: 105, G: 105, B: 105},
	"dodgerblue":           {Type: TypeHex, R: 30, G: 144, B: 255},
	"firebrick":            {Type: TypeHex, R: 178, G: 34, B: 34},
	"floralwhite":          {Type: TypeHex, R: 255, G: 250, B: 240},
	"forestgreen":          {Type: TypeHex, R: 34, G: 139, B: 34},
	"fuchsia":              {Type: TypeHex, R: 255, G: 0, B: 255},
	"gainsboro":            {Type: TypeHex, R: 220, G: 220, B: 220},
	"ghostwhite":           {Type: TypeHex, R: 248, G: 248, B: 255},
	"gold":                 {Type: TypeHex, R: 255, G: 215, B: 0},
	"goldenrod":            {Type: TypeHex, R: 218, G: 165, B: 32},
	"gray":                 {Type: TypeHex, R: 128, G: 128, B: 128},
	"grey":                 {Type: TypeHex, R: 128, G: 128, B: 128},
	"green":                {Type: TypeHex, R: 0, G: 128, B: 0},
	"greenyellow":          {Type: TypeHex, R: 173, G: 255, B: 47},
	"honeydew":             {Type: TypeHex, R: 240, G: 255, B: 240},
	"hotpink":              {Type: TypeHex, R: 255, G: 105, B: 180},
	"indianred":            {Type: TypeHex, R: 205, G: 92, B: 92},
	"indigo":               {Type: TypeHex, R: 75, G: 0, B: 130},
	"ivory":                {Type: TypeHex, R: 255, G: 255, B: 240},
	"khaki":                {Type: TypeHex, R: 240, G: 230, B: 140},
	"lavender":             {Type: TypeHex, R: 230, G: 230, B: 250},
	"lavenderblush":        {Type: TypeHex, R: 255, G: 240, B: 245},
	"lawngreen":            {Type: TypeHex, R: 124, G: 252, B: 0},
	"lemonchiffon":         {Type: TypeHex, R: 255, G: 250, B: 205},
	"lightblue":            {Type: TypeHex, R: 173, G: 216, B: 230},
	"lightcoral":           {Type: TypeHex, R: 240, G: 128, B: 128},
	"lightcyan":            {Type: TypeHex, R: 224, G: 255, B: 255},
	"lightgoldenrodyellow": {Type: TypeHex, R: 250, G: 250, B: 210},
	"lightgray":            {Type: TypeHex, R: 211, G: 211, B: 211},
	"lightgrey":            {Type: TypeHex, R: 211, G: 211, B: 211},
	"lightgreen":           {Type: TypeHex, R: 144, G: 238, B: 144},
	"lightpink":            {Type: TypeHex, R: 255, G: 182, B: 193},
	"lightsalmon":          {Type: TypeHex, R: 255, G: 160, B: 122},
	"lightseagreen":        {Type: TypeHex, R: 32, G: 178, B: 170},
	"lightskyblue":         {Type: TypeHex, R: 135, G: 206, B: 250},
	"lightslategray":       {Type: TypeHex, R: 119, G: 136, B: 153},
	"lightslategrey":       {Type: TypeHex, R: 119, G: 136, B: 153},
	"lightsteelblue":       {Type: TypeHex, R: 176, G: 196, B: 222},
	"lightyellow":          {Type: TypeHex, R: 255, G: 255, B: 224},
	"lime":                 {Type: TypeHex, R: 0, G: 255, B: 0},
	"limegreen":            {Type: TypeHex, R: 50, G: 205, B: 50},
	"linen":                {Type: TypeHex, R: 250, G: 240, B: 230},
	"magenta":              {Type: TypeHex, R: 255, G: 0, B: 255},
	"maroon":               {Type: TypeHex, R: 128, G: 0, B: 0},
	"mediumaquamarine":     {Type: TypeHex, R: 102, G: 205, B: 170},
	"mediumblue":           {Type: TypeHex, R: 0, G: 0, B: 205},
	"mediumorchid":         {Type: TypeHex, R: 186, G: 85, B: 211},
	"mediumpurple":         {Type: TypeHex, R: 147, G: 112, B: 219},
	"mediumseagreen":       {Type: TypeHex, R: 60, G: 179, B: 113},
	"mediumslateblue":      {Type: TypeHex, R: 123, G: 104, B: 238},
	"mediumspringgreen":    {Type: TypeHex, R: 0, G: 250, B: 154},
	"mediumturquoise":      {Type: TypeHex, R: 72, G: 209, B: 204},
	"mediumvioletred":      {Type: TypeHex, R: 199, G: 21, B: 133},
	"midnightblue":         {Type: TypeHex, R: 25, G: 25, B: 112},
	"mintcream":            {Type: TypeHex, R: 245, G: 255, B: 250},
	"mistyrose":            {Type: TypeHex, R: 255, G: 228, B: 225},
	"moccasin":             {Type: TypeHex, R: 255, G: 228, B: 181},
	"navajowhite":          {Type: TypeHex, R: 255, G: 222, B: 173},
	"navy":                 {Type: TypeHex, R: 0, G: 0, B: 128},
	"oldlace":              {Type: TypeHex, R: 253, G: 245, B: 230},
	"olive":                {Type: TypeHex, R: 128, G: 128, B: 0},
	"olivedrab":            {Type: TypeHex, R: 107, G: 142, B: 35},
	"orange":               {Type: TypeHex, R: 255, G: 165, B: 0},
	"orangered":            {Type: TypeHex, R: 255, G: 69, B: 0},
	"orchid":               {Type: TypeHex, R: 218, G: 112, B: 214},
	"palegoldenrod":        {Type: TypeHex, R: 238, G: 232, B: 170},
	"palegreen":            {Type: TypeHex, R: 152, G: 251, B: 152},
	"paleturquoise":        {Type: TypeHex, R: 175, G: 238, B: 238},
	"palevioletred":        {Type: TypeHex, R: 219, G: 112, B: 147},
	"papayawhip":           {Type: TypeHex, R: 255, G: 239, B: 213},
	"peachpuff":            {Type: TypeHex, R: 255, G: 218, B: 185},
	"peru":                 {Type: TypeHex, R: 205, G: 133, B: 63},
	"pink":                 {Type: TypeHex, R: 255, G: 192, B: 203},
	"plum":                 {Type: TypeHex, R: 221, G: 160, B: 221},
	"powderblue":           {Type: TypeHex, R: 176, G: 224, B: 230},
	"purple":               {Type: TypeHex, R: 128, G: 0, B: 128},
	"rebeccapurple":        {Type: TypeHex, R: 102, G: 51, B: 153},
	"red":                  {Type: TypeHex, R: 255, G: 0, B: 0},
	"rosybrown":            {Type: TypeHex, R: 188, G: 143, B: 143},
	"royalblue":            {Type: TypeHex, R: 65, G: 105, B: 225},
	"saddlebrown":          {Type: TypeHex, R: 139, G: 69, B: 19},
	"salmon":               {Type: TypeHex, R: 250, G: 128, B: 114},
	"sandybrown":           {Type: TypeHex, R: 244, G: 164, B: 96},
	"seagreen":             {Type: TypeHex, R: 46, G: 139, B: 87},
	"seashell":             {Type: TypeHex, R: 255, G: 245, B: 238},
	"sienna":               {Type: TypeHex, R: 160, G: 82, B: 45},
	"silver":               {Type: TypeHex, R: 192, G: 192, B: 192},
	"skyblue":              {Type: TypeHex, R: 135, G: 206, B: 235},
	"slateblue":            {Type: TypeHex, R: 106, G: 90, B: 205},
	"slategray":            {Type: TypeHex, R: 112, G: 128, B: 144},
	"slategrey":            {Type: TypeHex, R: 112, G: 128, B: 144},
	"snow":                 {Type: TypeHex, R: 255, G: 250, B: 250},
	"springgreen":          {Type: TypeHex, R: 0, G: 255, B: 127},
	"steelblue":            {Type: TypeHex, R: 70, G: 130, B: 180},
	"tan":                  {Type: TypeHex, R: 210, G: 180, B: 140},
	"teal":                 {Type: TypeHex, R: 0, G: 128, B: 128},
	"thistle":              {Type: TypeHex, R: 216, G: 191, B: 216},
	"tomato":               {Type: TypeHex, R: 255, G: 99, B: 71},
	"turquoise":            {Type: TypeHex, R: 64, G: 224, B: 208},
	"violet":               {Type: TypeHex, R: 238, G: 130, B: 238},
	"wheat":                {Type: TypeHex, R: 245, G: 222, B: 179},
	"white":                {Type: TypeHex, R: 255, G: 255, B: 255},
	"whitesmoke":           {Type: TypeHex, R: 245, G: 245, B: 245},
	"yellow":               {Type: TypeHex, R: 255, G: 255, B: 0},
	"yellowgreen":          {Type: TypeHex, R: 154, G: 205, B: 50},
}
