// Package card renders poems onto decorative backgrounds and picks the
// per-poem presentation theme.
package card

// Theme is one color scheme for poem presentation.
type Theme struct {
	Name       string
	Accent     string // border and emphasis
	Background string
	Title      string
	Text       string
}

// Themes is the fixed palette, cycled by display position.
var Themes = []Theme{
	{Name: "胭脂", Accent: "#881337", Background: "#fff1f2", Title: "#881337", Text: "#9f1239"},
	{Name: "祖母绿", Accent: "#065f46", Background: "#ecfdf5", Title: "#064e3b", Text: "#065f46"},
	{Name: "靛青", Accent: "#3730a3", Background: "#eef2ff", Title: "#312e81", Text: "#3730a3"},
	{Name: "琥珀", Accent: "#92400e", Background: "#fffbeb", Title: "#78350f", Text: "#92400e"},
	{Name: "天青", Accent: "#155e75", Background: "#ecfeff", Title: "#164e63", Text: "#155e75"},
	{Name: "紫罗兰", Accent: "#701a75", Background: "#fdf4ff", Title: "#701a75", Text: "#86198f"},
}

// ThemeFor cycles through the palette by display position.
func ThemeFor(index int) Theme {
	if index < 0 {
		index = -index
	}
	return Themes[index%len(Themes)]
}

// FigureImages lists the decorative figure files, in hash order.
var FigureImages = []string{
	"baishan.png", "benyue.png", "bottle.mei.png", "bottom.qunshan.png", "cao.png",
	"chuan.png", "ddh.png", "default.png", "denglou1.png", "denglou2.png",
	"denglouchuan.png", "fanchuan.png", "fenhua.png", "fenshu.png", "fenyue.png",
	"flower.moon.png", "girl.png", "guilinshanshui.png", "guohua.hehua.png", "guohua.hehua2.png",
	"guohua.hua.png", "he.png", "hehua.caise.png", "hehua.yu.shan.png", "hehua2.png",
	"hehua3.png", "hehuaqingting.png", "hehuayu.png", "hengshan.png", "heyue.png",
	"honghua.png", "huaniao.png", "huaping.png", "huashan.png", "hudie.png",
	"huizhuzi.png", "huofenghuang.png", "jianzhi.png", "jinyu.png", "left.bottom.mutong.png",
	"left.mei.png", "liahudie.png", "liangduohua.png", "lianiao.png", "long.png",
	"luohong.png", "lvzhu.png", "meihua.pink.png", "meihua.png", "meihua.shuimo.png",
	"meinv.png", "meinv2.png", "moon.png", "mozhu.png", "mujin.png",
	"mutong.png", "pomo.png", "pomodian.png", "qiangyan.png", "qunshan.png",
	"red.flower.png", "right.bottom.hehua.png", "right.bottom.honghehua.png", "right.bottom.hongmujin.png",
	"right.bottom.huaping.png", "right.bottom.qunshan.png", "right.bottom.yesun.png", "shuanghe.png",
	"shuanghe2.png", "song.png", "sundown.png", "wave.png", "xia.png",
	"yellow.flower.png", "yu.png", "yunshan.png", "yuweng.png", "zhuzi.png",
	"zuibaxian.png",
}

// FigureFor deterministically maps a poem id to a figure file, so the same
// poem always carries the same decoration within a session.
func FigureFor(id string) string {
	var hash int32
	for _, r := range id {
		hash = int32(r) + (hash<<5 - hash)
	}
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return FigureImages[h%int64(len(FigureImages))]
}
