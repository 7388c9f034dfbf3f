// Package corpus loads and normalizes poem collections.
package corpus

import "jinqiu/internal/model"

// Kind tags the source shape of a collection and selects its normalizer.
type Kind string

// Known source shapes.
const (
	KindTang    Kind = "tang"    // title + contents|paragraphs
	KindSong    Kind = "song"    // rhythmic + paragraphs
	KindNalan   Kind = "nalan"   // title|rhythmic + para|paragraphs
	KindWudai   Kind = "wudai"   // title|rhythmic + paragraphs
	KindShijing Kind = "shijing" // title|chapter·section + content
	KindGeneric Kind = "generic" // any of the known field spellings
)

// Collection describes one named category of the catalog.
//
// Exactly one of the following layouts applies: a single backing file
// (len(Paths) == 1), a composite of several files merged at page 0
// (len(Paths) > 1), a sharded family addressed by numeric offset
// (ShardPattern != ""), or no backing files at all (the custom category).
type Collection struct {
	Key     string
	Name    string
	Kind    Kind
	Dynasty string

	Paths        []string
	ShardPattern string // fmt pattern with one %d placeholder
	ShardStep    int
	ReadmePath   string
}

// Sharded reports whether the collection is a numeric-offset file family.
func (c Collection) Sharded() bool {
	return c.ShardPattern != ""
}

// CustomKey identifies the category whose members come only from runtime
// user actions.
const CustomKey = "custom"

var huajianjiPaths = []string{
	"五代诗词/huajianji/huajianji-1-juan.json",
	"五代诗词/huajianji/huajianji-2-juan.json",
	"五代诗词/huajianji/huajianji-3-juan.json",
	"五代诗词/huajianji/huajianji-4-juan.json",
	"五代诗词/huajianji/huajianji-5-juan.json",
	"五代诗词/huajianji/huajianji-6-juan.json",
	"五代诗词/huajianji/huajianji-7-juan.json",
	"五代诗词/huajianji/huajianji-8-juan.json",
	"五代诗词/huajianji/huajianji-9-juan.json",
	"五代诗词/huajianji/huajianji-x-juan.json",
}

// Catalog is the fixed list of categories, in display order.
var Catalog = []Collection{
	{
		Key:        "tang-300",
		Name:       "唐诗三百首",
		Kind:       KindTang,
		Dynasty:    model.DynastyTang,
		Paths:      []string{"唐诗三百首/tang_poem.json"},
		ReadmePath: "唐诗三百首/README.md",
	},
	{
		Key:        "song-300",
		Name:       "宋词三百首",
		Kind:       KindSong,
		Dynasty:    model.DynastySong,
		Paths:      []string{"宋词三百首/song_poem.json"},
		ReadmePath: "宋词三百首/README.md",
	},
	{
		Key:     "shuimotangshi",
		Name:    "水墨唐诗",
		Kind:    KindTang,
		Dynasty: model.DynastyTang,
		Paths:   []string{"水墨唐诗/shuimotangshi.json"},
	},
	{
		Key:        "shijing",
		Name:       "诗经",
		Kind:       KindShijing,
		Dynasty:    model.DynastyPreQin,
		Paths:      []string{"诗经/shijing.json"},
		ReadmePath: "诗经/README.md",
	},
	{
		Key:        "wudai",
		Name:       "五代诗词",
		Kind:       KindWudai,
		Dynasty:    model.DynastyWudai,
		Paths:      append([]string{"五代诗词/nantang/poetrys.json"}, huajianjiPaths...),
		ReadmePath: "五代诗词/README.md",
	},
	{
		Key:        "nalan",
		Name:       "纳兰性德",
		Kind:       KindNalan,
		Dynasty:    model.DynastyQing,
		Paths:      []string{"纳兰性德/纳兰性德诗集.json"},
		ReadmePath: "纳兰性德/README.md",
	},
	{
		Key:          "quantangshi",
		Name:         "全唐诗",
		Kind:         KindGeneric,
		Dynasty:      model.DynastyTang,
		ShardPattern: "全唐诗/poet.tang.%d.json",
		ShardStep:    1000,
	},
	{
		Key:     CustomKey,
		Name:    "个性化",
		Kind:    KindGeneric,
		Dynasty: model.DynastyModern,
	},
}

// Lookup returns the catalog entry for key.
func Lookup(key string) (Collection, bool) {
	for _, c := range Catalog {
		if c.Key == key {
			return c, true
		}
	}
	return Collection{}, false
}

// HomeSource is one file fetched eagerly for the merged home corpus.
type HomeSource struct {
	Tag     string
	Path    string
	Kind    Kind
	Dynasty string
}

// HomeSources lists the files merged into the home corpus.
func HomeSources() []HomeSource {
	sources := []HomeSource{
		{Tag: "tang", Path: "唐诗三百首/tang_poem.json", Kind: KindTang, Dynasty: model.DynastyTang},
		{Tag: "song", Path: "宋词三百首/song_poem.json", Kind: KindSong, Dynasty: model.DynastySong},
		{Tag: "shuimo", Path: "水墨唐诗/shuimotangshi.json", Kind: KindTang, Dynasty: model.DynastyTang},
		{Tag: "nalan", Path: "纳兰性德/纳兰性德诗集.json", Kind: KindNalan, Dynasty: model.DynastyQing},
		{Tag: "nantang", Path: "五代诗词/nantang/poetrys.json", Kind: KindWudai, Dynasty: model.DynastyWudai},
		{Tag: "shijing", Path: "诗经/shijing.json", Kind: KindShijing, Dynasty: model.DynastyPreQin},
	}
	for i, path := range huajianjiPaths[:5] {
		sources = append(sources, HomeSource{
			Tag:     "huajian-" + string(rune('1'+i)),
			Path:    path,
			Kind:    KindWudai,
			Dynasty: model.DynastyWudai,
		})
	}
	return sources
}

// CoupletSourcePath locates the classical pairing text for the couplet game.
const CoupletSourcePath = "raw.txt"
