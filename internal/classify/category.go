// Package classify infers display metadata from free-text listing titles.
//
// Everything here is pure and recomputed at read time, so editing a keyword
// table reclassifies the existing catalog without a migration.
package classify

import (
	"regexp"
	"strings"
)

type Category string

const (
	Clothes     Category = "clothes"
	Bags        Category = "bags"
	Shoes       Category = "shoes"
	Accessories Category = "accessories"
)

// Categories lists the closed category set in display order.
var Categories = []Category{Clothes, Bags, Shoes, Accessories}

type keywordGroup struct {
	category Category
	keywords []string
	re       *regexp.Regexp
}

// Order matters: the first group that matches wins.
var categoryGroups = []keywordGroup{
	{
		category: Shoes,
		keywords: []string{
			"shoe", "sneaker", "boot", "bootie", "heel", "pump", "loafer",
			"sandal", "mule", "oxford", "espadrille", "slingback", "stiletto",
			"clog", "trainer", "moccasin", "wedge", "ballet flat", "platform shoe",
			// designers who only make footwear
			"manolo blahnik", "manolo", "louboutin", "jimmy choo",
			"stuart weitzman", "giuseppe zanotti", "roger vivier",
		},
	},
	{
		category: Bags,
		keywords: []string{
			"bag", "handbag", "purse", "clutch", "tote", "satchel", "backpack",
			"crossbody", "cross body", "hobo", "pochette", "baguette", "minaudiere",
			"duffle", "weekender", "messenger", "birkin", "neverfull", "speedy",
		},
	},
	{
		category: Accessories,
		keywords: []string{
			"belt", "scarf", "scarves", "hat", "beanie", "beret", "sunglasses",
			"eyewear", "necklace", "bracelet", "bangle", "earring", "ring",
			"brooch", "jewelry", "jewellery", "watch", "glove", "necktie",
			"bow tie", "wallet", "cardholder", "card holder", "keychain",
			"pendant", "cufflink", "headband", "bandana", "hair clip",
		},
	},
}

func init() {
	for i := range categoryGroups {
		categoryGroups[i].re = keywordPattern(categoryGroups[i].keywords)
	}
}

// keywordPattern matches any keyword as a whole word, allowing a plural suffix.
func keywordPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)(?:e?s)?\b`)
}

// CategoryFromTitle returns the category for a listing title. Titles with no
// keyword match fall back to Clothes.
func CategoryFromTitle(title string) Category {
	t := strings.ToLower(title)
	for _, g := range categoryGroups {
		if g.re.MatchString(t) {
			return g.category
		}
	}
	return Clothes
}
