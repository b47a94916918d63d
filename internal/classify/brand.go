package classify

import "strings"

type Brand struct {
	Slug     string
	Label    string
	Keywords []string
}

// brandRegistry is ordered; a title naming two brands resolves to the earlier one.
var brandRegistry = []Brand{
	{Slug: "chanel", Label: "Chanel", Keywords: []string{"chanel"}},
	{Slug: "hermes", Label: "Hermès", Keywords: []string{"hermès", "hermes"}},
	{Slug: "louis-vuitton", Label: "Louis Vuitton", Keywords: []string{"louis vuitton", "vuitton"}},
	{Slug: "gucci", Label: "Gucci", Keywords: []string{"gucci"}},
	{Slug: "miu-miu", Label: "Miu Miu", Keywords: []string{"miu miu", "miumiu"}},
	{Slug: "prada", Label: "Prada", Keywords: []string{"prada"}},
	{Slug: "dior", Label: "Dior", Keywords: []string{"christian dior", "dior"}},
	{Slug: "saint-laurent", Label: "Saint Laurent", Keywords: []string{"saint laurent", "ysl", "yves saint laurent"}},
	{Slug: "celine", Label: "Celine", Keywords: []string{"céline", "celine"}},
	{Slug: "fendi", Label: "Fendi", Keywords: []string{"fendi"}},
	{Slug: "balenciaga", Label: "Balenciaga", Keywords: []string{"balenciaga"}},
	{Slug: "bottega-veneta", Label: "Bottega Veneta", Keywords: []string{"bottega veneta", "bottega"}},
	{Slug: "givenchy", Label: "Givenchy", Keywords: []string{"givenchy"}},
	{Slug: "valentino", Label: "Valentino", Keywords: []string{"valentino"}},
	{Slug: "versace", Label: "Versace", Keywords: []string{"versace"}},
	{Slug: "loewe", Label: "Loewe", Keywords: []string{"loewe"}},
	{Slug: "burberry", Label: "Burberry", Keywords: []string{"burberry"}},
	{Slug: "alexander-mcqueen", Label: "Alexander McQueen", Keywords: []string{"alexander mcqueen", "mcqueen"}},
	{Slug: "christian-louboutin", Label: "Christian Louboutin", Keywords: []string{"louboutin"}},
	{Slug: "manolo-blahnik", Label: "Manolo Blahnik", Keywords: []string{"manolo blahnik", "manolo"}},
	{Slug: "jimmy-choo", Label: "Jimmy Choo", Keywords: []string{"jimmy choo"}},
	{Slug: "chloe", Label: "Chloé", Keywords: []string{"chloé", "chloe"}},
	{Slug: "goyard", Label: "Goyard", Keywords: []string{"goyard"}},
	{Slug: "dolce-gabbana", Label: "Dolce & Gabbana", Keywords: []string{"dolce & gabbana", "dolce and gabbana", "dolce gabbana", "d&g"}},
	{Slug: "moschino", Label: "Moschino", Keywords: []string{"moschino"}},
	{Slug: "vivienne-westwood", Label: "Vivienne Westwood", Keywords: []string{"vivienne westwood", "westwood"}},
	{Slug: "jean-paul-gaultier", Label: "Jean Paul Gaultier", Keywords: []string{"jean paul gaultier", "gaultier"}},
	{Slug: "issey-miyake", Label: "Issey Miyake", Keywords: []string{"issey miyake", "pleats please"}},
}

// Brands returns a copy of the registry in match order.
func Brands() []Brand {
	out := make([]Brand, len(brandRegistry))
	copy(out, brandRegistry)
	return out
}

// BrandFromTitle returns the first registered brand with a keyword inside the title.
func BrandFromTitle(title string) (Brand, bool) {
	t := strings.ToLower(title)
	for _, b := range brandRegistry {
		for _, k := range b.Keywords {
			if strings.Contains(t, k) {
				return b, true
			}
		}
	}
	return Brand{}, false
}

// BrandSlugFromTitle is BrandFromTitle reduced to the slug, "" when unknown.
func BrandSlugFromTitle(title string) string {
	b, ok := BrandFromTitle(title)
	if !ok {
		return ""
	}
	return b.Slug
}
