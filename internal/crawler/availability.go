package crawler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var soldOutPattern = regexp.MustCompile(`(?i)\bsold\b|sold out|out of stock|\bunavailable\b|no longer available|\[sold\]|\(sold\)`)

// MatchesSoldOutText reports whether free text marks a listing as sold.
func MatchesSoldOutText(s string) bool {
	return soldOutPattern.MatchString(s)
}

// graphQLSoldOut: only an explicit availableForSale=false counts.
// totalInventory is ignored because stores that do not track inventory report 0.
func graphQLSoldOut(n graphQLProduct) bool {
	return n.AvailableForSale != nil && !*n.AvailableForSale
}

// publicSoldOut:
//
//	available=false              -> sold out
//	available absent             -> sold out iff every variant says available=false
//	available=true               -> available
func publicSoldOut(p publicProduct) bool {
	if p.Available != nil {
		return !*p.Available
	}
	if len(p.Variants) == 0 {
		return false
	}
	for _, v := range p.Variants {
		if v.Available == nil || *v.Available {
			return false
		}
	}
	return true
}

// squarespaceSoldOut: sold-out text in the title or any tag, or every
// stock-tracked variant at zero. Untracked (unlimited) variants never count.
func squarespaceSoldOut(it squarespaceItem) bool {
	if MatchesSoldOutText(it.Title) {
		return true
	}
	for _, tag := range it.Tags {
		if MatchesSoldOutText(tag) {
			return true
		}
	}
	tracked := 0
	for _, v := range it.allVariants() {
		if v.Unlimited == nil || *v.Unlimited {
			continue
		}
		tracked++
		if v.QtyInStock == nil || *v.QtyInStock != 0 {
			return false
		}
	}
	return tracked > 0
}

// rssSoldOut checks the title and description together.
func rssSoldOut(title, description string) bool {
	return MatchesSoldOutText(title + " " + description)
}

// parseAmount parses a decimal money string such as "1,234.50". It returns
// nil for anything that is not a finite number.
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
