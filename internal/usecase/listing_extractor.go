package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/catalog-crawler/internal/entity"
)

// ExtractListings parses a rendered page and returns every element that looks
// like a product listing for site. It never fails: unparseable pages yield no
// listings and a broken element only drops itself.
func ExtractListings(snapshot *entity.PageSnapshot, site entity.SiteConfig) []entity.RawListing {
	if snapshot == nil || strings.TrimSpace(snapshot.HTML) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot.HTML))
	if err != nil {
		return nil
	}

	var listings []entity.RawListing
	doc.Find(site.Selectors.Listing).Each(func(_ int, s *goquery.Selection) {
		if listing, ok := extractListing(s, site); ok {
			listings = append(listings, listing)
		}
	})
	return listings
}

func extractListing(s *goquery.Selection, site entity.SiteConfig) (listing entity.RawListing, ok bool) {
	defer func() {
		if recover() != nil {
			listing, ok = entity.RawListing{}, false
		}
	}()

	sel := site.Selectors

	href := strings.TrimSpace(s.AttrOr("href", ""))
	if href == "" && goquery.NodeName(s) != "a" {
		href = strings.TrimSpace(s.Find(sel.ProductLink).First().AttrOr("href", ""))
	}

	title := strings.TrimSpace(s.Find(sel.Title).First().Text())
	if title == "" {
		title = firstLine(s.Text())
	}

	if href == "" || title == "" || !strings.Contains(href, site.ProductPath) {
		return entity.RawListing{}, false
	}

	img := s.Find(sel.Image).First()
	image := strings.TrimSpace(img.AttrOr("src", ""))
	if image == "" {
		image = strings.TrimSpace(img.AttrOr("data-src", ""))
	}

	return entity.RawListing{
		Title:    title,
		URL:      href,
		Price:    ParsePrice(s.Find(sel.Price).First().Text()),
		ImageURL: image,
	}, true
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

var (
	priceNoise  = regexp.MustCompile(`[^\d.]`)
	pricePrefix = regexp.MustCompile(`^\d+(\.\d+)?`)
)

// ParsePrice pulls a decimal out of noisy price text such as "Rs. 1,299.00".
// Missing, unparseable and zero prices all come back as nil.
func ParsePrice(text string) *float64 {
	cleaned := priceNoise.ReplaceAllString(text, "")
	// Currency abbreviations like "Rs." leave a leading dot behind.
	cleaned = strings.TrimLeft(cleaned, ".")
	num := pricePrefix.FindString(cleaned)
	if num == "" {
		return nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}
