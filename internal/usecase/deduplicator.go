package usecase

import (
	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/pkg/utils"
)

// DedupeListings resolves every listing URL against baseURL and collapses
// listings that share the resolved URL. The first listing for a URL supplies
// title and URL; later ones only fill in a price or image the first lacked.
// Output keeps first-occurrence order. skipped counts URLs that could not be
// resolved.
func DedupeListings(baseURL string, raw []entity.RawListing) (canonical []entity.CanonicalListing, skipped int) {
	index := make(map[string]int, len(raw))
	canonical = make([]entity.CanonicalListing, 0, len(raw))

	for _, l := range raw {
		abs, err := utils.ToAbsoluteURL(baseURL, l.URL)
		if err != nil {
			skipped++
			continue
		}

		i, seen := index[abs]
		if !seen {
			index[abs] = len(canonical)
			canonical = append(canonical, entity.CanonicalListing{
				Title:    l.Title,
				URL:      abs,
				Price:    l.Price,
				ImageURL: l.ImageURL,
			})
			continue
		}

		c := &canonical[i]
		if c.Price == nil && l.Price != nil {
			c.Price = l.Price
		}
		if c.ImageURL == "" && l.ImageURL != "" {
			c.ImageURL = l.ImageURL
		}
	}
	return canonical, skipped
}
