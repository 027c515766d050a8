// Package seed fills an empty store with a deterministic demo catalog.
package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/pkg/slug"
)

type category struct {
	name   string
	weight float64
	types  []string
	sizes  []string
}

var categories = []category{
	{"Shirts", 0.20, []string{"Linen Shirt", "Oxford Shirt", "Flannel Shirt", "Denim Shirt"}, apparelSizes},
	{"T-Shirts", 0.20, []string{"Crew Tee", "V-Neck Tee", "Pocket Tee", "Longline Tee"}, apparelSizes},
	{"Dresses", 0.15, []string{"Wrap Dress", "Slip Dress", "Shirt Dress", "Maxi Dress"}, apparelSizes},
	{"Knitwear", 0.10, []string{"Cable Knit", "Cardigan", "Merino Sweater", "Turtleneck"}, apparelSizes},
	{"Trousers", 0.15, []string{"Chino", "Wide Leg Trouser", "Cargo Pant", "Straight Jean"}, waistSizes},
	{"Outerwear", 0.10, []string{"Trench Coat", "Bomber Jacket", "Puffer", "Overshirt"}, apparelSizes},
	{"Accessories", 0.10, []string{"Wool Scarf", "Leather Belt", "Canvas Tote", "Beanie"}, oneSize},
}

var (
	apparelSizes = []string{"XS", "S", "M", "L", "XL"}
	waistSizes   = []string{"28", "30", "32", "34", "36"}
	oneSize      = []string{"One Size"}

	prefixes = []string{"Classic", "Relaxed", "Cropped", "Oversized", "Essential", "Heritage", "Everyday", "Tailored"}
	colors   = []string{"Black", "Ecru", "Navy", "Olive", "Sand", "Charcoal", "Rust", "Sage", "Stone", "Burgundy"}

	descriptions = []string{
		"A %s cut from soft, breathable fabric for everyday wear.",
		"Our %s in a relaxed fit. Machine washable and made to last.",
		"The %s you will reach for every season, finished with clean details.",
		"A modern take on the %s with a considered, easy silhouette.",
	}
)

// Options controls the generated catalog.
type Options struct {
	Count int
	// Seed makes two runs with the same value produce the same catalog.
	Seed uint64
	// DraftRatio is the share of products created as drafts.
	DraftRatio float64
	// ImageBaseURL prefixes the placeholder image paths.
	ImageBaseURL string
}

// Generate builds opts.Count products spread across the categories by
// weight. Slugs carry the product index so they never collide.
func Generate(opts Options) []domain.Product {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)) // #nosec G404 -- demo data
	products := make([]domain.Product, 0, opts.Count)

	for i, c := range spread(opts.Count) {
		cat := categories[c]
		kind := cat.types[rng.IntN(len(cat.types))]
		color := colors[rng.IntN(len(colors))]
		name := fmt.Sprintf("%s %s - %s", prefixes[rng.IntN(len(prefixes))], kind, color)
		desc := fmt.Sprintf(descriptions[rng.IntN(len(descriptions))], kind)

		// 19.00 to 249.00, whole units.
		price := decimal.NewFromInt(int64(19 + rng.IntN(231)))

		p := domain.Product{
			Name:         name,
			Slug:         fmt.Sprintf("%s-%d", slug.Generate(name), i+1),
			Description:  &desc,
			Price:        price,
			Category:     cat.name,
			Images:       images(opts.ImageBaseURL, i+1, 1+rng.IntN(3)),
			Sizes:        cat.sizes,
			Status:       domain.ProductStatusActive,
			Stock:        rng.IntN(120),
			IsNewArrival: rng.IntN(4) == 0,
		}
		if rng.Float64() < opts.DraftRatio {
			p.Status = domain.ProductStatusDraft
		}
		discount(rng, &p)
		products = append(products, p)
	}
	return products
}

// spread returns the category index of each product, filling categories in
// order. The last category absorbs the rounding remainder.
func spread(total int) []int {
	out := make([]int, 0, total)
	for c := range categories {
		n := int(float64(total) * categories[c].weight)
		if c == len(categories)-1 {
			n = total - len(out)
		}
		for range n {
			out = append(out, c)
		}
	}
	return out
}

func images(base string, n, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("%s/media/seed/%04d-%d.jpg", base, n, i+1)
	}
	return out
}

// discount puts roughly a third of the catalog on sale, split between
// percentage and fixed markdowns. Sale items show the list price crossed out.
func discount(rng *rand.Rand, p *domain.Product) {
	switch rng.IntN(6) {
	case 0:
		t := domain.DiscountPercentage
		p.DiscountType = &t
		p.DiscountValue = decimal.NewNullDecimal(decimal.NewFromInt(int64(10 + 5*rng.IntN(5))))
	case 1:
		t := domain.DiscountFixed
		p.DiscountType = &t
		quarter := int(p.Price.IntPart() / 4)
		p.DiscountValue = decimal.NewNullDecimal(decimal.NewFromInt(int64(5 + rng.IntN(quarter))))
	default:
		return
	}
	p.OriginalPrice = decimal.NewNullDecimal(p.Price)
}
