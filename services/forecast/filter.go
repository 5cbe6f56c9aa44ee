package forecast

// product lines carried in the master that are never forecast: they are
// either not sold standalone or have no meaningful demand signal.
var excludedProductLines = map[string]bool{
	"Accessories":      true,
	"Others":           true,
	"Packaging":        true,
	"Raw Materials":    true,
	"Promotion Bundle": true,
}

// FilterProducts keeps only forecastable products: tangible single-unit
// SKUs that are not archived and not in an excluded product line.
func FilterProducts(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Type != "single" {
			continue
		}
		if !p.Tangible {
			continue
		}
		if p.Status == "archived" {
			continue
		}
		if excludedProductLines[p.ProductLine] {
			continue
		}
		out = append(out, p)
	}
	return out
}
