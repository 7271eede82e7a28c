// Package catalog holds the read-only product and package entries consumed
// by the storefront. The reservation core references entries by name only.
package catalog

import "github.com/k-experience/service-reservation/internal/domain/pricing"

// Product is a single bookable experience.
type Product struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       pricing.GenderPrice `json:"price"`
	Region      string              `json:"region"`
}

// Package bundles several products at a single price.
type Package struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Products    []string `json:"products"`
	Price       int64    `json:"price"`
}

// Products returns the catalog of bookable experiences.
func Products() []Product {
	return []Product{
		{
			Name:        "Seoul Hanbok Experience",
			Description: "Traditional hanbok rental with guided palace tour",
			Price:       pricing.GenderPrice{Male: 55000, Female: 65000},
			Region:      "Seoul",
		},
		{
			Name:        "Han River Night Cruise",
			Description: "Evening cruise with city skyline views",
			Price:       pricing.GenderPrice{Male: 42000, Female: 42000},
			Region:      "Seoul",
		},
		{
			Name:        "Jeonju Hanok Village Stay",
			Description: "Overnight stay in a traditional hanok with breakfast",
			Price:       pricing.GenderPrice{Male: 120000, Female: 120000},
			Region:      "Jeonju",
		},
		{
			Name:        "Busan Coastal Temple Tour",
			Description: "Haedong Yonggungsa sunrise tour with local guide",
			Price:       pricing.GenderPrice{Male: 78000, Female: 78000},
			Region:      "Busan",
		},
	}
}

// Packages returns the bundled offerings.
func Packages() []Package {
	return []Package{
		{
			Name:        "Seoul Classic",
			Description: "Hanbok experience plus Han River night cruise",
			Products:    []string{"Seoul Hanbok Experience", "Han River Night Cruise"},
			Price:       89000,
		},
		{
			Name:        "Heritage Weekend",
			Description: "Jeonju hanok stay with hanbok experience",
			Products:    []string{"Jeonju Hanok Village Stay", "Seoul Hanbok Experience"},
			Price:       165000,
		},
	}
}

// FindProduct returns the product with the given name, if any.
func FindProduct(name string) (Product, bool) {
	for _, p := range Products() {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
