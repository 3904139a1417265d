package seed

import "github.com/xenking/storefront/internal/schema"

const imageBase = "https://images.unsplash.com/"

func image(id string) string { return imageBase + id }

// Catalog returns the demo products written by SeedCatalog, in order.
func Catalog() []schema.ProductInput {
	return []schema.ProductInput{
		{
			Title:       "Nebula Runner Sneakers",
			Description: schema.Ptr("Lightweight knit with iridescent sole for anti-gravity vibes."),
			Price:       189,
			Category:    "Footwear",
			Images: []string{
				image("photo-1542291026-7eec264c27ff"),
				image("photo-1519741497674-611481863552"),
			},
			Thumbnail: schema.Ptr(image("photo-1542291026-7eec264c27ff")),
			Tags:      []string{"sneakers", "iridescent", "knit"},
			Specs:     map[string]string{"Weight": "210g", "Material": "AeroKnit", "Drop": "6mm"},
			InStock:   schema.Ptr(true),
			Inventory: schema.Ptr(24),
			Featured:  schema.Ptr(true),
			Rating:    schema.Ptr(4.7),
		},
		{
			Title:       "Quantum Mesh Backpack",
			Description: schema.Ptr("Suspended compartments with anti-sag structure."),
			Price:       129,
			Category:    "Accessories",
			Images: []string{
				image("photo-1618354691510-58fbe6b3ac8b"),
				image("photo-1516542076529-1ea3854896e1"),
			},
			Thumbnail: schema.Ptr(image("photo-1618354691510-58fbe6b3ac8b")),
			Tags:      []string{"backpack", "mesh"},
			Specs:     map[string]string{"Capacity": "24L", "Weight": "650g", "Material": "Tessellate Mesh"},
			Featured:  schema.Ptr(true),
		},
		{
			Title:       "Aurora Layered Jacket",
			Description: schema.Ptr("Thermo-reactive panels shift hue with temperature."),
			Price:       259,
			Category:    "Outerwear",
			Images: []string{
				image("photo-1551024709-8f23befc6cf7"),
				image("photo-1551537482-f2075a1d41f2"),
			},
			Thumbnail: schema.Ptr(image("photo-1551024709-8f23befc6cf7")),
			Tags:      []string{"jacket", "heat-reactive"},
			Specs:     map[string]string{"Shell": "PolyPhase", "Lining": "AeroWeave"},
			Featured:  schema.Ptr(true),
		},
		{
			Title:       "Flux Knit Tee",
			Description: schema.Ptr("Zero-seam knit with breathable micro vents."),
			Price:       69,
			Category:    "Apparel",
			Images:      []string{image("photo-1520975916090-3105956dac38")},
			Thumbnail:   schema.Ptr(image("photo-1520975916090-3105956dac38")),
			Tags:        []string{"tee", "knit"},
		},
		{
			Title:       "HoloCore Bottle",
			Description: schema.Ptr("Double-wall with prismatic inner coating."),
			Price:       39,
			Category:    "Accessories",
			Images:      []string{image("photo-1517336714731-489689fd1ca8")},
			Thumbnail:   schema.Ptr(image("photo-1517336714731-489689fd1ca8")),
			Tags:        []string{"bottle", "holographic"},
		},
		{
			Title:       "PulseTrack Watch",
			Description: schema.Ptr("Ceramic body with spectral heart-rate wave."),
			Price:       349,
			Category:    "Wearables",
			Images:      []string{image("photo-1511739001486-6bfe10ce785f")},
			Thumbnail:   schema.Ptr(image("photo-1511739001486-6bfe10ce785f")),
			Tags:        []string{"watch"},
			Featured:    schema.Ptr(true),
		},
		{
			Title:       "Vector Grid Cap",
			Description: schema.Ptr("Laser-perf brim with 3D embroidered grid."),
			Price:       45,
			Category:    "Apparel",
			Images:      []string{image("photo-1520975916090-3105956dac38")},
			Thumbnail:   schema.Ptr(image("photo-1520975916090-3105956dac38")),
			Tags:        []string{"cap"},
		},
		{
			Title:       "Iridesse Socks",
			Description: schema.Ptr("Gradient yarn with reinforced arch."),
			Price:       19,
			Category:    "Apparel",
			Images:      []string{image("photo-1542291026-7eec264c27ff")},
			Thumbnail:   schema.Ptr(image("photo-1542291026-7eec264c27ff")),
			Tags:        []string{"socks"},
		},
	}
}
