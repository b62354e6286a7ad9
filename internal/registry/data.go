package registry

import "github.com/shopspring/decimal"

func weights(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.NewFromFloat(v))
	}
	return out
}

// builtinCategories mirrors the platform's commodity configuration dataset.
var builtinCategories = []CategoryData{
	{
		Category: "cocoa",
		Products: []ProductVariant{
			{
				SubCategory: "premium_cocoa",
				ProductName: "Premium Trinitario Cocoa Beans",
				Description: "High-quality trinitario cocoa beans from Nimba County",
				PackagingOptions: []PackagingOption{
					{Type: "jute_bags", Name: "Jute Bags", StandardWeights: weights(50, 60, 80), Description: "Traditional jute sacks for cocoa storage"},
					{Type: "polypropylene_bags", Name: "Polypropylene Bags", StandardWeights: weights(50, 60, 100), Description: "Moisture-resistant polypropylene sacks"},
					{Type: "wooden_pallets", Name: "Wooden Pallets", StandardWeights: weights(500, 1000, 1500), Description: "Wooden pallets with multiple bag layers"},
					{Type: "export_containers", Name: "Export Containers", StandardWeights: weights(18000, 20000, 22000), Description: "20ft containers for international shipping"},
				},
				QualityGrades:             []string{"Grade I", "Grade II", "Fine Flavor", "Bulk"},
				CertificationRequirements: []string{"LACRA-CERT", "EUDR-COMPLIANT", "Fair-Trade", "Organic"},
				StorageRequirements: StorageRequirements{
					Temperature: "18-20°C",
					Humidity:    "60-65%",
					Ventilation: "Active",
					PestControl: "Required",
				},
				ShelfLifeDays: 365,
				HSCode:        "1801.00",
			},
			{
				SubCategory: "standard_cocoa",
				ProductName: "Standard Forastero Cocoa Beans",
				Description: "Standard grade forastero cocoa beans for bulk export",
				PackagingOptions: []PackagingOption{
					{Type: "jute_bags", Name: "Jute Bags", StandardWeights: weights(60, 80), Description: "Standard jute sacks"},
					{Type: "polypropylene_bags", Name: "Polypropylene Bags", StandardWeights: weights(60, 80, 100), Description: "Bulk storage bags"},
				},
				QualityGrades:             []string{"Grade II", "Bulk", "Standard"},
				CertificationRequirements: []string{"LACRA-CERT", "EUDR-COMPLIANT"},
				StorageRequirements: StorageRequirements{
					Temperature: "18-22°C",
					Humidity:    "65-70%",
					Ventilation: "Natural",
					PestControl: "Applied",
				},
				ShelfLifeDays: 300,
				HSCode:        "1801.00",
			},
		},
	},
	{
		Category: "coffee",
		Products: []ProductVariant{
			{
				SubCategory: "arabica_coffee",
				ProductName: "Liberian Arabica Coffee Beans",
				Description: "High-altitude arabica coffee from Lofa County",
				PackagingOptions: []PackagingOption{
					{Type: "sisal_bags", Name: "Sisal Bags", StandardWeights: weights(60, 69), Description: "Traditional sisal coffee bags"},
					{Type: "jute_bags", Name: "Jute Bags", StandardWeights: weights(60, 69, 70), Description: "Premium jute coffee sacks"},
					{Type: "grainpro_bags", Name: "GrainPro Bags", StandardWeights: weights(60, 69), Description: "Hermetic storage bags for quality preservation"},
					{Type: "wooden_pallets", Name: "Wooden Pallets", StandardWeights: weights(840, 1260, 1400), Description: "Palletized coffee for warehouse storage"},
				},
				QualityGrades:             []string{"Specialty", "Premium", "Commercial", "Standard"},
				CertificationRequirements: []string{"LACRA-CERT", "EUDR-COMPLIANT", "Rainforest Alliance", "UTZ"},
				StorageRequirements: StorageRequirements{
					Temperature: "15-20°C",
					Humidity:    "55-65%",
					Ventilation: "Active",
					PestControl: "Organic methods",
				},
				ShelfLifeDays: 180,
				HSCode:        "0901.11",
			},
			{
				SubCategory: "robusta_coffee",
				ProductName: "Robusta Coffee Beans",
				Description: "Strong robusta coffee beans from Bong County",
				PackagingOptions: []PackagingOption{
					{Type: "jute_bags", Name: "Jute Bags", StandardWeights: weights(60, 70, 80), Description: "Standard jute coffee bags"},
					{Type: "polypropylene_bags", Name: "Polypropylene Bags", StandardWeights: weights(50, 60, 70), Description: "Weather-resistant storage"},
				},
				QualityGrades:             []string{"Grade 1", "Grade 2", "Screen 18", "Screen 16"},
				CertificationRequirements: []string{"LACRA-CERT", "EUDR-COMPLIANT"},
				StorageRequirements: StorageRequirements{
					Temperature: "18-22°C",
					Humidity:    "60-65%",
					Ventilation: "Natural",
					PestControl: "Applied",
				},
				ShelfLifeDays: 150,
				HSCode:        "0901.21",
			},
		},
	},
	{
		Category: "palm_oil",
		Products: []ProductVariant{
			{
				SubCategory: "crude_palm_oil",
				ProductName: "Crude Palm Oil (CPO)",
				Description: "Fresh crude palm oil from processing mills",
				PackagingOptions: []PackagingOption{
					{Type: "plastic_drums", Name: "Plastic Drums", StandardWeights: weights(200, 220, 250), Description: "Food-grade plastic drums"},
					{Type: "steel_drums", Name: "Steel Drums", StandardWeights: weights(200, 220), Description: "Industrial steel drums"},
					{Type: "flexi_tanks", Name: "Flexi Tanks", StandardWeights: weights(20000, 22000, 24000), Description: "Flexible tank containers for bulk transport"},
					{Type: "iso_tanks", Name: "ISO Tank Containers", StandardWeights: weights(18000, 20000, 22000), Description: "Heated ISO tank containers"},
				},
				QualityGrades:             []string{"Grade A", "Grade B", "Technical Grade"},
				CertificationRequirements: []string{"LACRA-CERT", "EUDR-COMPLIANT", "RSPO", "HACCP"},
				StorageRequirements: StorageRequirements{
					Temperature: "45-50°C",
					Humidity:    "Controlled",
					Ventilation: "Heated storage",
					PestControl: "Clean environment",
				},
				ShelfLifeDays: 90,
				HSCode:        "1511.10",
			},
		},
	},
	{
		Category: "rubber",
		Products: []ProductVariant{
			{
				SubCategory: "natural_latex",
				ProductName: "Natural Rubber Latex",
				Description: "High-quality natural rubber latex",
				PackagingOptions: []PackagingOption{
					{Type: "latex_drums", Name: "Latex Drums", StandardWeights: weights(200, 250), Description: "Specialized latex storage drums"},
					{Type: "rubber_bales", Name: "Rubber Bales", StandardWeights: weights(33.33, 35), Description: "Compressed rubber bales"},
					{Type: "wooden_crates", Name: "Wooden Crates", StandardWeights: weights(500, 700, 1000), Description: "Export wooden crates"},
				},
				QualityGrades:             []string{"RSS1", "RSS2", "RSS3", "SMR20"},
				CertificationRequirements: []string{"LACRA-CERT", "EUDR-COMPLIANT", "FSC"},
				StorageRequirements: StorageRequirements{
					Temperature: "25-30°C",
					Humidity:    "60-70%",
					Ventilation: "Active",
					PestControl: "Fumigation",
				},
				ShelfLifeDays: 120,
				HSCode:        "4001.10",
			},
		},
	},
	{
		Category: "rice",
		Products: []ProductVariant{
			{
				SubCategory: "parboiled_rice",
				ProductName: "Parboiled Rice",
				Description: "Quality parboiled rice from Bong County",
				PackagingOptions: []PackagingOption{
					{Type: "polypropylene_bags", Name: "PP Bags", StandardWeights: weights(25, 50, 100), Description: "Woven polypropylene bags"},
					{Type: "jute_bags", Name: "Jute Bags", StandardWeights: weights(50, 100), Description: "Natural jute sacks"},
					{Type: "bulk_containers", Name: "Bulk Containers", StandardWeights: weights(1000, 1500, 2000), Description: "Large bulk storage containers"},
				},
				QualityGrades:             []string{"Premium", "Grade A", "Grade B", "Standard"},
				CertificationRequirements: []string{"LACRA-CERT", "HACCP", "ISO 22000"},
				StorageRequirements: StorageRequirements{
					Temperature: "20-25°C",
					Humidity:    "55-60%",
					Ventilation: "Active",
					PestControl: "Integrated pest management",
				},
				ShelfLifeDays: 365,
				HSCode:        "1006.30",
			},
		},
	},
	{
		Category: "cassava",
		Products: []ProductVariant{
			{
				SubCategory: "cassava_chips",
				ProductName: "Dried Cassava Chips",
				Description: "Dried and processed cassava chips for export",
				PackagingOptions: []PackagingOption{
					{Type: "polypropylene_bags", Name: "PP Bags", StandardWeights: weights(50, 100), Description: "Moisture-resistant bags"},
					{Type: "jute_bags", Name: "Jute Bags", StandardWeights: weights(50, 100), Description: "Breathable jute bags"},
					{Type: "bulk_bags", Name: "Bulk Bags (FIBC)", StandardWeights: weights(500, 1000, 1200), Description: "Flexible intermediate bulk containers"},
				},
				QualityGrades:             []string{"Premium", "Standard", "Feed Grade"},
				CertificationRequirements: []string{"LACRA-CERT", "HACCP"},
				StorageRequirements: StorageRequirements{
					Temperature: "20-25°C",
					Humidity:    "50-60%",
					Ventilation: "Active",
					PestControl: "Regular monitoring",
				},
				ShelfLifeDays: 180,
				HSCode:        "0714.10",
			},
		},
	},
}
