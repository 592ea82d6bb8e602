package property

// SampleProperties is the fixture `migrate --seed` loads into an empty table
func SampleProperties() []Property {
	return []Property{
		{Title: "Harbour view apartment", Description: "Two bedrooms over the marina, west facing balcony.", Price: "425000.00", Location: "Cape Town"},
		{Title: "Family house with garden", Description: "Four bedrooms, double garage and a walled garden.", Price: "610000.00", Location: "Nairobi"},
		{Title: "City studio", Description: "Compact studio close to the central station.", Price: "98500.50", Location: "Lagos"},
		{Title: "Hillside villa", Description: "Five bedrooms, pool and views across the valley.", Price: "1250000.00", Location: "Kigali"},
		{Title: "Loft conversion", Description: "Open-plan loft in a converted warehouse.", Price: "315750.25", Location: "Accra"},
	}
}
