package signal

// keywordEntry associates a lexicon term with a specificity weight and the
// semantic tag it suggests. Higher tiers are more specific: a brand name is
// stronger evidence than a generic word.
type keywordEntry struct {
	Term   string
	Tag    string
	Weight float64
}

// fixedLexicon lists terms that indicate recurring, amount-stable
// obligations: subscriptions, utilities, insurance, rent, telecom.
func fixedLexicon() []keywordEntry {
	return []keywordEntry{
		// Streaming and subscription brands - highest specificity
		{Term: "netflix", Tag: "streaming", Weight: 0.9},
		{Term: "spotify", Tag: "streaming", Weight: 0.9},
		{Term: "deezer", Tag: "streaming", Weight: 0.9},
		{Term: "disney", Tag: "streaming", Weight: 0.85},
		{Term: "canal", Tag: "streaming", Weight: 0.8},
		{Term: "prime video", Tag: "streaming", Weight: 0.85},
		{Term: "abonnement", Tag: "subscription", Weight: 0.8},
		{Term: "subscription", Tag: "subscription", Weight: 0.8},
		{Term: "basic fit", Tag: "sport", Weight: 0.85},
		{Term: "fitness park", Tag: "sport", Weight: 0.85},

		// Utilities
		{Term: "edf", Tag: "utilities", Weight: 0.9},
		{Term: "engie", Tag: "utilities", Weight: 0.9},
		{Term: "veolia", Tag: "utilities", Weight: 0.9},
		{Term: "suez", Tag: "utilities", Weight: 0.85},
		{Term: "electricite", Tag: "utilities", Weight: 0.7},
		{Term: "energie", Tag: "utilities", Weight: 0.6},

		// Insurance
		{Term: "assurance", Tag: "insurance", Weight: 0.8},
		{Term: "mutuelle", Tag: "insurance", Weight: 0.8},
		{Term: "maif", Tag: "insurance", Weight: 0.85},
		{Term: "macif", Tag: "insurance", Weight: 0.85},
		{Term: "matmut", Tag: "insurance", Weight: 0.85},
		{Term: "axa", Tag: "insurance", Weight: 0.8},

		// Telecom
		{Term: "orange", Tag: "telecom", Weight: 0.7},
		{Term: "sfr", Tag: "telecom", Weight: 0.85},
		{Term: "bouygues telecom", Tag: "telecom", Weight: 0.85},
		{Term: "free mobile", Tag: "telecom", Weight: 0.85},
		{Term: "sosh", Tag: "telecom", Weight: 0.85},
		{Term: "forfait", Tag: "telecom", Weight: 0.7},

		// Housing
		{Term: "loyer", Tag: "rent", Weight: 0.9},
		{Term: "rent", Tag: "rent", Weight: 0.7},
		{Term: "foncia", Tag: "rent", Weight: 0.8},
		{Term: "syndic", Tag: "rent", Weight: 0.75},

		// Generic recurring markers - low specificity
		{Term: "prlv", Tag: "", Weight: 0.5},
		{Term: "prelevement", Tag: "", Weight: 0.5},
		{Term: "mensualite", Tag: "", Weight: 0.6},
		{Term: "echeance", Tag: "", Weight: 0.6},
	}
}

// variableLexicon lists terms that indicate discretionary or amount-varying
// purchases: restaurants, retail, fuel, leisure.
func variableLexicon() []keywordEntry {
	return []keywordEntry{
		// Restaurants and fast food
		{Term: "mcdonald", Tag: "restaurant", Weight: 0.85},
		{Term: "burger king", Tag: "restaurant", Weight: 0.85},
		{Term: "kfc", Tag: "restaurant", Weight: 0.85},
		{Term: "restaurant", Tag: "restaurant", Weight: 0.8},
		{Term: "bistrot", Tag: "restaurant", Weight: 0.8},
		{Term: "brasserie", Tag: "restaurant", Weight: 0.8},
		{Term: "pizzeria", Tag: "restaurant", Weight: 0.8},
		{Term: "sushi", Tag: "restaurant", Weight: 0.75},
		{Term: "kebab", Tag: "restaurant", Weight: 0.8},
		{Term: "cafe", Tag: "restaurant", Weight: 0.6},
		{Term: "boulangerie", Tag: "bakery", Weight: 0.8},
		{Term: "deliveroo", Tag: "restaurant", Weight: 0.85},
		{Term: "uber eats", Tag: "restaurant", Weight: 0.85},

		// Groceries and retail
		{Term: "carrefour", Tag: "groceries", Weight: 0.8},
		{Term: "auchan", Tag: "groceries", Weight: 0.8},
		{Term: "leclerc", Tag: "groceries", Weight: 0.8},
		{Term: "intermarche", Tag: "groceries", Weight: 0.8},
		{Term: "monoprix", Tag: "groceries", Weight: 0.8},
		{Term: "lidl", Tag: "groceries", Weight: 0.8},
		{Term: "supermarche", Tag: "groceries", Weight: 0.75},
		{Term: "amazon", Tag: "shopping", Weight: 0.7},
		{Term: "fnac", Tag: "shopping", Weight: 0.8},
		{Term: "decathlon", Tag: "shopping", Weight: 0.8},
		{Term: "zara", Tag: "shopping", Weight: 0.8},
		{Term: "ikea", Tag: "shopping", Weight: 0.8},

		// Fuel and transport
		{Term: "station", Tag: "fuel", Weight: 0.6},
		{Term: "esso", Tag: "fuel", Weight: 0.85},
		{Term: "shell", Tag: "fuel", Weight: 0.8},
		{Term: "totalenergies", Tag: "fuel", Weight: 0.85},
		{Term: "autoroute", Tag: "transport", Weight: 0.7},
		{Term: "uber", Tag: "transport", Weight: 0.6},
		{Term: "sncf", Tag: "transport", Weight: 0.7},
		{Term: "taxi", Tag: "transport", Weight: 0.7},

		// Leisure
		{Term: "cinema", Tag: "leisure", Weight: 0.8},
		{Term: "pathe", Tag: "leisure", Weight: 0.8},
		{Term: "theatre", Tag: "leisure", Weight: 0.75},
		{Term: "bar", Tag: "leisure", Weight: 0.5},
		{Term: "pub", Tag: "leisure", Weight: 0.6},

		// Generic one-off markers - low specificity
		{Term: "retrait", Tag: "cash", Weight: 0.6},
		{Term: "achat", Tag: "", Weight: 0.3},
	}
}

// phraseLexicon lists 2-3 token contextual phrases that individual keywords
// miss or misread. Positive weight leans FIXED, negative leans VARIABLE.
type phraseEntry struct {
	Phrase string
	Tag    string
	Weight float64
}

func phraseLexicon() []phraseEntry {
	return []phraseEntry{
		{Phrase: "abonnement netflix", Tag: "streaming", Weight: 0.95},
		{Phrase: "abonnement mensuel", Tag: "subscription", Weight: 0.9},
		{Phrase: "abonnement annuel", Tag: "subscription", Weight: 0.85},
		{Phrase: "facture internet", Tag: "telecom", Weight: 0.9},
		{Phrase: "facture mobile", Tag: "telecom", Weight: 0.9},
		{Phrase: "box internet", Tag: "telecom", Weight: 0.9},
		{Phrase: "assurance habitation", Tag: "insurance", Weight: 0.9},
		{Phrase: "assurance auto", Tag: "insurance", Weight: 0.9},
		{Phrase: "salle de sport", Tag: "sport", Weight: 0.85},
		{Phrase: "credit immobilier", Tag: "loan", Weight: 0.95},
		{Phrase: "pret personnel", Tag: "loan", Weight: 0.9},

		{Phrase: "station service", Tag: "fuel", Weight: -0.8},
		{Phrase: "fast food", Tag: "restaurant", Weight: -0.85},
		{Phrase: "food truck", Tag: "restaurant", Weight: -0.85},
		{Phrase: "vente a distance", Tag: "shopping", Weight: -0.6},
		{Phrase: "retrait dab", Tag: "cash", Weight: -0.8},
	}
}
