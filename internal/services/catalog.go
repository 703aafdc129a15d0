package services

import (
	"fmt"

	"github.com/latestcomment/influence-scoring/internal/models"
)

var catalogs = map[models.Country][]string{
	models.CountryTunisia: {
		"Midi Show - Mosaique FM",
		"Expresso - Express FM",
		"Rendez-vous 9 - Attessia TV",
		"Wahech Checha - Carthage+",
		"Politica - Jawhara FM",
		"Sbeh El Khir - Shems FM",
		"Al Yawm Al Thamen - Wataniya 1",
		"Ahna Hakka - El Hiwar Ettounsi",
	},
	models.CountryLebanon: {
		"Sar El Waet - MTV Lebanon",
		"Nharkom Said - LBCI",
		"Vision 2030 - LBCI",
		"Lahza Hiwar - Al Jadeed",
		"Beirut Al Yawm - Al Jadeed",
		"Hiwar El Sa'a - OTV",
		"Bi Mawdouiya - MTV Lebanon",
		"Hadith Al Balad - Sawt Beirut International",
	},
}

// Countries lists the supported countries in display order.
func Countries() []models.Country {
	return []models.Country{models.CountryTunisia, models.CountryLebanon}
}

// CatalogFor returns the sample titles that may be scored for a country.
// The returned slice is a copy.
func CatalogFor(country models.Country) ([]string, error) {
	titles, ok := catalogs[country]
	if !ok {
		return nil, fmt.Errorf("unsupported country %q", country)
	}
	return append([]string(nil), titles...), nil
}

func inCatalog(country models.Country, title string) bool {
	for _, t := range catalogs[country] {
		if t == title {
			return true
		}
	}
	return false
}
