package visual

// Format is a pixel-dimension label for a marketing placement.
type Format string

const (
	FormatLink    Format = "1200x628"
	FormatSquare  Format = "1080x1080"
	FormatStory   Format = "1080x1920"
	FormatBanner  Format = "600x200"
	DefaultFormat        = FormatLink
)

// Formats lists the supported labels; the first one is the default.
var Formats = []Format{FormatLink, FormatSquare, FormatStory, FormatBanner}

var dimensions = map[Format]string{
	FormatLink:   "w=1200&h=628&fit=crop&auto=format&q=80",
	FormatSquare: "w=1080&h=1080&fit=crop&auto=format&q=80",
	FormatStory:  "w=1080&h=1920&fit=crop&auto=format&q=80",
	FormatBanner: "w=600&h=200&fit=crop&auto=format&q=80",
}

// Dimensions returns the image query string for f, or the default format's for unknown labels.
func Dimensions(f Format) string {
	if d, ok := dimensions[f]; ok {
		return d
	}
	return dimensions[DefaultFormat]
}

// Theme is a visual subject: keywords are stored normalised.
type Theme struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Images   []string `json:"images"`
	Priority int      `json:"priority"`
}

// Registry is ordered; on equal scores the earlier theme wins.
type Registry []Theme

const FallbackTheme = "lagon"

// DefaultRegistry is the curated theme list used by the visual factory.
func DefaultRegistry() Registry {
	return Registry{
		{
			Name:     "avion",
			Priority: 3,
			Keywords: []string{"avion", "aeroport", "cabine", "cockpit", "airbus", "atr 72", "hublot", "decollage", "atterrissage", "equipage", "hotesse", "pilote"},
			Images: []string{
				"1436491865332-7a61a109cc05",
				"1474302770737-173ee21bab63",
				"1569154941061-e231b4725ef1",
				"1540339832862-474599807836",
			},
		},
		{
			Name:     "plongee",
			Priority: 3,
			Keywords: []string{"plong", "requin", "raie manta", "corail", "tuba", "snorkel", "sous-marin", "baleine", "tortue", "fakarava", "rangiroa", "tikehau"},
			Images: []string{
				"1544551763-46a013bb70d5",
				"1682687982501-1e58ab814714",
				"1559825481-12a05cc00344",
				"1583212292454-1fe6229603b7",
			},
		},
		{
			Name:     "culture",
			Priority: 2,
			Keywords: []string{"danse", "tradition", "costume", "tiare", "heiva", "tatou", "ukulele", "pirogue", "marae", "collier", "vahine", "culture"},
			Images: []string{
				"1590523741831-ab7e8b8f9c7f",
				"1600100397608-f010f41cd5f3",
				"1516815231560-8f41ec531527",
			},
		},
		{
			Name:     "famille",
			Priority: 2,
			Keywords: []string{"famille", "enfant", "couple", "lune de miel", "mariage", "romanti", "amoureux", "bebe", "grands-parents"},
			Images: []string{
				"1511895426328-dc8714191300",
				"1529156069898-49953e39b3ac",
				"1522673607200-164d1b6ce486",
			},
		},
		{
			Name:     "gastronomie",
			Priority: 2,
			Keywords: []string{"cuisine", "gastronom", "poisson cru", "repas", "restaurant", "vanille", "cocktail", "fruit", "dejeuner", "diner"},
			Images: []string{
				"1504674900247-0877df9cc836",
				"1540189549336-e6e99c3679fe",
				"1551024709-8f23befc6f87",
			},
		},
		{
			Name:     "lagon",
			Priority: 1,
			Keywords: []string{"lagon", "plage", "bora bora", "moorea", "turquoise", "sable", "cocotier", "motu", "paysage", "coucher de soleil", "bungalow", "ile"},
			Images: []string{
				"1589197331516-4d84b72ebde3",
				"1507525428034-b723cf961d3e",
				"1500375592092-40eb2168fd21",
				"1573843981267-be1999ff37cd",
				"1586861635167-e5223aadc9fe",
			},
		},
	}
}
