package models

// Category code tables. Profiles store the code; labels are for clients
// and the admin CLI.

const MaxInterests = 5

var SexChoices = map[string]string{
	"M": "Male",
	"F": "Female",
}

var ShowMeChoices = map[string]string{
	"M": "Men",
	"W": "Women",
}

var DormChoices = map[string]string{
	"1":  "Chapel Glen",
	"2":  "Gateway Heights",
	"3":  "Impact and Prosperity Epicenter",
	"4":  "Kahlert Village",
	"5":  "Lassonde Studios",
	"6":  "Officers Circle",
	"7":  "Sage Point",
	"8":  "Marriott Honors Community",
	"9":  "Guest House",
	"10": "I don't know",
}

var InterestChoices = map[string]string{
	"1": "Reading", "2": "Gym", "3": "Gaming", "4": "Music", "5": "Cooking",
	"6": "Hiking", "7": "Skiing", "8": "Snowboarding", "9": "Movies", "10": "Art",
	"11": "Photography", "12": "Dance", "13": "Volleyball", "14": "Basketball", "15": "Tennis",
	"16": "Golf", "17": "Swimming", "18": "Skateboarding", "19": "Anime", "20": "Board Games",
	"21": "Coding", "22": "Thrifting", "23": "Fishing", "24": "Church", "25": "Camping",
	"26": "Soccer", "27": "Lacrosse", "28": "Dirt Biking", "29": "Chill", "30": "Travel",
	"31": "Going on runs", "32": "Track and Field", "33": "Football", "34": "Baseball", "35": "Cheer",
	"36": "Figure Skating", "37": "Cross Country", "38": "Napping", "39": "Business Scholars",
	"40": "Honors College", "41": "ROTC", "42": "Rocket League", "43": "Fortnite", "44": "COD",
	"45": "Drinking", "46": "Smoking", "47": "LGBTQ+", "48": "Mountain Biking",
	"49": "Rock Climbing", "50": "Nature",
}

// ValidInterests reports whether every code is known and the count is
// within the per-profile limit.
func ValidInterests(codes []string) bool {
	if len(codes) > MaxInterests {
		return false
	}
	for _, c := range codes {
		if _, ok := InterestChoices[c]; !ok {
			return false
		}
	}
	return true
}
