package gamelog

import "sort"

// categories maps every tag the censor understands. Tags are matched
// exactly; unlisted tags are Uncategorized.
var categories = map[string]Category{
	// Current format
	"GAME":                  Public,
	"GAME-ACCESS":           Public,
	"GAME-COMPAT":           Public,
	"GAME-EMOTE":            Public,
	"GAME-INTERNET-REQUEST": Public,
	"GAME-LAW":              Public,
	"GAME-OOC":              Public,
	"GAME-PRAYER":           Public,
	"GAME-RADIO-EMOTE":      Public,
	"GAME-SAY":              Public,
	"GAME-VOTE":             Public,
	"GAME-WHISPER":          Public,
	"ADMIN":                 Public,
	"ADMIN-CIRCUIT":         Public,
	"ADMIN-DSAY":            Public,
	"ADMIN-ASAY":            Private,
	"ADMIN-PM":              Private,
	"ADMIN-HELP":            Private,
	"ADMIN-PRIVATE":         Private,

	// Pre-2022 format
	"ACCESS":       Public,
	"CIRCUIT":      Public,
	"DSAY":         Public,
	"EMOTE":        Public,
	"LAW":          Public,
	"MECHA":        Public,
	"OOC":          Public,
	"PDA":          Public,
	"PRAYER":       Public,
	"SAY":          Public,
	"SHUTTLE":      Public,
	"SILICON":      Public,
	"TCOMMS":       Public,
	"VOTE":         Public,
	"WHISPER":      Public,
	"ADMINPRIVATE": Private,
	"ASAY":         Private,
	"AHELP":        Private,
}

// CategoryOf returns the Category of tag.
func CategoryOf(tag string) Category {
	return categories[tag]
}

// tags returns every known tag of the given category, sorted.
func tags(category Category) []string {
	var names []string
	for tag, c := range categories {
		if c == category {
			names = append(names, tag)
		}
	}
	sort.Strings(names)
	return names
}
