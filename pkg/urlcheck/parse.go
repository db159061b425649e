package urlcheck

import (
	"regexp"
	"strings"
)

var entryRE = regexp.MustCompile(`(?s)plant:\s*"([^"]+)".*?url:\s*"(https?://[^"]+)"`)

// Entry is a plant with its care page, found at Line (1-based) of the data file.
type Entry struct {
	Plant string
	URL   string
	Line  int
}

// ParseEntries returns every plant/url pair of src in order. The url may appear on a
// later line than its plant.
func ParseEntries(src string) []Entry {
	var entries []Entry
	for _, m := range entryRE.FindAllStringSubmatchIndex(src, -1) {
		entries = append(entries, Entry{
			Plant: src[m[2]:m[3]],
			URL:   src[m[4]:m[5]],
			Line:  strings.Count(src[:m[0]], "\n") + 1,
		})
	}
	return entries
}
