// Package profanity screens user chat before it reaches a party's log.
// Messages that trip the filter are dropped the same way any other invalid
// send is: silently.
package profanity

import (
	"embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"sync"
)

var (
	// Global instance for reuse (thread-safe)
	defaultFilter *ProfanityFilter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func loadBannedWords() []string {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		log.Fatalf("Failed to read embedded file: %s", err)
	}

	var bannedWords []string
	if err := json.Unmarshal(data, &bannedWords); err != nil {
		log.Fatalf("Failed to unmarshal JSON: %s", err)
	}
	return bannedWords
}

type ProfanityFilter struct {
	regex *regexp.Regexp
}

func NewProfanityFilter() *ProfanityFilter {
	once.Do(func() {
		defaultFilter = &ProfanityFilter{
			regex: buildMasterRegex(),
		}
	})

	return defaultFilter
}

func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	if text == "" {
		return false
	}
	return pf.regex.MatchString(normalizeText(text))
}

// normalizeText lowers the text and undoes the common leetspeak
// substitutions used to slip past wordlists.
func normalizeText(text string) string {
	s := strings.ToLower(text)

	s = strings.NewReplacer(
		"@", "a", "4", "a",
		"3", "e",
		"1", "i", "!", "i", "|", "i",
		"0", "o",
		"$", "s", "5", "s",
		"7", "t", "+", "t",
	).Replace(s)

	// Collapse separators hiding inside words: f.u.c.k → fuck
	s = separatorRe.ReplaceAllString(s, "")

	return s
}

var separatorRe = regexp.MustCompile(`[\s_.\-*/\\|]+`)

func buildMasterRegex() *regexp.Regexp {
	words := loadBannedWords()
	patterns := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		patterns = append(patterns, regexp.QuoteMeta(strings.ToLower(w)))
	}

	return regexp.MustCompile(`(` + strings.Join(patterns, "|") + `)`)
}
