package services

import (
	"regexp"
	"sync"
)

// Names and unit names are public on the leaderboards, so they go through a
// small content filter before they are stored.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
}

type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	once              sync.Once
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{}
	f.compile()
	return f
}

func (f *ContentFilter) compile() {
	f.once.Do(func() {
		f.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
		for _, word := range BannedWords {
			if re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`); err == nil {
				f.bannedWordRegexps = append(f.bannedWordRegexps, re)
			}
		}
		f.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
		f.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	})
}

// Check returns ok=false with a reason code when text is not fit for public display.
func (f *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if f.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	return true, ""
}

func (f *ContentFilter) RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Names shown on the leaderboard cannot contain inappropriate language.",
		"url_not_allowed":          "Names cannot contain URLs or web links.",
		"contact_info_not_allowed": "Names cannot contain contact information.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "This name does not meet our content guidelines."
}
