package separator

import (
	"regexp"
	"strings"
)

// Repair attempts a mechanical fix of near-JSON that failed to parse:
// trailing commas removed, bare scalar values quoted, single quotes
// converted to double quotes. Quote conversion mangles apostrophes inside
// text, so this runs only after a clean parse has already failed.
func Repair(s string) string {
	s = StripTrailingCommas(s)
	s = quoteBareScalars(s)
	s = strings.ReplaceAll(s, "'", `"`)
	return s
}

// Matches `: value` where value is a bare word (not a number, quoted string,
// object, or array).
var bareScalarRe = regexp.MustCompile(`:\s*([A-Za-z_][^,{}\[\]"']*?)\s*([,}\]])`)

func quoteBareScalars(s string) string {
	return bareScalarRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := bareScalarRe.FindStringSubmatch(m)
		val := strings.TrimSpace(sub[1])
		switch val {
		case "true", "false", "null":
			return m
		}
		return `: "` + val + `"` + sub[2]
	})
}
