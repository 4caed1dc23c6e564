package ssml

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	numberBaseTen      = 10
	numberBaseTwenty   = 20
	numberBaseHundred  = 100
	numberBaseThousand = 1000
	maxNumberForWords  = 999999
)

// Regex patterns for text normalization.
const (
	numberRegexPattern     = `\b\d+\b`
	whitespaceRegexPattern = `\s+`
	urlRegexPattern        = `https?://\S+`
)

// Normalizer prepares plain text for speech before it is wrapped in SSML.
type Normalizer struct {
	numberPattern        *regexp.Regexp
	whitespacePattern    *regexp.Regexp
	urlPattern           *regexp.Regexp
	abbreviationReplacer *strings.Replacer
	punctuationReplacer  *strings.Replacer
}

// NewNormalizer creates a normalizer with compiled patterns and replacers.
func NewNormalizer() *Normalizer {
	abbreviations := []string{
		"Mr.", "Mister",
		"Mrs.", "Misses",
		"Ms.", "Miss",
		"Dr.", "Doctor",
		"St.", "Saint",
		"Co.", "Company",
		"Ltd.", "Limited",
		"Corp.", "Corporation",
		"Inc.", "Incorporated",
	}

	return &Normalizer{
		numberPattern:        regexp.MustCompile(numberRegexPattern),
		whitespacePattern:    regexp.MustCompile(whitespaceRegexPattern),
		urlPattern:           regexp.MustCompile(urlRegexPattern),
		abbreviationReplacer: strings.NewReplacer(abbreviations...),
		punctuationReplacer: strings.NewReplacer(
			"—", "-",
			"–", "-",
			"‒", "-",
			"…", "...",
			"“", `"`, "”", `"`,
			"‘", "'", "’", "'",
		),
	}
}

// Normalize expands abbreviations, spells out integers, flattens whitespace,
// normalizes quotes and dashes and terminates the last sentence. URLs are
// copied through untouched.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var builder strings.Builder

	last := 0

	for _, loc := range n.urlPattern.FindAllStringIndex(text, -1) {
		builder.WriteString(n.normalizeSegment(text[last:loc[0]]))
		builder.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}

	builder.WriteString(n.normalizeSegment(text[last:]))

	result := strings.TrimSpace(n.whitespacePattern.ReplaceAllString(builder.String(), " "))

	return ensureSentenceEnding(result)
}

func (n *Normalizer) normalizeSegment(segment string) string {
	segment = n.abbreviationReplacer.Replace(segment)
	segment = n.numberPattern.ReplaceAllStringFunc(segment, func(s string) string {
		num, err := strconv.Atoi(s)
		if err != nil {
			return s
		}

		return integerToWords(num)
	})

	return n.punctuationReplacer.Replace(segment)
}

func ensureSentenceEnding(text string) string {
	switch lastChar, _ := utf8.DecodeLastRuneInString(text); lastChar {
	case '.', '!', '?':
		return text
	default:
		return text + "."
	}
}

var (
	ones = []string{
		"", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine",
	}
	teens = []string{
		"ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}
	tens = []string{
		"", "", "twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety",
	}
)

func underHundredToWords(num int) string {
	switch {
	case num < numberBaseTen:
		return ones[num]
	case num < numberBaseTwenty:
		return teens[num-numberBaseTen]
	}

	result := tens[num/numberBaseTen]
	if num%numberBaseTen > 0 {
		result += " " + ones[num%numberBaseTen]
	}

	return result
}

func underThousandToWords(num int) string {
	if num < numberBaseHundred {
		return underHundredToWords(num)
	}

	result := ones[num/numberBaseHundred] + " hundred"
	if remainder := num % numberBaseHundred; remainder > 0 {
		result += " " + underHundredToWords(remainder)
	}

	return result
}

// integerToWords converts an integer into its English word representation.
func integerToWords(number int) string {
	if number < 0 || number > maxNumberForWords {
		return strconv.Itoa(number)
	}

	if number == 0 {
		return "zero"
	}

	var parts []string

	if thousands := number / numberBaseThousand; thousands > 0 {
		parts = append(parts, underThousandToWords(thousands)+" thousand")
	}

	if remaining := number % numberBaseThousand; remaining > 0 {
		parts = append(parts, underThousandToWords(remaining))
	}

	return strings.Join(parts, " ")
}
