package wallet

import (
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

var (
	// ErrInvalidWordCount indicates the mnemonic must be 12 or 24 words.
	ErrInvalidWordCount = lanternerr.WithSuggestion(lanternerr.ErrInvalidMnemonic, "word count must be 12 or 24")

	// whitespaceRegex matches one or more whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// numberedListRegex matches numbered list prefixes like "1." "2)" "3:"
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)

	// bulletListRegex matches bullet prefixes like "- " "* " "• "
	bulletListRegex = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// GenerateMnemonic creates a new BIP39 mnemonic phrase.
// wordCount must be 12 (128 bits entropy) or 24 (256 bits entropy).
func GenerateMnemonic(wordCount int) (string, error) {
	var bitSize int
	switch wordCount {
	case 12:
		bitSize = 128
	case 24:
		bitSize = 256
	default:
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", err
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic phrase is valid according to BIP39.
// It verifies word count, word validity, and checksum.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return lanternerr.ErrInvalidMnemonic
	}

	normalized := NormalizeMnemonicInput(mnemonic)

	// BIP39 only supports 12 or 24-word mnemonics; check before the
	// expensive checksum validation.
	words := strings.Fields(normalized)
	if len(words) != 12 && len(words) != 24 {
		return lanternerr.ErrInvalidMnemonic
	}

	if !bip39.IsMnemonicValid(normalized) {
		return lanternerr.ErrInvalidMnemonic
	}

	return nil
}

// NormalizeMnemonicInput cleans pasted mnemonic input: lowercases, strips
// numbered-list and bullet prefixes, replaces commas with spaces, and
// collapses whitespace.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// MnemonicToSeed converts a BIP39 mnemonic phrase to a 64-byte seed.
// The returned seed should be handled securely and zeroed after use.
func MnemonicToSeed(mnemonic string) ([]byte, error) {
	normalized := NormalizeMnemonicInput(mnemonic)

	seed, err := bip39.NewSeedWithErrorChecking(normalized, "")
	if err != nil {
		return nil, lanternerr.ErrInvalidMnemonic
	}
	return seed, nil
}

// NewSecrets generates or imports wallet secrets. With an empty mnemonic a
// fresh one is generated with the given word count; otherwise the mnemonic
// is validated and imported.
func NewSecrets(mnemonic string, wordCount int) (*Secrets, error) {
	if mnemonic == "" {
		generated, err := GenerateMnemonic(wordCount)
		if err != nil {
			return nil, err
		}
		mnemonic = generated
	} else {
		mnemonic = NormalizeMnemonicInput(mnemonic)
		if err := ValidateMnemonic(mnemonic); err != nil {
			return nil, err
		}
	}

	seed, err := MnemonicToSeed(mnemonic)
	if err != nil {
		return nil, err
	}

	return &Secrets{Seed: seed, Mnemonic: mnemonic}, nil
}

// IsValidWord checks if a word is in the BIP39 word list.
func IsValidWord(word string) bool {
	word = strings.ToLower(word)
	for _, w := range bip39.GetWordList() {
		if w == word {
			return true
		}
	}
	return false
}

// MaxTypoDistance is the maximum Levenshtein distance to consider a
// suggestion. Words with distance > 2 are too different to suggest.
const MaxTypoDistance = 2

// TypoInfo contains information about a detected typo and its suggestion.
type TypoInfo struct {
	// Index is the word position in the mnemonic (0-based).
	Index int
	// Word is the original (possibly misspelled) word.
	Word string
	// Suggestion is the closest BIP39 word, or empty if none found.
	Suggestion string
	// Distance is the Levenshtein distance to the suggestion.
	Distance int
}

// SuggestWord finds the closest BIP39 word to the input using Levenshtein
// distance. Returns empty string if no word is close enough.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string

	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
		if dist == 0 {
			return word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos scans a mnemonic phrase and returns information about words
// not in the BIP39 word list, with suggested corrections.
func DetectTypos(mnemonic string) []TypoInfo {
	if mnemonic == "" {
		return nil
	}

	normalized := NormalizeMnemonicInput(mnemonic)
	var typos []TypoInfo

	for i, word := range strings.Fields(normalized) {
		if IsValidWord(word) {
			continue
		}
		suggestion := SuggestWord(word)
		distance := 0
		if suggestion != "" {
			distance = levenshtein.ComputeDistance(word, suggestion)
		}
		typos = append(typos, TypoInfo{
			Index:      i,
			Word:       word,
			Suggestion: suggestion,
			Distance:   distance,
		})
	}

	return typos
}
