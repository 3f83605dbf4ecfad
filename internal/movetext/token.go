package movetext

import (
	"strconv"
	"strings"

	"github.com/freeeve/repertoire/internal/tree"
)

// Kind is the type of a movetext token.
type Kind int

const (
	TagPair Kind = iota
	MoveNumber
	Move
	NAG
	Comment
	VariationStart
	VariationEnd
	Result
)

func (k Kind) String() string {
	switch k {
	case TagPair:
		return "tag"
	case MoveNumber:
		return "move-number"
	case Move:
		return "move"
	case NAG:
		return "nag"
	case Comment:
		return "comment"
	case VariationStart:
		return "("
	case VariationEnd:
		return ")"
	case Result:
		return "result"
	default:
		return "unknown"
	}
}

// Token is one lexical element of PGN text.
type Token struct {
	Kind   Kind
	Text   string // SAN, "$n", comment body, raw tag pair, result
	Offset int    // byte offset in the source text
	Number int    // move number, MoveNumber only
	Black  bool   // "N..." form, MoveNumber only
}

// Ply returns the ply announced by a MoveNumber token.
func (t Token) Ply() int {
	return tree.PlyOf(t.Number, t.Black)
}

const wordStops = "{}()[];$ \t\r\n"

// Tokenize splits PGN text into tokens. Brace comments are single tokens, so
// numerals inside a comment never read as move numbers. Suffix annotations
// such as "?!" are emitted as NAG tokens after their move.
func Tokenize(text string) ([]Token, error) {
	var tokens []Token
	i := 0
	lineStart := true
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\n':
			lineStart = true
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r':
			i++
			continue
		case c == '%' && lineStart:
			// Escape line
			for i < len(text) && text[i] != '\n' {
				i++
			}
			continue
		}
		lineStart = false

		switch c {
		case '{':
			end, err := matchBrace(text, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: Comment, Text: strings.TrimSpace(text[i+1 : end]), Offset: i})
			i = end + 1
		case '}':
			return nil, &UnterminatedCommentError{Offset: i, Closing: true}
		case ';':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			tokens = append(tokens, Token{Kind: Comment, Text: strings.TrimSpace(text[i+1 : i+end]), Offset: i})
			i += end
		case '(':
			tokens = append(tokens, Token{Kind: VariationStart, Text: "(", Offset: i})
			i++
		case ')':
			tokens = append(tokens, Token{Kind: VariationEnd, Text: ")", Offset: i})
			i++
		case '[':
			end := matchTag(text, i)
			tokens = append(tokens, Token{Kind: TagPair, Text: text[i : end+1], Offset: i})
			i = end + 1
		case ']':
			i++
		case '$':
			j := i + 1
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j > i+1 {
				tokens = append(tokens, Token{Kind: NAG, Text: text[i:j], Offset: i})
			}
			i = j
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(wordStops, rune(text[j])) {
				j++
			}
			var err error
			if tokens, err = appendWord(tokens, text[i:j], i); err != nil {
				return nil, err
			}
			i = j
		}
	}
	return tokens, nil
}

// matchBrace returns the offset of the brace closing the comment opened at
// start. Comments do not nest: the first closing brace ends it.
func matchBrace(text string, start int) (int, error) {
	end := strings.IndexByte(text[start+1:], '}')
	if end < 0 {
		return 0, &UnterminatedCommentError{Offset: start}
	}
	return start + 1 + end, nil
}

// matchTag returns the offset of the bracket closing the tag pair opened at
// start, skipping brackets inside the quoted value.
func matchTag(text string, start int) int {
	quoted := false
	for j := start + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			if quoted {
				j++
			}
		case '"':
			quoted = !quoted
		case ']':
			if !quoted {
				return j
			}
		case '\n':
			if !quoted {
				return j - 1
			}
		}
	}
	return len(text) - 1
}

func appendWord(tokens []Token, word string, offset int) ([]Token, error) {
	for word != "" {
		switch word {
		case "1-0", "0-1", "1/2-1/2", "*":
			return append(tokens, Token{Kind: Result, Text: word, Offset: offset}), nil
		}
		if castle, ok := zeroCastling(word); ok {
			word = castle
		}

		// Leading move number, possibly glued to the move: "12...Nf3"
		digits := 0
		for digits < len(word) && word[digits] >= '0' && word[digits] <= '9' {
			digits++
		}
		if digits > 0 {
			dots := digits
			for dots < len(word) && (word[dots] == '.' || strings.HasPrefix(word[dots:], "…")) {
				if word[dots] == '.' {
					dots++
				} else {
					dots += len("…")
				}
			}
			if dots == digits {
				return nil, &InvalidTokenError{Offset: offset, Text: word}
			}
			n, _ := strconv.Atoi(word[:digits])
			marker := word[digits:dots]
			tokens = append(tokens, Token{
				Kind:   MoveNumber,
				Text:   word[:dots],
				Offset: offset,
				Number: n,
				Black:  marker != ".",
			})
			offset += dots
			word = word[dots:]
			continue
		}

		san, suffix := splitSuffix(word)
		if san != "" {
			tokens = append(tokens, Token{Kind: Move, Text: san, Offset: offset})
		}
		if code, ok := tree.SuffixCode(suffix); ok {
			tokens = append(tokens, Token{Kind: NAG, Text: code, Offset: offset + len(san)})
		}
		return tokens, nil
	}
	return tokens, nil
}

// zeroCastling rewrites castling written with zeros ("0-0", "0-0-0+") to
// the letter form, keeping any check or annotation suffix.
func zeroCastling(word string) (string, bool) {
	for _, c := range []struct{ zero, letter string }{{"0-0-0", "O-O-O"}, {"0-0", "O-O"}} {
		rest, ok := strings.CutPrefix(word, c.zero)
		if !ok {
			continue
		}
		if rest != "" && !strings.ContainsRune("+#!?", rune(rest[0])) {
			return word, false
		}
		return c.letter + rest, true
	}
	return word, false
}

// splitSuffix separates a trailing "!"/"?" annotation from a move.
func splitSuffix(word string) (san, suffix string) {
	end := len(word)
	for end > 0 && (word[end-1] == '!' || word[end-1] == '?') {
		end--
	}
	return word[:end], word[end:]
}
