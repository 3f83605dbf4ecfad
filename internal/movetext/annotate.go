package movetext

import (
	"fmt"
	"strings"

	"github.com/freeeve/repertoire/internal/poskey"
)

// Player replays a move from a position and returns the resulting FEN.
type Player interface {
	Play(fen, san string) (string, error)
}

// Annotate replays every line of text, variations included, and inserts the
// resulting position as a "{ FEN }" brace group after each move's own glyphs
// and comments. Moves already followed by a descriptor keep it. Games with a
// FEN tag start from that position.
func Annotate(text string, p Player) (string, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return "", err
	}
	if err := checkParentheses(tokens); err != nil {
		return "", err
	}

	type frame struct{ cur, prev string }
	var (
		out     []string
		stack   []frame
		start   = poskey.StartFEN
		cur     = start
		prev    = start
		pending string // descriptor owed to the last move
		inGame  bool
	)
	emitPending := func() {
		if pending != "" {
			out = append(out, "{ "+pending+" }")
			pending = ""
		}
	}

	for i, t := range tokens {
		if t.Kind != NAG && t.Kind != Comment {
			emitPending()
		}
		switch t.Kind {
		case TagPair:
			if inGame {
				start, inGame = poskey.StartFEN, false
			}
			if name, value, ok := parseTag(t.Text); ok && name == "FEN" {
				start = value
			}
			cur, prev = start, start
			out = append(out, "\n"+t.Text)
			continue
		case MoveNumber:
			if !inGame && len(out) > 0 {
				out = append(out, "\n")
			}
			inGame = true
			out = append(out, t.Text)
		case Move:
			inGame = true
			next, err := p.Play(cur, t.Text)
			if err != nil {
				return "", fmt.Errorf("offset %d: %w", t.Offset, err)
			}
			prev, cur = cur, next
			out = append(out, t.Text)
			if !followedByFEN(tokens[i+1:]) {
				pending = next
			}
		case NAG:
			out = append(out, t.Text)
		case Comment:
			out = append(out, "{"+t.Text+"}")
		case VariationStart:
			stack = append(stack, frame{cur, prev})
			cur = prev
			out = append(out, "(")
		case VariationEnd:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cur, prev = f.cur, f.prev
			out = append(out, ")")
		case Result:
			out = append(out, t.Text)
			if len(stack) == 0 {
				start, inGame = poskey.StartFEN, false
				cur, prev = start, start
			}
		}
	}
	emitPending()
	return joinTokens(out), nil
}

// followedByFEN reports whether the brace groups trailing a move already end
// in a position descriptor.
func followedByFEN(rest []Token) bool {
	var last string
	seen := false
	for _, t := range rest {
		if t.Kind == NAG {
			continue
		}
		if t.Kind != Comment {
			break
		}
		last, seen = t.Text, true
	}
	return seen && poskey.LooksLikeFEN(last)
}

func joinTokens(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		switch {
		case strings.HasPrefix(p, "\n"):
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(strings.TrimPrefix(p, "\n"))
			continue
		case sb.Len() == 0:
		case p == ")":
		default:
			last := sb.String()[sb.Len()-1]
			if last != '(' && last != '\n' {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(p)
	}
	return strings.TrimSpace(sb.String()) + "\n"
}
