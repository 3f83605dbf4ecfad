// Package movetext reads and writes PGN movetext as repertoire trees.
package movetext

import (
	"strings"

	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/tree"
)

// Game is one tag-pair block and its movetext, built under its own root.
type Game struct {
	Header string // raw tag pairs, one per line
	Result string // game termination marker, empty when absent
	Root   *tree.Node
}

// Tag returns the value of the named tag pair in the game header.
func (g Game) Tag(name string) string {
	return TagValue(g.Header, name)
}

// Parse builds a repertoire tree from PGN text. Every game in the text is
// attached under a single root; the first top-level move is the main line.
func Parse(text string) (*tree.Node, error) {
	root := tree.NewRoot()
	if _, err := ParseInto(root, text); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseInto parses text and grafts its games under root. It returns the
// top-level nodes added. On error root is left untouched.
func ParseInto(root *tree.Node, text string) ([]*tree.Node, error) {
	games, err := ParseGames(text)
	if err != nil {
		return nil, err
	}
	var added []*tree.Node
	for _, g := range games {
		added = append(added, root.Graft(g.Root)...)
	}
	return added, nil
}

// ParseGames splits text into games and builds one tree per game.
func ParseGames(text string) ([]Game, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	if err := checkParentheses(tokens); err != nil {
		return nil, err
	}

	var games []Game
	for _, unit := range splitGames(tokens) {
		games = append(games, build(unit))
	}
	return games, nil
}

// checkParentheses matches variations over the whole token stream before any
// node is created.
func checkParentheses(tokens []Token) error {
	var open []int
	for _, t := range tokens {
		switch t.Kind {
		case VariationStart:
			open = append(open, t.Offset)
		case VariationEnd:
			if len(open) == 0 {
				return &UnbalancedParenthesesError{Offset: t.Offset}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return &UnbalancedParenthesesError{Offset: open[len(open)-1], Opening: true}
	}
	return nil
}

// splitGames cuts the stream at top-level results and at tag pairs that
// follow movetext.
func splitGames(tokens []Token) [][]Token {
	var (
		units    [][]Token
		start    int
		depth    int
		hasMoves bool
	)
	for i, t := range tokens {
		switch t.Kind {
		case VariationStart:
			depth++
		case VariationEnd:
			depth--
		case TagPair:
			if hasMoves && depth == 0 {
				units = append(units, tokens[start:i])
				start, hasMoves = i, false
			}
		case Result:
			if depth == 0 {
				units = append(units, tokens[start:i+1])
				start, hasMoves = i+1, false
			}
		case Move:
			hasMoves = true
		}
	}
	if start < len(tokens) {
		units = append(units, tokens[start:])
	}
	return units
}

type builder struct {
	root   *tree.Node
	header string

	cur      *tree.Node   // move most recently attached at this depth
	outer    []*tree.Node // cur of each enclosing line
	branch   bool         // a variation was just opened
	ply      int          // announced by the last move number, 0 if none
	last     *tree.Node   // move receiving glyphs and comments
	comments []string
	lead     []string // comments read before the first move of a line
}

func build(tokens []Token) Game {
	var tags []string
	for _, t := range tokens {
		if t.Kind == TagPair {
			tags = append(tags, t.Text)
		}
	}
	b := &builder{root: tree.NewRoot(), header: strings.Join(tags, "\n")}
	b.cur = b.root

	var result string
	for _, t := range tokens {
		switch t.Kind {
		case MoveNumber:
			b.ply = t.Ply()
		case Move:
			b.move(t.Text)
		case NAG:
			if b.last != nil {
				b.last.Evaluation = append(b.last.Evaluation, t.Text)
			}
		case Comment:
			switch {
			case t.Text == "":
			case b.last != nil:
				b.comments = append(b.comments, t.Text)
			default:
				b.lead = append(b.lead, t.Text)
			}
		case VariationStart:
			b.flush()
			b.outer = append(b.outer, b.cur)
			b.branch = true
		case VariationEnd:
			b.flush()
			b.cur = b.outer[len(b.outer)-1]
			b.outer = b.outer[:len(b.outer)-1]
			b.branch = false
		case Result:
			b.flush()
			if len(b.outer) == 0 {
				result = t.Text
			}
		}
	}
	b.flush()
	if len(b.lead) > 0 && b.cur != b.root {
		// Trailing comments with no move left to precede
		b.cur.Comment = strings.TrimSpace(b.cur.Comment + " " + strings.Join(b.lead, " "))
	}
	return Game{Header: b.header, Result: result, Root: b.root}
}

func (b *builder) move(san string) {
	b.flush()

	anchor := b.cur
	ply := b.cur.Ply + 1
	main := true
	if b.branch && b.cur.Parent() != nil {
		// Alternative to the move just played at this depth
		anchor = b.cur.Parent()
		ply = b.cur.Ply
		main = false
	}
	if b.ply > 0 {
		ply = b.ply
	}
	if main && anchor.HasMainChild() {
		main = false
	}

	n := tree.NewMove(ply, san, "")
	n.MainVariant = main
	if anchor == b.root && len(b.root.Children()) == 0 {
		n.FileHeader = b.header
	}
	anchor.AddChild(n)

	b.cur = n
	b.last = n
	b.comments = append(b.comments, b.lead...)
	b.lead = b.lead[:0]
	b.branch = false
	b.ply = 0
}

// flush assigns the brace groups collected after the last move.
func (b *builder) flush() {
	if b.last != nil {
		assignComments(b.last, b.comments)
	}
	b.last = nil
	b.comments = b.comments[:0]
}

// assignComments applies the brace-group convention: with several groups the
// last is the position descriptor and the others are free text; a single
// group is the descriptor only when it reads as one.
func assignComments(n *tree.Node, groups []string) {
	switch len(groups) {
	case 0:
		return
	case 1:
		if poskey.LooksLikeFEN(groups[0]) {
			n.FEN = groups[0]
		} else {
			n.Comment = groups[0]
		}
		return
	}
	last := groups[len(groups)-1]
	if poskey.LooksLikeFEN(last) {
		n.FEN = last
		groups = groups[:len(groups)-1]
	}
	n.Comment = strings.Join(groups, " ")
}
