package movetext

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/freeeve/repertoire/internal/tree"
)

// ErrNoPlayerName is returned when a file header names neither player.
var ErrNoPlayerName = errors.New("file header names no player")

// WriteOptions controls movetext emission.
type WriteOptions struct {
	// FEN appends each move's position descriptor as a brace group, so the
	// output parses back with its keys.
	FEN bool
}

// File is one exported repertoire file.
type File struct {
	Name    string
	Content string
}

// Write renders the subtree below root as PGN movetext. The main child comes
// first, alternatives follow it in parentheses, then the main line resumes.
func Write(root *tree.Node, opts WriteOptions) string {
	var sb strings.Builder
	w := writer{sb: &sb, opts: opts}
	w.continuation(root)
	return strings.TrimSpace(sb.String())
}

// WriteFiles renders one file per top-level line that carries a file header.
// Files are named "(i)<White>.pgn", using Black when White is "?".
func WriteFiles(root *tree.Node, opts WriteOptions) ([]File, error) {
	var files []File
	for i, top := range root.Children() {
		if top.FileHeader == "" {
			continue
		}
		name := TagValue(top.FileHeader, "White")
		if name == "" || name == "?" {
			name = TagValue(top.FileHeader, "Black")
		}
		if name == "" || name == "?" {
			return nil, fmt.Errorf("line %q: %w", top.Notation, ErrNoPlayerName)
		}

		var sb strings.Builder
		w := writer{sb: &sb, opts: opts}
		w.unit(top)
		w.continuation(top)

		files = append(files, File{
			Name:    fmt.Sprintf("(%d)%s.pgn", i+1, name),
			Content: top.FileHeader + "\n\n" + strings.TrimSpace(sb.String()) + " *\n\n",
		})
	}
	return files, nil
}

type writer struct {
	sb   *strings.Builder
	opts WriteOptions
}

// continuation writes the children of n: the main child, each alternative in
// its own variation, then the rest of the main line.
func (w writer) continuation(n *tree.Node) {
	children := ordered(n.Children())
	if len(children) == 0 {
		return
	}
	w.sb.WriteByte(' ')
	w.unit(children[0])
	for _, alt := range children[1:] {
		w.sb.WriteString(" (")
		w.unit(alt)
		w.continuation(alt)
		w.sb.WriteString(")")
	}
	w.continuation(children[0])
}

// unit writes one move with its glyphs and brace groups.
func (w writer) unit(n *tree.Node) {
	w.sb.WriteString(n.Notation)
	for _, code := range n.Evaluation {
		w.sb.WriteByte(' ')
		w.sb.WriteString(code)
	}
	if n.Comment != "" {
		fmt.Fprintf(w.sb, " {%s}", n.Comment)
	}
	if w.opts.FEN && n.FEN != "" {
		fmt.Fprintf(w.sb, " { %s }", n.FEN)
	}
}

// ordered returns children with the main variant first, keeping the relative
// order of the others.
func ordered(children []*tree.Node) []*tree.Node {
	out := append([]*tree.Node(nil), children...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MainVariant && !out[j].MainVariant
	})
	return out
}

// TagValue returns the value of the named tag pair in a header block, or "".
func TagValue(header, name string) string {
	for _, line := range strings.Split(header, "\n") {
		n, v, ok := parseTag(strings.TrimSpace(line))
		if ok && n == name {
			return v
		}
	}
	return ""
}

// parseTag splits `[Name "Value"]`.
func parseTag(raw string) (name, value string, ok bool) {
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return "", "", false
	}
	body := strings.TrimSpace(raw[1 : len(raw)-1])
	name, rest, found := strings.Cut(body, " ")
	if !found {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", "", false
	}
	value = strings.ReplaceAll(rest[1:len(rest)-1], `\"`, `"`)
	return name, value, true
}

// FormatTag renders a tag pair line.
func FormatTag(name, value string) string {
	return fmt.Sprintf("[%s %q]", name, value)
}

// WriteGame renders one game: its tag pairs, a blank line, the movetext and
// the result, "*" when the game has none.
func WriteGame(g Game, opts WriteOptions) string {
	result := g.Result
	if result == "" {
		result = "*"
	}
	moves := Write(g.Root, opts)
	if moves != "" {
		moves += " "
	}
	if g.Header == "" {
		return moves + result + "\n\n"
	}
	return g.Header + "\n\n" + moves + result + "\n\n"
}
