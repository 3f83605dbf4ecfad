package movetext

import (
	"fmt"
	"strings"
)

// WrapWidth is the line width of movetext written by Split.
const WrapWidth = 70

// Split cuts a multi-game export into one file per game. A game starts at
// each [Event tag. Files are named "(i) <White>.pgn", using Black when White
// is "?"; the movetext is re-wrapped to WrapWidth columns.
func Split(text string) ([]File, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var files []File
	for i, chunk := range splitEvents(text) {
		header, body, _ := strings.Cut(chunk, "\n\n")
		header = strings.TrimSpace(header)

		name := TagValue(header, "White")
		if name == "" || name == "?" {
			name = TagValue(header, "Black")
		}
		if name == "" || name == "?" {
			return nil, fmt.Errorf("game %d: %w", i+1, ErrNoPlayerName)
		}
		files = append(files, File{
			Name:    fmt.Sprintf("(%d) %s.pgn", i+1, name),
			Content: header + "\n\n" + wrap(body, WrapWidth) + "\n",
		})
	}
	return files, nil
}

func splitEvents(text string) []string {
	const marker = "[Event \""
	var chunks []string
	for {
		start := strings.Index(text, marker)
		if start < 0 {
			return chunks
		}
		text = text[start:]
		next := strings.Index(text[len(marker):], marker)
		if next < 0 {
			return append(chunks, text)
		}
		chunks = append(chunks, text[:len(marker)+next])
		text = text[len(marker)+next:]
	}
}

// wrap refills words into lines of at most width columns. Longer words get
// a line of their own.
func wrap(s string, width int) string {
	var sb strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(s) {
		switch {
		case lineLen == 0:
		case lineLen+1+len(word) > width:
			sb.WriteByte('\n')
			lineLen = 0
		default:
			sb.WriteByte(' ')
			lineLen++
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
