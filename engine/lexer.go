package engine

import "strings"

// Tag delimiters. These are fixed; the engine does not support
// configurable delimiters.
const (
	blockTagStart   = "{%"
	blockTagEnd     = "%}"
	varTagStart     = "{{"
	varTagEnd       = "}}"
	commentTagStart = "{#"
	commentTagEnd   = "#}"
)

// Tokenize splits template source into a sequence of text, variable,
// block and comment tokens.
//
// The scan is a single left-to-right pass. Tag contents are trimmed of
// surrounding whitespace; text tokens are kept verbatim. Line numbers
// are tracked for error reporting.
//
// An unclosed tag is not an error at this stage: the remainder of the
// source is emitted as a text token and the parser reports the problem
// when the surrounding construct fails to terminate.
func Tokenize(source string) []Token {
	var tokens []Token

	cur := 0       // scan position
	textStart := 0 // start of pending literal text
	lineNo := 1    // line at textStart

	for cur < len(source)-1 {
		openRel := strings.IndexByte(source[cur:], '{')
		if openRel == -1 {
			break
		}
		openIdx := cur + openRel
		if openIdx+1 >= len(source) {
			break
		}

		var tokType TokenType
		var endDelim string
		switch source[openIdx+1] {
		case '%':
			tokType, endDelim = TokenBlock, blockTagEnd
		case '{':
			tokType, endDelim = TokenVar, varTagEnd
		case '#':
			tokType, endDelim = TokenComment, commentTagEnd
		default:
			// A lone brace is ordinary text; keep scanning.
			cur = openIdx + 1
			continue
		}

		closeRel := strings.Index(source[openIdx+2:], endDelim)
		if closeRel == -1 {
			// Unclosed tag: the remainder is emitted as text below.
			break
		}
		closeIdx := openIdx + 2 + closeRel

		if text := source[textStart:openIdx]; text != "" {
			tokens = append(tokens, Token{
				Type:     TokenText,
				Contents: text,
				Position: textStart,
				LineNo:   lineNo,
			})
			lineNo += strings.Count(text, "\n")
		}

		tokens = append(tokens, Token{
			Type:     tokType,
			Contents: strings.TrimSpace(source[openIdx+2 : closeIdx]),
			Position: openIdx,
			LineNo:   lineNo,
		})
		lineNo += strings.Count(source[openIdx:closeIdx+2], "\n")

		cur = closeIdx + 2
		textStart = cur
	}

	if text := source[textStart:]; text != "" {
		tokens = append(tokens, Token{
			Type:     TokenText,
			Contents: text,
			Position: textStart,
			LineNo:   lineNo,
		})
	}

	return tokens
}
