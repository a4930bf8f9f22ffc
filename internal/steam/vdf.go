package steam

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

// KeyValues is a parsed Valve KeyValues (VDF) block. Values are either
// strings or nested KeyValues.
type KeyValues map[string]any

// Block returns the nested block stored under key
func (kv KeyValues) Block(key string) (KeyValues, bool) {
	v, ok := kv[key].(KeyValues)
	return v, ok
}

// String returns the string value stored under key
func (kv KeyValues) String(key string) string {
	v, _ := kv[key].(string)
	return v
}

// ParseKeyValues reads a VDF document such as libraryfolders.vdf or an
// appmanifest_*.acf file.
func ParseKeyValues(r io.Reader) (KeyValues, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanTokens)

	var p parser
	for scanner.Scan() {
		p.tokens = append(p.tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vdf: %w", err)
	}
	return p.block(true)
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

// block reads key/value pairs up to the closing brace, or to the end of input
// for the top level.
func (p *parser) block(top bool) (KeyValues, error) {
	kv := make(KeyValues)
	for {
		key, ok := p.next()
		if !ok {
			if top {
				return kv, nil
			}
			return nil, fmt.Errorf("vdf: missing closing brace")
		}
		if key == "}" {
			if top {
				return nil, fmt.Errorf("vdf: unexpected closing brace")
			}
			return kv, nil
		}

		value, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("vdf: no value for key %q", key)
		}
		if value != "{" {
			kv[key] = value
			continue
		}
		inner, err := p.block(false)
		if err != nil {
			return nil, err
		}
		kv[key] = inner
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// scanTokens splits VDF input into quoted strings, bare words and braces.
// Line comments starting with // are dropped.
func scanTokens(data []byte, atEOF bool) (int, []byte, error) {
	start := 0
	for {
		for start < len(data) && isSpace(data[start]) {
			start++
		}
		if start+1 < len(data) && data[start] == '/' && data[start+1] == '/' {
			end := start
			for end < len(data) && data[end] != '\n' {
				end++
			}
			if end == len(data) && !atEOF {
				return 0, nil, nil
			}
			start = end
			continue
		}
		break
	}
	if start >= len(data) {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}

	rest := data[start:]
	switch rest[0] {
	case '{', '}':
		return start + 1, rest[:1], nil
	case '"':
		for i := 1; i < len(rest); i++ {
			switch rest[i] {
			case '\\':
				i++
			case '"':
				return start + i + 1, rest[1:i], nil
			}
		}
		if atEOF {
			return 0, nil, fmt.Errorf("vdf: unterminated string")
		}
		return 0, nil, nil
	}

	i := 0
	for i < len(rest) && !unicode.IsSpace(rune(rest[i])) && rest[i] != '"' && rest[i] != '{' && rest[i] != '}' {
		i++
	}
	if i == len(rest) && !atEOF {
		return 0, nil, nil
	}
	return start + i, rest[:i], nil
}
