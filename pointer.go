package ptrpatch

import (
	"strconv"
	"strings"

	"github.com/eluv-io/errors-go"
)

const separator = "/"

var (
	tokenDecoder = strings.NewReplacer("~1", "/", "~0", "~")
	tokenEncoder = strings.NewReplacer("~", "~0", "/", "~1")
)

// Pointer is a parsed JSON Pointer (RFC 6901): the sequence of decoded
// reference tokens. The empty pointer references the whole document.
type Pointer []string

// ParsePointer splits a pointer string into its decoded tokens.
//
//	""        -> []               (whole document)
//	"/"       -> [""]             (the key "" of the root object)
//	"/a~1b/0" -> ["a/b", "0"]
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if !strings.HasPrefix(s, separator) {
		return nil, errors.E("parse pointer", errors.K.Invalid,
			"reason", reasonInvalidPointer,
			"pointer", s,
			"detail", "pointer must start with '/'")
	}
	parts := strings.Split(s[1:], separator)
	for i, p := range parts {
		if strings.Contains(p, "~") {
			if err := validateEscapes(p); err != nil {
				return nil, errors.E("parse pointer", errors.K.Invalid, err,
					"reason", reasonInvalidPointer,
					"pointer", s)
			}
			parts[i] = tokenDecoder.Replace(p)
		}
	}
	return parts, nil
}

// validateEscapes rejects a '~' that is not followed by '0' or '1'.
func validateEscapes(tok string) error {
	for i := 0; i < len(tok); i++ {
		if tok[i] != '~' {
			continue
		}
		if i+1 >= len(tok) || (tok[i+1] != '0' && tok[i+1] != '1') {
			return errors.Str("invalid escape sequence in token " + strconv.Quote(tok))
		}
		i++
	}
	return nil
}

// NewPointer returns a pointer made of the given (unencoded) tokens.
func NewPointer(tokens ...string) Pointer {
	return append(Pointer{}, tokens...)
}

// String encodes the pointer back to its RFC 6901 string form.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range p {
		sb.WriteString(separator)
		sb.WriteString(tokenEncoder.Replace(tok))
	}
	return sb.String()
}

// IsRoot returns true if the pointer references the whole document.
func (p Pointer) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the pointer to the container holding the referenced value.
// The parent of the root is the root.
func (p Pointer) Parent() Pointer {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Last returns the terminal token, or "" for the root pointer.
func (p Pointer) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// parseIndex parses an array reference token: base-10, no sign and no leading
// zeros. "-" (past the end) is not accepted here.
func parseIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return idx, true
}
