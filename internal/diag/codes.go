package diag

// Code identifies a family of diagnostics. Lexical codes start at 1000,
// syntax codes at 2000; this leaves room for the front end to grow without
// renumbering anything a golden test might depend on.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical.
	LexUnknownChar Code = 1001
	LexBadNumber   Code = 1003

	// Syntax.
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynExpectIdent       Code = 2003
	SynExpectToken       Code = 2004
	SynBadCaseArm        Code = 2005
)

// String returns a short mnemonic, e.g. "E1001".
func (c Code) String() string {
	if c == UnknownCode {
		return "E0000"
	}
	return "E" + itoaPad4(uint16(c))
}

func itoaPad4(n uint16) string {
	digits := [4]byte{}
	for i := 3; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}
