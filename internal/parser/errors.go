package parser

import "fmt"

// ErrorKind closes over the diagnostic categories §4.2/§6 name.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	MissingToken
	InvalidSyntax
	IndentationError
	SemanticError
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case MissingToken:
		return "MissingToken"
	case InvalidSyntax:
		return "InvalidSyntax"
	case IndentationError:
		return "IndentationError"
	case SemanticError:
		return "SemanticError"
	default:
		return "UnknownError"
	}
}

// ParseError is one structured diagnostic (§4.2). It stores no file name;
// Format takes the file as an argument and follows the §6 wire format
// "{file}:{line}:{col}: {message}".
type ParseError struct {
	Message string
	Line    int
	Col     int
	Length  int // 0 when not meaningful
	Kind    ErrorKind
}

// Format renders the error per §6's parser diagnostic format.
func (e ParseError) Format(file string) string {
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Col, e.Message)
}
