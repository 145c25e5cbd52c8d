package core

// ParameterPosition determines where call parameters are serialized.
type ParameterPosition int

const (
	// PositionInURI serializes parameters as query parameters.
	PositionInURI ParameterPosition = iota
	// PositionInBody serializes parameters into the request body.
	PositionInBody
)

// String returns the string representation of the parameter position.
func (p ParameterPosition) String() string {
	return [...]string{"IN_URI", "IN_BODY"}[p]
}

// ArraySerialization is the convention used to encode repeated-key array
// parameters in a query string or form body.
type ArraySerialization int

const (
	// ArrayMultipleValues repeats the key for each value (key=a&key=b).
	ArrayMultipleValues ArraySerialization = iota
	// ArrayCSV joins values with commas under a single key (key=a,b).
	ArrayCSV
	// ArrayJSON encodes the values as a JSON array literal (key=["a","b"]).
	ArrayJSON
)

// String returns the string representation of the array serialization mode.
func (a ArraySerialization) String() string {
	return [...]string{"MULTIPLE_VALUES", "CSV", "JSON"}[a]
}

// BodyFormat is the encoding used for parameters placed in the request body.
type BodyFormat int

const (
	// BodyFormatJSON encodes body parameters as a JSON object.
	BodyFormatJSON BodyFormat = iota
	// BodyFormatFormEncoded encodes body parameters as form data.
	BodyFormatFormEncoded
)

// String returns the string representation of the body format.
func (b BodyFormat) String() string {
	return [...]string{"JSON", "FORM_ENCODED"}[b]
}
