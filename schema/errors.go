package schema

// Error reports a malformed schema: an empty column list, an empty column
// name, a duplicate name, or an unknown logical type.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "invalid schema: " + e.Reason
}

// MismatchError reports two schemas that were required to be structurally
// identical but are not, such as a record batch diverging from its
// stream's schema.
type MismatchError struct {
	Detail string
}

func (e *MismatchError) Error() string {
	return "schema mismatch: " + e.Detail
}
