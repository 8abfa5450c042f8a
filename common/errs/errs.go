package errs

// ErrorKind identifies a kind of error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when an argument is invalid.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a feature or configuration is not supported.
	Unsupported = ErrorKind("Unsupported")

	// UnsupportedTransaction is returned when no data-carrying output of a transaction
	// decodes to a supported SPOOL action. The transaction is not part of the protocol history.
	UnsupportedTransaction = ErrorKind("Unsupported Transaction")

	// InvalidTransaction is returned when a SPOOL transaction breaks a structural rule
	// of the protocol, e.g. inputs signed by more than one address.
	InvalidTransaction = ErrorKind("Invalid Transaction")

	// Transport is returned when the transaction source can't be reached or
	// answered with a transient failure. Only this kind is retried.
	Transport = ErrorKind("Transport Error")

	// Truncated is returned when the candidate transaction list hit the retrieval bound.
	Truncated = ErrorKind("Truncated")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
