package document

import "errors"

var (
	// ErrMissingIV is joined with secrets.ErrDecryptionFailed when a document
	// has encrypted fields but no usable iv.
	ErrMissingIV = errors.New("document has no iv")
)
