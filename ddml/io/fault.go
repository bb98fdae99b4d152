package io

// ErrOStream is an OStream that always fails with Err, for exercising a
// context's error propagation without constructing an exactly-undersized
// buffer. Adapted from the teacher's internal/testdata error-injecting
// io.Reader/io.Writer.
type ErrOStream struct {
	Err error
}

// TryAdvance implements OStream.
func (e *ErrOStream) TryAdvance(int) ([]byte, error) {
	return nil, e.Err
}

// ErrIStream is an IStream that always fails with Err.
type ErrIStream struct {
	Err error
}

// TryAdvance implements IStream.
func (e *ErrIStream) TryAdvance(int) ([]byte, error) {
	return nil, e.Err
}
