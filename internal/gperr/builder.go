package gperr

// Builder collects errors under an optional subject line.
//
// It is not safe for concurrent use.
type Builder struct {
	about string
	errs  []error
}

// NewBuilder creates a new Builder.
//
// If about is not provided, the Builder will not have a subject
// and will expand when adding to another builder.
func NewBuilder(about ...string) *Builder {
	if len(about) == 0 {
		return &Builder{}
	}
	return &Builder{about: about[0]}
}

func (b *Builder) HasError() bool {
	return len(b.errs) > 0
}

func (b *Builder) Error() Error {
	if len(b.errs) == 0 {
		return nil
	}
	if b.about == "" {
		if len(b.errs) == 1 {
			return wrap(b.errs[0])
		}
		return &nestedError{Extras: append([]error(nil), b.errs...)}
	}
	return &nestedError{Err: New(b.about), Extras: append([]error(nil), b.errs...)}
}

// Add adds an error to the Builder.
//
// adding nil is no-op.
func (b *Builder) Add(err error) *Builder {
	if err == nil {
		return b
	}
	//nolint:errorlint
	if err, ok := err.(*nestedError); ok && err.Err == nil {
		b.errs = append(b.errs, err.Extras...)
		return b
	}
	b.errs = append(b.errs, err)
	return b
}

// AddSubject adds err with subject prepended.
func (b *Builder) AddSubject(err error, subject string) *Builder {
	return b.Add(PrependSubject(subject, err))
}
