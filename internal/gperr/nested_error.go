package gperr

import "errors"

//nolint:recvcheck
type nestedError struct {
	Err    error   `json:"err"`
	Extras []error `json:"extras"`
}

func (err nestedError) Subject(subject string) Error {
	if err.Err == nil {
		err.Err = PrependSubject(subject, errStr(""))
	} else {
		err.Err = PrependSubject(subject, err.Err)
	}
	return &err
}

func (err *nestedError) Unwrap() []error {
	if err.Err == nil {
		if len(err.Extras) == 0 {
			return nil
		}
		return err.Extras
	}
	return append([]error{err.Err}, err.Extras...)
}

func (err *nestedError) Is(other error) bool {
	if errors.Is(err.Err, other) {
		return true
	}
	for _, e := range err.Extras {
		if errors.Is(e, other) {
			return true
		}
	}
	return false
}

var (
	nilError     = newError("<nil>")
	bulletPrefix = []byte("• ")
	spaces       = []byte("                ")
)

func (err *nestedError) Error() string {
	var buf []byte
	switch {
	case err.Err != nil:
		buf = []byte(err.Err.Error())
		if len(err.Extras) > 0 {
			buf = append(buf, '\n')
			buf = appendLines(buf, err.Extras, 1)
		}
	case len(err.Extras) > 0:
		buf = appendLines(buf, err.Extras, 0)
	default:
		return nilError.Error()
	}
	if n := len(buf); n > 0 && buf[n-1] == '\n' {
		buf = buf[:n-1]
	}
	return string(buf)
}

func appendLine(buf []byte, err error, level int) []byte {
	if level == 0 {
		return append(buf, err.Error()...)
	}
	buf = append(buf, spaces[:min(2*level, len(spaces))]...)
	buf = append(buf, bulletPrefix...)
	buf = append(buf, err.Error()...)
	return buf
}

func appendLines(buf []byte, errs []error, level int) []byte {
	for _, err := range errs {
		switch err := wrap(err).(type) {
		case *nestedError:
			if err.Err != nil {
				buf = appendLine(buf, err.Err, level)
				buf = append(buf, '\n')
				buf = appendLines(buf, err.Extras, level+1)
			} else {
				buf = appendLines(buf, err.Extras, level)
			}
		default:
			buf = appendLine(buf, err, level)
			buf = append(buf, '\n')
		}
	}
	return buf
}
