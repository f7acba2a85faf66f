package gperr

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Error is an error with an optional subject path and nested extras.
type Error interface {
	error
	// Subject prepends a subject to the error, e.g. "inject" + "marker" => "inject.marker: ...".
	Subject(subject string) Error
	Unwrap() []error
	Is(other error) bool
}

type errStr string

func (err errStr) Error() string { return string(err) }

func newError(message string) error {
	return errStr(message)
}

type withSubject struct {
	Subjects []string `json:"subjects"`
	Err      error    `json:"err"`
}

func (err *withSubject) Error() string {
	if len(err.Subjects) == 0 {
		return err.Err.Error()
	}
	var sb strings.Builder
	for i := len(err.Subjects) - 1; i >= 0; i-- {
		sb.WriteString(err.Subjects[i])
		if i > 0 {
			sb.WriteByte('.')
		}
	}
	sb.WriteString(": ")
	sb.WriteString(err.Err.Error())
	return sb.String()
}

func (err *withSubject) Unwrap() error {
	return err.Err
}

// PrependSubject returns err with subject prepended to its subject path.
func PrependSubject(subject string, err error) error {
	if err == nil {
		return nil
	}
	switch err := err.(type) {
	case *withSubject:
		subjects := append(append([]string(nil), err.Subjects...), subject)
		return &withSubject{Subjects: subjects, Err: err.Err}
	case *nestedError:
		return err.Subject(subject)
	default:
		return &withSubject{Subjects: []string{subject}, Err: err}
	}
}

func New(message string) Error {
	return &nestedError{Err: newError(message)}
}

func Errorf(format string, args ...any) Error {
	return &nestedError{Err: fmt.Errorf(format, args...)}
}

// Wrap converts err into an Error, nil stays nil.
func Wrap(err error, message ...string) Error {
	if err == nil {
		return nil
	}
	if len(message) == 0 || message[0] == "" {
		return wrap(err)
	}
	return &nestedError{Err: newError(message[0]), Extras: []error{err}}
}

func wrap(err error) Error {
	if err == nil {
		return nil
	}
	//nolint:errorlint
	if gpErr, ok := err.(Error); ok {
		return gpErr
	}
	return &nestedError{Err: err}
}

func getLogger(logger ...*zerolog.Logger) *zerolog.Logger {
	if len(logger) > 0 {
		return logger[0]
	}
	return &log.Logger
}

func LogWarn(msg string, err error, logger ...*zerolog.Logger) {
	getLogger(logger...).Warn().Msg(msg + ": " + err.Error())
}

func LogFatal(msg string, err error, logger ...*zerolog.Logger) {
	getLogger(logger...).Fatal().Msg(msg + ": " + err.Error())
}
