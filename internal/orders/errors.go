package orders

import (
	"errors"
	"fmt"
	"net/http"
)

// Taksonomi error tertutup. Handler cuma perlu switch di Kind,
// tidak perlu tebak-tebakan dari string.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindSignature
	KindNotFound
	KindConflict
	KindExternal
)

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // penyebab, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Signaturef(format string, args ...any) error {
	return &Error{Kind: KindSignature, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Externalf(err error, format string, args ...any) error {
	return &Error{Kind: KindExternal, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Internalf(err error, format string, args ...any) error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf: error di luar taksonomi dianggap internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindSignature:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrDuplicateSession: insert order kena unique constraint session_id.
// Ini yang mengubah race duplicate-webhook jadi insert gagal, bukan row ganda.
var ErrDuplicateSession = errors.New("order already exists for session")
