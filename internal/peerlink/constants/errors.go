package constants

import (
	"errors"
)

var (
	ErrMalformed     = errors.New("Malformed datagram")
	ErrUnknownDevice = errors.New("Device not found")
	ErrFileNotFound  = errors.New("File not found")
	ErrHashMismatch  = errors.New("sha256 mismatch")
	ErrFileIO        = errors.New("File IO")
	ErrInvalidBody   = errors.New("Invalid body")
	ErrUnknown       = errors.New("Unknown error")
)

func ParseError(status int) error {
	switch status {
	case 200, 202:
		return nil
	case 400:
		return ErrInvalidBody
	case 404:
		return ErrUnknownDevice
	case 410:
		return ErrFileNotFound
	default:
		return ErrUnknown
	}
}

func Status(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrInvalidBody):
		return 400
	case errors.Is(err, ErrUnknownDevice):
		return 404
	case errors.Is(err, ErrFileNotFound):
		return 410
	default:
		return 500
	}
}
