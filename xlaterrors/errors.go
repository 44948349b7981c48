package xlaterrors

import (
	"errors"
	"strings"
)

// Decode errors. Both kinds reach the guest as an undefined instruction, but
// they are kept apart so diagnostics can tell them apart.
var (
	ErrUnallocatedEncoding = errors.New("U1|UnallocatedEncoding: The bit pattern has no architecturally assigned meaning.")
	ErrReservedValue       = errors.New("R1|ReservedValue: The bit pattern is reserved by the architecture and currently undefined.")
)

// Dispatch errors
var (
	ErrNoMatch = errors.New("X1|NoMatch: The instruction word does not belong to the indexed-element multiply group.")
)

// Cache errors
var (
	ErrCorruptBlock = errors.New("C1|CorruptBlock: A cached IR block could not be decoded.")
)

// IsUndefined reports whether err marks an instruction that must raise an
// undefined instruction exception in the guest.
func IsUndefined(err error) bool {
	return errors.Is(err, ErrUnallocatedEncoding) || errors.Is(err, ErrReservedValue)
}

// split breaks a "code|Name: description" message into its parts. Any
// wrapping prefix ending in ": " before the code is dropped.
func split(msg string) (code, name, desc string, ok bool) {
	code, rest, ok := strings.Cut(msg, "|")
	if !ok {
		return "", "", "", false
	}
	if i := strings.LastIndex(code, ": "); i >= 0 {
		code = code[i+2:]
	}
	name, desc, _ = strings.Cut(rest, ":")
	return strings.TrimSpace(code), strings.TrimSpace(name), strings.TrimSpace(desc), code != ""
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	_, name, _, ok := split(err.Error())
	if !ok || name == "" {
		return err.Error()
	}
	return name
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	code, _, _, _ := split(err.Error())
	return code
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	if _, _, desc, ok := split(err.Error()); ok && desc != "" {
		return desc
	}
	_, desc, ok := strings.Cut(err.Error(), ":")
	if !ok {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(desc)
}
