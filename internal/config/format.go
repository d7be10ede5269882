package config

import "github.com/pkg/errors"

// Format is the output format of the exported documentation.
type Format string

const (
	HTML Format = "html"
	RST  Format = "rst"
)

// Formats lists the accepted values of Format.
var Formats = []Format{HTML, RST}

// ErrInvalidFormat is returned for an output type other than html or rst.
var ErrInvalidFormat = errors.New("invalid output type")

// ParseFormat validates s as a Format. Only the lowercase names are
// accepted.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if s == string(f) {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidFormat, "%q (choose from html, rst)", s)
}

// Ext is the file extension, without the dot, used for pages of this format.
func (f Format) Ext() string {
	return string(f)
}

// String implements pflag.Value.
func (f *Format) String() string {
	return string(*f)
}

// Set implements pflag.Value; values other than html and rst are rejected
// while the flags are parsed.
func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "html|rst"
}
