package smtp

import "io"

// Client is the subset of *smtp.Client the sender needs, extracted so
// tests can substitute a double.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
