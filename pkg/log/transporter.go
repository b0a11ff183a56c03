package log

// Transporter is a log output destination.
type Transporter interface {
	Name() string
	Write(entry Entry) error
	Close() error
}
