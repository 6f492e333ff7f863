package document

// Content is the raw payload retrieved for a document. ContentType is the
// full header value, parameters included ("text/html; charset=utf-8").
type Content struct {
	Identity    Identity
	ContentType string
	Body        []byte
}
