// Package message defines the closed set of messages passed between the
// crawl core's three stage loops. A message is immutable once enqueued:
// ownership transfers from producer to consumer on pop, and nothing ever
// mutates a Message in place.
package message

// Kind identifies which variant of the closed message set a Message holds.
type Kind int

const (
	// KindStop is the sentinel variant: it carries no payload and exists
	// solely to wake a blocked consumer so it observes shutdown.
	KindStop Kind = iota
	// KindURL carries a single URL to be (re-)fetched or tested against
	// the dedupe filter, depending on which queue it travels through.
	KindURL
	// KindHTTPResponse carries a fetched page body together with the URL
	// that produced it.
	KindHTTPResponse
)

func (k Kind) String() string {
	switch k {
	case KindStop:
		return "stop"
	case KindURL:
		return "url"
	case KindHTTPResponse:
		return "http_response"
	default:
		return "unknown"
	}
}

// Message is the tagged union flowing through every queue in the crawl
// core. Only the fields relevant to Kind are populated; callers must
// switch on Kind before reading RequestURL/Body/URL.
type Message struct {
	Kind Kind

	// URL is populated for KindURL.
	URL string

	// RequestURL and Body are populated for KindHTTPResponse. RequestURL
	// is carried as its own field rather than spliced into the front of
	// Body: the original implementation this system is derived from
	// overwrote the first bytes of the response with the request URL,
	// destroying the HTTP status line in the process. Whether any caller
	// relied on those original bytes was never resolved upstream, so this
	// port keeps the status line intact and threads the request URL
	// through separately instead.
	RequestURL string
	Body       string
}

// Stop builds the Stop sentinel message.
func Stop() Message { return Message{Kind: KindStop} }

// URL builds a KindURL message carrying u.
func URL(u string) Message { return Message{Kind: KindURL, URL: u} }

// HTTPResponse builds a KindHTTPResponse message carrying the response
// body fetched for requestURL.
func HTTPResponse(requestURL, body string) Message {
	return Message{Kind: KindHTTPResponse, RequestURL: requestURL, Body: body}
}
