// Package messaging contains the decoupling layer between the crawl core
// and whatever downstream system wants to observe accepted edges as they
// are discovered. A real deployment might back this with Kafka, NATS or
// plain stdout; the crawl core only ever depends on the interfaces below.
package messaging

import "encoding/json"

// Producer enqueues a single payload of bytes toward the backing transport.
type Producer interface {
	Produce([]byte) error
}

// Consumer connects to a transport, blocking while forwarding incoming
// payloads into a push-only channel.
type Consumer interface {
	Consume(chan<- []byte) error
}

// ProducerConsumer is the behavior of a simple message queue: produce one
// way, consume the other.
type ProducerConsumer interface {
	Producer
	Consumer
}

// ProducerConsumerCloser is a ProducerConsumer that owns an external
// connection requiring explicit teardown.
type ProducerConsumerCloser interface {
	ProducerConsumer
	Close()
}

// Edge is the JSON-serializable view of a single accepted link, published
// for any consumer that wants a live feed of the crawl instead of (or in
// addition to) the edge log file.
type Edge struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// PublishEdge marshals an Edge and forwards it through p. Errors from the
// underlying transport are returned unwrapped so the caller can decide how
// loudly to log a downstream hiccup.
func PublishEdge(p Producer, source, dest string) error {
	payload, err := json.Marshal(Edge{Source: source, Dest: dest})
	if err != nil {
		return err
	}
	return p.Produce(payload)
}
