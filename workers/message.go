package workers

// Message is what a caller posts into an execution context.
// Fn is an encoded envelope, Params is any JSON value.
type Message struct {
	Fn     any `json:"fn"`
	Params any `json:"params"`
}
