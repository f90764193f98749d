// Package hub provides a websocket broadcast hub using the channel
// based fan-out pattern. The kiosk uses one hub for status updates and
// one for preview frames.
package hub

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded message.
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (e.g., JPEG preview frames).
	BinaryMessage
)

// Message is one payload to broadcast to all connected clients.
type Message struct {
	Type MessageType
	Data []byte
}
