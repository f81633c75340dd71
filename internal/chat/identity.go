package chat

import "github.com/google/uuid"

// Identity - opaque key of an admitted connection.
// It never depends on the socket, since half-closed sockets are not reliably comparable.
type Identity string

// NewIdentity - generates a fresh identity for a connection being admitted.
func NewIdentity() Identity {
	return Identity(uuid.NewString())
}

func (id Identity) String() string {
	return string(id)
}
