package models

// StreamChunk is one event of a streamed reply. Exactly one field is set.
type StreamChunk struct {
	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

func ChunkEvent(text string) StreamChunk {
	return StreamChunk{Chunk: text}
}

func DoneEvent() StreamChunk {
	return StreamChunk{Done: true}
}

func ErrorEvent(message string) StreamChunk {
	return StreamChunk{Error: message}
}

// IsTerminal reports whether no further events follow this one.
func (c StreamChunk) IsTerminal() bool {
	return c.Done || c.Error != ""
}
