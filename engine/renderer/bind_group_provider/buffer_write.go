package bind_group_provider

// BufferWrite describes one queue write into a provider's buffer.
// Data is copied by the queue when the write is issued, so callers may reuse it afterwards.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
