package vault

// Persistent is implemented by anything that can be stored in a KVStore.
// The methods are a subset of those generated by the protobuf compiler, so
// every stored model satisfies it for free.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}
