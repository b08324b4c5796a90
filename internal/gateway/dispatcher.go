package gateway

// Dispatcher delivers realtime events to a connected identity. The concrete
// Manager implements this interface. Delivery to an identity with no live
// connection is a no-op.
type Dispatcher interface {
	DispatchToUser(userID string, event string, data any)
}
