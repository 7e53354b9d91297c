package nan

// Hal is the downward interface to the NAN firmware driver. Calls return as
// soon as the command is issued; the outcome arrives later as a HAL response
// carrying the same transaction id. A pubSubID of 0 on Publish/Subscribe
// means "create a new session".
//
// The manager is the sole caller. Returned errors mean the command never
// left the host; they are logged, never surfaced to clients.
type Hal interface {
	EnableAndConfigure(transactionID uint16, req ConfigRequest) error
	Disable(transactionID uint16) error
	Publish(transactionID uint16, pubSubID uint32, cfg PublishConfig) error
	StopPublish(transactionID uint16, pubSubID uint32) error
	Subscribe(transactionID uint16, pubSubID uint32, cfg SubscribeConfig) error
	StopSubscribe(transactionID uint16, pubSubID uint32) error
	SendMessage(transactionID uint16, pubSubID uint32, peerID uint32, peerMac MacAddress, message []byte) error
}
