package nan

// EventCallback receives device-level events for one client. Implementations
// are opaque capabilities owned by the IPC layer; the manager only checks
// them for presence and invokes them from looper handlers.
type EventCallback interface {
	OnConfigCompleted(completed ConfigRequest)
	OnConfigFailed(failed ConfigRequest, reason FailReason)
	OnIdentityChanged()
	OnNanDown(reason FailReason)
}

// SessionCallback receives events for one publish or subscribe session.
type SessionCallback interface {
	OnSessionStarted(sessionID uint32)
	OnSessionConfigFail(reason FailReason)
	OnSessionTerminated(reason TerminateReason)
	OnMatch(peerID uint32, serviceSpecificInfo, matchFilter []byte)
	OnMessageReceived(peerID uint32, message []byte)
	OnMessageSendSuccess(messageID int32)
	OnMessageSendFail(messageID int32, reason FailReason)
}
