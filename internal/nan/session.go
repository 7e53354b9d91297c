package nan

// SessionKind distinguishes publish from subscribe sessions. Fixed at
// creation for the life of the session.
type SessionKind int

const (
	SessionKindPublish SessionKind = iota + 1
	SessionKindSubscribe
)

func (k SessionKind) String() string {
	switch k {
	case SessionKindPublish:
		return "PUBLISH"
	case SessionKindSubscribe:
		return "SUBSCRIBE"
	}
	return "UNKNOWN"
}

// SessionState is one publish or subscribe session. Sessions are built when
// the HAL acknowledges the creating command; the manager-minted session id is
// the handle clients use, the HAL-assigned pubSub id is the handle the
// firmware uses.
type SessionState struct {
	id          uint32
	kind        SessionKind
	pubSubID    uint32
	established bool
	callback    SessionCallback
	peers       *PeerTable
}

func newSessionState(id uint32, kind SessionKind, callback SessionCallback) *SessionState {
	return &SessionState{
		id:       id,
		kind:     kind,
		callback: callback,
		peers:    newPeerTable(),
	}
}

func (s *SessionState) ID() uint32 {
	return s.id
}

func (s *SessionState) Kind() SessionKind {
	return s.kind
}

// PubSubID returns the HAL session id, valid once the session is established.
func (s *SessionState) PubSubID() (uint32, bool) {
	return s.pubSubID, s.established
}

// setPubSubID installs the HAL-assigned id. Once set it never changes, even
// across failed update attempts.
func (s *SessionState) setPubSubID(pubSubID uint32) {
	if s.established {
		return
	}
	s.pubSubID = pubSubID
	s.established = true
}

func (s *SessionState) Callback() SessionCallback {
	return s.callback
}

func (s *SessionState) UpdatePeer(peerID uint32, mac MacAddress) {
	s.peers.Update(peerID, mac)
}

func (s *SessionState) LookupPeer(peerID uint32) (MacAddress, bool) {
	return s.peers.Lookup(peerID)
}
