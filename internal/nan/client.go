package nan

import (
	"sort"
)

// ClientState is one connected application client: its event callback (may
// be absent), its latest requested configuration (absent until the first
// requestConfig), and its sessions.
type ClientState struct {
	id       uint32
	callback EventCallback
	config   *ConfigRequest

	sessions      map[uint32]*SessionState
	nextSessionID uint32

	// sessions already removed by firmware termination whose owner has not
	// acknowledged with terminateSession yet. An update racing the removal
	// still reaches the session callback through this table.
	terminated map[uint32]SessionCallback
}

func newClientState(id uint32, callback EventCallback) *ClientState {
	return &ClientState{
		id:         id,
		callback:   callback,
		sessions:   make(map[uint32]*SessionState),
		terminated: make(map[uint32]SessionCallback),
	}
}

func (c *ClientState) ID() uint32 {
	return c.id
}

// Callback returns the client's event callback, nil when the client
// registered without one. Such a client receives no events but its
// configuration still participates in the merge.
func (c *ClientState) Callback() EventCallback {
	return c.callback
}

// ConfigRequest returns the latest configuration this client submitted.
func (c *ClientState) ConfigRequest() (ConfigRequest, bool) {
	if c.config == nil {
		return ConfigRequest{}, false
	}
	return *c.config, true
}

func (c *ClientState) setConfigRequest(req ConfigRequest) {
	c.config = &req
}

// mintSessionID returns the next client-local session id.
func (c *ClientState) mintSessionID() uint32 {
	c.nextSessionID++
	return c.nextSessionID
}

func (c *ClientState) addSession(session *SessionState) {
	c.sessions[session.ID()] = session
}

func (c *ClientState) session(sessionID uint32) (*SessionState, bool) {
	session, ok := c.sessions[sessionID]
	return session, ok
}

func (c *ClientState) removeSession(sessionID uint32) bool {
	if _, ok := c.sessions[sessionID]; !ok {
		return false
	}
	delete(c.sessions, sessionID)
	return true
}

// sessionList returns the client's sessions ordered by session id, for
// deterministic sweeps.
func (c *ClientState) sessionList() []*SessionState {
	ids := make([]uint32, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list := make([]*SessionState, 0, len(ids))
	for _, id := range ids {
		list = append(list, c.sessions[id])
	}
	return list
}

// sessionByPubSubID finds the session the HAL knows as pubSubID, optionally
// restricted to a kind (0 matches either).
func (c *ClientState) sessionByPubSubID(pubSubID uint32, kind SessionKind) (*SessionState, bool) {
	for _, session := range c.sessionList() {
		id, established := session.PubSubID()
		if !established || id != pubSubID {
			continue
		}
		if kind != 0 && session.Kind() != kind {
			continue
		}
		return session, true
	}
	return nil, false
}

func (c *ClientState) markTerminated(sessionID uint32, callback SessionCallback) {
	c.terminated[sessionID] = callback
}

func (c *ClientState) takeTerminated(sessionID uint32) (SessionCallback, bool) {
	callback, ok := c.terminated[sessionID]
	if ok {
		delete(c.terminated, sessionID)
	}
	return callback, ok
}

func (c *ClientState) peekTerminated(sessionID uint32) (SessionCallback, bool) {
	callback, ok := c.terminated[sessionID]
	return callback, ok
}
