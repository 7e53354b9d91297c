package nan

import (
	"sort"

	"github.com/aware-dev/aware-go-nan-manager/internal/event"
	"github.com/aware-dev/aware-go-nan-manager/internal/logger"
)

// StateManager mediates between application clients and the NAN HAL. Every
// client entry point and every HAL response enqueues a handler onto the
// looper and returns immediately; handlers run serialized, so no other
// locking exists. Clients never observe synchronous errors: every failure is
// reported through a callback with a FailReason.
type StateManager struct {
	looper *event.Looper
	hal    Hal

	clients  map[uint32]*ClientState
	registry *TransactionRegistry

	// create-session transactions swept by a disconnect. The HAL will still
	// answer; a success must be met with an immediate stop so the firmware
	// does not leak the session.
	orphanedCreates map[uint16]SessionKind
}

func NewStateManager(looper *event.Looper, hal Hal) *StateManager {
	return &StateManager{
		looper:          looper,
		hal:             hal,
		clients:         make(map[uint32]*ClientState),
		registry:        NewTransactionRegistry(),
		orphanedCreates: make(map[uint16]SessionKind),
	}
}

// CreateNextTransactionID advances the transaction id generator and returns
// the id. Diagnostic hook; normal command paths allocate through the
// registry.
func (m *StateManager) CreateNextTransactionID() uint16 {
	return m.registry.nextTransactionID()
}

/*
 * Client API. Each call posts a handler and returns.
 */

// Connect registers a client. A nil eventCallback is allowed: the client
// receives no events but its configuration still joins the merge. A second
// connect with a live id is ignored.
func (m *StateManager) Connect(clientID uint32, eventCallback EventCallback) {
	m.looper.Post(func() { m.handleConnect(clientID, eventCallback) })
}

// Disconnect deregisters a client, stops its established sessions and sweeps
// its pending transactions. When the client had requested a configuration,
// the recomputed device configuration is pushed (or the HAL is disabled when
// no configured client remains).
func (m *StateManager) Disconnect(clientID uint32) {
	m.looper.Post(func() { m.handleDisconnect(clientID) })
}

// RequestConfig records the client's requested configuration and pushes the
// merged device configuration to the HAL.
func (m *StateManager) RequestConfig(clientID uint32, req ConfigRequest) {
	m.looper.Post(func() { m.handleRequestConfig(clientID, req) })
}

// Publish starts a new publish session.
func (m *StateManager) Publish(clientID uint32, cfg PublishConfig, sessionCallback SessionCallback) {
	m.looper.Post(func() { m.handleCreateSession(clientID, SessionKindPublish, func(txID uint16) error {
		return m.hal.Publish(txID, 0, cfg)
	}, sessionCallback) })
}

// Subscribe starts a new subscribe session.
func (m *StateManager) Subscribe(clientID uint32, cfg SubscribeConfig, sessionCallback SessionCallback) {
	m.looper.Post(func() { m.handleCreateSession(clientID, SessionKindSubscribe, func(txID uint16) error {
		return m.hal.Subscribe(txID, 0, cfg)
	}, sessionCallback) })
}

// UpdatePublish re-publishes an existing publish session with cfg.
func (m *StateManager) UpdatePublish(clientID uint32, sessionID uint32, cfg PublishConfig) {
	m.looper.Post(func() { m.handleUpdateSession(clientID, sessionID, SessionKindPublish, func(txID uint16, pubSubID uint32) error {
		return m.hal.Publish(txID, pubSubID, cfg)
	}) })
}

// UpdateSubscribe re-subscribes an existing subscribe session with cfg.
func (m *StateManager) UpdateSubscribe(clientID uint32, sessionID uint32, cfg SubscribeConfig) {
	m.looper.Post(func() { m.handleUpdateSession(clientID, sessionID, SessionKindSubscribe, func(txID uint16, pubSubID uint32) error {
		return m.hal.Subscribe(txID, pubSubID, cfg)
	}) })
}

// TerminateSession ends a session. No callback is fired: termination
// requested by the owner is acknowledged by silence.
func (m *StateManager) TerminateSession(clientID uint32, sessionID uint32) {
	m.looper.Post(func() { m.handleTerminateSession(clientID, sessionID) })
}

// SendMessage sends message to a peer previously seen on the session. The
// caller-supplied messageID is echoed on the result callback.
func (m *StateManager) SendMessage(clientID uint32, sessionID uint32, peerID uint32, message []byte, messageID int32) {
	m.looper.Post(func() { m.handleSendMessage(clientID, sessionID, peerID, message, messageID) })
}

/*
 * HAL responses and events. The HAL driver posts these from its own context.
 * Unknown transaction ids and unknown pubSub ids are absorbed silently.
 */

func (m *StateManager) OnConfigCompleted(transactionID uint16) {
	m.looper.Post(func() { m.handleConfigResponse(transactionID, true, 0) })
}

func (m *StateManager) OnConfigFailed(transactionID uint16, reason FailReason) {
	m.looper.Post(func() { m.handleConfigResponse(transactionID, false, reason) })
}

func (m *StateManager) OnPublishSuccess(transactionID uint16, pubSubID uint32) {
	m.looper.Post(func() { m.handleSessionSuccess(transactionID, pubSubID) })
}

func (m *StateManager) OnPublishFail(transactionID uint16, reason FailReason) {
	m.looper.Post(func() { m.handleSessionFail(transactionID, reason) })
}

func (m *StateManager) OnSubscribeSuccess(transactionID uint16, pubSubID uint32) {
	m.looper.Post(func() { m.handleSessionSuccess(transactionID, pubSubID) })
}

func (m *StateManager) OnSubscribeFail(transactionID uint16, reason FailReason) {
	m.looper.Post(func() { m.handleSessionFail(transactionID, reason) })
}

func (m *StateManager) OnPublishTerminated(pubSubID uint32, reason TerminateReason) {
	m.looper.Post(func() { m.handleSessionTerminated(pubSubID, SessionKindPublish, reason) })
}

func (m *StateManager) OnSubscribeTerminated(pubSubID uint32, reason TerminateReason) {
	m.looper.Post(func() { m.handleSessionTerminated(pubSubID, SessionKindSubscribe, reason) })
}

func (m *StateManager) OnMessageSendSuccess(transactionID uint16) {
	m.looper.Post(func() { m.handleMessageSendResult(transactionID, true, 0) })
}

func (m *StateManager) OnMessageSendFail(transactionID uint16, reason FailReason) {
	m.looper.Post(func() { m.handleMessageSendResult(transactionID, false, reason) })
}

func (m *StateManager) OnMatch(pubSubID uint32, peerID uint32, peerMac MacAddress, serviceSpecificInfo, matchFilter []byte) {
	m.looper.Post(func() { m.handleMatch(pubSubID, peerID, peerMac, serviceSpecificInfo, matchFilter) })
}

func (m *StateManager) OnMessageReceived(pubSubID uint32, peerID uint32, peerMac MacAddress, message []byte) {
	m.looper.Post(func() { m.handleMessageReceived(pubSubID, peerID, peerMac, message) })
}

func (m *StateManager) OnClusterChange(clusterEvent ClusterEvent, mac MacAddress) {
	m.looper.Post(func() { m.handleIdentityChange() })
}

func (m *StateManager) OnInterfaceAddressChange(mac MacAddress) {
	m.looper.Post(func() { m.handleIdentityChange() })
}

func (m *StateManager) OnNanDown(reason FailReason) {
	m.looper.Post(func() { m.handleNanDown(reason) })
}

func (m *StateManager) OnCapabilitiesUpdate(transactionID uint16, caps Capabilities) {
	m.looper.Post(func() { m.handleCapabilitiesUpdate(transactionID, caps) })
}

func (m *StateManager) OnUnknownTransaction(responseType int, transactionID uint16, status int) {
	m.looper.Post(func() { m.handleUnknownTransaction(responseType, transactionID, status) })
}

func (m *StateManager) OnNoOpTransaction(transactionID uint16) {
	m.looper.Post(func() { m.handleNoOpTransaction(transactionID) })
}

/*
 * Handlers. Only ever run on the looper.
 */

func (m *StateManager) handleConnect(clientID uint32, eventCallback EventCallback) {
	if _, ok := m.clients[clientID]; ok {
		logger.WarnF("[%d] Duplicate connect ignored", clientID)
		return
	}
	m.clients[clientID] = newClientState(clientID, eventCallback)
	logger.InfoF("[%d] Client connected", clientID)
}

func (m *StateManager) handleDisconnect(clientID uint32) {
	client, ok := m.clients[clientID]
	if !ok {
		logger.WarnF("[%d] Disconnect for unknown client", clientID)
		return
	}

	// pending commands: the HAL will still answer, but nobody is listening.
	// Creates need the orphan table so the eventual success can be met with
	// a stop; everything else becomes an unknown transaction.
	for _, swept := range m.registry.SweepClient(clientID) {
		if swept.record.kind == txCreateSession {
			m.orphanedCreates[swept.id] = swept.record.sessionKind
		}
	}

	for _, session := range client.sessionList() {
		pubSubID, established := session.PubSubID()
		if !established {
			continue
		}
		m.stopSession(session.Kind(), pubSubID)
	}

	delete(m.clients, clientID)
	logger.InfoF("[%d] Client disconnected", clientID)

	if _, hadConfig := client.ConfigRequest(); hadConfig {
		m.pushMergedConfigOrDisable()
	}
}

func (m *StateManager) handleRequestConfig(clientID uint32, req ConfigRequest) {
	client, ok := m.clients[clientID]
	if !ok {
		logger.WarnF("[%d] Config request for unknown client", clientID)
		return
	}

	client.setConfigRequest(req)
	merged := MergeConfigRequests(m.collectConfigRequests())

	txID := m.registry.Allocate(&pendingTx{
		kind:     txConfig,
		clientID: clientID,
		config:   req,
	})
	if err := m.hal.EnableAndConfigure(txID, merged); err != nil {
		logger.ErrorF("[%d] Fail to issue enableAndConfigure, details: %v", clientID, err)
	}
}

func (m *StateManager) handleCreateSession(clientID uint32, kind SessionKind, issue func(txID uint16) error, sessionCallback SessionCallback) {
	if _, ok := m.clients[clientID]; !ok {
		logger.WarnF("[%d] %s for unknown client", clientID, kind)
		return
	}

	txID := m.registry.Allocate(&pendingTx{
		kind:        txCreateSession,
		clientID:    clientID,
		sessionKind: kind,
		callback:    sessionCallback,
	})
	if err := issue(txID); err != nil {
		logger.ErrorF("[%d] Fail to issue %s, details: %v", clientID, kind, err)
	}
}

func (m *StateManager) handleUpdateSession(clientID uint32, sessionID uint32, kind SessionKind, issue func(txID uint16, pubSubID uint32) error) {
	client, ok := m.clients[clientID]
	if !ok {
		logger.WarnF("[%d] Update %s for unknown client", clientID, kind)
		return
	}

	session, ok := client.session(sessionID)
	if !ok {
		// a firmware termination the owner has not acknowledged yet still
		// fails loudly; a session the owner itself terminated fails silently
		if callback, raced := client.peekTerminated(sessionID); raced {
			callback.OnSessionConfigFail(FailReasonSessionTerminated)
			return
		}
		logger.WarnF("[%d] Update for unknown session %d", clientID, sessionID)
		return
	}

	if session.Kind() != kind {
		logger.WarnF("[%d] %s update on %s session %d", clientID, kind, session.Kind(), sessionID)
		session.Callback().OnSessionConfigFail(FailReasonOther)
		return
	}

	pubSubID, established := session.PubSubID()
	if !established {
		session.Callback().OnSessionConfigFail(FailReasonOther)
		return
	}

	txID := m.registry.Allocate(&pendingTx{
		kind:      txUpdateSession,
		clientID:  clientID,
		sessionID: sessionID,
	})
	if err := issue(txID, pubSubID); err != nil {
		logger.ErrorF("[%d] Fail to issue %s update, details: %v", clientID, kind, err)
	}
}

func (m *StateManager) handleTerminateSession(clientID uint32, sessionID uint32) {
	client, ok := m.clients[clientID]
	if !ok {
		logger.WarnF("[%d] Terminate for unknown client", clientID)
		return
	}

	session, ok := client.session(sessionID)
	if !ok {
		// already gone: either terminated by firmware (clear the record so
		// later updates stay silent) or never existed
		if _, raced := client.takeTerminated(sessionID); !raced {
			logger.WarnF("[%d] Terminate for unknown session %d", clientID, sessionID)
		}
		return
	}

	client.removeSession(sessionID)
	if pubSubID, established := session.PubSubID(); established {
		m.stopSession(session.Kind(), pubSubID)
	}
}

func (m *StateManager) handleSendMessage(clientID uint32, sessionID uint32, peerID uint32, message []byte, messageID int32) {
	client, ok := m.clients[clientID]
	if !ok {
		logger.WarnF("[%d] Send message for unknown client", clientID)
		return
	}

	session, ok := client.session(sessionID)
	if !ok {
		logger.WarnF("[%d] Send message for unknown session %d", clientID, sessionID)
		return
	}

	peerMac, ok := session.LookupPeer(peerID)
	if !ok {
		logger.DebugF("[%d] Send message to unknown peer %d on session %d", clientID, peerID, sessionID)
		session.Callback().OnMessageSendFail(messageID, FailReasonNoMatchSession)
		return
	}

	pubSubID, established := session.PubSubID()
	if !established {
		session.Callback().OnMessageSendFail(messageID, FailReasonNoMatchSession)
		return
	}

	txID := m.registry.Allocate(&pendingTx{
		kind:      txSendMessage,
		clientID:  clientID,
		sessionID: sessionID,
		messageID: messageID,
	})
	if err := m.hal.SendMessage(txID, pubSubID, peerID, peerMac, message); err != nil {
		logger.ErrorF("[%d] Fail to issue sendMessage, details: %v", clientID, err)
	}
}

func (m *StateManager) handleConfigResponse(transactionID uint16, completed bool, reason FailReason) {
	record, ok := m.registry.Take(transactionID)
	if !ok {
		logger.DebugF("Config response for unknown transaction %d", transactionID)
		return
	}
	if record.kind != txConfig {
		logger.WarnF("Config response for %s transaction %d", record.kind, transactionID)
		return
	}

	client, ok := m.clients[record.clientID]
	if !ok || client.Callback() == nil {
		return
	}
	if completed {
		client.Callback().OnConfigCompleted(record.config)
	} else {
		client.Callback().OnConfigFailed(record.config, reason)
	}
}

func (m *StateManager) handleSessionSuccess(transactionID uint16, pubSubID uint32) {
	record, ok := m.registry.Take(transactionID)
	if !ok {
		if kind, orphaned := m.orphanedCreates[transactionID]; orphaned {
			// the owner disconnected while the create was in flight; the
			// firmware resource exists now and must be released
			delete(m.orphanedCreates, transactionID)
			m.stopSession(kind, pubSubID)
			return
		}
		logger.DebugF("Session response for unknown transaction %d", transactionID)
		return
	}

	switch record.kind {
	case txCreateSession:
		client, ok := m.clients[record.clientID]
		if !ok {
			m.stopSession(record.sessionKind, pubSubID)
			return
		}
		session := newSessionState(client.mintSessionID(), record.sessionKind, record.callback)
		session.setPubSubID(pubSubID)
		client.addSession(session)
		logger.DebugF("[%d] %s session %d established, pubSubId=%d",
			record.clientID, session.Kind(), session.ID(), pubSubID)
		record.callback.OnSessionStarted(session.ID())
	case txUpdateSession:
		// config applied; the session keeps its pubSub id and no callback
		// fires
	default:
		logger.WarnF("Session response for %s transaction %d", record.kind, transactionID)
	}
}

func (m *StateManager) handleSessionFail(transactionID uint16, reason FailReason) {
	record, ok := m.registry.Take(transactionID)
	if !ok {
		// an orphaned create that failed needs no compensation
		delete(m.orphanedCreates, transactionID)
		return
	}

	switch record.kind {
	case txCreateSession:
		record.callback.OnSessionConfigFail(reason)
	case txUpdateSession:
		client, ok := m.clients[record.clientID]
		if !ok {
			return
		}
		session, ok := client.session(record.sessionID)
		if !ok {
			return
		}
		// the session stays established; later updates are legal
		session.Callback().OnSessionConfigFail(reason)
	default:
		logger.WarnF("Session failure for %s transaction %d", record.kind, transactionID)
	}
}

func (m *StateManager) handleSessionTerminated(pubSubID uint32, kind SessionKind, reason TerminateReason) {
	client, session, ok := m.findSessionByPubSubID(pubSubID, kind)
	if !ok {
		logger.DebugF("%s termination for unknown pubSubId %d", kind, pubSubID)
		return
	}

	session.Callback().OnSessionTerminated(reason)
	client.removeSession(session.ID())
	// remember the callback: the owner may already have posted an update
	// against the id it still believes in
	client.markTerminated(session.ID(), session.Callback())
	logger.InfoF("[%d] %s session %d terminated by firmware, reason=%s",
		client.ID(), kind, session.ID(), reason)
}

func (m *StateManager) handleMessageSendResult(transactionID uint16, success bool, reason FailReason) {
	record, ok := m.registry.Take(transactionID)
	if !ok {
		logger.DebugF("Message send result for unknown transaction %d", transactionID)
		return
	}
	if record.kind != txSendMessage {
		logger.WarnF("Message send result for %s transaction %d", record.kind, transactionID)
		return
	}

	client, ok := m.clients[record.clientID]
	if !ok {
		return
	}
	session, ok := client.session(record.sessionID)
	if !ok {
		return
	}
	if success {
		session.Callback().OnMessageSendSuccess(record.messageID)
	} else {
		session.Callback().OnMessageSendFail(record.messageID, reason)
	}
}

func (m *StateManager) handleMatch(pubSubID uint32, peerID uint32, peerMac MacAddress, serviceSpecificInfo, matchFilter []byte) {
	_, session, ok := m.findSessionByPubSubID(pubSubID, 0)
	if !ok {
		logger.DebugF("Match for unknown pubSubId %d", pubSubID)
		return
	}
	session.UpdatePeer(peerID, peerMac)
	session.Callback().OnMatch(peerID, serviceSpecificInfo, matchFilter)
}

func (m *StateManager) handleMessageReceived(pubSubID uint32, peerID uint32, peerMac MacAddress, message []byte) {
	_, session, ok := m.findSessionByPubSubID(pubSubID, 0)
	if !ok {
		logger.DebugF("Message received for unknown pubSubId %d", pubSubID)
		return
	}
	// a peer may change MAC mid-conversation; the instance id is the stable
	// handle, so refresh the mapping on every message
	session.UpdatePeer(peerID, peerMac)
	session.Callback().OnMessageReceived(peerID, message)
}

func (m *StateManager) handleIdentityChange() {
	for _, client := range m.clientList() {
		req, ok := client.ConfigRequest()
		if !ok || !req.IdentityChangeEnabled || client.Callback() == nil {
			continue
		}
		client.Callback().OnIdentityChanged()
	}
}

func (m *StateManager) handleNanDown(reason FailReason) {
	logger.WarnF("NAN down, reason=%s", reason)
	// notify only: clients decide whether to disconnect; tables stay intact
	for _, client := range m.clientList() {
		if client.Callback() == nil {
			continue
		}
		client.Callback().OnNanDown(reason)
	}
}

func (m *StateManager) handleCapabilitiesUpdate(transactionID uint16, caps Capabilities) {
	if _, ok := m.registry.Take(transactionID); ok {
		logger.DebugF("Capabilities update: %+v", caps)
	}
}

func (m *StateManager) handleUnknownTransaction(responseType int, transactionID uint16, status int) {
	logger.WarnF("Unknown response type %d for transaction %d, status %d", responseType, transactionID, status)
	m.registry.Take(transactionID)
	delete(m.orphanedCreates, transactionID)
}

func (m *StateManager) handleNoOpTransaction(transactionID uint16) {
	m.registry.Take(transactionID)
}

/*
 * Internals.
 */

// stopSession releases a firmware session nobody listens to anymore. The
// response carries no payload, so the transaction is registered as a NoOp.
func (m *StateManager) stopSession(kind SessionKind, pubSubID uint32) {
	txID := m.registry.Allocate(&pendingTx{kind: txNoOp})
	var err error
	if kind == SessionKindPublish {
		err = m.hal.StopPublish(txID, pubSubID)
	} else {
		err = m.hal.StopSubscribe(txID, pubSubID)
	}
	if err != nil {
		logger.ErrorF("Fail to issue stop for %s pubSubId %d, details: %v", kind, pubSubID, err)
	}
}

// pushMergedConfigOrDisable recomputes the device configuration after a
// configured client left. With no configured client remaining the HAL is
// disabled outright.
func (m *StateManager) pushMergedConfigOrDisable() {
	requests := m.collectConfigRequests()
	if len(requests) == 0 {
		txID := m.registry.Allocate(&pendingTx{kind: txNoOp})
		if err := m.hal.Disable(txID); err != nil {
			logger.ErrorF("Fail to issue disable, details: %v", err)
		}
		return
	}

	txID := m.registry.Allocate(&pendingTx{kind: txNoOp})
	if err := m.hal.EnableAndConfigure(txID, MergeConfigRequests(requests)); err != nil {
		logger.ErrorF("Fail to issue enableAndConfigure, details: %v", err)
	}
}

func (m *StateManager) collectConfigRequests() []ConfigRequest {
	var requests []ConfigRequest
	for _, client := range m.clientList() {
		if req, ok := client.ConfigRequest(); ok {
			requests = append(requests, req)
		}
	}
	return requests
}

// clientList returns the connected clients ordered by id so event fan-out is
// deterministic.
func (m *StateManager) clientList() []*ClientState {
	ids := make([]uint32, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list := make([]*ClientState, 0, len(ids))
	for _, id := range ids {
		list = append(list, m.clients[id])
	}
	return list
}

func (m *StateManager) findSessionByPubSubID(pubSubID uint32, kind SessionKind) (*ClientState, *SessionState, bool) {
	for _, client := range m.clientList() {
		if session, ok := client.sessionByPubSubID(pubSubID, kind); ok {
			return client, session, true
		}
	}
	return nil, nil, false
}
