package main

import (
	"github.com/aware-dev/aware-go-nan-manager/internal/logger"
	"github.com/aware-dev/aware-go-nan-manager/internal/nan"
)

const demoClientID = 1

// demoClient subscribes for a demo service against the simulated firmware
// and greets every peer the simulator fabricates. It doubles as a worked
// example of the callback vocabulary.
type demoClient struct {
	manager   *nan.StateManager
	sessionID uint32
	messageID int32
}

func startDemoClient(manager *nan.StateManager) {
	client := &demoClient{manager: manager}
	manager.Connect(demoClientID, client)
	manager.RequestConfig(demoClientID, nan.ConfigRequest{
		MasterPreference:      1,
		IdentityChangeEnabled: true,
	})
	manager.Subscribe(demoClientID, nan.SubscribeConfig{
		ServiceName:         "aware-demo",
		ServiceSpecificInfo: []byte("hello from the demo client"),
		Type:                nan.SubscribeTypePassive,
	}, client)
}

func (d *demoClient) OnConfigCompleted(completed nan.ConfigRequest) {
	logger.InfoF("[demo] Config completed: %+v", completed)
}

func (d *demoClient) OnConfigFailed(failed nan.ConfigRequest, reason nan.FailReason) {
	logger.WarnF("[demo] Config failed, reason=%s", reason)
}

func (d *demoClient) OnIdentityChanged() {
	logger.Info("[demo] Device identity changed")
}

func (d *demoClient) OnNanDown(reason nan.FailReason) {
	logger.WarnF("[demo] NAN down, reason=%s", reason)
}

func (d *demoClient) OnSessionStarted(sessionID uint32) {
	d.sessionID = sessionID
	logger.InfoF("[demo] Session %d started", sessionID)
}

func (d *demoClient) OnSessionConfigFail(reason nan.FailReason) {
	logger.WarnF("[demo] Session config failed, reason=%s", reason)
}

func (d *demoClient) OnSessionTerminated(reason nan.TerminateReason) {
	logger.InfoF("[demo] Session terminated, reason=%s", reason)
}

func (d *demoClient) OnMatch(peerID uint32, serviceSpecificInfo, matchFilter []byte) {
	logger.InfoF("[demo] Matched peer %d, ssi=%q", peerID, serviceSpecificInfo)
	d.messageID++
	d.manager.SendMessage(demoClientID, d.sessionID, peerID, []byte("hey there"), d.messageID)
}

func (d *demoClient) OnMessageReceived(peerID uint32, message []byte) {
	logger.InfoF("[demo] Message from peer %d: %q", peerID, message)
}

func (d *demoClient) OnMessageSendSuccess(messageID int32) {
	logger.InfoF("[demo] Message %d delivered", messageID)
}

func (d *demoClient) OnMessageSendFail(messageID int32, reason nan.FailReason) {
	logger.WarnF("[demo] Message %d failed, reason=%s", messageID, reason)
}
