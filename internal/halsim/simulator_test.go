package halsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aware-dev/aware-go-nan-manager/internal/event"
	"github.com/aware-dev/aware-go-nan-manager/internal/nan"
)

type recordingSessionCallback struct {
	started    []uint32
	matches    []uint32
	sendOK     []int32
	failReason []nan.FailReason
}

func (r *recordingSessionCallback) OnSessionStarted(sessionID uint32) {
	r.started = append(r.started, sessionID)
}

func (r *recordingSessionCallback) OnSessionConfigFail(reason nan.FailReason) {
	r.failReason = append(r.failReason, reason)
}

func (r *recordingSessionCallback) OnSessionTerminated(nan.TerminateReason) {}

func (r *recordingSessionCallback) OnMatch(peerID uint32, _, _ []byte) {
	r.matches = append(r.matches, peerID)
}

func (r *recordingSessionCallback) OnMessageReceived(uint32, []byte) {}

func (r *recordingSessionCallback) OnMessageSendSuccess(messageID int32) {
	r.sendOK = append(r.sendOK, messageID)
}

func (r *recordingSessionCallback) OnMessageSendFail(int32, nan.FailReason) {}

func TestSimulatorEstablishesSubscribeSession(t *testing.T) {
	peerMac := nan.MacAddress{0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b}

	looper := event.NewLooper(0)
	sim := New(Options{FabricateMatch: true, PeerMac: peerMac})
	manager := nan.NewStateManager(looper, sim)
	sim.Attach(manager)

	callback := &recordingSessionCallback{}
	manager.Connect(1, nil)
	manager.Subscribe(1, nan.SubscribeConfig{ServiceName: "svc"}, callback)
	looper.DispatchAll()

	require.Len(t, callback.started, 1, "subscribe must be acknowledged")
	require.Len(t, callback.matches, 1, "a synthetic peer must be fabricated")

	manager.SendMessage(1, callback.started[0], callback.matches[0], []byte("hello"), 42)
	looper.DispatchAll()

	assert.Equal(t, []int32{42}, callback.sendOK)
	assert.Empty(t, callback.failReason)
}
