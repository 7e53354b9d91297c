// Package halsim provides a loopback NAN firmware used by the demo binary.
// Every command is acknowledged with the matching success response, posted
// back through the manager so the full transaction path is exercised without
// hardware. Unit tests for the manager use their own recording fakes; this
// simulator exists so the service runs end to end.
package halsim

import (
	"time"

	"github.com/google/uuid"

	"github.com/aware-dev/aware-go-nan-manager/internal/logger"
	"github.com/aware-dev/aware-go-nan-manager/internal/nan"
)

// Options controls the simulated firmware.
type Options struct {
	// ResponseDelay is the artificial latency between a command and its
	// response. Zero answers on the next dispatch.
	ResponseDelay time.Duration

	// FabricateMatch makes every subscribe session discover one synthetic
	// peer at PeerMac shortly after it is established.
	FabricateMatch bool
	PeerMac        nan.MacAddress
}

// Simulator implements nan.Hal.
type Simulator struct {
	firmwareID uuid.UUID
	opts       Options
	manager    *nan.StateManager

	nextPubSubID uint32
	nextPeerID   uint32
}

func New(opts Options) *Simulator {
	return &Simulator{
		firmwareID: uuid.New(),
		opts:       opts,
		nextPeerID: 100,
	}
}

// Attach wires the simulator to the manager its responses go to. Must be
// called before the first command.
func (s *Simulator) Attach(manager *nan.StateManager) {
	s.manager = manager
	logger.InfoF("[sim %s] Simulated NAN firmware attached", s.firmwareID)
}

func (s *Simulator) respond(f func()) {
	if s.opts.ResponseDelay <= 0 {
		f()
		return
	}
	time.AfterFunc(s.opts.ResponseDelay, f)
}

func (s *Simulator) EnableAndConfigure(transactionID uint16, req nan.ConfigRequest) error {
	logger.DebugF("[sim %s] enableAndConfigure tx=%d %+v", s.firmwareID, transactionID, req)
	s.respond(func() { s.manager.OnConfigCompleted(transactionID) })
	return nil
}

func (s *Simulator) Disable(transactionID uint16) error {
	logger.DebugF("[sim %s] disable tx=%d", s.firmwareID, transactionID)
	s.respond(func() { s.manager.OnNoOpTransaction(transactionID) })
	return nil
}

func (s *Simulator) Publish(transactionID uint16, pubSubID uint32, cfg nan.PublishConfig) error {
	if pubSubID == 0 {
		pubSubID = s.allocPubSubID()
	}
	logger.DebugF("[sim %s] publish tx=%d pubSubId=%d service=%s", s.firmwareID, transactionID, pubSubID, cfg.ServiceName)
	id := pubSubID
	s.respond(func() { s.manager.OnPublishSuccess(transactionID, id) })
	return nil
}

func (s *Simulator) StopPublish(transactionID uint16, pubSubID uint32) error {
	logger.DebugF("[sim %s] stopPublish tx=%d pubSubId=%d", s.firmwareID, transactionID, pubSubID)
	s.respond(func() { s.manager.OnNoOpTransaction(transactionID) })
	return nil
}

func (s *Simulator) Subscribe(transactionID uint16, pubSubID uint32, cfg nan.SubscribeConfig) error {
	if pubSubID == 0 {
		pubSubID = s.allocPubSubID()
	}
	logger.DebugF("[sim %s] subscribe tx=%d pubSubId=%d service=%s", s.firmwareID, transactionID, pubSubID, cfg.ServiceName)
	id := pubSubID
	ssi := cfg.ServiceSpecificInfo
	s.respond(func() {
		s.manager.OnSubscribeSuccess(transactionID, id)
		if s.opts.FabricateMatch {
			s.nextPeerID++
			s.manager.OnMatch(id, s.nextPeerID, s.opts.PeerMac, ssi, nil)
		}
	})
	return nil
}

func (s *Simulator) StopSubscribe(transactionID uint16, pubSubID uint32) error {
	logger.DebugF("[sim %s] stopSubscribe tx=%d pubSubId=%d", s.firmwareID, transactionID, pubSubID)
	s.respond(func() { s.manager.OnNoOpTransaction(transactionID) })
	return nil
}

func (s *Simulator) SendMessage(transactionID uint16, pubSubID uint32, peerID uint32, peerMac nan.MacAddress, message []byte) error {
	logger.DebugF("[sim %s] sendMessage tx=%d pubSubId=%d peer=%d mac=%s len=%d",
		s.firmwareID, transactionID, pubSubID, peerID, peerMac, len(message))
	s.respond(func() { s.manager.OnMessageSendSuccess(transactionID) })
	return nil
}

func (s *Simulator) allocPubSubID() uint32 {
	s.nextPubSubID++
	return s.nextPubSubID
}
