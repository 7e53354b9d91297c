package main

import (
	"context"

	"github.com/aware-dev/aware-go-nan-manager/internal/config"
	"github.com/aware-dev/aware-go-nan-manager/internal/event"
	"github.com/aware-dev/aware-go-nan-manager/internal/halsim"
	"github.com/aware-dev/aware-go-nan-manager/internal/logger"
	"github.com/aware-dev/aware-go-nan-manager/internal/nan"
	"github.com/aware-dev/aware-go-nan-manager/internal/utils"
)

func main() {
	conf, err := config.ReadConfig()
	if err != nil {
		logger.FatalF("Error occured while reading config %v", err)
		return
	}
	loggerCallback := logger.Init()
	logger.Debug("Application initializing...")

	cleaner := event.NewCleaner()
	cleaner.Init(loggerCallback,
		utils.ParseStringTime(conf.Shutdown.CleanerTimeout),
		utils.ParseStringTime(conf.Shutdown.LoggerTimeout))

	peerMac, err := nan.ParseMacAddress(conf.Simulator.PeerMac)
	if err != nil {
		logger.WarnF("Invalid simulator peer MAC %q, using default", conf.Simulator.PeerMac)
		peerMac = nan.MacAddress{0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b}
	}

	looper := event.NewLooper(conf.Event.QueueSizeHint)
	sim := halsim.New(halsim.Options{
		ResponseDelay:  utils.ParseStringTime(conf.Simulator.ResponseDelay),
		FabricateMatch: conf.Simulator.FabricateMatch,
		PeerMac:        peerMac,
	})
	manager := nan.NewStateManager(looper, sim)
	sim.Attach(manager)

	startDemoClient(manager)

	logger.InfoF("%s running against simulated firmware", conf.AppName)
	looper.Run(context.Background())
}
