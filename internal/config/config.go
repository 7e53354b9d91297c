package config

import (
	"encoding/json"
	"errors"
	"os"
)

type Config struct {
	Event struct {
		QueueSizeHint int `json:"queue_size_hint"`
	} `json:"event"`
	Simulator struct {
		ResponseDelay  string `json:"response_delay"`
		FabricateMatch bool   `json:"fabricate_match"`
		PeerMac        string `json:"peer_mac"`
	} `json:"simulator"`
	Shutdown struct {
		CleanerTimeout string `json:"cleaner_timeout"`
		LoggerTimeout  string `json:"logger_timeout"`
	} `json:"shutdown"`
	DebugMode bool   `json:"debug_mode"`
	AppName   string `json:"app_name"`
	LogPath   string `json:"log_path"`
}

var config Config
var initialized = false

func defaultConfig() Config {
	cfg := Config{
		AppName: "aware-go-nan-manager",
		LogPath: "logs",
	}
	cfg.Event.QueueSizeHint = 64
	cfg.Simulator.ResponseDelay = "1s"
	cfg.Simulator.FabricateMatch = true
	cfg.Simulator.PeerMac = "06:07:08:09:0a:0b"
	cfg.Shutdown.CleanerTimeout = "10s"
	cfg.Shutdown.LoggerTimeout = "3s"
	return cfg
}

func ReadConfig() (Config, error) {
	bytes, err := os.ReadFile("config.json")

	if err != nil {
		config = defaultConfig()
		writer, _ := os.OpenFile("config.json", os.O_WRONLY|os.O_CREATE, 0644)
		data, _ := json.MarshalIndent(config, "", "\t")
		_, _ = writer.Write(data)
		_ = writer.Close()
		return config, errors.New("the configuration file does not exist and has been created. Please try again after editing the configuration file")
	}

	err = json.Unmarshal(bytes, &config)

	if err != nil {
		return config, errors.New("the configuration file does not contain valid JSON")
	}

	initialized = true
	return config, nil
}

func GetConfig() (Config, error) {
	if initialized {
		return config, nil
	}
	return ReadConfig()
}
