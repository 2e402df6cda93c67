package main

import (
	"fmt"
	"os"

	"github.com/MythicMindLabs/apply/chaincode/config"
	"github.com/MythicMindLabs/apply/chaincode/logging"
	recorder "github.com/MythicMindLabs/apply/chaincode/payment_recorder"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Error loading configuration: %v", err))
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	contract := recorder.NewSmartContract(log, recorder.Options{
		MaxCommandLength:  cfg.MaxCommandLength,
		MaxCurrencyLength: cfg.MaxCurrencyLength,
	}, cfg.AllowedMSPs...)
	chaincode, err := contractapi.NewChaincode(contract)
	if err != nil {
		panic(fmt.Sprintf("Error creating chaincode: %v", err))
	}
	chaincode.Info.Title = "voice-payment-recorder"
	chaincode.Info.Version = "1.0.0"

	if cfg.ServerAddress == "" {
		log.Info("starting chaincode in peer mode")
		if err := chaincode.Start(); err != nil {
			panic(fmt.Sprintf("Error starting chaincode: %v", err))
		}
		return
	}

	tlsProps, err := tlsProperties(cfg)
	if err != nil {
		panic(fmt.Sprintf("Error reading TLS material: %v", err))
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.ChaincodeID,
		Address:  cfg.ServerAddress,
		CC:       chaincode,
		TLSProps: tlsProps,
	}
	log.Info("starting chaincode server", "address", cfg.ServerAddress, "tls", !cfg.TLSDisabled)
	if err := server.Start(); err != nil {
		panic(fmt.Sprintf("Error starting chaincode server: %v", err))
	}
}

func tlsProperties(cfg *config.Config) (shim.TLSProperties, error) {
	if cfg.TLSDisabled {
		return shim.TLSProperties{Disabled: true}, nil
	}
	key, err := os.ReadFile(cfg.TLSKey)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read key %s: %v", cfg.TLSKey, err)
	}
	cert, err := os.ReadFile(cfg.TLSCert)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read cert %s: %v", cfg.TLSCert, err)
	}
	props := shim.TLSProperties{Key: key, Cert: cert}
	if cfg.TLSClientCA != "" {
		ca, err := os.ReadFile(cfg.TLSClientCA)
		if err != nil {
			return shim.TLSProperties{}, fmt.Errorf("failed to read client CA %s: %v", cfg.TLSClientCA, err)
		}
		props.ClientCACerts = ca
	}
	return props, nil
}
