package main

import (
	"log"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/logging"
	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
	"github.com/Mujahid2000/lms/internal/lmsd"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}
	if option.Server.JWTSecret == "" {
		log.Fatal("server.jwt_secret is required")
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	var blacklist driver.KeyValueDB
	switch option.KVStore.Backend {
	case "redis":
		rdb := driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)
		if err := rdb.Ping(); err != nil {
			log.Fatalf("Failed to connect to redis: %s\n", err)
		}
		logger.Debug("Using redis token blacklist",
			zap.String("kv.host", option.KVStore.Host),
			zap.Int("kv.port", option.KVStore.Port))
		blacklist = rdb
	default:
		blacklist = driver.NewMemoryStore()
	}

	IDGenerator := uuid.NewNanoIDGenerator(option.Server.IDLength)
	data := lmsd.NewDataset(IDGenerator)
	if err := lmsd.Seed(data); err != nil {
		log.Fatalf("Failed to seed dataset: %s\n", err)
	}
	logger.Info("Demo dataset ready", zap.String("user.email", "demo@lms.dev"))

	lmsd.Serve(option, data, blacklist, logger)
}
