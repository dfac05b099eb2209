/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dr0pdb/squeefdb/pkg/catalog"
	"github.com/dr0pdb/squeefdb/pkg/common"
	"github.com/dr0pdb/squeefdb/pkg/logger"
	"github.com/dr0pdb/squeefdb/pkg/server"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var (
	configFilePath = flag.String("config", "", "path of the yaml config file")
	portFlag       = flag.Int("port", -1, "overrides the configured port; 0 picks a free port")
	schemaFlag     = flag.String("schema", "", "overrides the configured schema definition file")
	pgDSN          = flag.String("pg", "", "postgres connection string to import a schema from")
	pgSchema       = flag.String("pg-schema", "public", "postgres schema to import")
)

func main() {
	os.Exit(run())
}

// run returns the process exit code: 1 when the server could not start or the
// accept loop failed, 0 after a signal driven shutdown.
func run() int {
	flag.Parse()

	conf, err := loadConfig()
	if err != nil {
		log.Errorf("squeefd::main::run; invalid configuration: %v", err)
		return 1
	}

	level, _ := log.ParseLevel(conf.LogLevel)
	log.SetLevel(level)

	loggers, closeLogs, err := buildLoggers(conf, level)
	if err != nil {
		log.Errorf("squeefd::main::run; %v", err)
		return 1
	}
	defer closeLogs()

	cat, err := loadCatalog(conf)
	if err != nil {
		loggers.Error(fmt.Sprintf("Failed to load schema. %v", err))
		return 1
	}
	for _, db := range cat.Databases() {
		loggers.Info(fmt.Sprintf("Loaded database [%s] with %d tables", db.Name, len(db.Tables)))
	}

	var opts []server.Option
	if conf.HealthAddress != "" {
		hs := server.NewHealthServer(conf.HealthAddress)
		if err := hs.Start(); err != nil {
			loggers.Error(fmt.Sprintf("Failed to start health server. %v", err))
			return 1
		}
		defer hs.Stop()
		opts = append(opts, server.WithStateObserver(hs))
	}

	s := server.New(conf, loggers, opts...)
	if err := s.Start(); err != nil {
		return 1
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		s.Stop()
	}()

	err = s.Run()
	if errors.Is(err, server.ErrServerClosed) {
		return 0
	}
	s.Stop()
	return 1
}

// loadConfig applies, in order: defaults, config file, environment, flags.
func loadConfig() (*common.ServerConfig, error) {
	conf := common.NewDefaultServerConfig()
	if *configFilePath != "" {
		conf.LoadFromFile(*configFilePath)
	}
	if err := conf.LoadFromEnv(); err != nil {
		return nil, err
	}
	if *portFlag >= 0 {
		conf.Port = *portFlag
	}
	if *schemaFlag != "" {
		conf.SchemaPath = *schemaFlag
	}
	return conf, conf.Validate()
}

func buildLoggers(conf *common.ServerConfig, level log.Level) (logger.Loggers, func(), error) {
	var colorOpts []logger.Option
	switch conf.Color {
	case common.ColorAlways:
		colorOpts = append(colorOpts, logger.WithColor(true))
	case common.ColorNever:
		colorOpts = append(colorOpts, logger.WithColor(false))
	}

	loggers := logger.Loggers{
		logger.New("default", os.Stderr, append(colorOpts, logger.WithLevel(level))...),
	}
	if conf.LogFile == "" {
		return loggers, func() {}, nil
	}

	f, err := os.OpenFile(conf.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file %s: %w", conf.LogFile, err)
	}
	loggers = append(loggers, logger.New("file", f, logger.WithColor(false), logger.WithLevel(level)))
	return loggers, func() { f.Close() }, nil
}

func loadCatalog(conf *common.ServerConfig) (*catalog.Catalog, error) {
	cat, err := catalog.NewCatalog()
	if err != nil {
		return nil, err
	}

	if conf.SchemaPath != "" {
		dbs, err := catalog.LoadDefinition(conf.SchemaPath)
		if err != nil {
			return nil, err
		}
		for _, db := range dbs {
			if err := cat.AddDatabase(db); err != nil {
				return nil, err
			}
		}
	}

	if *pgDSN != "" {
		db, err := importPostgres(*pgDSN, *pgSchema)
		if err != nil {
			return nil, err
		}
		if err := cat.AddDatabase(db); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func importPostgres(dsn, schema string) (catalog.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return catalog.Database{}, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	name := pool.Config().ConnConfig.Database
	return catalog.NewIntrospector(pool, schema, 10*time.Second).Database(ctx, name)
}
