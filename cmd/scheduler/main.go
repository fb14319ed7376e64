// cmd/scheduler/main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/actuator"
	"github.com/tamzrod/uplink-scheduler/internal/clock"
	"github.com/tamzrod/uplink-scheduler/internal/config"
	"github.com/tamzrod/uplink-scheduler/internal/device"
	"github.com/tamzrod/uplink-scheduler/internal/modem"
	"github.com/tamzrod/uplink-scheduler/internal/pool"
	"github.com/tamzrod/uplink-scheduler/internal/scheduler"
	"github.com/tamzrod/uplink-scheduler/internal/sensor"
	smodbus "github.com/tamzrod/uplink-scheduler/internal/sensor/modbus"
	"github.com/tamzrod/uplink-scheduler/internal/timesync"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: scheduler <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	rst := device.Resetter{}

	// --------------------
	// Modem + network join
	// --------------------

	mdm, err := modem.New(modem.Config{
		Device:         cfg.Modem.Device,
		BaudRate:       cfg.Modem.BaudRate,
		CommandTimeout: time.Duration(cfg.Modem.CommandTimeoutMs) * time.Millisecond,
		JoinTimeout:    time.Duration(cfg.Modem.JoinTimeoutS) * time.Second,
	})
	if err != nil {
		log.Fatalf("modem open failed: %v", err)
	}
	defer mdm.Close()

	log.Printf("joining network ...")
	if err := mdm.Join(); err != nil {
		// A join that times out usually means a poisoned session.
		if err := mdm.EraseNVM(); err != nil {
			log.Printf("nvm erase failed: %v", err)
		}
		rst.Reset("network join failed: " + err.Error())
	}
	log.Printf("joined")

	// --------------------
	// Clock, pool, scheduler
	// --------------------

	rtc := clock.NewSystemRTC(timesync.Epoch)

	p, err := pool.New(cfg.Scheduler.PoolCapacity, rtc, func() {
		rst.Reset("message pool exhausted")
	})
	if err != nil {
		log.Fatalf("pool init failed: %v", err)
	}

	var act scheduler.Actuator
	if cfg.Actuator != nil {
		led, err := actuator.NewLED(cfg.Actuator.Path)
		if err != nil {
			log.Fatalf("actuator init failed: %v", err)
		}
		act = led
	}

	sched, err := scheduler.New(scheduler.Config{
		SyncPort:         *cfg.Scheduler.SyncPort,
		AppPort:          *cfg.Scheduler.AppPort,
		ControlType:      wire.TypeControl,
		RetryTimeout:     time.Duration(cfg.Scheduler.RetryTimeoutS) * time.Second,
		ListenWindow:     time.Duration(cfg.Scheduler.ListenWindowS) * time.Second,
		FailureThreshold: cfg.Scheduler.FailureThreshold,
	}, p, mdm, rtc, act, rst, timesync.NewApplier(rtc))
	if err != nil {
		log.Fatalf("scheduler init failed: %v", err)
	}

	// --------------------
	// Clock bootstrap
	// --------------------

	ts, err := timesync.New(timesync.Config{
		SyncPort:             *cfg.Scheduler.SyncPort,
		Settle:               time.Duration(cfg.Sync.SettleS) * time.Second,
		MaxBootstrapAttempts: cfg.Sync.MaxBootstrapAttempts,
		GuaranteedResync:     cfg.Sync.Guaranteed,
	}, sched, rtc, mdm.Join)
	if err != nil {
		log.Fatalf("timesync init failed: %v", err)
	}

	if err := ts.Bootstrap(); err != nil {
		rst.Reset("clock bootstrap failed: " + err.Error())
	}

	// --------------------
	// Producers
	// --------------------

	ctx := context.Background()

	if cfg.Sensor != nil {
		cli, err := smodbus.New(smodbus.Config{
			Endpoint: cfg.Sensor.Endpoint,
			SlaveID:  cfg.Sensor.SlaveID,
			Register: cfg.Sensor.Register,
			Scale:    cfg.Sensor.Scale,
			Timeout:  time.Duration(cfg.Sensor.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("sensor init failed: %v", err)
		}
		defer cli.Close()

		sampler, err := sensor.NewTemperatureSampler(sensor.TemperatureConfig{
			Port:       *cfg.Scheduler.AppPort,
			Interval:   time.Duration(cfg.Sensor.IntervalS) * time.Second,
			Guaranteed: cfg.Sensor.Guaranteed,
		}, cli, sched)
		if err != nil {
			log.Fatalf("sampler init failed: %v", err)
		}
		go sampler.Run(ctx)
	}

	if cfg.Edge != nil {
		watcher, err := sensor.NewEdgeWatcher(sensor.EdgeConfig{
			Port:       *cfg.Scheduler.AppPort,
			Debounce:   time.Duration(cfg.Edge.DebounceMs) * time.Millisecond,
			Guaranteed: *cfg.Edge.Guaranteed,
		}, &sensor.GPIOValueFile{Path: cfg.Edge.Path}, sched)
		if err != nil {
			log.Fatalf("edge watcher init failed: %v", err)
		}
		go watcher.Run(ctx)
	}

	// --------------------
	// Steady loop: drain passes + periodic re-sync
	// --------------------

	pass := time.NewTicker(time.Duration(cfg.Scheduler.PassIntervalS) * time.Second)
	defer pass.Stop()
	resync := time.NewTicker(time.Duration(cfg.Sync.ResyncIntervalH) * time.Hour)
	defer resync.Stop()

	for {
		select {
		case <-pass.C:
			if err := sched.Drain(); err != nil {
				log.Printf("pass failed, rejoining: %v", err)
				if err := mdm.Join(); err != nil {
					log.Printf("rejoin failed: %v", err)
				}
			}

		case <-resync.C:
			if err := ts.Request(); err != nil {
				log.Printf("re-sync enqueue failed: %v", err)
			}
		}
	}
}
