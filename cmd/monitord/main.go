package main

import (
	"os"
	"time"
	"besmart-monitor/lib/configutil"
	"besmart-monitor/lib/scrapers/besmart"
	"besmart-monitor/lib/serviceutil"
	"besmart-monitor/lib/sqliteutil"
	"besmart-monitor/lib/telemetry"
	"besmart-monitor/services/ordermonitor"
	"besmart-monitor/services/ordermonitor/db"

	"github.com/joho/godotenv"
)

func main() {
	// .env holds ADMIN_USERNAME/ADMIN_PASSWORD in development; absence
	// is fine, production injects real environment variables
	godotenv.Load()

	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	telemetry.InitSlog(config.Verbose)
	_, err = telemetry.SetupFromEnv(ctx, "ordermonitor")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	database, err := sqliteutil.OpenDB(db.Schema, config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	client, err := besmart.NewClient(besmart.ClientOptions{
		BaseUrl:         config.Panel.BaseUrl,
		Username:        config.Panel.Username,
		Password:        config.Panel.Password,
		TasksUrl:        config.Panel.TasksUrl,
		ActiveTasksUrl:  config.Panel.ActiveTasksUrl,
		RefreshInterval: time.Duration(config.RefreshIntervalSeconds) * time.Second,
	})
	if err != nil {
		serviceutil.Fatal("failed to construct panel client", err)
	}

	// an unusable panel or bad credentials should fail loudly at startup
	// instead of silently producing empty ticks
	err = client.Login(ctx)
	if err != nil {
		serviceutil.Fatal("initial login failed", err)
	}

	monitor := ordermonitor.NewMonitor(ordermonitor.MonitorOptions{
		Client:          client,
		Service:         ordermonitor.NewService(database),
		Feed:            ordermonitor.NewFeed(os.Stdout),
		PollInterval:    time.Duration(config.PollIntervalSeconds) * time.Second,
		StatsEvery:      config.StatsEvery,
		ActiveOnly:      config.ActiveOnly,
		KnownCapacity:   config.KnownCapacity,
		AnalyticsWindow: config.AnalyticsWindow,
	})
	monitor.Run(ctx)
}
