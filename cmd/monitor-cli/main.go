package main

import (
	"os"
	"besmart-monitor/cmd/monitor-cli/cmd"
)

func main() {
	path, ok := os.LookupEnv("MONITOR_DB")
	if ok {
		cmd.DbPath = path
	}

	cmd.Execute()
}
