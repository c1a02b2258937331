package main

type PanelConfig struct {
	BaseUrl string `json:"base_url"`
	// credentials are usually supplied as ${ADMIN_USERNAME} and
	// ${ADMIN_PASSWORD} placeholders resolved from the environment
	Username string `json:"username"`
	Password string `json:"password"`
	// TasksUrl defaults to <base_url>/tasks
	TasksUrl string `json:"tasks_url"`
	// the listing url with the "Active orders" filter pre-applied
	ActiveTasksUrl string `json:"active_tasks_url"`
}

type Config struct {
	Panel PanelConfig `json:"panel"`
	// sqlite file path or a remote libsql:// url
	Database string `json:"database"`

	PollIntervalSeconds    int `json:"poll_interval_seconds"`
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
	// how many ticks between run summaries on the feed
	StatsEvery int `json:"stats_every"`

	ActiveOnly      bool `json:"active_only"`
	KnownCapacity   int  `json:"known_capacity"`
	AnalyticsWindow int  `json:"analytics_window"`

	Verbose bool `json:"verbose"`
}
