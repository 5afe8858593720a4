package cfg

type Cfg struct {
	// Persistence configuration
	DataDir string

	// Application configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	BackendUrl        string
	EventsApiUrl      string
	WorkerCount       int
	SchedulerInterval int
	FetchTimeout      int
	FetchLimit        int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
