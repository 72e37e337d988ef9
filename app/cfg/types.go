package cfg

type Cfg struct {
	// HTTP server
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Content and panels
	PanelsDir   string
	ContentFile string

	// GitHub API
	GitHubAPIURL string
	UserAgent    string

	// Background refresh
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
