package common

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"
)

const (
	AppName = "tuttle"

	// Header the fronting deployment uses to tell us who the acting
	// user is. Session handling itself lives outside tuttle.
	UserHeader = "X-Tuttle-User"

	// Scope a token must grant before we list repositories with it.
	RequiredScope = "repo"

	// db connection max idle time
	DBMaxIdleTime  = 10 * time.Minute
	DBMaxOpenConns = 100
	DBMaxIdleConns = 10
)

var (
	Port = "8080"

	DBType = "sqlite"
	DBDSN  = "tuttle.db"

	// Empty means api.github.com. Overridable for GitHub Enterprise
	// installs and for tests.
	GithubAPIURL = ""

	// Upper bound for one synchronization run, remote calls included.
	SyncTimeout = 120 * time.Second

	DisableGZIP = true

	// Optional bootstrap identity, see internal.Bootstrap.
	BootstrapUsername = ""
	BootstrapToken    = ""
)

func LoadEnvs() {
	if err := godotenv.Load(); err != nil {
		klog.V(2).Infof("No .env file loaded: %v", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		Port = port
	}

	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		DBDSN = dbDSN
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		if dbType != "sqlite" && dbType != "mysql" && dbType != "postgres" {
			klog.Fatalf("Invalid DB_TYPE: %s, must be one of sqlite, mysql, postgres", dbType)
		}
		DBType = dbType
	}

	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		GithubAPIURL = v
	}

	if v := os.Getenv("SYNC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			klog.Fatalf("Invalid SYNC_TIMEOUT: %s, must be a positive duration like 90s or 2m", v)
		}
		SyncTimeout = d
	}

	if v := os.Getenv("DISABLE_GZIP"); v != "" {
		DisableGZIP = v == "true"
	}

	if v := os.Getenv("TUTTLE_USERNAME"); v != "" {
		BootstrapUsername = v
	}
	if v := os.Getenv("TUTTLE_GITHUB_TOKEN"); v != "" {
		BootstrapToken = v
	}
}
