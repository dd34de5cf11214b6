package version

import "runtime"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return "dicktaind " + Version + " (commit=" + Commit + ", date=" + Date + ", go=" + runtime.Version() + ")"
}
