package version

// These values are stamped into the binaries at build time using
//
//	go build -ldflags "-X github.com/dlnetworks/wled-bandwidth-meter/version.GitHash=`git rev-parse HEAD` -X github.com/dlnetworks/wled-bandwidth-meter/version.BuildTime=`date -u +%Y-%m-%d_%H:%M:%S`"
var (
	GitHash   = "unknown"
	BuildTime = "unknown"
)
