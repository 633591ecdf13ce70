package version

// Version and GitCommit are overridden at build time with -ldflags "-X".
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
)

// ReleasesURL is where the "View updates" menu item points to.
const ReleasesURL = "https://github.com/headset-battery-indicator/headset-battery-indicator/releases"
