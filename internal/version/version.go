package version

// Version is the released version string. Overridden at build time via
// -ldflags "-X serialpcap/internal/version.Version=...".
var Version = "1.0.0"
