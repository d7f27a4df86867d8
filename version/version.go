package version

// AppVersion is overridden at link time with -ldflags "-X missionreport/version.AppVersion=...".
var AppVersion = "0.1.0-dev"
