package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	WatchParty      Category = "WatchParty"
	Playback        Category = "Playback"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
)

const (
	// General
	Startup      SubCategory = "Startup"
	Shutdown     SubCategory = "Shutdown"
	RateLimiting SubCategory = "RateLimiting"

	// WatchParty
	Join      SubCategory = "Join"
	Leave     SubCategory = "Leave"
	Broadcast SubCategory = "Broadcast"
	Eviction  SubCategory = "Eviction"

	ExternalService SubCategory = "ExternalService"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	VideoID      ExtraKey = "VideoId"
	ConnID       ExtraKey = "ConnId"
	Username     ExtraKey = "Username"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
