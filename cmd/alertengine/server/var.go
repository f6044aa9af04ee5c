package server

const (
	BasePath      = "/api"
	AlertPath     = "/alert"
	SubscribePath = "/subscribe"
)
