package instance

import "os"

// ID returns the identifier of the running replica. Explicit configuration
// wins, then the platform dyno name, then the hostname.
func ID() string {
	for _, key := range []string{"WORKSHOP_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
