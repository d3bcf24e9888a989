package instance

import "os"

var instanceEnvVars = []string{"INSTANCE_ID", "K_REVISION", "DYNO", "HOSTNAME"}

// GetID returns the first platform-provided instance identifier, or "local".
func GetID() string {
	for _, key := range instanceEnvVars {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
