package platform

import "fmt"

// New builds the adapter for the configured API generation.
func New(generation, baseURL, accessToken string) (Client, error) {
	switch generation {
	case "v1":
		return NewV1Client(baseURL, accessToken), nil
	case "v2":
		return NewV2Client(baseURL, accessToken), nil
	default:
		return nil, fmt.Errorf("unknown api generation %q", generation)
	}
}
