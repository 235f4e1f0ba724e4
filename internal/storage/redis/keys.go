package redis

import "fmt"

// Key prefix for all client data
const keyPrefix = "ccpubsub"

// tokenKey returns the Redis key holding a profile's credential token
func tokenKey(profile string) string {
	return fmt.Sprintf("%s:token:%s", keyPrefix, profile)
}
