package utils

import (
	"os"

	"github.com/plateful/plateful/utils/dotenv"
)

// ContainsString returns true iff the provided string slice hay contains
// string needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func IsProdEnv() bool {
	return os.Getenv("PLATEFUL_ENV") == dotenv.ProdEnv
}
