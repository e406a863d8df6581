package utils

import (
	"os"
	"strconv"
	"time"
)

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// RemoveString returns hay with every occurrence of needle removed, keeping
// the relative order of the remaining elements.
func RemoveString(hay []string, needle string) []string {
	res := []string{}
	for _, str := range hay {
		if str != needle {
			res = append(res, str)
		}
	}
	return res
}

// SimulateLatency sleeps for MOCK_LATENCY_MS milliseconds to imitate network
// round trips the way the original mock backend did. Latency is 0 unless
// explicitly configured, so tests and local runs stay fast.
func SimulateLatency() {
	ms, err := strconv.Atoi(os.Getenv("MOCK_LATENCY_MS"))
	if err != nil || ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
