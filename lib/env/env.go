package env

import (
	"os"
	"strconv"
)

func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

func Timeout() (int, bool) {
	if s := os.Getenv("DRAWTEX_TIMEOUT"); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return int(i), true
		}
	}
	return -1, false
}
