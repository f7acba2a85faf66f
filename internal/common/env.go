package common

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yusing/goutils/env"
)

// prefixes must be set before the flags below are read
var _ = setEnvPrefixes()

func setEnvPrefixes() bool {
	env.SetPrefixes("ENVINJECT_", "")
	return true
}

var (
	IsTest  = env.GetEnvBool("TEST", false) || strings.HasSuffix(os.Args[0], ".test")
	IsDebug = env.GetEnvBool("DEBUG", IsTest)
	IsTrace = env.GetEnvBool("TRACE", false) && IsDebug
)

// GetEnvInt64 is like env.GetEnvBool for byte sizes and counts.
func GetEnvInt64(key string, defaultValue int64) int64 {
	value, ok := env.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Fatal().Err(err).Msgf("env %s: invalid int64 value: %s", key, value)
	}
	return n
}
